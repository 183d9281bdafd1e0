package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
schedule:
  source: /var/lib/shift_bot/schedule.xlsx
  api_token: token
storage:
  db_path: /var/lib/shift_bot/shifts.db
report:
  save_dir: /var/lib/shift_bot/reports
daily_job:
  hour: 6
  minute: 45
telegram_bot:
  enabled: true
  token: "123:abc"
  chat_id: -100500
  message: Monthly schedule
http_server:
  address: ":9090"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/shift_bot/schedule.xlsx", cfg.Schedule.Source)
	assert.Equal(t, "token", cfg.Schedule.ApiToken)
	assert.Equal(t, "2006-01", cfg.Schedule.SheetNameLayout)
	assert.Equal(t, 30, cfg.Schedule.TimeoutSeconds)
	assert.Equal(t, "/var/lib/shift_bot/shifts.db", cfg.Storage.DBPath)
	assert.Equal(t, 300, cfg.Refresh.IntervalSeconds)
	assert.Equal(t, "/var/lib/shift_bot/reports", cfg.Report.SaveDir)
	assert.Equal(t, 6, cfg.DailyJob.Hour)
	assert.Equal(t, 45, cfg.DailyJob.Minute)
	assert.True(t, cfg.TelegramBot.Enabled)
	assert.Equal(t, int64(-100500), cfg.TelegramBot.ChatID)
	assert.Equal(t, ":9090", cfg.HttpServer.Address)
	assert.Equal(t, 10, cfg.HttpServer.ReadTimeoutSeconds)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"missing source": `
storage: {db_path: /tmp/x.db}
report: {save_dir: /tmp}
`,
		"telegram enabled without token": `
schedule: {source: /tmp/s.xlsx}
storage: {db_path: /tmp/x.db}
report: {save_dir: /tmp}
telegram_bot: {enabled: true}
`,
		"hour out of range": `
schedule: {source: /tmp/s.xlsx}
storage: {db_path: /tmp/x.db}
report: {save_dir: /tmp}
daily_job: {hour: 24}
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadTelegramDisabledNeedsNoToken(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
schedule: {source: /tmp/s.xlsx}
storage: {db_path: /tmp/x.db}
report: {save_dir: /tmp}
`))
	require.NoError(t, err)
	assert.False(t, cfg.TelegramBot.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestManagerReloadNotifiesSubscribers(t *testing.T) {
	path := writeConfig(t, validConfig)
	m, err := NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":9090", m.Current().HttpServer.Address)

	changed := make(chan Config, 1)
	m.OnChange(func(c Config) {
		select {
		case changed <- c:
		default:
		}
	})

	updated := validConfig + "refresh:\n  interval_seconds: 60\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, 60, c.Refresh.IntervalSeconds)
		assert.Equal(t, 60, m.Current().Refresh.IntervalSeconds)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not delivered")
	}
}
