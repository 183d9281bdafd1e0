package config

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/DevN0mad/ShiftBot/internal/server"
	"github.com/DevN0mad/ShiftBot/internal/services"
	"github.com/DevN0mad/ShiftBot/internal/storage"
)

// Config представляет конфигурацию приложения.
type Config struct {
	Schedule    services.ScheduleOpts   `mapstructure:"schedule"`
	Storage     storage.StorageOpts     `mapstructure:"storage"`
	Refresh     services.RefreshJobOpts `mapstructure:"refresh"`
	Report      services.ReportOpts     `mapstructure:"report"`
	DailyJob    services.DailyJobOpts   `mapstructure:"daily_job"`
	TelegramBot services.TelegramOpts   `mapstructure:"telegram_bot"`
	HttpServer  server.ServerOpts       `mapstructure:"http_server"`
}

// setDefaults значения, которые можно не указывать в файле.
func setDefaults(v *viper.Viper) {
	v.SetDefault("schedule.sheet_name_layout", "2006-01")
	v.SetDefault("schedule.timeout_seconds", 30)
	v.SetDefault("refresh.interval_seconds", 300)
	v.SetDefault("daily_job.hour", 7)
	v.SetDefault("daily_job.minute", 0)
	v.SetDefault("http_server.address", ":8080")
	v.SetDefault("http_server.read_timeout_seconds", 10)
	v.SetDefault("http_server.write_timeout_seconds", 30)
	v.SetDefault("http_server.idle_timeout_seconds", 60)
}

// Load читает и проверяет конфигурацию без отслеживания изменений.
func Load(path string) (Config, error) {
	_, cfg, err := read(path, validator.New())
	return cfg, err
}

func read(path string, validate *validator.Validate) (*viper.Viper, Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, Config{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, err := decode(v, validate)
	if err != nil {
		return nil, Config{}, err
	}
	return v, cfg, nil
}

func decode(v *viper.Viper, validate *validator.Validate) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Manager управляет конфигурацией приложения, обеспечивая загрузку,
// проверку и перезагрузку при изменении файла.
type Manager struct {
	mu          sync.RWMutex
	cfg         *Config
	logger      *slog.Logger
	v           *viper.Viper
	subscribers []func(Config)
	validate    *validator.Validate
}

// NewManager создает новый менеджер конфигурации, загружая конфигурацию из указанного пути.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	validate := validator.New()
	v, cfg, err := read(path, validate)
	if err != nil {
		logger.Error("Load config", "error", err)
		return nil, err
	}

	m := &Manager{
		cfg:      &cfg,
		logger:   logger,
		v:        v,
		validate: validate,
	}

	logger.Info("Config loaded", "path", path)

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Config file changed", "name", e.Name, "op", e.Op.String())
		m.reload()
	})
	v.WatchConfig()

	return m, nil
}

// reload перечитывает конфигурацию из viper и уведомляет подписчиков.
func (m *Manager) reload() {
	newCfg, err := decode(m.v, m.validate)
	if err != nil {
		m.logger.Error("Failed to reload config", "error", err)
		return
	}

	m.mu.Lock()
	m.cfg = &newCfg
	subs := append([]func(Config){}, m.subscribers...)
	m.mu.Unlock()

	m.logger.Info("Config reloaded successfully")

	for _, fn := range subs {
		fn(newCfg)
	}
}

// Current возвращает текущую конфигурацию.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cfg
}

// OnChange регистрирует функцию обратного вызова, которая будет вызвана при изменении конфигурации.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}
