package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(StorageOpts{DBPath: filepath.Join(t.TempDir(), "db", "shifts.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestSaveAndLoadMonth(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	records := []models.ShiftRecord{
		{Date: date(2026, time.October, 2), NightTechnicians: []string{"B"}},
		{
			Date:                date(2026, time.October, 1),
			DayTechnicians:      []string{"A", "C"},
			VacationTechnicians: []string{"D"},
			L4Technicians:       []string{"E"},
		},
	}
	require.NoError(t, s.SaveMonth(ctx, 2026, time.October, records))
	require.NoError(t, s.SaveMonth(ctx, 2026, time.November, []models.ShiftRecord{
		{Date: date(2026, time.November, 1), DayTechnicians: []string{"Z"}},
	}))

	got, found, err := s.LoadMonth(ctx, 2026, time.October)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 2)

	assert.Equal(t, date(2026, time.October, 1), got[0].Date)
	assert.Equal(t, []string{"A", "C"}, got[0].DayTechnicians)
	assert.Equal(t, []string{"D"}, got[0].VacationTechnicians)
	assert.Equal(t, []string{"E"}, got[0].L4Technicians)
	assert.Equal(t, date(2026, time.October, 2), got[1].Date)
	assert.Equal(t, []string{"B"}, got[1].NightTechnicians)
}

func TestSaveMonthReplacesPrevious(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveMonth(ctx, 2026, time.October, []models.ShiftRecord{
		{Date: date(2026, time.October, 1), DayTechnicians: []string{"A"}},
		{Date: date(2026, time.October, 2), DayTechnicians: []string{"A"}},
	}))
	require.NoError(t, s.SaveMonth(ctx, 2026, time.October, []models.ShiftRecord{
		{Date: date(2026, time.October, 1), DayTechnicians: []string{"B"}},
	}))

	got, found, err := s.LoadMonth(ctx, 2026, time.October)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"B"}, got[0].DayTechnicians)
}

func TestLoadMonthNotFound(t *testing.T) {
	s := newTestStorage(t)

	got, found, err := s.LoadMonth(context.Background(), 2026, time.March)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, got)
}

func TestChats(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveChat(ctx, 100, "Technicians"))
	require.NoError(t, s.SaveChat(ctx, 200, "Managers"))
	require.NoError(t, s.SaveChat(ctx, 100, "Technicians (renamed)"))

	ids, err := s.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, ids)

	require.NoError(t, s.RemoveChat(ctx, 100))
	ids, err = s.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{200}, ids)
}
