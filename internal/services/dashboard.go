package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/DevN0mad/ShiftBot/internal/models"
	"github.com/DevN0mad/ShiftBot/internal/shifts"
)

// DashboardView данные панели графика на момент запроса.
type DashboardView struct {
	Date         string                   `json:"date"`
	Year         int                      `json:"year"`
	Month        int                      `json:"month"`
	Available    bool                     `json:"available"`
	Error        string                   `json:"error,omitempty"`
	FetchedAt    time.Time                `json:"fetched_at"`
	Period       shifts.Period            `json:"period"`
	CurrentShift []string                 `json:"current_shift"`
	NextShift    []string                 `json:"next_shift"`
	Workload     []models.WorkloadSummary `json:"workload"`
	Statistics   models.MonthlyStatistics `json:"statistics"`
	Records      []models.ShiftRecord     `json:"records"`
}

type dashboardSnapshot struct {
	year      int
	month     time.Month
	records   []models.ShiftRecord
	available bool
	err       string
	fetchedAt time.Time
}

// DashboardOption настройка DashboardService.
type DashboardOption func(*DashboardService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) DashboardOption {
	return func(d *DashboardService) {
		d.now = now
	}
}

// DashboardService хранит последний загруженный месяц графика и
// пересчитывает по нему сводки на каждый запрос.
type DashboardService struct {
	provider ScheduleProvider
	logger   *slog.Logger
	now      func() time.Time
	group    singleflight.Group

	mu      sync.RWMutex
	issued  uint64
	applied uint64
	snap    dashboardSnapshot
}

// NewDashboardService создаёт панель поверх поставщика графика.
func NewDashboardService(provider ScheduleProvider, logger *slog.Logger, opts ...DashboardOption) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		return nil, fmt.Errorf("schedule provider is required")
	}

	d := &DashboardService{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.snap.err = "schedule not loaded yet"
	return d, nil
}

// Now текущее время по часам панели.
func (d *DashboardService) Now() time.Time {
	return d.now()
}

// refreshTimeout ограничивает одну загрузку, которая больше не зависит от отмены вызывающего.
const refreshTimeout = 2 * time.Minute

// Refresh загружает текущий месяц и применяет результат.
// Одновременные вызовы объединяются в одну загрузку, отмена ctx одного
// вызывающего её не прерывает. Ошибка загрузки переводит панель в пустое
// состояние и возвращается вызывающему.
func (d *DashboardService) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	ch := d.group.DoChan("refresh", func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, d.refresh(flightCtx)
	})

	select {
	case <-ctx.Done():
		d.logger.Debug("Dashboard refresh caller gone, load continues", "error", ctx.Err())
		return fmt.Errorf("refresh dashboard: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			d.logger.Debug("Dashboard refresh shared with concurrent caller")
		}
		return res.Err
	}
}

func (d *DashboardService) refresh(ctx context.Context) error {
	d.mu.Lock()
	d.issued++
	gen := d.issued
	d.mu.Unlock()

	now := d.now()
	year, month := now.Year(), now.Month()

	records, err := d.provider.FetchMonth(ctx, year, month)
	if err != nil && ctx.Err() != nil {
		// Прерванная загрузка ничего не говорит об источнике: текущий снимок остаётся.
		d.logger.Warn("Schedule fetch interrupted, keeping previous snapshot", "generation", gen, "error", err)
		if !errors.Is(err, ctx.Err()) {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	snap := dashboardSnapshot{
		year:      year,
		month:     month,
		fetchedAt: now,
	}
	if err != nil {
		d.logger.Error("Schedule fetch failed", "year", year, "month", int(month), "error", err)
		snap.err = err.Error()
	} else {
		snap.records = records
		snap.available = true
		for _, c := range shifts.Conflicts(records) {
			d.logger.Warn("Technician scheduled while on leave",
				"date", c.Date,
				"name", c.Name,
				"working", c.Working,
				"leave", c.Leave)
		}
	}

	if !d.apply(gen, snap) {
		d.logger.Debug("Discarding stale dashboard refresh", "generation", gen)
	} else if err == nil {
		d.logger.Info("Dashboard refreshed", "year", year, "month", int(month), "records", len(records))
	}

	if err != nil {
		return fmt.Errorf("refresh dashboard: %w", err)
	}
	return nil
}

// apply сохраняет снимок, если более новая загрузка ещё не применена.
func (d *DashboardService) apply(gen uint64, snap dashboardSnapshot) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen < d.applied {
		return false
	}
	d.applied = gen
	d.snap = snap
	return true
}

// Records копия записей применённого месяца.
func (d *DashboardService) Records() []models.ShiftRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.ShiftRecord{}, d.snap.records...)
}

// View пересчитывает сводки панели на момент now.
func (d *DashboardService) View(now time.Time) DashboardView {
	d.mu.RLock()
	snap := d.snap
	d.mu.RUnlock()

	records := append([]models.ShiftRecord{}, snap.records...)

	return DashboardView{
		Date:         now.Format(models.DateLayout),
		Year:         snap.year,
		Month:        int(snap.month),
		Available:    snap.available,
		Error:        snap.err,
		FetchedAt:    snap.fetchedAt,
		Period:       shifts.ActivePeriod(now),
		CurrentShift: shifts.CurrentShift(records, now),
		NextShift:    shifts.NextShift(records, now),
		Workload:     shifts.Workload(records),
		Statistics:   shifts.MonthlyStatistics(records),
		Records:      records,
	}
}
