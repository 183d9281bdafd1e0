package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Notifier получатель ежедневной рассылки.
type Notifier interface {
	Broadcast(ctx context.Context, text string) error
	SendFile(ctx context.Context, path string) error
}

// DailyJobOpts параметры необходимые для работы сервиса.
type DailyJobOpts struct {
	Hour   int `mapstructure:"hour" validate:"min=0,max=23"`
	Minute int `mapstructure:"minute" validate:"min=0,max=59"`
}

// DailyJobService каждый день в заданное время рассылает сводку по сменам и отчёт за месяц.
type DailyJobService struct {
	dashboard *DashboardService
	report    *ReportService
	notifier  Notifier
	hour      int
	minute    int
	timezone  *time.Location
	logger    *slog.Logger
}

// NewDailyJobService создаёт сервис для ежедневной рассылки.
func NewDailyJobService(
	dashboard *DashboardService,
	report *ReportService,
	notifier Notifier,
	opts DailyJobOpts,
	logger *slog.Logger,
) (*DailyJobService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dashboard == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}
	if report == nil {
		return nil, fmt.Errorf("report service is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	logger.Info("Daily job configured",
		"hour", opts.Hour,
		"minute", opts.Minute,
		"timezone", time.Local.String())

	return &DailyJobService{
		dashboard: dashboard,
		report:    report,
		notifier:  notifier,
		hour:      opts.Hour,
		minute:    opts.Minute,
		timezone:  time.Local,
		logger:    logger,
	}, nil
}

// Start запускает цикл отправки.
func (d *DailyJobService) Start(ctx context.Context) {
	nextRun := d.nextRunTime(time.Now())
	timer := time.NewTimer(time.Until(nextRun))
	d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutdown requested")
			timer.Stop()
			return
		case <-timer.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("Daily digest sending failed", "error", err)
			} else {
				d.logger.Info("Daily digest sent successfully")
			}

			nextRun = d.nextRunTime(time.Now())
			timer.Reset(time.Until(nextRun))
			d.logger.Info("Next run scheduled", "at", nextRun.Format(time.RFC3339))
		}
	}
}

// RunOnce обновляет панель, рассылает сводку и, если данные есть, отчёт.
func (d *DailyJobService) RunOnce(ctx context.Context) error {
	if err := d.dashboard.Refresh(ctx); err != nil {
		d.logger.Warn("Refresh before digest failed", "error", err)
	}

	view := d.dashboard.View(d.dashboard.Now())
	if err := d.notifier.Broadcast(ctx, FormatDigest(view)); err != nil {
		return fmt.Errorf("broadcast digest: %w", err)
	}

	if !view.Available {
		return nil
	}

	path, err := d.report.SaveReport(view)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if err := d.notifier.SendFile(ctx, path); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// nextRunTime вычисляет ближайшее время запуска после now.
func (d *DailyJobService) nextRunTime(now time.Time) time.Time {
	now = now.In(d.timezone)
	today := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.timezone)

	if now.After(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}

// RefreshJobOpts параметры периодического обновления графика.
type RefreshJobOpts struct {
	IntervalSeconds int `mapstructure:"interval_seconds" validate:"min=0"`
}

const defaultRefreshInterval = 5 * time.Minute

// RefreshJob периодически перезагружает график панели. Загрузки идут
// последовательно и не перекрываются.
type RefreshJob struct {
	dashboard *DashboardService
	interval  time.Duration
	logger    *slog.Logger
}

// NewRefreshJob создаёт задачу обновления.
func NewRefreshJob(dashboard *DashboardService, opts RefreshJobOpts, logger *slog.Logger) (*RefreshJob, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dashboard == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}

	interval := defaultRefreshInterval
	if opts.IntervalSeconds > 0 {
		interval = time.Duration(opts.IntervalSeconds) * time.Second
	}

	return &RefreshJob{
		dashboard: dashboard,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start обновляет график сразу и затем раз в interval до отмены контекста.
func (j *RefreshJob) Start(ctx context.Context) {
	j.logger.Info("Refresh job started", "interval", j.interval.String())

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if err := j.dashboard.Refresh(ctx); err != nil {
			j.logger.Warn("Scheduled refresh failed", "error", err)
		}

		select {
		case <-ctx.Done():
			j.logger.Info("Refresh job stopped")
			return
		case <-ticker.C:
		}
	}
}
