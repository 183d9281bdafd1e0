package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/DevN0mad/ShiftBot/internal/config"
	"github.com/DevN0mad/ShiftBot/internal/server"
	"github.com/DevN0mad/ShiftBot/internal/services"
	"github.com/DevN0mad/ShiftBot/internal/storage"
)

// App представляет основное приложение, управляющее сервисами.
type App struct {
	logger  *slog.Logger
	rootCtx context.Context

	mu             sync.Mutex
	store          *storage.Storage
	dashboard      *services.DashboardService
	tg             *services.TelegramBotService
	dailyJob       *services.DailyJobService
	refreshJob     *services.RefreshJob
	httpSrv        *server.Server
	servicesCancel context.CancelFunc
	servicesWG     sync.WaitGroup
}

// NewApp создает новый экземпляр приложения с заданным логгером и корневым контекстом.
func NewApp(ctx context.Context, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &App{
		logger:  logger,
		rootCtx: ctx,
	}
}

// ApplyConfig применяет конфигурацию к приложению, инициализируя/переинициализируя сервисы.
func (a *App) ApplyConfig(cfg config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Новые сервисы собираются до остановки старых: при ошибке старые продолжают работать.
	store, err := storage.NewStorage(cfg.Storage, a.logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	sheets := services.NewSheetsScheduleService(cfg.Schedule, a.logger)
	provider, err := services.NewFallbackScheduleService(sheets, store, a.logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init schedule provider: %w", err)
	}

	dashboard, err := services.NewDashboardService(provider, a.logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init dashboard: %w", err)
	}

	report, err := services.NewReportService(cfg.Report, a.logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init report service: %w", err)
	}

	refreshJob, err := services.NewRefreshJob(dashboard, cfg.Refresh, a.logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("init refresh job: %w", err)
	}

	var (
		tg       *services.TelegramBotService
		dailyJob *services.DailyJobService
	)
	if cfg.TelegramBot.Enabled {
		tg, err = services.NewTelegramBot(cfg.TelegramBot, store, dashboard, a.logger)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("init telegram bot: %w", err)
		}

		dailyJob, err = services.NewDailyJobService(dashboard, report, tg, cfg.DailyJob, a.logger)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("init daily job: %w", err)
		}
	} else {
		a.logger.Info("Telegram bot disabled, daily digest will not be sent")
	}

	httpSrv := server.NewServer(a.logger, dashboard, report, &cfg.HttpServer)

	a.stopLocked()

	ctx, cancel := context.WithCancel(a.rootCtx)

	a.goService(func() { refreshJob.Start(ctx) })
	if tg != nil {
		a.goService(func() { tg.Start(ctx) })
		a.goService(func() { dailyJob.Start(ctx) })
	}
	a.goService(func() {
		if err := httpSrv.Start(ctx); err != nil {
			a.logger.Error("Http server exited with error", "error", err)
		}
	})

	a.store = store
	a.dashboard = dashboard
	a.tg = tg
	a.dailyJob = dailyJob
	a.refreshJob = refreshJob
	a.httpSrv = httpSrv
	a.servicesCancel = cancel

	a.logger.Info("Services reinitialized successfully with configuration")
	return nil
}

func (a *App) goService(fn func()) {
	a.servicesWG.Add(1)
	go func() {
		defer a.servicesWG.Done()
		fn()
	}()
}

// stopLocked останавливает запущенные сервисы и закрывает хранилище. Вызывается под a.mu.
func (a *App) stopLocked() {
	if a.servicesCancel == nil {
		return
	}

	a.logger.Info("Stopping services")
	a.servicesCancel()
	a.servicesCancel = nil
	a.servicesWG.Wait()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Failed to close storage", "error", err)
		}
		a.store = nil
	}
}

// Shutdown останавливает все запущенные сервисы приложения.
func (a *App) Shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
}
