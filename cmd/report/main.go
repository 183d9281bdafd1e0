package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DevN0mad/ShiftBot/internal/config"
	"github.com/DevN0mad/ShiftBot/internal/services"
	"github.com/DevN0mad/ShiftBot/internal/storage"
)

var (
	configPath = flag.String("config", "/etc/shift_bot/config.yaml", "Путь к файлу с конфигурацией")
	monthFlag  = flag.String("month", "", "Месяц отчёта в формате YYYY-MM, по умолчанию текущий")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	resPath, err := run(*configPath, *monthFlag, logger)
	if err != nil {
		logger.Error("Failed to generate report", "error", err)
		os.Exit(1)
	}

	logger.Info("Excel report successfully created", "path", resPath)
	fmt.Println(resPath)
}

// run строит отчёт за месяц и возвращает путь к файлу.
func run(cfgPath, monthValue string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	month := time.Now()
	if monthValue != "" {
		m, err := time.ParseInLocation("2006-01", monthValue, time.Local)
		if err != nil {
			return "", fmt.Errorf("invalid month %q: %w", monthValue, err)
		}
		month = m
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewStorage(cfg.Storage, logger)
	if err != nil {
		return "", fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	sheets := services.NewSheetsScheduleService(cfg.Schedule, logger)
	provider, err := services.NewFallbackScheduleService(sheets, store, logger)
	if err != nil {
		return "", fmt.Errorf("init schedule provider: %w", err)
	}

	// Панель считает месяц по своим часам, поэтому фиксируем их на выбранном месяце.
	dashboard, err := services.NewDashboardService(provider, logger, services.WithClock(func() time.Time { return month }))
	if err != nil {
		return "", fmt.Errorf("init dashboard: %w", err)
	}

	reportSrv, err := services.NewReportService(cfg.Report, logger)
	if err != nil {
		return "", fmt.Errorf("init report service: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := dashboard.Refresh(ctx); err != nil {
		return "", fmt.Errorf("load schedule: %w", err)
	}

	resPath, err := reportSrv.SaveReport(dashboard.View(month))
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return resPath, nil
}
