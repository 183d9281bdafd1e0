package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// MonthStore хранилище последних успешно загруженных месяцев.
type MonthStore interface {
	SaveMonth(ctx context.Context, year int, month time.Month, records []models.ShiftRecord) error
	LoadMonth(ctx context.Context, year int, month time.Month) ([]models.ShiftRecord, bool, error)
}

// FallbackScheduleService кэширует удачные загрузки основного источника и
// отдаёт кэш, когда источник недоступен.
type FallbackScheduleService struct {
	primary ScheduleProvider
	store   MonthStore
	logger  *slog.Logger
}

// NewFallbackScheduleService создаёт поставщика с запасным хранилищем.
func NewFallbackScheduleService(primary ScheduleProvider, store MonthStore, logger *slog.Logger) (*FallbackScheduleService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if primary == nil {
		return nil, fmt.Errorf("primary schedule provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("month store is required")
	}

	return &FallbackScheduleService{
		primary: primary,
		store:   store,
		logger:  logger,
	}, nil
}

// FetchMonth возвращает месяц из основного источника, а при ошибке из кэша.
func (s *FallbackScheduleService) FetchMonth(ctx context.Context, year int, month time.Month) ([]models.ShiftRecord, error) {
	records, err := s.primary.FetchMonth(ctx, year, month)
	if err == nil {
		if serr := s.store.SaveMonth(ctx, year, month, records); serr != nil {
			s.logger.Warn("Failed to cache schedule month", "year", year, "month", int(month), "error", serr)
		}
		return records, nil
	}

	// Отменённый вызывающим запрос не означает недоступность источника.
	if ctx.Err() != nil {
		return nil, fmt.Errorf("fetch month: %w", ctx.Err())
	}

	if !errors.Is(err, ErrDataUnavailable) {
		err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	cached, found, lerr := s.store.LoadMonth(ctx, year, month)
	if lerr != nil {
		s.logger.Error("Failed to load cached schedule month", "year", year, "month", int(month), "error", lerr)
		return nil, err
	}
	if !found {
		s.logger.Warn("Schedule source failed and no cached month", "year", year, "month", int(month), "error", err)
		return nil, err
	}

	s.logger.Warn("Schedule source failed, serving cached month",
		"year", year,
		"month", int(month),
		"records", len(cached),
		"error", err)
	return cached, nil
}
