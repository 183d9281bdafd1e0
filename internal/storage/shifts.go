package storage

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// monthBounds возвращает границы месяца в формате колонки day: [from, to).
func monthBounds(year int, month time.Month) (string, string) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return start.Format(models.DateLayout), start.AddDate(0, 1, 0).Format(models.DateLayout)
}

// SaveMonth заменяет сохранённые записи месяца переданными.
func (s *Storage) SaveMonth(ctx context.Context, year int, month time.Month, records []models.ShiftRecord) error {
	from, to := monthBounds(year, month)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("day >= ? AND day < ?", from, to).Delete(&models.ShiftRecord{}).Error; err != nil {
			return fmt.Errorf("delete month: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		rows := make([]models.ShiftRecord, len(records))
		for i, r := range records {
			r.ID = 0
			rows[i] = r
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to save month", "year", year, "month", int(month), "error", err)
		return err
	}

	s.logger.Debug("month saved", "year", year, "month", int(month), "records", len(records))
	return nil
}

// LoadMonth возвращает сохранённые записи месяца по возрастанию даты.
// found == false, если за месяц ничего не сохранено.
func (s *Storage) LoadMonth(ctx context.Context, year int, month time.Month) ([]models.ShiftRecord, bool, error) {
	from, to := monthBounds(year, month)

	var records []models.ShiftRecord
	err := s.db.WithContext(ctx).
		Where("day >= ? AND day < ?", from, to).
		Order("day").
		Find(&records).Error
	if err != nil {
		s.logger.Error("failed to load month", "year", year, "month", int(month), "error", err)
		return nil, false, fmt.Errorf("load month: %w", err)
	}

	return records, len(records) > 0, nil
}
