package services

import (
	"context"
	"errors"
	"time"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// ErrDataUnavailable источник графика недоступен или в нём нет нужного месяца.
var ErrDataUnavailable = errors.New("schedule data unavailable")

// ScheduleProvider поставляет записи графика за один календарный месяц.
type ScheduleProvider interface {
	FetchMonth(ctx context.Context, year int, month time.Month) ([]models.ShiftRecord, error)
}

// ScheduleOpts параметры источника графика.
type ScheduleOpts struct {
	// Source путь к xlsx файлу или http(s) адрес, по которому его можно скачать.
	Source          string `mapstructure:"source" validate:"required"`
	ApiToken        string `mapstructure:"api_token"`
	SheetNameLayout string `mapstructure:"sheet_name_layout"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"min=0"`
}

const (
	defaultSheetNameLayout = "2006-01"
	defaultFetchTimeout    = 30 * time.Second
)

// SheetName возвращает имя листа месяца по layout в формате time.Format.
func SheetName(layout string, year int, month time.Month) string {
	if layout == "" {
		layout = defaultSheetNameLayout
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format(layout)
}
