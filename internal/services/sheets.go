package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// SheetsScheduleService читает график из xlsx книги: один лист на месяц,
// первая строка листа содержит заголовки колонок.
type SheetsScheduleService struct {
	opts   ScheduleOpts
	logger *slog.Logger
	client *http.Client
}

// NewSheetsScheduleService создаёт поставщика графика из таблицы.
func NewSheetsScheduleService(opts ScheduleOpts, logger *slog.Logger) *SheetsScheduleService {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := defaultFetchTimeout
	if opts.TimeoutSeconds > 0 {
		timeout = time.Duration(opts.TimeoutSeconds) * time.Second
	}

	return &SheetsScheduleService{
		opts:   opts,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchMonth загружает книгу и разбирает лист указанного месяца.
func (s *SheetsScheduleService) FetchMonth(ctx context.Context, year int, month time.Month) ([]models.ShiftRecord, error) {
	data, err := s.loadWorkbook(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("load workbook: %w", ctx.Err())
		}
		s.logger.Error("Failed to load schedule workbook", "source", s.opts.Source, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrDataUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	sheet := SheetName(s.opts.SheetNameLayout, year, month)
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		s.logger.Warn("Month sheet not found", "sheet", sheet, "source", s.opts.Source)
		return nil, fmt.Errorf("%w: sheet %q not found", ErrDataUnavailable, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrDataUnavailable, sheet, err)
	}

	records, err := parseScheduleRows(rows, year, month, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %w", ErrDataUnavailable, sheet, err)
	}

	s.logger.Info("Schedule month loaded", "sheet", sheet, "records", len(records))
	return records, nil
}

// loadWorkbook читает книгу с диска или скачивает её по http(s).
func (s *SheetsScheduleService) loadWorkbook(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.opts.Source, "http://") && !strings.HasPrefix(s.opts.Source, "https://") {
		data, err := os.ReadFile(s.opts.Source)
		if err != nil {
			return nil, fmt.Errorf("read workbook file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.opts.ApiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.ApiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("schedule API %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

type scheduleColumn int

const (
	colDate scheduleColumn = iota
	colDay
	colFirstShift
	colNight
	colVacation
	colL4
	columnCount
)

// headerAliases допустимые заголовки колонок после normalizeHeader.
var headerAliases = map[string]scheduleColumn{
	"date":         colDate,
	"data":         colDate,
	"дата":         colDate,
	"day":          colDay,
	"dzień":        colDay,
	"dzien":        colDay,
	"день":         colDay,
	"first shift":  colFirstShift,
	"first_shift":  colFirstShift,
	"i zmiana":     colFirstShift,
	"1 zmiana":     colFirstShift,
	"первая смена": colFirstShift,
	"night":        colNight,
	"noc":          colNight,
	"ночь":         colNight,
	"vacation":     colVacation,
	"urlop":        colVacation,
	"отпуск":       colVacation,
	"l4":           colL4,
	"sick":         colL4,
	"sick leave":   colL4,
	"больничный":   colL4,
}

// parseScheduleRows превращает строки листа в записи месяца, отсортированные по дате.
// Строки без даты, с нераспознанной датой или вне месяца пропускаются.
func parseScheduleRows(rows [][]string, year int, month time.Month, logger *slog.Logger) ([]models.ShiftRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	columns := make([]int, columnCount)
	for i := range columns {
		columns[i] = -1
	}
	for i, header := range rows[0] {
		if col, ok := headerAliases[normalizeHeader(header)]; ok && columns[col] < 0 {
			columns[col] = i
		}
	}
	if columns[colDate] < 0 {
		return nil, fmt.Errorf("date column not found")
	}

	seen := make(map[string]bool)
	records := []models.ShiftRecord{}
	for i, row := range rows[1:] {
		raw := cellValue(row, columns[colDate])
		if raw == "" {
			continue
		}

		date, ok := parseScheduleDate(raw)
		if !ok {
			logger.Warn("Skipping row with unparsable date", "row", i+2, "value", raw)
			continue
		}
		if date.Year() != year || date.Month() != month {
			logger.Debug("Skipping row outside requested month", "row", i+2, "date", date.Format(models.DateLayout))
			continue
		}

		key := date.Format(models.DateLayout)
		if seen[key] {
			logger.Warn("Skipping duplicate date", "row", i+2, "date", key)
			continue
		}
		seen[key] = true

		records = append(records, models.ShiftRecord{
			Date:                  date,
			DayTechnicians:        splitNames(cellValue(row, columns[colDay])),
			FirstShiftTechnicians: splitNames(cellValue(row, columns[colFirstShift])),
			NightTechnicians:      splitNames(cellValue(row, columns[colNight])),
			VacationTechnicians:   splitNames(cellValue(row, columns[colVacation])),
			L4Technicians:         splitNames(cellValue(row, columns[colL4])),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.Join(strings.Fields(header), " "))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// splitNames делит ячейку с фамилиями по запятым, точкам с запятой и переводам строк.
func splitNames(cell string) []string {
	names := []string{}
	for _, part := range strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	}) {
		if name := strings.Join(strings.Fields(part), " "); name != "" {
			names = append(names, name)
		}
	}
	return names
}

var scheduleDateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-06",
}

// parseScheduleDate разбирает дату ячейки: excel serial или один из текстовых форматов.
// Результат: полночь в локальной зоне.
func parseScheduleDate(value string) (time.Time, bool) {
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < 1 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
	}

	for _, layout := range scheduleDateFormats {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
