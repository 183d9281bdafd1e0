package services

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

const (
	scheduleSheet   = "Schedule"
	workloadSheet   = "Workload"
	statisticsSheet = "Statistics"
)

// ReportOpts параметры excel отчёта.
type ReportOpts struct {
	SaveDir string `mapstructure:"save_dir" validate:"required"`
}

// ReportService строит excel отчёт по месяцу графика.
type ReportService struct {
	opts   ReportOpts
	logger *slog.Logger
}

// NewReportService создаёт сервис отчётов.
func NewReportService(opts ReportOpts, logger *slog.Logger) (*ReportService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SaveDir == "" {
		return nil, fmt.Errorf("report save dir is required")
	}
	return &ReportService{opts: opts, logger: logger}, nil
}

// ReportFileName имя файла отчёта за месяц панели.
func ReportFileName(view DashboardView) string {
	return fmt.Sprintf("shifts_%04d-%02d.xlsx", view.Year, view.Month)
}

// SaveReport сохраняет отчёт в SaveDir и возвращает путь к файлу.
func (s *ReportService) SaveReport(view DashboardView) (string, error) {
	f, err := s.BuildWorkbook(view)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := os.MkdirAll(s.opts.SaveDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(s.opts.SaveDir, ReportFileName(view))
	s.logger.Info("Saving Excel file", "path", path)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

// WriteReport пишет отчёт в w.
func (s *ReportService) WriteReport(w io.Writer, view DashboardView) error {
	f, err := s.BuildWorkbook(view)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// BuildWorkbook создаёт книгу с листами графика, нагрузки и статистики.
func (s *ReportService) BuildWorkbook(view DashboardView) (*excelize.File, error) {
	f := excelize.NewFile()

	// Дефолтный лист переименовываем в лист графика
	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	if err := writeSheet(f, scheduleSheet, 22,
		[]string{"Date", "Day", "First shift", "Night", "Vacation", "L4", "Total working"},
		scheduleRows(view.Records)); err != nil {
		_ = f.Close()
		return nil, err
	}

	workloadIndex, err := f.NewSheet(workloadSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create sheet %q: %w", workloadSheet, err)
	}
	workload := make([][]any, 0, len(view.Workload))
	for _, w := range view.Workload {
		workload = append(workload, []any{w.Name, w.TotalShifts})
	}
	if err := writeSheet(f, workloadSheet, 25, []string{"Technician", "Shifts"}, workload); err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(statisticsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create sheet %q: %w", statisticsSheet, err)
	}
	st := view.Statistics
	stats := [][]any{
		{"Total days", st.TotalDays},
		{"Working days", st.TotalWorkingDays},
		{"Technicians", len(st.AllTechnicians)},
		{"Average workers per day", st.AvgWorkersPerDay},
	}
	if err := writeSheet(f, statisticsSheet, 25, []string{"Metric", "Value"}, stats); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(workloadIndex)

	s.logger.Debug("Report workbook built",
		"records", len(view.Records),
		"technicians", len(view.Workload))
	return f, nil
}

func scheduleRows(records []models.ShiftRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.Date.Format("02.01.2006"),
			strings.Join(r.DayTechnicians, ", "),
			strings.Join(r.FirstShiftTechnicians, ", "),
			strings.Join(r.NightTechnicians, ", "),
			strings.Join(r.VacationTechnicians, ", "),
			strings.Join(r.L4Technicians, ", "),
			r.TotalWorking(),
		})
	}
	return rows
}

// writeSheet заполняет лист заголовками и строками и выставляет ширину колонок.
func writeSheet(f *excelize.File, sheet string, width float64, headers []string, rows [][]any) error {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
	}

	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("set row %s!%s: %w", sheet, cell, err)
		}
	}

	first, _ := excelize.ColumnNumberToName(1)
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, first, last, width); err != nil {
		return fmt.Errorf("set column width on %s: %w", sheet, err)
	}
	return nil
}
