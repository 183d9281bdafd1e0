package services

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func octoberView(t *testing.T) DashboardView {
	t.Helper()
	now := time.Date(2026, time.October, 18, 10, 0, 0, 0, time.Local)
	d, err := NewDashboardService(&fakeProvider{records: octoberRecords()}, nil, WithClock(fixedClock(now)))
	require.NoError(t, err)
	require.NoError(t, d.Refresh(context.Background()))
	return d.View(now)
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	svc, err := NewReportService(ReportOpts{SaveDir: dir}, nil)
	require.NoError(t, err)

	path, err := svc.SaveReport(octoberView(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shifts_2026-10.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{scheduleSheet, workloadSheet, statisticsSheet}, f.GetSheetList())

	schedule, err := f.GetRows(scheduleSheet)
	require.NoError(t, err)
	require.Len(t, schedule, 4)
	assert.Equal(t, []string{"Date", "Day", "First shift", "Night", "Vacation", "L4", "Total working"}, schedule[0])
	assert.Equal(t, "17.10.2026", schedule[1][0])
	assert.Equal(t, "Jan Nowak", schedule[1][1])
	assert.Equal(t, "Piotr Zielinski", schedule[1][3])
	assert.Equal(t, "2", schedule[1][6])

	workload, err := f.GetRows(workloadSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Technician", "Shifts"},
		{"Jan Nowak", "2"},
		{"Piotr Zielinski", "1"},
		{"Anna Kowalska", "1"},
	}, workload)

	stats, err := f.GetRows(statisticsSheet)
	require.NoError(t, err)
	require.Len(t, stats, 5)
	assert.Equal(t, []string{"Total days", "3"}, stats[1])
	assert.Equal(t, []string{"Working days", "2"}, stats[2])
}

func TestWriteReportEmptyMonth(t *testing.T) {
	svc, err := NewReportService(ReportOpts{SaveDir: t.TempDir()}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteReport(&buf, DashboardView{Year: 2026, Month: 10}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(workloadSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Technician", "Shifts"}}, rows)
}

func TestNewReportServiceRequiresDir(t *testing.T) {
	_, err := NewReportService(ReportOpts{}, nil)
	assert.Error(t, err)
}
