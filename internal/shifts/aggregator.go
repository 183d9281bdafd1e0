// Package shifts считает производные данные графика за месяц:
// текущую и следующую смену, нагрузку по техникам и статистику.
// Все функции чистые и не возвращают ошибок.
package shifts

import (
	"math"
	"time"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// FindRecord ищет запись за календарный день day. Сравниваются только год, месяц и день.
func FindRecord(records []models.ShiftRecord, day time.Time) (models.ShiftRecord, bool) {
	y, m, d := day.Date()
	for _, r := range records {
		ry, rm, rd := r.Date.Date()
		if ry == y && rm == m && rd == d {
			return r, true
		}
	}
	return models.ShiftRecord{}, false
}

// CurrentShift возвращает техников активной половины суток за сегодня.
func CurrentShift(records []models.ShiftRecord, now time.Time) []string {
	return shiftFor(records, now, ActivePeriod(now))
}

// NextShift возвращает техников другой половины тех же суток.
// Запись за завтра не используется.
func NextShift(records []models.ShiftRecord, now time.Time) []string {
	return shiftFor(records, now, ActivePeriod(now).Other())
}

func shiftFor(records []models.ShiftRecord, now time.Time, p Period) []string {
	rec, ok := FindRecord(records, now)
	if !ok {
		return []string{}
	}

	var names []string
	if p == PeriodDay {
		names = rec.DayTechnicians
	} else {
		names = rec.NightTechnicians
	}
	return append([]string{}, names...)
}

// Workload считает для каждого техника число дней, в которые он есть хотя бы
// в одном рабочем списке. Порядок результата: порядок первого появления.
func Workload(records []models.ShiftRecord) []models.WorkloadSummary {
	index := make(map[string]int)
	result := []models.WorkloadSummary{}

	for _, rec := range records {
		seen := make(map[string]bool)
		for _, list := range rec.WorkingLists() {
			for _, name := range list {
				if seen[name] {
					continue
				}
				seen[name] = true

				i, ok := index[name]
				if !ok {
					i = len(result)
					index[name] = i
					result = append(result, models.WorkloadSummary{Name: name})
				}
				result[i].TotalShifts++
			}
		}
	}

	return result
}

// MonthlyStatistics считает сводку по месяцу. Пустой вход даёт нулевую статистику.
func MonthlyStatistics(records []models.ShiftRecord) models.MonthlyStatistics {
	stats := models.MonthlyStatistics{
		TotalDays:      len(records),
		AllTechnicians: []string{},
	}

	seen := make(map[string]bool)
	totalWorking := 0
	for _, rec := range records {
		n := rec.TotalWorking()
		totalWorking += n
		if n > 0 {
			stats.TotalWorkingDays++
		}
		for _, list := range rec.WorkingLists() {
			for _, name := range list {
				if !seen[name] {
					seen[name] = true
					stats.AllTechnicians = append(stats.AllTechnicians, name)
				}
			}
		}
	}

	if len(records) > 0 {
		avg := float64(totalWorking) / float64(len(records))
		stats.AvgWorkersPerDay = math.Round(avg*10) / 10
	}

	return stats
}
