package models

// WorkloadSummary количество смен техника за месяц.
type WorkloadSummary struct {
	Name        string `json:"name"`
	TotalShifts int    `json:"total_shifts"`
}

// MonthlyStatistics сводка по месяцу графика.
type MonthlyStatistics struct {
	TotalDays        int      `json:"total_days"`
	TotalWorkingDays int      `json:"total_working_days"`
	AllTechnicians   []string `json:"all_technicians"`
	AvgWorkersPerDay float64  `json:"avg_workers_per_day"`
}

// Conflict техник одновременно в рабочем списке и в отпуске/на больничном.
type Conflict struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Working string `json:"working"`
	Leave   string `json:"leave"`
}
