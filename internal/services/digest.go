package services

import (
	"fmt"
	"strings"
)

// FormatDigest текстовая сводка по сменам для telegram.
func FormatDigest(view DashboardView) string {
	if !view.Available {
		return fmt.Sprintf("Schedule for %s is unavailable: %s", view.Date, view.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Shifts for %s (%s)\n", view.Date, view.Period)
	fmt.Fprintf(&b, "Current shift: %s\n", joinNames(view.CurrentShift))
	fmt.Fprintf(&b, "Next shift: %s\n", joinNames(view.NextShift))
	fmt.Fprintf(&b, "Month: %d working days of %d, %.1f workers per day",
		view.Statistics.TotalWorkingDays,
		view.Statistics.TotalDays,
		view.Statistics.AvgWorkersPerDay)
	return b.String()
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "nobody scheduled"
	}
	return strings.Join(names, ", ")
}
