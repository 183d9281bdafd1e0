package shifts

import "time"

// Period половина суток графика.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodNight Period = "night"
)

// Границы дневной смены: [07:00, 19:00).
const (
	DayStartHour = 7
	DayEndHour   = 19
)

// ActivePeriod определяет текущую половину суток по часу now.
func ActivePeriod(now time.Time) Period {
	h := now.Hour()
	if h >= DayStartHour && h < DayEndHour {
		return PeriodDay
	}
	return PeriodNight
}

// Other возвращает противоположную половину суток.
func (p Period) Other() Period {
	if p == PeriodDay {
		return PeriodNight
	}
	return PeriodDay
}
