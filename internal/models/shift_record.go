package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DateLayout формат даты смены в API, в хранилище и в отчётах.
const DateLayout = "2006-01-02"

// ShiftRecord представляет график персонала на один календарный день.
type ShiftRecord struct {
	ID  uint   `gorm:"column:id;primaryKey" json:"-"`
	Day string `gorm:"column:day;uniqueIndex;not null" json:"-"`

	Date                  time.Time `gorm:"-" json:"date"`
	DayTechnicians        []string  `gorm:"column:day_technicians;serializer:json" json:"day_technicians"`
	FirstShiftTechnicians []string  `gorm:"column:first_shift_technicians;serializer:json" json:"first_shift_technicians"`
	NightTechnicians      []string  `gorm:"column:night_technicians;serializer:json" json:"night_technicians"`
	VacationTechnicians   []string  `gorm:"column:vacation_technicians;serializer:json" json:"vacation_technicians"`
	L4Technicians         []string  `gorm:"column:l4_technicians;serializer:json" json:"l4_technicians"`
}

func (ShiftRecord) TableName() string {
	return "shift_records"
}

// TotalWorking количество техников во всех рабочих списках дня.
func (r ShiftRecord) TotalWorking() int {
	return len(r.DayTechnicians) + len(r.FirstShiftTechnicians) + len(r.NightTechnicians)
}

// WorkingLists возвращает рабочие списки в порядке: день, первая смена, ночь.
func (r ShiftRecord) WorkingLists() [][]string {
	return [][]string{r.DayTechnicians, r.FirstShiftTechnicians, r.NightTechnicians}
}

// LeaveLists возвращает списки отсутствующих: отпуск, больничный (L4).
func (r ShiftRecord) LeaveLists() [][]string {
	return [][]string{r.VacationTechnicians, r.L4Technicians}
}

// BeforeSave переносит календарную дату в строковую колонку day.
func (r *ShiftRecord) BeforeSave(*gorm.DB) error {
	if r.Date.IsZero() {
		return fmt.Errorf("shift record date is required")
	}
	r.Day = r.Date.Format(DateLayout)
	return nil
}

// AfterFind восстанавливает дату из колонки day в локальной зоне.
func (r *ShiftRecord) AfterFind(*gorm.DB) error {
	d, err := time.ParseInLocation(DateLayout, r.Day, time.Local)
	if err != nil {
		return fmt.Errorf("parse stored day %q: %w", r.Day, err)
	}
	r.Date = d
	return nil
}

func (r ShiftRecord) MarshalJSON() ([]byte, error) {
	type alias ShiftRecord
	return json.Marshal(struct {
		alias
		Date         string `json:"date"`
		TotalWorking int    `json:"total_working"`
	}{
		alias:        alias(r),
		Date:         r.Date.Format(DateLayout),
		TotalWorking: r.TotalWorking(),
	})
}

func (r *ShiftRecord) UnmarshalJSON(data []byte) error {
	type alias ShiftRecord
	aux := struct {
		*alias
		Date         string `json:"date"`
		TotalWorking int    `json:"total_working"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Date == "" {
		r.Date = time.Time{}
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, aux.Date, time.Local)
	if err != nil {
		return fmt.Errorf("parse shift record date %q: %w", aux.Date, err)
	}
	r.Date = d
	return nil
}
