package services

import (
	"context"
	"sync"
	"time"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

type fetchCall struct {
	year  int
	month time.Month
}

type fakeProvider struct {
	mu      sync.Mutex
	records []models.ShiftRecord
	err     error
	calls   []fetchCall
}

func (p *fakeProvider) FetchMonth(_ context.Context, year int, month time.Month) ([]models.ShiftRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fetchCall{year: year, month: month})
	if p.err != nil {
		return nil, p.err
	}
	return append([]models.ShiftRecord{}, p.records...), nil
}

func (p *fakeProvider) set(records []models.ShiftRecord, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
	p.err = err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func octDay(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.Local)
}

func octoberRecords() []models.ShiftRecord {
	return []models.ShiftRecord{
		{Date: octDay(17), DayTechnicians: []string{"Jan Nowak"}, NightTechnicians: []string{"Piotr Zielinski"}},
		{Date: octDay(18), DayTechnicians: []string{"Anna Kowalska"}, NightTechnicians: []string{"Jan Nowak"}},
		{Date: octDay(19)},
	}
}
