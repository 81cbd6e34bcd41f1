// Package store provides an in-memory salary.Store implementation for
// tests and development.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/crewpay/salary-engine/salary"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	duties   map[salary.DutyID]salary.FlightDuty
	calcs    map[calcKey]salary.MonthlyCalculation
	profiles map[salary.UserID]salary.Profile
	nextID   int
}

type calcKey struct {
	UserID salary.UserID
	Month  int
	Year   int
}

func NewMemory() *Memory {
	return &Memory{
		duties:   make(map[salary.DutyID]salary.FlightDuty),
		calcs:    make(map[calcKey]salary.MonthlyCalculation),
		profiles: make(map[salary.UserID]salary.Profile),
	}
}

var _ salary.Store = (*Memory)(nil)

// =============================================================================
// DUTY STORE
// =============================================================================

func (m *Memory) CreateDuty(_ context.Context, duty *salary.FlightDuty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(duty)
}

func (m *Memory) CreateDuties(_ context.Context, duties []*salary.FlightDuty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// All-or-nothing: check for ID collisions before writing anything.
	for _, d := range duties {
		if d.ID != "" {
			if _, exists := m.duties[d.ID]; exists {
				return fmt.Errorf("duty %s already exists", d.ID)
			}
		}
	}
	for _, d := range duties {
		if err := m.createLocked(d); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) createLocked(duty *salary.FlightDuty) error {
	if duty.ID == "" {
		m.nextID++
		duty.ID = salary.DutyID(fmt.Sprintf("duty-%04d", m.nextID))
	}
	if _, exists := m.duties[duty.ID]; exists {
		return fmt.Errorf("duty %s already exists", duty.ID)
	}
	m.duties[duty.ID] = *duty
	return nil
}

func (m *Memory) GetDuty(_ context.Context, id salary.DutyID) (salary.FlightDuty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	duty, ok := m.duties[id]
	if !ok {
		return salary.FlightDuty{}, salary.ErrDutyNotFound
	}
	return duty, nil
}

func (m *Memory) ListDuties(_ context.Context, userID salary.UserID) ([]salary.FlightDuty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []salary.FlightDuty
	for _, d := range m.duties {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	sortDuties(result)
	return result, nil
}

func (m *Memory) ListMonthDuties(_ context.Context, userID salary.UserID, month, year int) ([]salary.FlightDuty, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []salary.FlightDuty
	for _, d := range m.duties {
		if d.UserID == userID && d.Month == month && d.Year == year {
			result = append(result, d)
		}
	}
	sortDuties(result)
	return result, nil
}

func (m *Memory) UpdateDutyTimes(_ context.Context, id salary.DutyID, update salary.DutyTimesUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	duty, ok := m.duties[id]
	if !ok {
		return salary.ErrDutyNotFound
	}
	duty.ReportTime = update.ReportTime
	duty.DebriefTime = update.DebriefTime
	duty.IsCrossDay = update.IsCrossDay
	duty.DutyHours = update.DutyHours
	duty.FlightPay = update.FlightPay
	duty.DataSource = salary.SourceEdited
	m.duties[id] = duty
	return nil
}

func (m *Memory) DeleteDuty(_ context.Context, id salary.DutyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.duties[id]; !ok {
		return salary.ErrDutyNotFound
	}
	delete(m.duties, id)
	return nil
}

func (m *Memory) DeleteDuties(_ context.Context, ids []salary.DutyID) ([]salary.FlightDuty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Atomic: verify all exist before removing any.
	removed := make([]salary.FlightDuty, 0, len(ids))
	for _, id := range ids {
		duty, ok := m.duties[id]
		if !ok {
			return nil, salary.ErrDutyNotFound
		}
		removed = append(removed, duty)
	}
	for _, id := range ids {
		delete(m.duties, id)
	}
	return removed, nil
}

// =============================================================================
// CALCULATION STORE
// =============================================================================

func (m *Memory) SaveCalculation(_ context.Context, calc salary.MonthlyCalculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calcs[calcKey{calc.UserID, calc.Month, calc.Year}] = calc
	return nil
}

func (m *Memory) GetCalculation(_ context.Context, userID salary.UserID, month, year int) (salary.MonthlyCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calc, ok := m.calcs[calcKey{userID, month, year}]
	if !ok {
		return salary.MonthlyCalculation{}, salary.ErrCalculationNotFound
	}
	return calc, nil
}

func (m *Memory) ListCalculations(_ context.Context, userID salary.UserID) ([]salary.MonthlyCalculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []salary.MonthlyCalculation
	for k, c := range m.calcs {
		if k.UserID == userID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

func (m *Memory) DeleteCalculation(_ context.Context, userID salary.UserID, month, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.calcs, calcKey{userID, month, year})
	return nil
}

// =============================================================================
// PROFILE STORE
// =============================================================================

func (m *Memory) GetProfile(_ context.Context, userID salary.UserID) (salary.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return salary.Profile{}, salary.ErrProfileNotFound
	}
	return p, nil
}

func (m *Memory) SaveProfile(_ context.Context, profile salary.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func sortDuties(duties []salary.FlightDuty) {
	sort.Slice(duties, func(i, j int) bool {
		if !duties[i].Date.Equal(duties[j].Date) {
			return duties[i].Date.Before(duties[j].Date)
		}
		return duties[i].ID < duties[j].ID
	})
}
