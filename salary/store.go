/*
store.go - Persistence interfaces between the engine and the record store

PURPOSE:
  The engine is pure computation; every read and write crosses these
  interfaces. Implementations decide the technology (SQLite in production,
  in-memory for tests) and the concurrency discipline - the engine assumes
  last-write-wins at the storage boundary and provides no locking of its own.

CONTRACTS:
  DutyStore:        FlightDuty rows. Identity fields are immutable after
                    insert; UpdateDutyTimes rewrites only the time-derived
                    fields, atomically per record.
  CalculationStore: One MonthlyCalculation per (user, month, year).
                    SaveCalculation REPLACES the stored row wholesale;
                    DeleteCalculation removes a month that no longer has
                    duties.
  ProfileStore:     Position lookup (selects the pay band).

IMPLEMENTATIONS:
  - store/sqlite: Production store
  - salary/store (memory): Tests and dev

SEE ALSO:
  - recalc.go: The only engine code that touches these interfaces
*/
package salary

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DUTY STORE
// =============================================================================

// DutyTimesUpdate is the atomic per-record rewrite performed by the edit
// operation: times, cross-day flag, and the derived numeric fields together.
type DutyTimesUpdate struct {
	ReportTime  TimeOfDay
	DebriefTime TimeOfDay
	IsCrossDay  bool
	DutyHours   decimal.Decimal
	FlightPay   decimal.Decimal
}

// DutyStore persists FlightDuty records.
type DutyStore interface {
	// CreateDuty inserts one record, assigning an ID if empty.
	CreateDuty(ctx context.Context, duty *FlightDuty) error

	// CreateDuties inserts a batch atomically (all or none).
	CreateDuties(ctx context.Context, duties []*FlightDuty) error

	// GetDuty returns one record or ErrDutyNotFound.
	GetDuty(ctx context.Context, id DutyID) (FlightDuty, error)

	// ListDuties returns the user's full current duty list, all months.
	// Recalculation reads through this so results always reflect the
	// post-mutation truth.
	ListDuties(ctx context.Context, userID UserID) ([]FlightDuty, error)

	// ListMonthDuties returns the user's duties for one (month, year).
	ListMonthDuties(ctx context.Context, userID UserID, month, year int) ([]FlightDuty, error)

	// UpdateDutyTimes rewrites the time-derived fields of one record
	// atomically and marks it edited. Identity fields are untouched.
	UpdateDutyTimes(ctx context.Context, id DutyID, update DutyTimesUpdate) error

	// DeleteDuty removes one record. ErrDutyNotFound if absent.
	DeleteDuty(ctx context.Context, id DutyID) error

	// DeleteDuties removes a batch atomically, returning the removed
	// records (callers need their month/year fields, captured before
	// deletion, to scope recalculation).
	DeleteDuties(ctx context.Context, ids []DutyID) ([]FlightDuty, error)
}

// =============================================================================
// CALCULATION STORE
// =============================================================================

// CalculationStore persists derived MonthlyCalculation rows.
type CalculationStore interface {
	// SaveCalculation replaces the stored calculation for the row's
	// (user, month, year) wholesale.
	SaveCalculation(ctx context.Context, calc MonthlyCalculation) error

	// GetCalculation returns the stored calculation or ErrCalculationNotFound.
	GetCalculation(ctx context.Context, userID UserID, month, year int) (MonthlyCalculation, error)

	// ListCalculations returns all stored calculations for a user, newest
	// month first.
	ListCalculations(ctx context.Context, userID UserID) ([]MonthlyCalculation, error)

	// DeleteCalculation removes a month's calculation. Deleting an absent
	// row is not an error (the month may never have been calculated).
	DeleteCalculation(ctx context.Context, userID UserID, month, year int) error
}

// =============================================================================
// PROFILE STORE
// =============================================================================

// ProfileStore persists crew member profiles.
type ProfileStore interface {
	// GetProfile returns the user's profile or ErrProfileNotFound.
	GetProfile(ctx context.Context, userID UserID) (Profile, error)

	// SaveProfile inserts or updates a profile.
	SaveProfile(ctx context.Context, profile Profile) error
}

// Store combines all persistence capabilities the engine needs.
type Store interface {
	DutyStore
	CalculationStore
	ProfileStore
}
