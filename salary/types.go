/*
Package salary provides the duty time & pay calculation engine for airline
cabin crew.

PURPOSE:
  This package contains the domain types and algorithms that turn raw duty
  records (flights, standbys, layovers, training, leave) into duty-hour
  durations, layover rest periods, per-diem pay, and a single monthly salary
  calculation that stays consistent under arbitrary edits and deletions.

KEY CONCEPTS IN THIS FILE (types.go):
  - FlightDuty: One duty record as reported by the crew member
  - DutyType: Closed set of duty categories (turnaround, layover, asby, ...)
  - LayoverRestPeriod: Derived rest/per-diem result for a matched pair
  - MonthlyCalculation: Fully derived monthly salary record
  - Position: Crew rank (CCM or SCCM), selects the pay band

DESIGN PRINCIPLES:
  1. Derivation over mutation: MonthlyCalculation is recomputed wholesale
     from the duty rows on file, never incrementally patched
  2. Precision: Uses decimal.Decimal for hours and money to avoid
     floating-point errors
  3. Explicitness: Cross-day is a confirmed flag on the record, never
     inferred inside the arithmetic
  4. Purity: Nothing in this package performs I/O; stores are interfaces

USAGE:
  cfg := salary.DefaultConfig()
  calc, layovers, warns, err := salary.CalculateMonth(duties, salary.PositionCCM, 3, 2026, cfg)

SEE ALSO:
  - timeofday.go: TimeOfDay value type and duration arithmetic
  - classify.go: Duty type policies
  - pairing.go: Layover pairing algorithm
  - aggregate.go: Monthly aggregation
  - recalc.go: Recalculation protocol over the store interfaces
*/
package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type DutyID string
type UserID string

// =============================================================================
// POSITION - Crew rank, selects the pay band
// =============================================================================

type Position string

const (
	PositionCCM  Position = "CCM"  // Cabin Crew Member
	PositionSCCM Position = "SCCM" // Senior Cabin Crew Member
)

// Valid reports whether p is one of the two known positions.
func (p Position) Valid() bool {
	return p == PositionCCM || p == PositionSCCM
}

// =============================================================================
// DUTY TYPE - Closed set of duty categories
// =============================================================================

type DutyType string

const (
	DutyTurnaround        DutyType = "turnaround"
	DutyLayover           DutyType = "layover"
	DutyASBY              DutyType = "asby" // airport standby, fixed 4h paid
	DutySBY               DutyType = "sby"  // home standby, unpaid
	DutyRecurrent         DutyType = "recurrent"
	DutyBusinessPromotion DutyType = "business_promotion"
	DutyOff               DutyType = "off"
	DutyRest              DutyType = "rest"
	DutyAnnualLeave       DutyType = "annual_leave"
)

// =============================================================================
// DATA SOURCE - How a duty record entered the system
// =============================================================================

type DataSource string

const (
	SourceCSV    DataSource = "csv"
	SourceManual DataSource = "manual"
	SourceEdited DataSource = "edited"
)

// =============================================================================
// FLIGHT DUTY - One duty record
// =============================================================================

// FlightDuty is one scheduled work period for a crew member. Identity fields
// (ID, UserID, DutyType, Sectors) are never touched by recalculation; only the
// derived numeric fields (DutyHours, FlightPay) are rewritten.
type FlightDuty struct {
	ID            DutyID
	UserID        UserID
	Date          time.Time // calendar day the duty starts (UTC midnight)
	DutyType      DutyType
	FlightNumbers []string
	Sectors       []string // ordered "ORIGIN-DEST" strings
	ReportTime    TimeOfDay
	DebriefTime   TimeOfDay
	IsCrossDay    bool // debrief falls on the day after report; always explicit
	DutyHours     decimal.Decimal
	FlightPay     decimal.Decimal
	DataSource    DataSource
	Month         int // 1-12
	Year          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Day returns the duty's start date truncated to UTC midnight.
// Dates are compared at day granularity throughout the engine.
func (d FlightDuty) Day() time.Time {
	return time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// LAYOVER REST PERIOD - Derived result for a matched outbound/inbound pair
// =============================================================================

// LayoverRestPeriod is attached to a layover pair. It is recomputed on every
// calculation and never independently edited or persisted by the engine.
type LayoverRestPeriod struct {
	OutboundID  DutyID
	InboundID   DutyID
	Destination string
	RestHours   decimal.Decimal
	PerDiemPay  decimal.Decimal
}

// =============================================================================
// MONTHLY CALCULATION - Fully derived salary record
// =============================================================================

// MonthlyCalculation is one record per (user, month, year). It is overwritten,
// not merged, on every recalculation.
type MonthlyCalculation struct {
	UserID UserID
	Month  int
	Year   int

	// Fixed components, flat per month regardless of duty count.
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	TotalFixed         decimal.Decimal

	// Variable components, derived from the duty rows.
	FlightPay     decimal.Decimal
	PerDiemPay    decimal.Decimal
	ASBYPay       decimal.Decimal
	TotalVariable decimal.Decimal

	TotalDutyHours decimal.Decimal
	TotalRestHours decimal.Decimal
	ASBYCount      int

	TotalSalary decimal.Decimal
	UpdatedAt   time.Time
}

// =============================================================================
// PROFILE - Position lookup for a crew member
// =============================================================================

type Profile struct {
	UserID    UserID
	Email     string
	Airline   string
	Position  Position
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// WARNINGS - Non-fatal findings surfaced alongside results
// =============================================================================

type WarningCode string

const (
	// WarnPairingAmbiguous: multiple equally-near candidates matched and a
	// deterministic tie-break had to pick one.
	WarnPairingAmbiguous WarningCode = "pairing_ambiguous"

	// WarnRestOutOfBounds: a derived rest period fell outside the sane band,
	// signaling a probable pairing error rather than an arithmetic one.
	WarnRestOutOfBounds WarningCode = "rest_out_of_bounds"

	// WarnSectorMissingBase: a layover's sectors touch the base airport at
	// neither end, usually a mispunched roster row. The leg still surfaces
	// (classified outbound) but will likely stand unpaired.
	WarnSectorMissingBase WarningCode = "sector_missing_base"
)

// Warning is a non-fatal finding. Warnings are data: the engine returns them
// and callers decide whether to log or display them.
type Warning struct {
	Code    WarningCode
	DutyID  DutyID
	Message string
}

func (w Warning) String() string { return string(w.Code) + ": " + w.Message }

// =============================================================================
// MONTH REFERENCE - (month, year) key for recalculation scopes
// =============================================================================

type MonthRef struct {
	Month int
	Year  int
}

// MonthOf returns the MonthRef a duty belongs to.
func MonthOf(d FlightDuty) MonthRef { return MonthRef{Month: d.Month, Year: d.Year} }

// DistinctMonths collects the distinct (month, year) pairs spanned by duties,
// in first-seen order. Used by bulk delete/insert recalculation scoping.
func DistinctMonths(duties []FlightDuty) []MonthRef {
	seen := make(map[MonthRef]bool, len(duties))
	var refs []MonthRef
	for _, d := range duties {
		ref := MonthOf(d)
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}
