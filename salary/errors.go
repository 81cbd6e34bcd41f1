/*
errors.go - Centralized error types for the calculation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Collaborator layers (API, stores) wrap these with transport context.

ERROR CATEGORIES:
  1. Input errors - Malformed times, unconfirmed cross-day, unknown duty type.
     Caught at the boundary; they never surface mid-calculation.
  2. Store errors - Missing records.
  3. Recalculation errors - Per-month failures reported as structured
     results so bulk operations can report partial success.

NOT AN ERROR:
  A layover duty with no matching leg is a valid terminal state (the outbound
  of a pair that closes next month, or vice versa). Pairing misses are plain
  "no result", never an error value.

SEE ALSO:
  - recalc.go: Collects RecalculationError per month in bulk paths
  - timeofday.go: Returns TimeFormatError at the parse boundary
*/
package salary

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTimeFormat is returned for malformed "HH:MM" input or a
	// clock value outside 00:00-23:59.
	ErrInvalidTimeFormat = errors.New("invalid time format")

	// ErrAmbiguousCrossDay is returned when debrief precedes report and the
	// caller has not confirmed the cross-day flag. Never silently resolved.
	ErrAmbiguousCrossDay = errors.New("debrief before report without confirmed cross-day flag")

	// ErrUnknownDutyType is returned when a duty carries a type outside the
	// closed set. Classification never falls through a default branch.
	ErrUnknownDutyType = errors.New("unknown duty type")

	// ErrUnknownPosition is returned for a position outside the two pay bands.
	ErrUnknownPosition = errors.New("unknown position")

	// ErrDutyNotFound is returned by stores when a duty ID does not exist.
	ErrDutyNotFound = errors.New("duty not found")

	// ErrCalculationNotFound is returned by stores for a month with no
	// stored calculation.
	ErrCalculationNotFound = errors.New("monthly calculation not found")

	// ErrProfileNotFound is returned by stores when a user has no profile.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidSector is returned when a sector string has no recognizable
	// ORIGIN-DEST shape.
	ErrInvalidSector = errors.New("invalid sector format")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeFormatError reports the offending input alongside the sentinel.
type TimeFormatError struct {
	Input string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("invalid time format %q: want HH:MM in 00:00-23:59", e.Input)
}

func (e *TimeFormatError) Unwrap() error { return ErrInvalidTimeFormat }

// SectorError reports an unparseable sector string on a duty.
type SectorError struct {
	DutyID DutyID
	Sector string
}

func (e *SectorError) Error() string {
	return fmt.Sprintf("duty %s: invalid sector %q", e.DutyID, e.Sector)
}

func (e *SectorError) Unwrap() error { return ErrInvalidSector }

// RecalculationError reports a failed month recomputation. Bulk recalculation
// collects one per failed month instead of aborting the siblings.
type RecalculationError struct {
	UserID UserID
	Month  int
	Year   int
	Err    error
}

func (e *RecalculationError) Error() string {
	return fmt.Sprintf("recalculation failed for %s %d/%d: %v", e.UserID, e.Month, e.Year, e.Err)
}

func (e *RecalculationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError reports whether the error is due to invalid caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidTimeFormat) ||
		errors.Is(err, ErrAmbiguousCrossDay) ||
		errors.Is(err, ErrUnknownDutyType) ||
		errors.Is(err, ErrUnknownPosition) ||
		errors.Is(err, ErrInvalidSector)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDutyNotFound) ||
		errors.Is(err, ErrCalculationNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}
