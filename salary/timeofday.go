package salary

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME OF DAY - Wall-clock value type (this engine never works with full
// timestamps; duties carry a calendar day plus report/debrief clock times)
// =============================================================================

const minutesPerDay = 1440

// TimeOfDay is an immutable wall-clock time. The zero value is midnight.
// Always construct from ParseTimeOfDay or NewTimeOfDay so the invariant
// TotalMinutes() ∈ [0, 1439] holds.
type TimeOfDay struct {
	hour   int
	minute int
}

// NewTimeOfDay constructs a TimeOfDay from validated components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, &TimeFormatError{Input: fmt.Sprintf("%d:%d", hour, minute)}
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// ParseTimeOfDay parses "H:MM" or "HH:MM" in 24-hour form.
// Returns a TimeFormatError (wrapping ErrInvalidTimeFormat) on malformed or
// out-of-range input. Parsing happens at the input boundary; values inside
// the engine are always already valid.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	s := strings.TrimSpace(text)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return TimeOfDay{}, &TimeFormatError{Input: text}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, &TimeFormatError{Input: text}
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, &TimeFormatError{Input: text}
	}
	return NewTimeOfDay(hour, minute)
}

// MustTimeOfDay parses or panics. For constants and tests only.
func MustTimeOfDay(text string) TimeOfDay {
	t, err := ParseTimeOfDay(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Hour() int          { return t.hour }
func (t TimeOfDay) Minute() int        { return t.minute }
func (t TimeOfDay) TotalMinutes() int  { return t.hour*60 + t.minute }
func (t TimeOfDay) String() string     { return fmt.Sprintf("%02d:%02d", t.hour, t.minute) }
func (t TimeOfDay) Equal(o TimeOfDay) bool { return t.hour == o.hour && t.minute == o.minute }
func (t TimeOfDay) Before(o TimeOfDay) bool { return t.TotalMinutes() < o.TotalMinutes() }

// =============================================================================
// DURATION ARITHMETIC
// =============================================================================

// DurationMinutes is the single formula used everywhere a duty length is
// derived. Cross-day is never inferred here; the caller supplies the
// confirmed flag. Without the flag the result may be negative and it is the
// caller's responsibility to reject it (see ErrAmbiguousCrossDay).
func DurationMinutes(report, debrief TimeOfDay, isCrossDay bool) int {
	minutes := debrief.TotalMinutes() - report.TotalMinutes()
	if isCrossDay {
		minutes += minutesPerDay
	}
	return minutes
}

// DetectCrossDay is the advisory heuristic used by validation layers:
// a debrief clock-earlier than report suggests the duty crossed midnight.
// It cannot distinguish "debrief earlier same day (invalid)" from "debrief
// next day (valid)", so pay is never computed from it — an explicit confirmed
// flag is always required.
func DetectCrossDay(report, debrief TimeOfDay) bool {
	return debrief.TotalMinutes() < report.TotalMinutes()
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// DaysBetween returns whole calendar days from one UTC-midnight date to
// another.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// DutyDate builds the UTC-midnight date a duty starts on.
func DutyDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
