/*
classify.go - Duty type policies

PURPOSE:
  Maps each duty type to its pay/duration policy. This is the single source
  of truth for questions like "does ASBY count toward total duty hours?" —
  every call site reads the policy record instead of re-deriving the rule.

THE POLICY TABLE:
  type        payable  fixedHours  sectors  pairs  countsHours
  turnaround  yes      no          yes      no     yes
  layover     yes      no          yes      yes    yes
  asby        yes      4.0h        no       no     no
  sby         no       no          no       no     no
  recurrent   no       no          no       no     no
  business_p. no       no          no       no     no
  off/rest/AL no       no          no       no     no

NOTES:
  - The monthly hours total sums the payable clock types only. ASBY is paid
    a fixed 4.0 hours regardless of report/debrief times but contributes no
    hours; SBY (home standby) carries real report/debrief times whose hours
    derive onto the record, but it is neither paid nor counted.
  - off/rest/annual_leave carry no times at all and are excluded entirely.

SEE ALSO:
  - pay.go: Uses Payable/FixedHours to compute per-duty pay
  - pairing.go: Uses PairsAsLayover to restrict the candidate scan
  - aggregate.go: Uses CountsDutyHours for the monthly hours total
*/
package salary

// DutyPolicy describes how a duty type participates in duration and pay.
type DutyPolicy struct {
	// Payable: the duty can produce non-zero flight pay.
	Payable bool
	// FixedHours: pay hours are a fixed constant (ASBY), ignoring the clock.
	FixedHours bool
	// RequiresSectors: the record must carry at least one ORIGIN-DEST sector.
	RequiresSectors bool
	// PairsAsLayover: the duty participates in layover pairing.
	PairsAsLayover bool
	// CountsDutyHours: the duty's hours contribute to totalDutyHours
	// (payable clock types only).
	CountsDutyHours bool
	// HasTimes: the record carries report/debrief times at all.
	HasTimes bool
}

// PolicyFor returns the policy for a duty type. The switch is exhaustive
// over the closed set; an unknown tag is an error, never a silent default.
func PolicyFor(dt DutyType) (DutyPolicy, error) {
	switch dt {
	case DutyTurnaround:
		return DutyPolicy{Payable: true, RequiresSectors: true, CountsDutyHours: true, HasTimes: true}, nil
	case DutyLayover:
		return DutyPolicy{Payable: true, RequiresSectors: true, PairsAsLayover: true, CountsDutyHours: true, HasTimes: true}, nil
	case DutyASBY:
		return DutyPolicy{Payable: true, FixedHours: true, HasTimes: true}, nil
	case DutySBY:
		return DutyPolicy{HasTimes: true}, nil
	case DutyRecurrent:
		return DutyPolicy{}, nil
	case DutyBusinessPromotion:
		return DutyPolicy{}, nil
	case DutyOff, DutyRest, DutyAnnualLeave:
		return DutyPolicy{}, nil
	}
	return DutyPolicy{}, ErrUnknownDutyType
}

// AllDutyTypes lists the closed set, in display order.
func AllDutyTypes() []DutyType {
	return []DutyType{
		DutyTurnaround, DutyLayover, DutyASBY, DutySBY,
		DutyRecurrent, DutyBusinessPromotion,
		DutyOff, DutyRest, DutyAnnualLeave,
	}
}
