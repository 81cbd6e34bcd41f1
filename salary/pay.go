package salary

import "github.com/shopspring/decimal"

// =============================================================================
// DUTY PAY - Per-duty hours and flight pay
// =============================================================================

// DutyPayment is the derived numeric state of one duty record.
type DutyPayment struct {
	DutyHours decimal.Decimal
	FlightPay decimal.Decimal
}

// ComputeDutyPayment derives hours and flight pay for a single duty:
//
//	asby:               4.0 fixed hours x hourly rate (clock ignored)
//	sby:                clock hours, pay 0 (home standby is unpaid)
//	turnaround/layover: clock hours x hourly rate
//	everything else:    0 / 0
//
// The duty's cross-day flag must already be confirmed; with a confirmed
// flag the clock duration is never negative for valid records, but a
// negative duration (corrupted row) is rejected with ErrAmbiguousCrossDay
// rather than producing negative pay.
func ComputeDutyPayment(duty FlightDuty, position Position, cfg Config) (DutyPayment, error) {
	policy, err := PolicyFor(duty.DutyType)
	if err != nil {
		return DutyPayment{}, err
	}
	rates, err := cfg.Rates(position)
	if err != nil {
		return DutyPayment{}, err
	}

	if !policy.HasTimes {
		return DutyPayment{DutyHours: decimal.Zero, FlightPay: decimal.Zero}, nil
	}

	if policy.FixedHours {
		return DutyPayment{
			DutyHours: cfg.ASBYHours,
			FlightPay: cfg.ASBYHours.Mul(rates.HourlyRate),
		}, nil
	}

	minutes := DurationMinutes(duty.ReportTime, duty.DebriefTime, duty.IsCrossDay)
	if minutes < 0 {
		return DutyPayment{}, ErrAmbiguousCrossDay
	}
	hours := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))

	if !policy.Payable {
		return DutyPayment{DutyHours: hours, FlightPay: decimal.Zero}, nil
	}
	return DutyPayment{DutyHours: hours, FlightPay: hours.Mul(rates.HourlyRate)}, nil
}
