/*
aggregate.go - Monthly aggregation engine

PURPOSE:
  Folds all of a crew member's duties for one calendar month into a single
  MonthlyCalculation: fixed components (basic/housing/transport) from the
  position's pay band plus variable components (flight pay, per-diem, ASBY)
  derived from the duty rows. The result replaces any previously stored
  calculation for that month; nothing is merged.

ATTRIBUTION INVARIANT:
  Layover pairs are resolved once per calculation, and every leg joins at
  most one pair - an inbound can never close two outbounds' layovers. Rest
  hours and per-diem belong to exactly one side of a resolved pair: the
  outbound leg. Even when both legs fall in the same month, the pair's rest
  is counted once. Inbound legs whose outbound lives in a previous month
  contribute nothing here (the previous month already counted them).

COMPONENT BREAKDOWN:
  flightPay     = pay across all payable duties (turnaround, layover, asby)
  asbyPay/Count = the ASBY share of flightPay, kept separately for display
  totalVariable = flightPay + perDiemPay  (asbyPay is already inside flightPay)
  totalDutyHours sums the payable clock types (turnaround, layover) only;
  ASBY's fixed 4.0 h and SBY's unpaid clock hours are excluded from the
  displayed hours total.

SEE ALSO:
  - pay.go: Per-duty derivation
  - pairing.go / rest.go: Layover resolution
  - recalc.go: Feeds this engine from the duty store
*/
package salary

import (
	"github.com/shopspring/decimal"
)

// MonthResult bundles the calculation with its layover derivations and any
// non-fatal warnings raised while pairing.
type MonthResult struct {
	Calculation MonthlyCalculation
	Layovers    []LayoverRestPeriod
	Warnings    []Warning
}

// CalculateMonth aggregates one (user, month, year). The duty list must be
// the user's current full list - pairing needs visibility into neighboring
// months to close pairs that straddle a month boundary; rows outside the
// target month contribute nothing to the totals themselves. Input ordering
// is irrelevant.
func CalculateMonth(userID UserID, duties []FlightDuty, position Position, month, year int, cfg Config) (MonthResult, error) {
	rates, err := cfg.Rates(position)
	if err != nil {
		return MonthResult{}, err
	}

	inMonth := func(d FlightDuty) bool {
		return d.Month == month && d.Year == year
	}

	var (
		totalDutyHours = decimal.Zero
		flightPay      = decimal.Zero
		asbyPay        = decimal.Zero
		perDiemPay     = decimal.Zero
		totalRestHours = decimal.Zero
		asbyCount      int
		layovers       []LayoverRestPeriod
		warnings       []Warning
		monthLayovers  = map[DutyID]bool{}
	)

	for _, duty := range duties {
		if duty.UserID != userID || !inMonth(duty) {
			continue
		}

		policy, err := PolicyFor(duty.DutyType)
		if err != nil {
			return MonthResult{}, err
		}

		payment, err := ComputeDutyPayment(duty, position, cfg)
		if err != nil {
			return MonthResult{}, err
		}

		if policy.CountsDutyHours {
			totalDutyHours = totalDutyHours.Add(payment.DutyHours)
		}
		if policy.Payable {
			flightPay = flightPay.Add(payment.FlightPay)
		}
		if duty.DutyType == DutyASBY {
			asbyCount++
			asbyPay = asbyPay.Add(payment.FlightPay)
		}
		if policy.PairsAsLayover {
			// Unparseable sectors on a row in the target month fail the
			// calculation; out-of-month rows merely cannot pair.
			if _, _, err := ClassifyDirection(duty, cfg.BaseAirport); err != nil {
				return MonthResult{}, err
			}
			monthLayovers[duty.ID] = true
		}
	}

	// Resolve all pairs in one pass over the full list, then keep the ones
	// touching the target month. Only an outbound leg inside the month
	// accrues rest/per-diem; a pair whose outbound closed last month shows
	// up for display but adds nothing to the totals.
	pairs, legWarnings := ResolveLayoverPairs(userID, duties, cfg)
	for _, w := range legWarnings {
		if monthLayovers[w.DutyID] {
			warnings = append(warnings, w)
		}
	}
	for _, pair := range pairs {
		if !monthLayovers[pair.Outbound.ID] && !monthLayovers[pair.Inbound.ID] {
			continue
		}
		if pair.Warning != nil {
			warnings = append(warnings, *pair.Warning)
		}

		rest, restWarn := RestPeriod(pair.Outbound, pair.Inbound, pair.Destination, cfg)
		if restWarn != nil {
			warnings = append(warnings, *restWarn)
		}
		layovers = append(layovers, rest)

		if monthLayovers[pair.Outbound.ID] {
			totalRestHours = totalRestHours.Add(rest.RestHours)
			perDiemPay = perDiemPay.Add(rest.PerDiemPay)
		}
	}

	totalFixed := rates.BasicSalary.Add(rates.HousingAllowance).Add(rates.TransportAllowance)
	totalVariable := flightPay.Add(perDiemPay)

	calc := MonthlyCalculation{
		UserID:             userID,
		Month:              month,
		Year:               year,
		BasicSalary:        rates.BasicSalary,
		HousingAllowance:   rates.HousingAllowance,
		TransportAllowance: rates.TransportAllowance,
		TotalFixed:         totalFixed,
		FlightPay:          flightPay,
		PerDiemPay:         perDiemPay,
		ASBYPay:            asbyPay,
		TotalVariable:      totalVariable,
		TotalDutyHours:     totalDutyHours,
		TotalRestHours:     totalRestHours,
		ASBYCount:          asbyCount,
		TotalSalary:        totalFixed.Add(totalVariable),
	}
	return MonthResult{Calculation: calc, Layovers: layovers, Warnings: warnings}, nil
}

// CountMonthDuties reports how many duty rows fall inside the month. A zero
// count means the month's stored calculation should be removed instead of
// overwritten with zeros.
func CountMonthDuties(userID UserID, duties []FlightDuty, month, year int) int {
	n := 0
	for _, d := range duties {
		if d.UserID == userID && d.Month == month && d.Year == year {
			n++
		}
	}
	return n
}
