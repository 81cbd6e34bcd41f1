package salary

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REST PERIOD & PER-DIEM - Derived from a resolved layover pair
// =============================================================================

// RestPeriod computes the rest duration and per-diem pay for a matched
// outbound/inbound pair. Rest runs from the outbound debrief to the inbound
// report, both projected onto an absolute minute axis anchored at the
// outbound date:
//
//	debriefAbs = outbound.debrief + (outbound cross-day ? 1440 : 0)
//	reportAbs  = daysBetween*1440 + inbound.report
//	rest       = reportAbs - debriefAbs
//
// A negative rest means the whole-day count was off by one (roster date
// quirks around midnight arrivals); one day is added back rather than
// failing the calculation.
//
// A non-nil warning flags rest outside the sane band (config, default
// 8-96 h): almost always a mispaired leg, not bad arithmetic.
func RestPeriod(outbound, inbound FlightDuty, destination string, cfg Config) (LayoverRestPeriod, *Warning) {
	debriefAbs := outbound.DebriefTime.TotalMinutes()
	if outbound.IsCrossDay {
		debriefAbs += minutesPerDay
	}

	daysBetween := DaysBetween(outbound.Day(), inbound.Day())
	reportAbs := daysBetween*minutesPerDay + inbound.ReportTime.TotalMinutes()

	restMinutes := reportAbs - debriefAbs
	if restMinutes < 0 {
		restMinutes += minutesPerDay
	}

	restHours := decimal.NewFromInt(int64(restMinutes)).Div(decimal.NewFromInt(60))
	rest := LayoverRestPeriod{
		OutboundID:  outbound.ID,
		InboundID:   inbound.ID,
		Destination: destination,
		RestHours:   restHours,
		PerDiemPay:  restHours.Mul(cfg.PerDiemRate),
	}

	var warning *Warning
	if restHours.LessThan(cfg.RestMinHours) || restHours.GreaterThan(cfg.RestMaxHours) {
		warning = &Warning{
			Code:   WarnRestOutOfBounds,
			DutyID: outbound.ID,
			Message: fmt.Sprintf("rest of %s h between %s and %s is outside %s-%s h; check the pairing",
				restHours.StringFixed(1), outbound.ID, inbound.ID,
				cfg.RestMinHours.String(), cfg.RestMaxHours.String()),
		}
	}
	return rest, warning
}
