package salary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpay/salary-engine/salary"
)

const crew = salary.UserID("crew-1")

func TestCalculateMonth_TurnaroundPlusASBY(t *testing.T) {
	// GIVEN: one 8.5h turnaround and one ASBY, CCM rates (50/h)
	// THEN: flightPay = 8.5*50 + 4*50 = 625
	//       totalDutyHours = 8.5 (ASBY's fixed hours are pay-only)
	cfg := salary.DefaultConfig()
	duties := []salary.FlightDuty{
		testDuty("turn", salary.DutyTurnaround, salary.DutyDate(2026, time.March, 10), "08:00", "16:30", false, "DXB-KTM", "KTM-DXB"),
		testDuty("asby", salary.DutyASBY, salary.DutyDate(2026, time.March, 12), "06:00", "10:00", false),
	}

	result, err := salary.CalculateMonth(crew, duties, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	calc := result.Calculation

	assert.True(t, calc.FlightPay.Equal(dec("625")), "flightPay = %s", calc.FlightPay)
	assert.True(t, calc.TotalDutyHours.Equal(dec("8.5")), "totalDutyHours = %s", calc.TotalDutyHours)
	assert.True(t, calc.ASBYPay.Equal(dec("200")), "asbyPay = %s", calc.ASBYPay)
	assert.Equal(t, 1, calc.ASBYCount)

	// Fixed components: 3275 + 4000 + 1000 = 8275.
	assert.True(t, calc.TotalFixed.Equal(dec("8275")), "totalFixed = %s", calc.TotalFixed)
	// No layovers: variable = flight pay alone; asbyPay is already inside it.
	assert.True(t, calc.TotalVariable.Equal(dec("625")), "totalVariable = %s", calc.TotalVariable)
	assert.True(t, calc.TotalSalary.Equal(dec("8900")), "totalSalary = %s", calc.TotalSalary)
}

func TestCalculateMonth_LayoverPairRestAndPerDiem(t *testing.T) {
	// GIVEN: a full layover pair inside one month (54h rest at VKO)
	// THEN: rest/per-diem counted exactly once, attributed to the outbound
	cfg := salary.DefaultConfig()
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "08:00", "14:00", false, "DXB-VKO")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "20:00", "02:00", true, "VKO-DXB")

	result, err := salary.CalculateMonth(crew, []salary.FlightDuty{in, out}, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	calc := result.Calculation

	// Both legs in the month, one pair: rest counted once.
	assert.True(t, calc.TotalRestHours.Equal(dec("54")), "restHours = %s", calc.TotalRestHours)
	assert.True(t, calc.PerDiemPay.Equal(dec("476.28")), "perDiem = %s", calc.PerDiemPay)
	require.Len(t, result.Layovers, 1)
	assert.Equal(t, salary.DutyID("out"), result.Layovers[0].OutboundID)

	// Both legs are 6h duties: 12h total at 50/h.
	assert.True(t, calc.TotalDutyHours.Equal(dec("12")), "dutyHours = %s", calc.TotalDutyHours)
	assert.True(t, calc.FlightPay.Equal(dec("600")), "flightPay = %s", calc.FlightPay)
	assert.True(t, calc.TotalVariable.Equal(dec("1076.28")), "totalVariable = %s", calc.TotalVariable)
}

func TestCalculateMonth_InboundMonthDoesNotDoubleCount(t *testing.T) {
	// GIVEN: outbound on Mar 31, inbound on Apr 2 (pair straddles months)
	// THEN: March carries the pair's rest/per-diem; April carries none
	cfg := salary.DefaultConfig()
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 31), "08:00", "14:00", false, "DXB-VKO")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.April, 2), "20:00", "02:00", true, "VKO-DXB")
	duties := []salary.FlightDuty{out, in}

	march, err := salary.CalculateMonth(crew, duties, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	assert.True(t, march.Calculation.TotalRestHours.Equal(dec("54")), "march rest = %s", march.Calculation.TotalRestHours)
	require.Len(t, march.Layovers, 1)

	april, err := salary.CalculateMonth(crew, duties, salary.PositionCCM, 4, 2026, cfg)
	require.NoError(t, err)
	assert.True(t, april.Calculation.TotalRestHours.IsZero(), "april rest = %s", april.Calculation.TotalRestHours)
	assert.True(t, april.Calculation.PerDiemPay.IsZero(), "april per diem = %s", april.Calculation.PerDiemPay)
	// The inbound leg's own duty hours still count in April.
	assert.True(t, april.Calculation.TotalDutyHours.Equal(dec("6")), "april hours = %s", april.Calculation.TotalDutyHours)
}

func TestCalculateMonth_UnpairedLayoverStandsAlone(t *testing.T) {
	// An inbound with no outbound on file is paid for its own hours and
	// contributes no rest.
	cfg := salary.DefaultConfig()
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 2), "10:00", "16:00", false, "VKO-DXB")

	result, err := salary.CalculateMonth(crew, []salary.FlightDuty{in}, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	assert.True(t, result.Calculation.FlightPay.Equal(dec("300")))
	assert.True(t, result.Calculation.TotalRestHours.IsZero())
	assert.Empty(t, result.Layovers)
	assert.Empty(t, result.Warnings)
}

func TestCalculateMonth_SBYExcludedFromTotals(t *testing.T) {
	// Home standby derives hours on its own record but the monthly total
	// sums payable clock types only: no hours, no pay.
	cfg := salary.DefaultConfig()
	duties := []salary.FlightDuty{
		testDuty("turn", salary.DutyTurnaround, salary.DutyDate(2026, time.March, 4), "08:00", "16:30", false, "DXB-KTM", "KTM-DXB"),
		testDuty("sby", salary.DutySBY, salary.DutyDate(2026, time.March, 5), "06:00", "14:00", false),
	}

	result, err := salary.CalculateMonth(crew, duties, salary.PositionSCCM, 3, 2026, cfg)
	require.NoError(t, err)
	assert.True(t, result.Calculation.TotalDutyHours.Equal(dec("8.5")), "hours = %s", result.Calculation.TotalDutyHours)
	assert.True(t, result.Calculation.FlightPay.Equal(dec("527")), "flightPay = %s", result.Calculation.FlightPay)
	// SCCM fixed block: 4275 + 5000 + 1000.
	assert.True(t, result.Calculation.TotalFixed.Equal(dec("10275")))
}

func TestCalculateMonth_InboundClosesOnlyOnePair(t *testing.T) {
	// GIVEN: two same-destination outbounds and a single inbound
	// THEN: only the nearer outbound's pair exists; its rest is counted
	//       once, never per competing outbound
	cfg := salary.DefaultConfig()
	duties := []salary.FlightDuty{
		testDuty("o1", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "08:00", "14:00", false, "DXB-VKO"),
		testDuty("o2", salary.DutyLayover, salary.DutyDate(2026, time.March, 2), "08:00", "14:00", false, "DXB-VKO"),
		testDuty("i1", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "10:00", "16:00", false, "VKO-DXB"),
	}

	result, err := salary.CalculateMonth(crew, duties, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	calc := result.Calculation

	require.Len(t, result.Layovers, 1)
	assert.Equal(t, salary.DutyID("o2"), result.Layovers[0].OutboundID)
	assert.Equal(t, salary.DutyID("i1"), result.Layovers[0].InboundID)

	// o2 debrief 14:00 day 2 -> i1 report 10:00 day 3: 20h rest, once.
	assert.True(t, calc.TotalRestHours.Equal(dec("20")), "rest = %s", calc.TotalRestHours)
	assert.True(t, calc.PerDiemPay.Equal(dec("176.4")), "perDiem = %s", calc.PerDiemPay)

	// All three legs still earn their own 6h of flight pay.
	assert.True(t, calc.TotalDutyHours.Equal(dec("18")), "hours = %s", calc.TotalDutyHours)
	assert.True(t, calc.FlightPay.Equal(dec("900")), "flightPay = %s", calc.FlightPay)
}

func TestCalculateMonth_TieBreakWarnsOncePerPair(t *testing.T) {
	// Both legs of the ambiguous pair live in the month; the tie-break
	// warning must still appear exactly once.
	cfg := salary.DefaultConfig()
	duties := []salary.FlightDuty{
		testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "08:00", "14:00", false, "DXB-VKO"),
		testDuty("in-early", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "08:00", "14:00", false, "VKO-DXB"),
		testDuty("in-late", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "18:00", "23:00", false, "VKO-DXB"),
	}

	result, err := salary.CalculateMonth(crew, duties, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)

	var ambiguous []salary.Warning
	for _, w := range result.Warnings {
		if w.Code == salary.WarnPairingAmbiguous {
			ambiguous = append(ambiguous, w)
		}
	}
	require.Len(t, ambiguous, 1)
	assert.Equal(t, salary.DutyID("out"), ambiguous[0].DutyID)
	require.Len(t, result.Layovers, 1)
	assert.Equal(t, salary.DutyID("in-early"), result.Layovers[0].InboundID)
}

func TestCalculateMonth_OffBaseLayoverWarned(t *testing.T) {
	cfg := salary.DefaultConfig()
	stray := testDuty("stray", salary.DutyLayover, salary.DutyDate(2026, time.March, 7), "08:00", "14:00", false, "VKO-BEG")

	result, err := salary.CalculateMonth(crew, []salary.FlightDuty{stray}, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Layovers)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, salary.WarnSectorMissingBase, result.Warnings[0].Code)
	assert.Equal(t, salary.DutyID("stray"), result.Warnings[0].DutyID)
}

func TestCalculateMonth_IgnoresOtherMonthsAndUsers(t *testing.T) {
	cfg := salary.DefaultConfig()
	inMonth := testDuty("d1", salary.DutyTurnaround, salary.DutyDate(2026, time.March, 10), "08:00", "16:00", false, "DXB-KTM")
	otherMonth := testDuty("d2", salary.DutyTurnaround, salary.DutyDate(2026, time.April, 10), "08:00", "16:00", false, "DXB-KTM")
	otherUser := testDuty("d3", salary.DutyTurnaround, salary.DutyDate(2026, time.March, 11), "08:00", "16:00", false, "DXB-KTM")
	otherUser.UserID = "crew-2"

	result, err := salary.CalculateMonth(crew, []salary.FlightDuty{inMonth, otherMonth, otherUser}, salary.PositionCCM, 3, 2026, cfg)
	require.NoError(t, err)
	assert.True(t, result.Calculation.TotalDutyHours.Equal(dec("8")), "hours = %s", result.Calculation.TotalDutyHours)
}

func TestCalculateMonth_UnknownDutyTypeFails(t *testing.T) {
	cfg := salary.DefaultConfig()
	bad := testDuty("bad", salary.DutyType("deadhead"), salary.DutyDate(2026, time.March, 10), "08:00", "16:00", false)

	_, err := salary.CalculateMonth(crew, []salary.FlightDuty{bad}, salary.PositionCCM, 3, 2026, cfg)
	assert.ErrorIs(t, err, salary.ErrUnknownDutyType)
}
