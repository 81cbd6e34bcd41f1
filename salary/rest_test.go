package salary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpay/salary-engine/salary"
)

func TestRestPeriod_TwoDayLayover(t *testing.T) {
	// GIVEN: outbound debrief 14:00 (not cross-day) on day 0,
	//        inbound report 10:00 on day 2
	// THEN: rest = (2*1440 + 600) - 840 = 3240 minutes = 54.0 h
	//       per diem = 54.0 x 8.82 = 476.28
	cfg := salary.DefaultConfig()
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "08:00", "14:00", false, "DXB-VKO")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "10:00", "16:00", false, "VKO-DXB")

	rest, warn := salary.RestPeriod(out, in, "VKO", cfg)
	assert.Nil(t, warn)
	assert.True(t, rest.RestHours.Equal(dec("54")), "rest = %s", rest.RestHours)
	assert.True(t, rest.PerDiemPay.Equal(dec("476.28")), "per diem = %s", rest.PerDiemPay)
	assert.Equal(t, salary.DutyID("out"), rest.OutboundID)
	assert.Equal(t, salary.DutyID("in"), rest.InboundID)
}

func TestRestPeriod_CrossDayOutboundDebrief(t *testing.T) {
	// GIVEN: the outbound debriefs at 01:00 the next morning (cross-day),
	//        inbound reports 21:00 the following day
	// THEN: the debrief projects to minute 1500; rest = (2*1440+1260)-1500
	//       = 2640 minutes = 44 h
	cfg := salary.DefaultConfig()
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "16:00", "01:00", true, "DXB-BEG")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 3), "21:00", "03:00", true, "BEG-DXB")

	rest, warn := salary.RestPeriod(out, in, "BEG", cfg)
	assert.Nil(t, warn)
	assert.True(t, rest.RestHours.Equal(dec("44")), "rest = %s", rest.RestHours)
}

func TestRestPeriod_NegativeGuard(t *testing.T) {
	// A days-between miscount that turns rest negative gets one day added
	// back instead of producing a negative rest.
	cfg := salary.DefaultConfig()
	// Same-day "pair": debrief 22:00, report 10:00 => -720 => +1440 => 720.
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "16:00", "22:00", false, "DXB-VKO")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "10:00", "16:00", false, "VKO-DXB")

	rest, _ := salary.RestPeriod(out, in, "VKO", cfg)
	assert.True(t, rest.RestHours.Equal(dec("12")), "rest = %s", rest.RestHours)
	assert.False(t, rest.RestHours.IsNegative())
}

func TestRestPeriod_OutOfBoundsWarns(t *testing.T) {
	// GIVEN: a 5-day gap producing ~118h of rest
	// THEN: the value is returned untouched but flagged as suspicious
	cfg := salary.DefaultConfig()
	out := testDuty("out", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "08:00", "14:00", false, "DXB-VKO")
	in := testDuty("in", salary.DutyLayover, salary.DutyDate(2026, time.March, 6), "12:00", "18:00", false, "VKO-DXB")

	rest, warn := salary.RestPeriod(out, in, "VKO", cfg)
	require.NotNil(t, warn)
	assert.Equal(t, salary.WarnRestOutOfBounds, warn.Code)
	assert.True(t, rest.RestHours.GreaterThan(dec("96")))

	// Short side of the band warns too.
	inEarly := testDuty("in2", salary.DutyLayover, salary.DutyDate(2026, time.March, 1), "20:00", "23:00", false, "VKO-DXB")
	restShort, warnShort := salary.RestPeriod(out, inEarly, "VKO", cfg)
	require.NotNil(t, warnShort)
	assert.Equal(t, salary.WarnRestOutOfBounds, warnShort.Code)
	assert.True(t, restShort.RestHours.LessThan(dec("8")))
}
