package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewpay/salary-engine/salary"
	"github.com/crewpay/salary-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func fixtureDuty(id string, userID salary.UserID, date time.Time) salary.FlightDuty {
	return salary.FlightDuty{
		ID:            salary.DutyID(id),
		UserID:        userID,
		Date:          date,
		DutyType:      salary.DutyTurnaround,
		FlightNumbers: []string{"FZ561", "FZ562"},
		Sectors:       []string{"DXB-KTM", "KTM-DXB"},
		ReportTime:    salary.MustTimeOfDay("08:00"),
		DebriefTime:   salary.MustTimeOfDay("16:30"),
		DutyHours:     decimal.RequireFromString("8.5"),
		FlightPay:     decimal.RequireFromString("425"),
		DataSource:    salary.SourceCSV,
		Month:         int(date.Month()),
		Year:          date.Year(),
	}
}

// =============================================================================
// DUTY STORE
// =============================================================================

func TestDutyRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duty := fixtureDuty("d1", "crew-1", salary.DutyDate(2026, time.March, 10))
	require.NoError(t, store.CreateDuty(ctx, &duty))

	got, err := store.GetDuty(ctx, "d1")
	require.NoError(t, err)

	assert.Equal(t, duty.ID, got.ID)
	assert.Equal(t, duty.UserID, got.UserID)
	assert.Equal(t, duty.DutyType, got.DutyType)
	assert.Equal(t, duty.FlightNumbers, got.FlightNumbers)
	assert.Equal(t, duty.Sectors, got.Sectors)
	assert.Equal(t, "08:00", got.ReportTime.String())
	assert.Equal(t, "16:30", got.DebriefTime.String())
	assert.False(t, got.IsCrossDay)
	assert.True(t, got.DutyHours.Equal(duty.DutyHours), "hours round-trip exactly")
	assert.True(t, got.FlightPay.Equal(duty.FlightPay), "pay round-trips exactly")
	assert.Equal(t, salary.SourceCSV, got.DataSource)
	assert.True(t, got.Date.Equal(duty.Date))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateDuty_AssignsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duty := fixtureDuty("", "crew-1", salary.DutyDate(2026, time.March, 10))
	require.NoError(t, store.CreateDuty(ctx, &duty))
	assert.NotEmpty(t, duty.ID, "an empty ID gets a generated one")

	_, err := store.GetDuty(ctx, duty.ID)
	assert.NoError(t, err)
}

func TestGetDuty_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetDuty(context.Background(), "missing")
	assert.ErrorIs(t, err, salary.ErrDutyNotFound)
}

func TestListDuties_ScopedAndOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	later := fixtureDuty("d2", "crew-1", salary.DutyDate(2026, time.March, 20))
	earlier := fixtureDuty("d1", "crew-1", salary.DutyDate(2026, time.March, 5))
	other := fixtureDuty("d3", "crew-2", salary.DutyDate(2026, time.March, 6))
	require.NoError(t, store.CreateDuties(ctx, []*salary.FlightDuty{&later, &earlier, &other}))

	duties, err := store.ListDuties(ctx, "crew-1")
	require.NoError(t, err)
	require.Len(t, duties, 2)
	assert.Equal(t, salary.DutyID("d1"), duties[0].ID, "ordered by date")
	assert.Equal(t, salary.DutyID("d2"), duties[1].ID)
}

func TestListMonthDuties(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mar := fixtureDuty("mar", "crew-1", salary.DutyDate(2026, time.March, 10))
	apr := fixtureDuty("apr", "crew-1", salary.DutyDate(2026, time.April, 2))
	require.NoError(t, store.CreateDuties(ctx, []*salary.FlightDuty{&mar, &apr}))

	duties, err := store.ListMonthDuties(ctx, "crew-1", 3, 2026)
	require.NoError(t, err)
	require.Len(t, duties, 1)
	assert.Equal(t, salary.DutyID("mar"), duties[0].ID)
}

func TestUpdateDutyTimes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duty := fixtureDuty("d1", "crew-1", salary.DutyDate(2026, time.March, 10))
	require.NoError(t, store.CreateDuty(ctx, &duty))

	update := salary.DutyTimesUpdate{
		ReportTime:  salary.MustTimeOfDay("16:00"),
		DebriefTime: salary.MustTimeOfDay("01:00"),
		IsCrossDay:  true,
		DutyHours:   decimal.RequireFromString("9"),
		FlightPay:   decimal.RequireFromString("450"),
	}
	require.NoError(t, store.UpdateDutyTimes(ctx, "d1", update))

	got, err := store.GetDuty(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "16:00", got.ReportTime.String())
	assert.Equal(t, "01:00", got.DebriefTime.String())
	assert.True(t, got.IsCrossDay)
	assert.True(t, got.DutyHours.Equal(decimal.RequireFromString("9")))
	assert.Equal(t, salary.SourceEdited, got.DataSource, "the edit path marks the row edited")
	// Identity columns are untouched.
	assert.Equal(t, duty.Sectors, got.Sectors)
	assert.True(t, got.Date.Equal(duty.Date))

	err = store.UpdateDutyTimes(ctx, "missing", update)
	assert.ErrorIs(t, err, salary.ErrDutyNotFound)
}

func TestDeleteDuty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duty := fixtureDuty("d1", "crew-1", salary.DutyDate(2026, time.March, 10))
	require.NoError(t, store.CreateDuty(ctx, &duty))
	require.NoError(t, store.DeleteDuty(ctx, "d1"))

	_, err := store.GetDuty(ctx, "d1")
	assert.ErrorIs(t, err, salary.ErrDutyNotFound)

	err = store.DeleteDuty(ctx, "d1")
	assert.ErrorIs(t, err, salary.ErrDutyNotFound)
}

func TestDeleteDuties_ReturnsRemovedRows(t *testing.T) {
	// The caller scopes recalculation from the removed rows' month/year, so
	// the delete must hand them back as they were before deletion.
	store := newTestStore(t)
	ctx := context.Background()

	mar := fixtureDuty("mar", "crew-1", salary.DutyDate(2026, time.March, 10))
	apr := fixtureDuty("apr", "crew-1", salary.DutyDate(2026, time.April, 2))
	require.NoError(t, store.CreateDuties(ctx, []*salary.FlightDuty{&mar, &apr}))

	removed, err := store.DeleteDuties(ctx, []salary.DutyID{"mar", "apr"})
	require.NoError(t, err)
	require.Len(t, removed, 2)
	assert.Equal(t, 3, removed[0].Month)
	assert.Equal(t, 4, removed[1].Month)

	duties, err := store.ListDuties(ctx, "crew-1")
	require.NoError(t, err)
	assert.Empty(t, duties)
}

func TestDeleteDuties_MissingIDAbortsBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duty := fixtureDuty("d1", "crew-1", salary.DutyDate(2026, time.March, 10))
	require.NoError(t, store.CreateDuty(ctx, &duty))

	_, err := store.DeleteDuties(ctx, []salary.DutyID{"d1", "missing"})
	assert.ErrorIs(t, err, salary.ErrDutyNotFound)

	// The transaction rolled back: d1 survives.
	_, err = store.GetDuty(ctx, "d1")
	assert.NoError(t, err)
}

// =============================================================================
// CALCULATION STORE
// =============================================================================

func fixtureCalculation(month int) salary.MonthlyCalculation {
	return salary.MonthlyCalculation{
		UserID:             "crew-1",
		Month:              month,
		Year:               2026,
		BasicSalary:        decimal.RequireFromString("3275"),
		HousingAllowance:   decimal.RequireFromString("4000"),
		TransportAllowance: decimal.RequireFromString("1000"),
		TotalFixed:         decimal.RequireFromString("8275"),
		FlightPay:          decimal.RequireFromString("425"),
		PerDiemPay:         decimal.RequireFromString("476.28"),
		ASBYPay:            decimal.Zero,
		TotalVariable:      decimal.RequireFromString("901.28"),
		TotalDutyHours:     decimal.RequireFromString("8.5"),
		TotalRestHours:     decimal.RequireFromString("54"),
		TotalSalary:        decimal.RequireFromString("9176.28"),
		UpdatedAt:          time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCalculationRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	calc := fixtureCalculation(3)
	require.NoError(t, store.SaveCalculation(ctx, calc))

	got, err := store.GetCalculation(ctx, "crew-1", 3, 2026)
	require.NoError(t, err)
	assert.True(t, got.PerDiemPay.Equal(calc.PerDiemPay), "per diem = %s", got.PerDiemPay)
	assert.True(t, got.TotalSalary.Equal(calc.TotalSalary))
	assert.True(t, got.TotalRestHours.Equal(calc.TotalRestHours))
	assert.True(t, got.UpdatedAt.Equal(calc.UpdatedAt))
}

func TestSaveCalculation_ReplacesWholesale(t *testing.T) {
	// A recalculation never merges: the new row replaces every derived
	// column of the old one.
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCalculation(ctx, fixtureCalculation(3)))

	replacement := fixtureCalculation(3)
	replacement.FlightPay = decimal.Zero
	replacement.PerDiemPay = decimal.Zero
	replacement.TotalVariable = decimal.Zero
	replacement.TotalRestHours = decimal.Zero
	replacement.TotalSalary = decimal.RequireFromString("8275")
	require.NoError(t, store.SaveCalculation(ctx, replacement))

	got, err := store.GetCalculation(ctx, "crew-1", 3, 2026)
	require.NoError(t, err)
	assert.True(t, got.FlightPay.IsZero())
	assert.True(t, got.TotalRestHours.IsZero())
	assert.True(t, got.TotalSalary.Equal(decimal.RequireFromString("8275")))
}

func TestListCalculations_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCalculation(ctx, fixtureCalculation(3)))
	require.NoError(t, store.SaveCalculation(ctx, fixtureCalculation(4)))

	calcs, err := store.ListCalculations(ctx, "crew-1")
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	assert.Equal(t, 4, calcs[0].Month)
	assert.Equal(t, 3, calcs[1].Month)
}

func TestDeleteCalculation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCalculation(ctx, fixtureCalculation(3)))
	require.NoError(t, store.DeleteCalculation(ctx, "crew-1", 3, 2026))

	_, err := store.GetCalculation(ctx, "crew-1", 3, 2026)
	assert.ErrorIs(t, err, salary.ErrCalculationNotFound)

	// Deleting an absent row is not an error.
	assert.NoError(t, store.DeleteCalculation(ctx, "crew-1", 3, 2026))
}

// =============================================================================
// PROFILE STORE
// =============================================================================

func TestProfileUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetProfile(ctx, "crew-1")
	assert.ErrorIs(t, err, salary.ErrProfileNotFound)

	require.NoError(t, store.SaveProfile(ctx, salary.Profile{
		UserID:   "crew-1",
		Email:    "crew-1@example.com",
		Airline:  "flydubai",
		Position: salary.PositionCCM,
	}))

	got, err := store.GetProfile(ctx, "crew-1")
	require.NoError(t, err)
	assert.Equal(t, salary.PositionCCM, got.Position)
	assert.Equal(t, "flydubai", got.Airline)

	// A promotion replaces the position in place.
	require.NoError(t, store.SaveProfile(ctx, salary.Profile{
		UserID:   "crew-1",
		Email:    "crew-1@example.com",
		Airline:  "flydubai",
		Position: salary.PositionSCCM,
	}))
	got, err = store.GetProfile(ctx, "crew-1")
	require.NoError(t, err)
	assert.Equal(t, salary.PositionSCCM, got.Position)
}
