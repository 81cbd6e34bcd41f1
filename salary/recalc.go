/*
recalc.go - Recalculation protocol

PURPOSE:
  The single re-entry point invoked after any create, edit, or delete of a
  duty record. Every recomputation re-reads the user's current duty rows
  through the store - never in-memory deltas - so calling it redundantly is
  safe and two consecutive runs with no intervening change produce identical
  output.

TRIGGERS:
  Single edit:   recompute the one month the record belongs to after the edit
  Delete (1..n): capture the distinct months spanned by the deleted rows
                 BEFORE deletion, then recompute each independently
  Bulk insert:   recompute the distinct months touched by the batch

BULK SEMANTICS:
  Independent months recompute concurrently and failures are collected per
  month (collect-and-continue): one unreadable month must not block its
  siblings. The caller receives a structured per-month result rather than a
  thrown error, so partial success is reportable.

ZERO-DUTY MONTHS:
  A month whose last duty was deleted has its stored calculation removed
  rather than overwritten with zeros.

SEE ALSO:
  - aggregate.go: The pure computation each recomputation delegates to
  - store.go: The persistence boundary
*/
package salary

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// RECALCULATOR
// =============================================================================

// Recalculator orchestrates duty mutations and the month recomputations they
// mandate. It holds no state between calls; all truth lives in the store.
type Recalculator struct {
	store Store
	cfg   Config
	log   *logrus.Logger
	now   func() time.Time
}

func NewRecalculator(store Store, cfg Config, log *logrus.Logger) *Recalculator {
	if log == nil {
		log = logrus.New()
	}
	return &Recalculator{store: store, cfg: cfg, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the timestamp source. Tests use a fixed clock to
// assert that recalculation is idempotent field-for-field.
func (r *Recalculator) WithClock(now func() time.Time) *Recalculator {
	r.now = now
	return r
}

// =============================================================================
// SINGLE-MONTH RECALCULATION
// =============================================================================

// RecalculateMonth recomputes one (user, month, year) from the rows
// currently on file and replaces the stored calculation. With zero duties in
// the month, the stored calculation is deleted instead.
func (r *Recalculator) RecalculateMonth(ctx context.Context, userID UserID, month, year int) (MonthResult, error) {
	profile, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return MonthResult{}, &RecalculationError{UserID: userID, Month: month, Year: year, Err: err}
	}

	duties, err := r.store.ListDuties(ctx, userID)
	if err != nil {
		return MonthResult{}, &RecalculationError{UserID: userID, Month: month, Year: year, Err: err}
	}

	if CountMonthDuties(userID, duties, month, year) == 0 {
		if err := r.store.DeleteCalculation(ctx, userID, month, year); err != nil {
			return MonthResult{}, &RecalculationError{UserID: userID, Month: month, Year: year, Err: err}
		}
		return MonthResult{Calculation: MonthlyCalculation{UserID: userID, Month: month, Year: year}}, nil
	}

	result, err := CalculateMonth(userID, duties, profile.Position, month, year, r.cfg)
	if err != nil {
		return MonthResult{}, &RecalculationError{UserID: userID, Month: month, Year: year, Err: err}
	}
	result.Calculation.UpdatedAt = r.now()

	for _, w := range result.Warnings {
		r.log.WithFields(logrus.Fields{
			"user_id": userID,
			"month":   month,
			"year":    year,
			"duty_id": w.DutyID,
			"code":    w.Code,
		}).Warn(w.Message)
	}

	if err := r.store.SaveCalculation(ctx, result.Calculation); err != nil {
		return MonthResult{}, &RecalculationError{UserID: userID, Month: month, Year: year, Err: err}
	}
	return result, nil
}

// =============================================================================
// BULK RECALCULATION
// =============================================================================

// MonthOutcome is the per-month result of a bulk recalculation.
type MonthOutcome struct {
	Ref    MonthRef
	Result MonthResult
	Err    error
}

// BulkResult reports a bulk recalculation month by month.
type BulkResult struct {
	Outcomes []MonthOutcome
}

// OK reports whether every month succeeded.
func (b BulkResult) OK() bool {
	for _, o := range b.Outcomes {
		if o.Err != nil {
			return false
		}
	}
	return true
}

// Errors returns the per-month failure messages, empty when OK.
func (b BulkResult) Errors() []string {
	var msgs []string
	for _, o := range b.Outcomes {
		if o.Err != nil {
			msgs = append(msgs, o.Err.Error())
		}
	}
	return msgs
}

// RecalculateMonths recomputes each referenced month independently and
// concurrently - different months share nothing - gathering all outcomes
// before returning. A failed month never blocks its siblings.
func (r *Recalculator) RecalculateMonths(ctx context.Context, userID UserID, refs []MonthRef) BulkResult {
	outcomes := make([]MonthOutcome, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref MonthRef) {
			defer wg.Done()
			result, err := r.RecalculateMonth(ctx, userID, ref.Month, ref.Year)
			outcomes[i] = MonthOutcome{Ref: ref, Result: result, Err: err}
			if err != nil {
				r.log.WithFields(logrus.Fields{
					"user_id": userID,
					"month":   ref.Month,
					"year":    ref.Year,
				}).WithError(err).Error("month recalculation failed")
			}
		}(i, ref)
	}
	wg.Wait()
	return BulkResult{Outcomes: outcomes}
}

// =============================================================================
// MUTATION ENTRY POINTS - create/edit/delete followed by recalculation
// =============================================================================

// CreateDuty validates and inserts one manually entered duty, derives its
// numeric fields, then recomputes the owning month.
func (r *Recalculator) CreateDuty(ctx context.Context, duty *FlightDuty) (MonthResult, error) {
	profile, err := r.store.GetProfile(ctx, duty.UserID)
	if err != nil {
		return MonthResult{}, err
	}
	if err := r.deriveDuty(duty, profile.Position); err != nil {
		return MonthResult{}, err
	}
	if err := r.store.CreateDuty(ctx, duty); err != nil {
		return MonthResult{}, err
	}
	return r.RecalculateMonth(ctx, duty.UserID, duty.Month, duty.Year)
}

// InsertBatch inserts a batch atomically, then recomputes exactly the
// distinct months the batch touches.
func (r *Recalculator) InsertBatch(ctx context.Context, userID UserID, duties []*FlightDuty) (BulkResult, error) {
	profile, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return BulkResult{}, err
	}
	captured := make([]FlightDuty, 0, len(duties))
	for _, d := range duties {
		d.UserID = userID
		if err := r.deriveDuty(d, profile.Position); err != nil {
			return BulkResult{}, err
		}
		captured = append(captured, *d)
	}
	if err := r.store.CreateDuties(ctx, duties); err != nil {
		return BulkResult{}, err
	}
	return r.RecalculateMonths(ctx, userID, DistinctMonths(captured)), nil
}

// EditDutyTimes rewrites one record's report/debrief times and cross-day
// flag, recomputes its dutyHours/flightPay atomically with them, then
// recomputes the owning month. The record edit and the month recalculation
// are sequenced here - the recalculation's completion is the caller's
// synchronization point, not a timeout.
//
// A debrief clock-earlier than report without isCrossDay confirmed is
// rejected with ErrAmbiguousCrossDay; the heuristic never decides.
func (r *Recalculator) EditDutyTimes(ctx context.Context, id DutyID, report, debrief TimeOfDay, isCrossDay bool) (FlightDuty, MonthResult, error) {
	duty, err := r.store.GetDuty(ctx, id)
	if err != nil {
		return FlightDuty{}, MonthResult{}, err
	}
	profile, err := r.store.GetProfile(ctx, duty.UserID)
	if err != nil {
		return FlightDuty{}, MonthResult{}, err
	}

	if DetectCrossDay(report, debrief) && !isCrossDay {
		return FlightDuty{}, MonthResult{}, ErrAmbiguousCrossDay
	}

	duty.ReportTime = report
	duty.DebriefTime = debrief
	duty.IsCrossDay = isCrossDay
	payment, err := ComputeDutyPayment(duty, profile.Position, r.cfg)
	if err != nil {
		return FlightDuty{}, MonthResult{}, err
	}
	duty.DutyHours = payment.DutyHours
	duty.FlightPay = payment.FlightPay
	duty.DataSource = SourceEdited

	update := DutyTimesUpdate{
		ReportTime:  report,
		DebriefTime: debrief,
		IsCrossDay:  isCrossDay,
		DutyHours:   payment.DutyHours,
		FlightPay:   payment.FlightPay,
	}
	if err := r.store.UpdateDutyTimes(ctx, id, update); err != nil {
		return FlightDuty{}, MonthResult{}, err
	}

	result, err := r.RecalculateMonth(ctx, duty.UserID, duty.Month, duty.Year)
	if err != nil {
		return FlightDuty{}, MonthResult{}, err
	}
	return duty, result, nil
}

// DeleteDuty removes one record and recomputes the month it belonged to.
func (r *Recalculator) DeleteDuty(ctx context.Context, id DutyID) (BulkResult, error) {
	duty, err := r.store.GetDuty(ctx, id)
	if err != nil {
		return BulkResult{}, err
	}
	if err := r.store.DeleteDuty(ctx, id); err != nil {
		return BulkResult{}, err
	}
	return r.RecalculateMonths(ctx, duty.UserID, []MonthRef{MonthOf(duty)}), nil
}

// DeleteDuties removes a batch atomically and recomputes every distinct
// month the deleted rows spanned. Month/year scopes are captured from the
// rows before deletion.
func (r *Recalculator) DeleteDuties(ctx context.Context, userID UserID, ids []DutyID) (BulkResult, error) {
	deleted, err := r.store.DeleteDuties(ctx, ids)
	if err != nil {
		return BulkResult{}, err
	}
	return r.RecalculateMonths(ctx, userID, DistinctMonths(deleted)), nil
}

// deriveDuty fills the derived numeric fields of a new record and stamps
// month/year from its date when absent.
func (r *Recalculator) deriveDuty(duty *FlightDuty, position Position) error {
	policy, err := PolicyFor(duty.DutyType)
	if err != nil {
		return err
	}
	if policy.HasTimes && !policy.FixedHours &&
		DetectCrossDay(duty.ReportTime, duty.DebriefTime) && !duty.IsCrossDay {
		return ErrAmbiguousCrossDay
	}
	if duty.Month == 0 {
		duty.Month = int(duty.Date.Month())
	}
	if duty.Year == 0 {
		duty.Year = duty.Date.Year()
	}
	payment, err := ComputeDutyPayment(*duty, position, r.cfg)
	if err != nil {
		return err
	}
	duty.DutyHours = payment.DutyHours
	duty.FlightPay = payment.FlightPay
	if duty.DataSource == "" {
		duty.DataSource = SourceManual
	}
	return nil
}
