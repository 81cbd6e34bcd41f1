/*
handlers.go - HTTP API handlers for the salary calculation engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, boundary validation (time parsing, cross-day confirmation,
  duty type checks), and delegates every computation to the salary package.

ENDPOINTS:
  Duties:
    GET    /api/duties?user_id&month&year  List a month's duties
    POST   /api/duties                     Create one duty -> recalc month
    POST   /api/duties/batch               Bulk insert -> recalc months
    PUT    /api/duties/{id}/times          Edit times -> recalc month
    DELETE /api/duties/{id}                Delete one -> recalc month
    POST   /api/duties/delete              Bulk delete -> recalc months

  Calculations:
    GET    /api/calculations?user_id[&month&year]   Stored calculations
    GET    /api/calculations/layovers?user_id&month&year  Rest periods
    POST   /api/calculations/recalculate            Explicit recalculation

  Profiles:
    GET    /api/profiles/{id}
    PUT    /api/profiles/{id}

MUTATION SEQUENCING:
  Every mutating endpoint runs record write -> month recalculation as one
  explicit sequential chain and only then responds; the recalculation's
  completion is the synchronization point. There are no fire-and-forget
  writes and no fixed delays.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (bad times, unconfirmed cross-day, unknown type)
  - 404: Missing duty/profile/calculation
  - 500: Store failures
  Bulk endpoints return 200 with a per-month result body even on partial
  failure; the per-month success flags carry the truth.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - salary/recalc.go: The protocol these handlers drive
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/crewpay/salary-engine/salary"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  salary.Store
	Recalc *salary.Recalculator
	Config salary.Config
	Log    *logrus.Logger
}

// NewHandler creates a new handler around a store.
func NewHandler(store salary.Store, cfg salary.Config, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Store:  store,
		Recalc: salary.NewRecalculator(store, cfg, log),
		Config: cfg,
		Log:    log,
	}
}

// =============================================================================
// DUTY HANDLERS
// =============================================================================

// ListDuties returns a user's duties, optionally narrowed to one month.
// GET /api/duties?user_id=u1&month=3&year=2026
func (h *Handler) ListDuties(w http.ResponseWriter, r *http.Request) {
	userID := salary.UserID(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	var duties []salary.FlightDuty
	var err error
	if r.URL.Query().Get("month") != "" {
		month, year, perr := monthYearParams(r)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid month/year", perr)
			return
		}
		duties, err = h.Store.ListMonthDuties(r.Context(), userID, month, year)
	} else {
		duties, err = h.Store.ListDuties(r.Context(), userID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list duties", err)
		return
	}

	dtos := make([]DutyDTO, len(duties))
	for i, d := range duties {
		dtos[i] = toDutyDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDuty creates one manually entered duty and recalculates its month.
// POST /api/duties
func (h *Handler) CreateDuty(w http.ResponseWriter, r *http.Request) {
	var req CreateDutyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	duty, err := dutyFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid duty", err)
		return
	}

	timer := newRecalcTimer("create")
	result, err := h.Recalc.CreateDuty(r.Context(), &duty)
	timer.done(err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, EditTimesResponse{
		Duty:        toDutyDTO(duty),
		Calculation: toCalculationDTO(result.Calculation),
		Warnings:    toWarningDTOs(result.Warnings),
	})
}

// BatchCreateDuties inserts a batch and recalculates the touched months.
// POST /api/duties/batch
func (h *Handler) BatchCreateDuties(w http.ResponseWriter, r *http.Request) {
	var req BatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || len(req.Duties) == 0 {
		writeError(w, http.StatusBadRequest, "user_id and duties are required", nil)
		return
	}

	duties := make([]*salary.FlightDuty, len(req.Duties))
	for i, dr := range req.Duties {
		dr.UserID = req.UserID
		duty, err := dutyFromRequest(dr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid duty in batch", err)
			return
		}
		duties[i] = &duty
	}

	timer := newRecalcTimer("batch_insert")
	bulk, err := h.Recalc.InsertBatch(r.Context(), salary.UserID(req.UserID), duties)
	timer.done(err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBulkResponse(bulk))
}

// EditDutyTimes rewrites one duty's times and recalculates its month. The
// two steps run sequentially; the response is sent only after the month's
// calculation is stored.
// PUT /api/duties/{id}/times
func (h *Handler) EditDutyTimes(w http.ResponseWriter, r *http.Request) {
	id := salary.DutyID(chi.URLParam(r, "id"))

	var req EditTimesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := salary.ParseTimeOfDay(req.ReportTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report_time", err)
		return
	}
	debrief, err := salary.ParseTimeOfDay(req.DebriefTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid debrief_time", err)
		return
	}

	timer := newRecalcTimer("edit")
	duty, result, err := h.Recalc.EditDutyTimes(r.Context(), id, report, debrief, req.IsCrossDay)
	timer.done(err)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, EditTimesResponse{
		Duty:        toDutyDTO(duty),
		Calculation: toCalculationDTO(result.Calculation),
		Warnings:    toWarningDTOs(result.Warnings),
	})
}

// DeleteDuty removes one duty and recalculates the month it belonged to.
// DELETE /api/duties/{id}
func (h *Handler) DeleteDuty(w http.ResponseWriter, r *http.Request) {
	id := salary.DutyID(chi.URLParam(r, "id"))

	timer := newRecalcTimer("delete")
	bulk, err := h.Recalc.DeleteDuty(r.Context(), id)
	timer.done(err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBulkResponse(bulk))
}

// BatchDeleteDuties removes several duties and recalculates every month
// they spanned. Partial recalculation failure is reported per month.
// POST /api/duties/delete
func (h *Handler) BatchDeleteDuties(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "user_id and ids are required", nil)
		return
	}

	ids := make([]salary.DutyID, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = salary.DutyID(id)
	}

	timer := newRecalcTimer("bulk_delete")
	bulk, err := h.Recalc.DeleteDuties(r.Context(), salary.UserID(req.UserID), ids)
	timer.done(err)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBulkResponse(bulk))
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// GetCalculations returns stored monthly calculations.
// GET /api/calculations?user_id=u1[&month=3&year=2026]
func (h *Handler) GetCalculations(w http.ResponseWriter, r *http.Request) {
	userID := salary.UserID(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	if r.URL.Query().Get("month") != "" {
		month, year, err := monthYearParams(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month/year", err)
			return
		}
		calc, err := h.Store.GetCalculation(r.Context(), userID, month, year)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCalculationDTO(calc))
		return
	}

	calcs, err := h.Store.ListCalculations(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}
	dtos := make([]CalculationDTO, len(calcs))
	for i, c := range calcs {
		dtos[i] = toCalculationDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLayovers returns the derived rest periods for a month, for display of
// rest hours and per-diem next to the layover cards. Derived on demand from
// current rows; nothing here is cached.
// GET /api/calculations/layovers?user_id=u1&month=3&year=2026
func (h *Handler) GetLayovers(w http.ResponseWriter, r *http.Request) {
	userID := salary.UserID(r.URL.Query().Get("user_id"))
	month, year, err := monthYearParams(r)
	if userID == "" || err != nil {
		writeError(w, http.StatusBadRequest, "user_id, month and year are required", err)
		return
	}

	profile, err := h.Store.GetProfile(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	duties, err := h.Store.ListDuties(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list duties", err)
		return
	}

	result, err := salary.CalculateMonth(userID, duties, profile.Position, month, year, h.Config)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]LayoverDTO, len(result.Layovers))
	for i, l := range result.Layovers {
		dtos[i] = toLayoverDTO(l)
	}
	writeJSON(w, http.StatusOK, struct {
		Layovers []LayoverDTO `json:"layovers"`
		Warnings []WarningDTO `json:"warnings,omitempty"`
	}{Layovers: dtos, Warnings: toWarningDTOs(result.Warnings)})
}

// Recalculate recomputes the requested months explicitly. Safe to call
// redundantly; the result is derived from stored rows alone.
// POST /api/calculations/recalculate
func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || len(req.Months) == 0 {
		writeError(w, http.StatusBadRequest, "user_id and months are required", nil)
		return
	}

	refs := make([]salary.MonthRef, len(req.Months))
	for i, m := range req.Months {
		refs[i] = salary.MonthRef{Month: m.Month, Year: m.Year}
	}

	timer := newRecalcTimer("explicit")
	bulk := h.Recalc.RecalculateMonths(r.Context(), salary.UserID(req.UserID), refs)
	timer.done(nil)
	writeJSON(w, http.StatusOK, toBulkResponse(bulk))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// GetProfile returns a crew member profile.
// GET /api/profiles/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := salary.UserID(chi.URLParam(r, "id"))
	profile, err := h.Store.GetProfile(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileDTO{
		UserID:   string(profile.UserID),
		Email:    profile.Email,
		Airline:  profile.Airline,
		Position: string(profile.Position),
	})
}

// SaveProfile creates or updates a crew member profile.
// PUT /api/profiles/{id}
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID := salary.UserID(chi.URLParam(r, "id"))

	var req ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	position := salary.Position(req.Position)
	if !position.Valid() {
		writeError(w, http.StatusBadRequest, "position must be CCM or SCCM", nil)
		return
	}

	profile := salary.Profile{
		UserID:   userID,
		Email:    req.Email,
		Airline:  req.Airline,
		Position: position,
	}
	if err := h.Store.SaveProfile(r.Context(), profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	req.UserID = string(userID)
	writeJSON(w, http.StatusOK, req)
}

// Healthz reports liveness.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// dutyFromRequest validates and converts a create request. All parsing
// errors stop here; the engine only ever sees validated values.
func dutyFromRequest(req CreateDutyRequest) (salary.FlightDuty, error) {
	if req.UserID == "" {
		return salary.FlightDuty{}, errRequired("user_id")
	}
	dutyType := salary.DutyType(req.DutyType)
	policy, err := salary.PolicyFor(dutyType)
	if err != nil {
		return salary.FlightDuty{}, err
	}
	if policy.RequiresSectors && len(req.Sectors) == 0 {
		return salary.FlightDuty{}, errRequired("sectors")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return salary.FlightDuty{}, err
	}

	duty := salary.FlightDuty{
		UserID:        salary.UserID(req.UserID),
		Date:          date.UTC(),
		DutyType:      dutyType,
		FlightNumbers: req.FlightNumbers,
		Sectors:       req.Sectors,
		IsCrossDay:    req.IsCrossDay,
		DataSource:    salary.SourceManual,
		Month:         int(date.Month()),
		Year:          date.Year(),
	}

	if policy.HasTimes {
		if duty.ReportTime, err = salary.ParseTimeOfDay(req.ReportTime); err != nil {
			return salary.FlightDuty{}, err
		}
		if duty.DebriefTime, err = salary.ParseTimeOfDay(req.DebriefTime); err != nil {
			return salary.FlightDuty{}, err
		}
	}
	return duty, nil
}

func toBulkResponse(bulk salary.BulkResult) BulkResponse {
	resp := BulkResponse{OK: bulk.OK(), Errors: bulk.Errors()}
	for _, o := range bulk.Outcomes {
		dto := MonthOutcomeDTO{Month: o.Ref.Month, Year: o.Ref.Year, OK: o.Err == nil}
		if o.Err != nil {
			dto.Error = o.Err.Error()
		} else {
			calc := toCalculationDTO(o.Result.Calculation)
			dto.Calculation = &calc
			resp.Warnings = append(resp.Warnings, toWarningDTOs(o.Result.Warnings)...)
		}
		resp.Months = append(resp.Months, dto)
	}
	return resp
}

func monthYearParams(r *http.Request) (month, year int, err error) {
	month, err = strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		return 0, 0, err
	}
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// writeEngineError maps engine errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case salary.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case salary.IsInputError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

type requiredError string

func errRequired(field string) error  { return requiredError(field) }
func (e requiredError) Error() string { return string(e) + " is required" }
