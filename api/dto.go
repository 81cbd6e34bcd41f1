/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-typed domain model from the external API contract:
  money and hours cross the wire as fixed-point strings so clients never
  see binary-float artifacts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. Time strings are parsed and
  cross-day confirmed at this boundary; the engine never sees raw input.

SEE ALSO:
  - handlers.go: Uses these types
  - salary/types.go: The domain model these mirror
*/
package api

import (
	"time"

	"github.com/crewpay/salary-engine/salary"
)

// =============================================================================
// DUTY TYPES
// =============================================================================

// DutyDTO represents a duty record in API responses.
type DutyDTO struct {
	ID            string   `json:"id"`
	UserID        string   `json:"user_id"`
	Date          string   `json:"date"`
	DutyType      string   `json:"duty_type"`
	FlightNumbers []string `json:"flight_numbers"`
	Sectors       []string `json:"sectors"`
	ReportTime    string   `json:"report_time"`
	DebriefTime   string   `json:"debrief_time"`
	IsCrossDay    bool     `json:"is_cross_day"`
	DutyHours     string   `json:"duty_hours"`
	FlightPay     string   `json:"flight_pay"`
	DataSource    string   `json:"data_source"`
	Month         int      `json:"month"`
	Year          int      `json:"year"`
}

// CreateDutyRequest is the request to create one duty (manual entry).
type CreateDutyRequest struct {
	UserID        string   `json:"user_id"`
	Date          string   `json:"date"` // "2006-01-02"
	DutyType      string   `json:"duty_type"`
	FlightNumbers []string `json:"flight_numbers"`
	Sectors       []string `json:"sectors"`
	ReportTime    string   `json:"report_time"`
	DebriefTime   string   `json:"debrief_time"`
	IsCrossDay    bool     `json:"is_cross_day"`
}

// BatchCreateRequest inserts several duties for one user at once.
type BatchCreateRequest struct {
	UserID string              `json:"user_id"`
	Duties []CreateDutyRequest `json:"duties"`
}

// EditTimesRequest rewrites one duty's times. IsCrossDay must be the
// user's explicit confirmation; the server never infers it.
type EditTimesRequest struct {
	ReportTime  string `json:"report_time"`
	DebriefTime string `json:"debrief_time"`
	IsCrossDay  bool   `json:"is_cross_day"`
}

// EditTimesResponse returns the record's recomputed derived fields plus the
// month recalculation that followed.
type EditTimesResponse struct {
	Duty        DutyDTO        `json:"duty"`
	Calculation CalculationDTO `json:"calculation"`
	Warnings    []WarningDTO   `json:"warnings,omitempty"`
}

// BatchDeleteRequest removes several duties for one user at once.
type BatchDeleteRequest struct {
	UserID string   `json:"user_id"`
	IDs    []string `json:"ids"`
}

// =============================================================================
// CALCULATION TYPES
// =============================================================================

// CalculationDTO represents a monthly calculation in API responses.
type CalculationDTO struct {
	UserID             string `json:"user_id"`
	Month              int    `json:"month"`
	Year               int    `json:"year"`
	BasicSalary        string `json:"basic_salary"`
	HousingAllowance   string `json:"housing_allowance"`
	TransportAllowance string `json:"transport_allowance"`
	TotalFixed         string `json:"total_fixed"`
	FlightPay          string `json:"flight_pay"`
	PerDiemPay         string `json:"per_diem_pay"`
	ASBYPay            string `json:"asby_pay"`
	TotalVariable      string `json:"total_variable"`
	TotalDutyHours     string `json:"total_duty_hours"`
	TotalRestHours     string `json:"total_rest_hours"`
	ASBYCount          int    `json:"asby_count"`
	TotalSalary        string `json:"total_salary"`
	UpdatedAt          string `json:"updated_at"`
}

// LayoverDTO represents one derived rest period.
type LayoverDTO struct {
	OutboundID  string `json:"outbound_id"`
	InboundID   string `json:"inbound_id"`
	Destination string `json:"destination"`
	RestHours   string `json:"rest_hours"`
	PerDiemPay  string `json:"per_diem_pay"`
}

// WarningDTO surfaces non-fatal engine findings.
type WarningDTO struct {
	Code    string `json:"code"`
	DutyID  string `json:"duty_id,omitempty"`
	Message string `json:"message"`
}

// RecalculateRequest asks for explicit month recomputations.
type RecalculateRequest struct {
	UserID string `json:"user_id"`
	Months []struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	} `json:"months"`
}

// MonthOutcomeDTO is the per-month result of a bulk operation.
type MonthOutcomeDTO struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	OK          bool            `json:"ok"`
	Error       string          `json:"error,omitempty"`
	Calculation *CalculationDTO `json:"calculation,omitempty"`
}

// BulkResponse reports a bulk operation month by month so partial success
// is visible to the caller.
type BulkResponse struct {
	OK       bool              `json:"ok"`
	Months   []MonthOutcomeDTO `json:"months"`
	Errors   []string          `json:"errors,omitempty"`
	Warnings []WarningDTO      `json:"warnings,omitempty"`
}

// =============================================================================
// PROFILE TYPES
// =============================================================================

// ProfileDTO represents a crew member profile.
type ProfileDTO struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Airline  string `json:"airline"`
	Position string `json:"position"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toDutyDTO(d salary.FlightDuty) DutyDTO {
	return DutyDTO{
		ID:            string(d.ID),
		UserID:        string(d.UserID),
		Date:          d.Date.Format("2006-01-02"),
		DutyType:      string(d.DutyType),
		FlightNumbers: d.FlightNumbers,
		Sectors:       d.Sectors,
		ReportTime:    d.ReportTime.String(),
		DebriefTime:   d.DebriefTime.String(),
		IsCrossDay:    d.IsCrossDay,
		DutyHours:     d.DutyHours.StringFixed(2),
		FlightPay:     d.FlightPay.StringFixed(2),
		DataSource:    string(d.DataSource),
		Month:         d.Month,
		Year:          d.Year,
	}
}

func toCalculationDTO(c salary.MonthlyCalculation) CalculationDTO {
	return CalculationDTO{
		UserID:             string(c.UserID),
		Month:              c.Month,
		Year:               c.Year,
		BasicSalary:        c.BasicSalary.StringFixed(2),
		HousingAllowance:   c.HousingAllowance.StringFixed(2),
		TransportAllowance: c.TransportAllowance.StringFixed(2),
		TotalFixed:         c.TotalFixed.StringFixed(2),
		FlightPay:          c.FlightPay.StringFixed(2),
		PerDiemPay:         c.PerDiemPay.StringFixed(2),
		ASBYPay:            c.ASBYPay.StringFixed(2),
		TotalVariable:      c.TotalVariable.StringFixed(2),
		TotalDutyHours:     c.TotalDutyHours.StringFixed(2),
		TotalRestHours:     c.TotalRestHours.StringFixed(2),
		ASBYCount:          c.ASBYCount,
		TotalSalary:        c.TotalSalary.StringFixed(2),
		UpdatedAt:          c.UpdatedAt.Format(time.RFC3339),
	}
}

func toLayoverDTO(l salary.LayoverRestPeriod) LayoverDTO {
	return LayoverDTO{
		OutboundID:  string(l.OutboundID),
		InboundID:   string(l.InboundID),
		Destination: l.Destination,
		RestHours:   l.RestHours.StringFixed(2),
		PerDiemPay:  l.PerDiemPay.StringFixed(2),
	}
}

func toWarningDTOs(warnings []salary.Warning) []WarningDTO {
	if len(warnings) == 0 {
		return nil
	}
	dtos := make([]WarningDTO, len(warnings))
	for i, w := range warnings {
		dtos[i] = WarningDTO{Code: string(w.Code), DutyID: string(w.DutyID), Message: w.Message}
	}
	return dtos
}
