package attendance

import (
	"strings"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// AdminEditRequest rewrites a record's timestamps. Nil fields keep their
// current value; the Clear flags remove one.
type AdminEditRequest struct {
	ID            string  `json:"-"`
	ClockIn       *string `json:"clock_in,omitempty"`     // RFC3339
	ClockOut      *string `json:"clock_out,omitempty"`    // RFC3339
	BreakStart    *string `json:"break_start,omitempty"`  // RFC3339
	BreakFinish   *string `json:"break_finish,omitempty"` // RFC3339
	ClearClockOut bool    `json:"clear_clock_out"`
	ClearBreak    bool    `json:"clear_break"`

	// Status marks the day absent or on leave, which drops every timestamp.
	Status *string `json:"status,omitempty"`
}

func (r *AdminEditRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}

	timestamps := []struct {
		name  string
		value *string
	}{
		{"clock_in", r.ClockIn},
		{"clock_out", r.ClockOut},
		{"break_start", r.BreakStart},
		{"break_finish", r.BreakFinish},
	}
	for _, ts := range timestamps {
		if ts.value == nil {
			continue
		}
		if _, valid := validator.IsValidDateTime(*ts.value); !valid {
			errs.Add(ts.name, ts.name+" must be an ISO8601 timestamp")
		}
	}

	if r.ClearClockOut && r.ClockOut != nil {
		errs.Add("clear_clock_out", "clear_clock_out cannot be combined with clock_out")
	}
	if r.ClearBreak && (r.BreakStart != nil || r.BreakFinish != nil) {
		errs.Add("clear_break", "clear_break cannot be combined with break_start or break_finish")
	}

	if r.Status != nil {
		status := Status(*r.Status)
		if status != StatusAbsent && status != StatusOnLeave {
			errs.Add("status", "status override must be one of: absent, on_leave")
		}
		if r.ClockIn != nil || r.ClockOut != nil || r.BreakStart != nil || r.BreakFinish != nil ||
			r.ClearClockOut || r.ClearBreak {
			errs.Add("status", "status override drops every timestamp and cannot be combined with timestamp changes")
		}
	}

	if r.ClockIn == nil && r.ClockOut == nil && r.BreakStart == nil && r.BreakFinish == nil &&
		!r.ClearClockOut && !r.ClearBreak && r.Status == nil {
		errs.Add("body", "at least one field must be changed")
	}

	return errs.OrNil()
}

type SetVisibilityRequest struct {
	ID         string `json:"-"`
	Visibility string `json:"visibility"`
}

func (r *SetVisibilityRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if !Visibility(r.Visibility).Valid() {
		errs.Add("visibility", "visibility must be one of: enabled, disabled")
	}
	return errs.OrNil()
}

type Filter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// IncludeDisabled is set by the service for administrators only.
	IncludeDisabled bool `json:"-"`

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.UserID != nil && *f.UserID != "" && !validator.IsValidUUID(*f.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if f.Status != nil && *f.Status != "" && !Status(*f.Status).Valid() {
		errs.Add("status", "status must be one of: present, absent, late, on_leave")
	}

	var startOK, endOK bool
	var startStr, endStr string
	if f.StartDate != nil && *f.StartDate != "" {
		if _, startOK = validator.IsValidDate(*f.StartDate); !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		startStr = *f.StartDate
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, endOK = validator.IsValidDate(*f.EndDate); !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		endStr = *f.EndDate
	}
	// YYYY-MM-DD compares correctly as a string
	if startOK && endOK && startStr > endStr {
		errs.Add("end_date", "end_date must be on or after start_date")
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be one of: asc, desc")
	}

	return errs.OrNil()
}

type RecordResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	UserName    *string `json:"user_name,omitempty"`
	Date        string  `json:"date"`
	ClockIn     *string `json:"clock_in,omitempty"`
	ClockOut    *string `json:"clock_out,omitempty"`
	BreakStart  *string `json:"break_start,omitempty"`
	BreakFinish *string `json:"break_finish,omitempty"`
	Status      string  `json:"status"`
	Stage       string  `json:"stage"`

	LateMinutes              int `json:"late_minutes"`
	BreakMinutes             int `json:"break_minutes"`
	BreakOverageMinutes      int `json:"break_overage_minutes"`
	WorkedMinutes            int `json:"worked_minutes"`
	ActualOvertimeMinutes    int `json:"actual_overtime_minutes"`
	OvertimeMinutes          int `json:"overtime_minutes"`
	NightDifferentialMinutes int `json:"night_differential_minutes"`
	EarlyOutMinutes          int `json:"early_out_minutes"`

	Visibility   string  `json:"visibility"`
	LastEditedBy *string `json:"last_edited_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// TodayResponse tells the client which lifecycle actions are available now.
type TodayResponse struct {
	Date          string          `json:"date"`
	Record        *RecordResponse `json:"record,omitempty"`
	CanClockIn    bool            `json:"can_clock_in"`
	CanStartBreak bool            `json:"can_start_break"`
	CanEndBreak   bool            `json:"can_end_break"`
	CanClockOut   bool            `json:"can_clock_out"`
}

type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}
