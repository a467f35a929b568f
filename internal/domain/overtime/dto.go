package overtime

import (
	"strings"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
)

// ========================================
// OVERTIME REQUEST DTOs
// ========================================

type SubmitRequest struct {
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
	Reason    string `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(r.Date); !valid {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	if !validator.IsValidTimeOfDay(r.StartTime) {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if !validator.IsValidTimeOfDay(r.EndTime) {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	} else if len(r.Reason) > 500 {
		errs.Add("reason", "reason must not exceed 500 characters")
	}

	return errs.OrNil()
}

// EditRequest changes a pending request. Nil fields keep their value.
type EditRequest struct {
	ID        string  `json:"-"`
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

func (r *EditRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != nil {
		if _, valid := validator.IsValidDate(*r.Date); !valid {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}
	if r.StartTime != nil && !validator.IsValidTimeOfDay(*r.StartTime) {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if r.EndTime != nil && !validator.IsValidTimeOfDay(*r.EndTime) {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if r.Reason != nil && validator.IsEmpty(*r.Reason) {
		errs.Add("reason", "reason must not be empty")
	}

	return errs.OrNil()
}

type RejectRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "rejection reason is required")
	}
	return errs.OrNil()
}

type RequestFilter struct {
	UserID    *string `json:"user_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RequestFilter) Validate() error {
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

	if f.Status != nil && !RequestStatus(*f.Status).Valid() {
		errs.Add("status", "status must be one of: pending, approved, rejected, canceled")
	}
	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be one of: asc, desc")
	}

	return errs.OrNil()
}

type RequestResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        *string `json:"user_name,omitempty"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []RequestResponse `json:"requests"`
}

// ========================================
// CONFIG DTOs
// ========================================

type UpdateConfigRequest struct {
	OfficeStart            string `json:"office_start"`
	OfficeEnd              string `json:"office_end"`
	BreakMaxMinutes        int    `json:"break_max_minutes"`
	NightDifferentialStart string `json:"night_differential_start"`
	NightDifferentialEnd   string `json:"night_differential_end"`
	DailyMaxMinutes        int    `json:"daily_max_minutes"`
}

func (r *UpdateConfigRequest) Validate() error {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value string
	}{
		{"office_start", r.OfficeStart},
		{"office_end", r.OfficeEnd},
		{"night_differential_start", r.NightDifferentialStart},
		{"night_differential_end", r.NightDifferentialEnd},
	}
	for _, f := range fields {
		if !validator.IsValidTimeOfDay(f.value) {
			errs.Add(f.name, f.name+" must be in HH:MM format")
		}
	}
	if validator.IsValidTimeOfDay(r.OfficeStart) && r.OfficeStart == r.OfficeEnd {
		errs.Add("office_end", "office_end must differ from office_start")
	}
	if validator.IsValidTimeOfDay(r.NightDifferentialStart) && r.NightDifferentialStart == r.NightDifferentialEnd {
		errs.Add("night_differential_end", "night_differential_end must differ from night_differential_start")
	}
	if r.BreakMaxMinutes < 0 || r.BreakMaxMinutes > 24*60 {
		errs.Add("break_max_minutes", "break_max_minutes must be between 0 and 1440")
	}
	if r.DailyMaxMinutes < 0 || r.DailyMaxMinutes > 24*60 {
		errs.Add("daily_max_minutes", "daily_max_minutes must be between 0 and 1440")
	}

	return errs.OrNil()
}

type ConfigResponse struct {
	OfficeStart            string  `json:"office_start"`
	OfficeEnd              string  `json:"office_end"`
	BreakMaxMinutes        int     `json:"break_max_minutes"`
	NightDifferentialStart string  `json:"night_differential_start"`
	NightDifferentialEnd   string  `json:"night_differential_end"`
	DailyMaxMinutes        int     `json:"daily_max_minutes"`
	UpdatedBy              *string `json:"updated_by,omitempty"`
	UpdatedAt              string  `json:"updated_at"`
}
