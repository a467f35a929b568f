package mpl

import (
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// MPL DTOs
// ========================================

type QuotaRequest struct {
	UserID        string `json:"user_id"`
	ReferenceDate string `json:"reference_date"` // YYYY-MM-DD, today when empty
}

func (r *QuotaRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if r.ReferenceDate != "" {
		if _, valid := validator.IsValidDate(r.ReferenceDate); !valid {
			errs.Add("reference_date", "reference_date must be in YYYY-MM-DD format")
		}
	}
	return errs.OrNil()
}

type ConvertRequest struct {
	UserID        string `json:"user_id"`
	ReferenceDate string `json:"reference_date"` // any date inside the cutoff, today when empty
	Units         int    `json:"units"`
}

func (r *ConvertRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if r.ReferenceDate != "" {
		if _, valid := validator.IsValidDate(r.ReferenceDate); !valid {
			errs.Add("reference_date", "reference_date must be in YYYY-MM-DD format")
		}
	}
	if r.Units < 1 {
		errs.Add("units", "units must be at least 1")
	}
	return errs.OrNil()
}

type HistoryFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
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
	return errs.OrNil()
}

type QuotaResponse struct {
	UserID             string          `json:"user_id"`
	CutoffStart        string          `json:"cutoff_start"`
	CutoffEnd          string          `json:"cutoff_end"`
	TotalOvertimeHours decimal.Decimal `json:"total_overtime_hours"`
	MaxConvertible     int             `json:"max_convertible"`
	AlreadyConverted   int             `json:"already_converted"`
	Remaining          int             `json:"remaining"`
}

type ConversionResponse struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"user_id"`
	CutoffStart           string          `json:"cutoff_start"`
	CutoffEnd             string          `json:"cutoff_end"`
	TotalOvertimeHours    decimal.Decimal `json:"total_overtime_hours"`
	MplConverted          int             `json:"mpl_converted"`
	ResidualOvertimeHours decimal.Decimal `json:"residual_overtime_hours"`
	ConvertedBy           string          `json:"converted_by"`
	ConvertedAt           string          `json:"converted_at"`
}

type ListConversionResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Conversions []ConversionResponse `json:"conversions"`
}

type BalanceResponse struct {
	UserID                   string          `json:"user_id"`
	OvertimeMinutes          int             `json:"accumulated_overtime_minutes"`
	NightDifferentialMinutes int             `json:"accumulated_night_differential_minutes"`
	MplCredits               decimal.Decimal `json:"mpl_credits"`
}
