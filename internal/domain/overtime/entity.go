package overtime

import (
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
)

// Config is the singleton office schedule every derived figure is computed from.
type Config struct {
	OfficeStart            timeofday.TimeOfDay
	OfficeEnd              timeofday.TimeOfDay
	BreakMaxMinutes        int
	NightDifferentialStart timeofday.TimeOfDay
	NightDifferentialEnd   timeofday.TimeOfDay // may be earlier than start: the window wraps past midnight
	DailyMaxMinutes        int
	UpdatedBy              *string
	UpdatedAt              time.Time
}

// BreakMax returns the allowed break length.
func (c Config) BreakMax() time.Duration {
	return time.Duration(c.BreakMaxMinutes) * time.Minute
}

// DailyMax returns the per-day overtime cap.
func (c Config) DailyMax() time.Duration {
	return time.Duration(c.DailyMaxMinutes) * time.Minute
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusCanceled RequestStatus = "canceled"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCanceled:
		return true
	}
	return false
}

// Request is an employee's ask to work overtime in a window on one date.
type Request struct {
	ID        string
	UserID    string
	Date      time.Time
	StartTime timeofday.TimeOfDay
	EndTime   timeofday.TimeOfDay
	Reason    string
	Status    RequestStatus

	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName *string
}

// WindowDuration is the approved length, zero for malformed windows.
func (r Request) WindowDuration() time.Duration {
	if r.EndTime <= r.StartTime {
		return 0
	}
	return r.EndTime.Duration() - r.StartTime.Duration()
}
