package overtime

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
)

// ErrConfigMissing means the singleton schedule has never been set up. Every
// computation depends on it, so callers must stop rather than retry.
var ErrConfigMissing = errors.New("overtime configuration is missing")

// Overtime request errors
var (
	ErrRequestNotFound         = apperror.NewNotFound("OVERTIME_REQUEST_NOT_FOUND", "overtime request not found")
	ErrRequestAlreadyProcessed = apperror.NewPrecondition("OVERTIME_REQUEST_ALREADY_PROCESSED", "overtime request has already been processed")
	ErrRequestDuplicate        = apperror.NewPrecondition("OVERTIME_REQUEST_DUPLICATE", "an overtime request for this date is already pending or approved")
	ErrNotRequestOwner         = apperror.NewForbidden("OVERTIME_REQUEST_NOT_OWNER", "only the requester can change this overtime request")
	ErrInvalidWindow           = apperror.NewPolicy("OVERTIME_INVALID_WINDOW", "overtime start time must be before end time")
)

// InvalidWindowError carries the rejected boundaries so the caller can
// correct them.
type InvalidWindowError struct {
	Start timeofday.TimeOfDay
	End   timeofday.TimeOfDay
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("overtime start time (%s) must be before end time (%s)", e.Start, e.End)
}

func (e *InvalidWindowError) Unwrap() error {
	return ErrInvalidWindow
}
