package mpl

import (
	"fmt"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
)

var (
	ErrQuotaExceeded    = apperror.NewPolicy("MPL_QUOTA_EXCEEDED", "requested MPL units exceed the remaining convertible balance")
	ErrNothingToConvert = apperror.NewPolicy("MPL_NOTHING_TO_CONVERT", "at least one MPL unit must be requested")
)

// QuotaExceededError carries the computed quota so the caller can retry
// with a valid amount.
type QuotaExceededError struct {
	Requested int
	Quota     Quota
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("requested %d MPL unit(s) but only %d remain (max convertible %d from %s overtime hours)",
		e.Requested, e.Quota.Remaining, e.Quota.MaxConvertible, e.Quota.TotalOvertimeHours.StringFixed(2))
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
