package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindPrecondition: http.StatusConflict,
	apperror.KindPolicy:       http.StatusBadRequest,
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindForbidden:    http.StatusForbidden,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if rejection, ok := apperror.AsRejection(err); ok {
		status, known := kindStatus[rejection.Kind]
		if !known {
			status = http.StatusBadRequest
		}
		message, details := rejectionDetails(err, rejection)
		writeError(w, status, rejection.Code, message, details)
		return
	}

	switch {
	case errors.Is(err, overtime.ErrConfigMissing):
		ServiceUnavailable(w, "Overtime configuration has not been set up")
	case errors.Is(err, notification.ErrServiceStopped):
		ServiceUnavailable(w, "Notification service is shutting down")
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// rejectionDetails exposes the values carried by structured rejections so
// clients can correct the request.
func rejectionDetails(err error, rejection *apperror.Rejection) (string, map[string]string) {
	var quotaErr *mpl.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return quotaErr.Error(), map[string]string{
			"requested":            strconv.Itoa(quotaErr.Requested),
			"remaining":            strconv.Itoa(quotaErr.Quota.Remaining),
			"max_convertible":      strconv.Itoa(quotaErr.Quota.MaxConvertible),
			"total_overtime_hours": quotaErr.Quota.TotalOvertimeHours.StringFixed(2),
		}
	}

	var windowErr *overtime.InvalidWindowError
	if errors.As(err, &windowErr) {
		return windowErr.Error(), map[string]string{
			"start_time": windowErr.Start.String(),
			"end_time":   windowErr.End.String(),
		}
	}

	return rejection.Message, nil
}
