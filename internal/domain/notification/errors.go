package notification

import (
	"errors"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
)

// Notification domain errors
var (
	ErrNotificationNotFound    = apperror.NewNotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	ErrInvalidNotificationType = apperror.NewPolicy("NOTIFICATION_INVALID_TYPE", "invalid notification type")
	ErrServiceStopped          = errors.New("notification service is stopped")
)
