package notification

import (
	"context"
)

// Notifier is how accounting code reaches people. Delivery is best effort:
// callers log a returned error and carry on.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, title, message string, notifType NotificationType, link string) error

	// NotifyAdmins reaches every active administrator except excludeUserID
	NotifyAdmins(ctx context.Context, title, message string, notifType NotificationType, link, excludeUserID string) error
}

// Service defines the notification service interface
type Service interface {
	Notifier

	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	// Direct operations
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
