package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceLate      NotificationType = "attendance_late"
	TypeAttendanceOverBreak NotificationType = "attendance_over_break"
	TypeAttendanceEarlyOut  NotificationType = "attendance_early_out"
	TypeAttendanceEdited    NotificationType = "attendance_edited"
	TypeOvertimeRequested   NotificationType = "overtime_requested"
	TypeOvertimeApproved    NotificationType = "overtime_approved"
	TypeOvertimeRejected    NotificationType = "overtime_rejected"
	TypeOvertimeCanceled    NotificationType = "overtime_canceled"
	TypeMplConverted        NotificationType = "mpl_converted"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeAttendanceLate,
		TypeAttendanceOverBreak,
		TypeAttendanceEarlyOut,
		TypeAttendanceEdited,
		TypeOvertimeRequested,
		TypeOvertimeApproved,
		TypeOvertimeRejected,
		TypeOvertimeCanceled,
		TypeMplConverted,
	}
}

func (t NotificationType) Valid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Link        string
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// Preference says whether a user wants pushes of one type
type Preference struct {
	UserID           string
	NotificationType NotificationType
	PushEnabled      bool
	UpdatedAt        time.Time
}
