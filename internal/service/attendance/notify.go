package attendance

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
)

// notice is one event told to the affected user and to the administrators.
type notice struct {
	notifType    notification.NotificationType
	title        string
	userMessage  string
	adminTitle   string
	adminMessage string
	link         string
	exclude      string
}

// send dispatches n after the state change has committed. Delivery failures
// are logged and never reach the caller.
func (s *AttendanceServiceImpl) send(ctx context.Context, userID string, n notice) {
	if s.notifier == nil {
		return
	}
	if n.userMessage != "" {
		if err := s.notifier.NotifyUser(ctx, userID, n.title, n.userMessage, n.notifType, n.link); err != nil {
			s.logger.Warn("failed to notify user", "user_id", userID, "type", n.notifType, "error", err)
		}
	}
	if n.adminMessage != "" {
		if err := s.notifier.NotifyAdmins(ctx, n.adminTitle, n.adminMessage, n.notifType, n.link, n.exclude); err != nil {
			s.logger.Warn("failed to notify admins", "type", n.notifType, "error", err)
		}
	}
}

// displayName falls back to the id when the user cannot be read.
func (s *AttendanceServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u.FullName == "" {
		return userID
	}
	return u.FullName
}

func recordLink(id string) string {
	return "/attendance/" + id
}

// formatMinutes renders 45 as "45 minutes" and 90 as "1 hour 30 minutes".
func formatMinutes(m int) string {
	unit := func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}

	h, rest := m/60, m%60
	switch {
	case h == 0:
		return unit(rest, "minute")
	case rest == 0:
		return unit(h, "hour")
	}
	return unit(h, "hour") + " " + unit(rest, "minute")
}
