package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

const eventName = "notification"

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo     notification.Repository
	userRepo user.UserRepository
	hub      *sse.Hub
	clock    clock.Clock
	logger   *slog.Logger
	config   Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once

	// enqueueMu is held for reading across the stopped check and the send,
	// and for writing by Stop, so no send lands after the final drain
	enqueueMu sync.RWMutex
	stopped   bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(
	repo notification.Repository,
	userRepo user.UserRepository,
	hub *sse.Hub,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{
		repo:     repo,
		userRepo: userRepo,
		hub:      hub,
		clock:    clk,
		logger:   logger.With("service", "notification"),
		config:   cfg,
		queue:    make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("notification workers started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval.String(),
	)

	return s
}

// worker drains the queue into batch inserts
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			s.logger.Error("failed to insert notification batch", "worker", id, "size", len(notifications), "error", err)
		} else {
			s.logger.Debug("notification batch inserted", "worker", id, "size", len(notifications))
			for _, n := range notifications {
				s.publish(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what producers managed to enqueue before the stop
		drain:
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

// NotifyUser implements notification.Notifier.
func (s *service) NotifyUser(ctx context.Context, userID, title, message string, notifType notification.NotificationType, link string) error {
	return s.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: userID,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Link:        link,
	})
}

// NotifyAdmins implements notification.Notifier.
func (s *service) NotifyAdmins(ctx context.Context, title, message string, notifType notification.NotificationType, link, excludeUserID string) error {
	adminIDs, err := s.userRepo.ListAdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list administrators: %w", err)
	}

	var firstErr error
	for _, adminID := range adminIDs {
		if adminID == excludeUserID {
			continue
		}
		err := s.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: adminID,
			Type:        notifType,
			Title:       title,
			Message:     message,
			Link:        link,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if !req.Type.Valid() {
		return notification.ErrInvalidNotificationType
	}

	if s.isStopped() {
		return notification.ErrServiceStopped
	}

	enabled, err := s.repo.IsPushEnabled(ctx, req.RecipientID, req.Type)
	if err != nil {
		return fmt.Errorf("failed to read notification preference: %w", err)
	}
	if !enabled {
		return nil
	}

	queued, err := s.enqueue(ctx, req)
	if err != nil || queued {
		return err
	}
	// queue full
	return s.directInsert(ctx, req)
}

// enqueue reports false when the queue is full.
func (s *service) enqueue(ctx context.Context, req notification.CreateNotificationRequest) (bool, error) {
	s.enqueueMu.RLock()
	defer s.enqueueMu.RUnlock()

	if s.stopped {
		return false, notification.ErrServiceStopped
	}
	select {
	case s.queue <- req:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	default:
		return false, nil
	}
}

func (s *service) isStopped() bool {
	s.enqueueMu.RLock()
	defer s.enqueueMu.RUnlock()
	return s.stopped
}

func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := s.newNotification(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	s.publish(n)
	return nil
}

func (s *service) newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Link:        req.Link,
		IsRead:      false,
		CreatedAt:   s.clock.Now(),
	}
}

func (s *service) publish(n *notification.Notification) {
	s.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Name:   eventName,
		Data:   toResponse(n),
	})
}

func toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications retrieves paginated notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete removes a notification
func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	if !validator.IsValidUUID(notificationID) {
		return notification.ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences lists every notification type, defaulting to enabled
func (s *service) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}

	prefMap := make(map[notification.NotificationType]*notification.Preference)
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		responses[i] = notification.PreferenceResponse{NotificationType: t, PushEnabled: true}
		if p, ok := prefMap[t]; ok {
			responses[i].PushEnabled = p.PushEnabled
		}
	}

	return responses, nil
}

// UpdatePreference updates a notification preference
func (s *service) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	return s.repo.UpsertPreference(ctx, &notification.Preference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        s.clock.Now(),
	})
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes pending notifications and waits for the workers to exit
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.enqueueMu.Lock()
		s.stopped = true
		s.enqueueMu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		s.logger.Info("notification workers stopped")
	})
}
