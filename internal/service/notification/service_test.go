package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employeeID = "7b0f0d8e-6a39-4a0e-9d0b-3c1f2a4b5c6d"
	adminID    = "2c9e7f10-1d2b-4c3a-8e4f-5a6b7c8d9e0f"
	admin2ID   = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"
)

var errNotSupported = errors.New("not supported by fake")

// ===== fakes =====

type fakeRepo struct {
	mu       sync.Mutex
	stored   []*notification.Notification
	batches  int
	disabled map[notification.NotificationType]bool
	prefs    []*notification.Preference
}

func (r *fakeRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, n)
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, ns...)
	r.batches++
	return nil
}

func (r *fakeRepo) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*notification.Notification
	for _, n := range r.stored {
		if n.RecipientID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	ns, _, err := r.GetByUserID(ctx, userID, 1, 100, true)
	return len(ns), err
}

func (r *fakeRepo) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	return errNotSupported
}

func (r *fakeRepo) MarkAllAsRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.stored {
		if n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string, userID string) error {
	return notification.ErrNotificationNotFound
}

func (r *fakeRepo) GetPreferences(ctx context.Context, userID string) ([]*notification.Preference, error) {
	return r.prefs, nil
}

func (r *fakeRepo) UpsertPreference(ctx context.Context, pref *notification.Preference) error {
	r.prefs = append(r.prefs, pref)
	return nil
}

func (r *fakeRepo) IsPushEnabled(ctx context.Context, userID string, notifType notification.NotificationType) (bool, error) {
	return !r.disabled[notifType], nil
}

func (r *fakeRepo) recipients() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.stored))
	for _, n := range r.stored {
		ids = append(ids, n.RecipientID)
	}
	return ids
}

type fakeUserRepo struct{}

func (fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (fakeUserRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	return []string{adminID, admin2ID}, nil
}

func (fakeUserRepo) GetAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return user.Accumulators{MplCredits: decimal.Zero}, nil
}

func (fakeUserRepo) LockAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return user.Accumulators{MplCredits: decimal.Zero}, nil
}

func (fakeUserRepo) AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error {
	return errNotSupported
}

func (fakeUserRepo) AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error {
	return errNotSupported
}

func newTestService(t *testing.T, repo *fakeRepo, hub *sse.Hub, cfg Config) notification.Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.Fixed{At: time.Date(2025, time.March, 10, 9, 45, 0, 0, time.UTC)}
	svc := NewNotificationService(repo, fakeUserRepo{}, hub, clk, logger, cfg)
	t.Cleanup(svc.Stop)
	return svc
}

// ===== QUEUE TESTS =====

func TestNotificationService_StopFlushesQueue(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1, FlushInterval: time.Hour})

	// Act
	require.NoError(t, svc.NotifyUser(context.Background(), employeeID, "Late Clock-In", "You clocked in 45 minutes late.",
		notification.TypeAttendanceLate, "/attendance/1"))
	svc.Stop()

	// Assert
	require.Equal(t, []string{employeeID}, repo.recipients())
	n := repo.stored[0]
	assert.Equal(t, notification.TypeAttendanceLate, n.Type)
	assert.Equal(t, "/attendance/1", n.Link)
	assert.False(t, n.IsRead)
	assert.Equal(t, time.Date(2025, time.March, 10, 9, 45, 0, 0, time.UTC), n.CreatedAt)
}

func TestNotificationService_FlushesFullBatch(t *testing.T) {
	repo := &fakeRepo{}
	hub := sse.NewHub(10, nil)
	stream, cleanup := hub.Subscribe(employeeID)
	defer cleanup()
	svc := newTestService(t, repo, hub, Config{WorkerCount: 1, BatchSize: 1, FlushInterval: time.Hour})

	require.NoError(t, svc.NotifyUser(context.Background(), employeeID, "Overtime Request Approved", "approved",
		notification.TypeOvertimeApproved, "/overtime/requests/1"))

	select {
	case event := <-stream:
		assert.Equal(t, "notification", event.Name)
		resp, ok := event.Data.(notification.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, notification.TypeOvertimeApproved, resp.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestNotificationService_NotifyAdmins_ExcludesActor(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1, FlushInterval: time.Hour})

	err := svc.NotifyAdmins(context.Background(), "Attendance Edited", "edited",
		notification.TypeAttendanceEdited, "/attendance/1", adminID)
	require.NoError(t, err)
	svc.Stop()

	assert.Equal(t, []string{admin2ID}, repo.recipients())
}

func TestNotificationService_DisabledPreferenceSkips(t *testing.T) {
	repo := &fakeRepo{disabled: map[notification.NotificationType]bool{notification.TypeAttendanceLate: true}}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1, FlushInterval: time.Hour})

	require.NoError(t, svc.NotifyUser(context.Background(), employeeID, "Late", "late", notification.TypeAttendanceLate, ""))
	svc.Stop()

	assert.Empty(t, repo.recipients())
}

func TestNotificationService_UnknownType(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, sse.NewHub(10, nil), Config{WorkerCount: 1})

	err := svc.NotifyUser(context.Background(), employeeID, "x", "y", notification.NotificationType("payroll_ready"), "")

	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestNotificationService_AfterStop(t *testing.T) {
	svc := newTestService(t, &fakeRepo{}, sse.NewHub(10, nil), Config{WorkerCount: 1})
	svc.Stop()

	err := svc.NotifyUser(context.Background(), employeeID, "x", "y", notification.TypeAttendanceLate, "")

	assert.ErrorIs(t, err, notification.ErrServiceStopped)
}

func TestNotificationService_AcceptedSendsSurviveConcurrentStop(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 2, BatchSize: 100, QueueSize: 8, FlushInterval: time.Hour})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	start := make(chan struct{})
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 50; i++ {
				err := svc.NotifyUser(context.Background(), employeeID, "Late", "late", notification.TypeAttendanceLate, "")
				if errors.Is(err, notification.ErrServiceStopped) {
					return
				}
				if assert.NoError(t, err) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}
		}()
	}

	close(start)
	time.Sleep(time.Millisecond)
	svc.Stop()
	wg.Wait()

	assert.Len(t, repo.recipients(), accepted, "every accepted notification is stored")
}

func TestNotificationService_FullQueueInsertsDirectly(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1, BatchSize: 100, QueueSize: 1, FlushInterval: time.Hour})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.NotifyUser(context.Background(), employeeID, "Late", "late", notification.TypeAttendanceLate, ""))
	}
	svc.Stop()

	assert.Len(t, repo.recipients(), 5, "nothing is lost when the queue overflows")
}

// ===== READ / PREFERENCE TESTS =====

func TestNotificationService_GetNotifications(t *testing.T) {
	repo := &fakeRepo{stored: []*notification.Notification{
		{ID: "1", RecipientID: employeeID, Type: notification.TypeOvertimeApproved, Title: "Approved"},
		{ID: "2", RecipientID: employeeID, Type: notification.TypeMplConverted, Title: "Converted", IsRead: true},
		{ID: "3", RecipientID: adminID, Type: notification.TypeOvertimeRequested},
	}}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1})

	resp, err := svc.GetNotifications(context.Background(), employeeID, 0, 500, false)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.UnreadCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}

func TestNotificationService_Preferences(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(t, repo, sse.NewHub(10, nil), Config{WorkerCount: 1})

	err := svc.UpdatePreference(context.Background(), employeeID, notification.UpdatePreferenceRequest{
		NotificationType: notification.TypeAttendanceOverBreak,
		PushEnabled:      false,
	})
	require.NoError(t, err)

	prefs, err := svc.GetPreferences(context.Background(), employeeID)
	require.NoError(t, err)
	require.Len(t, prefs, len(notification.AllNotificationTypes()))
	for _, p := range prefs {
		assert.Equal(t, p.NotificationType != notification.TypeAttendanceOverBreak, p.PushEnabled, p.NotificationType)
	}

	err = svc.UpdatePreference(context.Background(), employeeID, notification.UpdatePreferenceRequest{NotificationType: "bogus"})
	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestNotificationService_Subscribe(t *testing.T) {
	hub := sse.NewHub(10, nil)
	svc := newTestService(t, &fakeRepo{}, hub, Config{WorkerCount: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, employeeID)
	defer cleanup()

	hub.Publish(employeeID, sse.Event{UserID: employeeID, Name: "notification", Data: "not a notification"})
	hub.Publish(employeeID, sse.Event{UserID: employeeID, Name: "notification", Data: notification.NotificationResponse{ID: "n-1"}})

	select {
	case event := <-events:
		assert.Equal(t, "notification", event.Event)
		assert.Equal(t, "n-1", event.Data.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	for range events {
	}
}
