package overtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===== overtime repositories =====

type fakeConfigRepo struct {
	cfg *overtime.Config
}

func (r *fakeConfigRepo) Get(ctx context.Context) (overtime.Config, error) {
	if r.cfg == nil {
		return overtime.Config{}, overtime.ErrConfigMissing
	}
	return *r.cfg, nil
}

func (r *fakeConfigRepo) Upsert(ctx context.Context, cfg overtime.Config) (overtime.Config, error) {
	r.cfg = &cfg
	return cfg, nil
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]overtime.Request
	now      func() time.Time
}

func newFakeRequestRepo(now func() time.Time) *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]overtime.Request), now: now}
}

func (r *fakeRequestRepo) Create(ctx context.Context, request overtime.Request) (overtime.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = uuid.NewString()
	request.CreatedAt = r.now()
	request.UpdatedAt = request.CreatedAt
	r.requests[request.ID] = request
	return request, nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return overtime.Request{}, overtime.ErrRequestNotFound
	}
	return request, nil
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (overtime.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRequestRepo) GetApprovedByUserAndDate(ctx context.Context, userID string, date time.Time) (*overtime.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.UserID == userID && request.Date.Equal(date) && request.Status == overtime.RequestStatusApproved {
			found := request
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) ExistsActiveForDate(ctx context.Context, userID string, date time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.ID == excludeID || request.UserID != userID || !request.Date.Equal(date) {
			continue
		}
		if request.Status == overtime.RequestStatusPending || request.Status == overtime.RequestStatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, request overtime.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[request.ID]; !ok {
		return overtime.ErrRequestNotFound
	}
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) List(ctx context.Context, filter overtime.RequestFilter) ([]overtime.Request, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []overtime.Request
	for _, request := range r.requests {
		if filter.UserID != nil && request.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && string(request.Status) != *filter.Status {
			continue
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, int64(len(out)), nil
}

// ===== user.UserRepository =====

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for _, u := range r.users {
		if u.Role == user.RoleAdmin {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) GetAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return user.Accumulators{UserID: userID, MplCredits: decimal.Zero}, nil
}

func (r *fakeUserRepo) LockAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return r.GetAccumulators(ctx, userID)
}

func (r *fakeUserRepo) AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error {
	return nil
}

func (r *fakeUserRepo) AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error {
	return nil
}

// ===== notification.Notifier =====

type sentNotification struct {
	recipient string
	toAdmins  bool
	notifType notification.NotificationType
	message   string
	link      string
	exclude   string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) NotifyUser(ctx context.Context, userID, title, message string, notifType notification.NotificationType, link string) error {
	n.sent = append(n.sent, sentNotification{recipient: userID, notifType: notifType, message: message, link: link})
	return nil
}

func (n *fakeNotifier) NotifyAdmins(ctx context.Context, title, message string, notifType notification.NotificationType, link, excludeUserID string) error {
	n.sent = append(n.sent, sentNotification{toAdmins: true, notifType: notifType, message: message, link: link, exclude: excludeUserID})
	return nil
}
