package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errNotSupported = errors.New("not supported by fake")

// fakeTx runs fn without a real transaction.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// ===== attendance.Repository =====

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record
	updates int
	now     func() time.Time
}

func newFakeAttendanceRepo(now func() time.Time) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]attendance.Record), now: now}
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.UserID == record.UserID && existing.Date.Equal(record.Date) {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
	}
	record.ID = uuid.NewString()
	record.CreatedAt = r.now()
	record.UpdatedAt = record.CreatedAt
	r.records[record.ID] = record
	return record, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return record, nil
}

func (r *fakeAttendanceRepo) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.UserID == userID && record.Date.Equal(date) {
			found := record
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	return r.GetByUserAndDate(ctx, userID, date)
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	record.UpdatedAt = r.now()
	r.records[record.ID] = record
	r.updates++
	return nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, record := range r.records {
		if filter.UserID != nil && record.UserID != *filter.UserID {
			continue
		}
		if !filter.IncludeDisabled && record.Visibility == attendance.VisibilityDisabled {
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) SumOvertimeMinutes(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, record := range r.records {
		if record.UserID == userID && record.Visibility == attendance.VisibilityEnabled &&
			!record.Date.Before(from) && !record.Date.After(to) {
			total += int64(record.Accounting.OvertimeMinutes)
		}
	}
	return total, nil
}

func (r *fakeAttendanceRepo) only() attendance.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		return record
	}
	return attendance.Record{}
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
	approved []overtime.Request
}

func (r *fakeRequestRepo) Create(ctx context.Context, request overtime.Request) (overtime.Request, error) {
	return overtime.Request{}, errNotSupported
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	return overtime.Request{}, overtime.ErrRequestNotFound
}

func (r *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (overtime.Request, error) {
	return overtime.Request{}, overtime.ErrRequestNotFound
}

func (r *fakeRequestRepo) GetApprovedByUserAndDate(ctx context.Context, userID string, date time.Time) (*overtime.Request, error) {
	for _, req := range r.approved {
		if req.UserID == userID && req.Date.Equal(date) && req.Status == overtime.RequestStatusApproved {
			found := req
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) ExistsActiveForDate(ctx context.Context, userID string, date time.Time, excludeID string) (bool, error) {
	return false, errNotSupported
}

func (r *fakeRequestRepo) Update(ctx context.Context, request overtime.Request) error {
	return errNotSupported
}

func (r *fakeRequestRepo) List(ctx context.Context, filter overtime.RequestFilter) ([]overtime.Request, int64, error) {
	return nil, 0, errNotSupported
}

// ===== user.UserRepository =====

type fakeUserRepo struct {
	mu           sync.Mutex
	users        map[string]user.User
	accumulators map[string]user.Accumulators
	accrualCalls int
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]user.User), accumulators: make(map[string]user.Accumulators)}
	for _, u := range users {
		r.users[u.ID] = u
		r.accumulators[u.ID] = user.Accumulators{UserID: u.ID, MplCredits: decimal.Zero}
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) ListAdminIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, u := range r.users {
		if u.Role == user.RoleAdmin && u.IsActive {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) GetAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accumulators[userID]
	if !ok {
		return user.Accumulators{}, user.ErrUserNotFound
	}
	return acc, nil
}

func (r *fakeUserRepo) LockAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return r.GetAccumulators(ctx, userID)
}

func (r *fakeUserRepo) AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc := r.accumulators[userID]
	acc.UserID = userID
	acc.OvertimeMinutes += overtimeMinutes
	acc.NightDifferentialMinutes += nightDifferentialMinutes
	r.accumulators[userID] = acc
	r.accrualCalls++
	return nil
}

func (r *fakeUserRepo) AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error {
	return errNotSupported
}

// ===== notification.Notifier =====

type sentNotification struct {
	recipient string // empty for admin broadcasts
	toAdmins  bool
	notifType notification.NotificationType
	title     string
	message   string
	link      string
	exclude   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *fakeNotifier) NotifyUser(ctx context.Context, userID, title, message string, notifType notification.NotificationType, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{recipient: userID, notifType: notifType, title: title, message: message, link: link})
	return n.err
}

func (n *fakeNotifier) NotifyAdmins(ctx context.Context, title, message string, notifType notification.NotificationType, link, excludeUserID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{toAdmins: true, notifType: notifType, title: title, message: message, link: link, exclude: excludeUserID})
	return n.err
}

func (n *fakeNotifier) ofType(t notification.NotificationType) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.notifType == t {
			out = append(out, s)
		}
	}
	return out
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
