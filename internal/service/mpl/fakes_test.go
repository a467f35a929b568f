package mpl

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errNotSupported = errors.New("not supported by fake")

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===== mpl.Repository =====

type fakeMplRepo struct {
	mu      sync.Mutex
	entries []mpl.Conversion
}

func (r *fakeMplRepo) Append(ctx context.Context, conversion mpl.Conversion) (mpl.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversion.ID = uuid.NewString()
	r.entries = append(r.entries, conversion)
	return conversion, nil
}

func (r *fakeMplRepo) SumConverted(ctx context.Context, userID string, cutoffStart, cutoffEnd time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, e := range r.entries {
		if e.UserID == userID && e.CutoffStart.Equal(cutoffStart) && e.CutoffEnd.Equal(cutoffEnd) {
			total += e.MplConverted
		}
	}
	return total, nil
}

func (r *fakeMplRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]mpl.Conversion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []mpl.Conversion
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConvertedAt.After(out[j].ConvertedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// ===== attendance.Repository =====

// fakeAttendanceRepo only answers the overtime sum, from per-day minutes.
type fakeAttendanceRepo struct {
	overtimeByDate map[time.Time]int
	userID         string
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	return attendance.Record{}, errNotSupported
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	return nil, nil
}

func (r *fakeAttendanceRepo) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	return nil, nil
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	return errNotSupported
}

func (r *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	return nil, 0, errNotSupported
}

func (r *fakeAttendanceRepo) SumOvertimeMinutes(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	if userID != r.userID {
		return 0, nil
	}
	var total int64
	for date, minutes := range r.overtimeByDate {
		if !date.Before(from) && !date.After(to) {
			total += int64(minutes)
		}
	}
	return total, nil
}

// ===== user.UserRepository =====

type fakeUserRepo struct {
	mu           sync.Mutex
	users        map[string]user.User
	accumulators map[string]user.Accumulators
	locks        int
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
	return nil, errNotSupported
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
	r.mu.Lock()
	r.locks++
	r.mu.Unlock()
	return r.GetAccumulators(ctx, userID)
}

func (r *fakeUserRepo) AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error {
	return errNotSupported
}

func (r *fakeUserRepo) AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc := r.accumulators[userID]
	acc.MplCredits = acc.MplCredits.Add(credits)
	r.accumulators[userID] = acc
	return nil
}

// ===== notification.Notifier =====

type fakeNotifier struct {
	userIDs  []string
	messages []string
	types    []notification.NotificationType
}

func (n *fakeNotifier) NotifyUser(ctx context.Context, userID, title, message string, notifType notification.NotificationType, link string) error {
	n.userIDs = append(n.userIDs, userID)
	n.messages = append(n.messages, message)
	n.types = append(n.types, notifType)
	return nil
}

func (n *fakeNotifier) NotifyAdmins(ctx context.Context, title, message string, notifType notification.NotificationType, link, excludeUserID string) error {
	return errNotSupported
}
