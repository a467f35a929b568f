package overtime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	employeeID = "7b0f0d8e-6a39-4a0e-9d0b-3c1f2a4b5c6d"
	otherID    = "5d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
	adminID    = "2c9e7f10-1d2b-4c3a-8e4f-5a6b7c8d9e0f"

	employee = user.Actor{UserID: employeeID, Role: user.RoleEmployee}
	admin    = user.Actor{UserID: adminID, Role: user.RoleAdmin}
)

type testEnv struct {
	svc      overtime.Service
	clock    *clock.Fixed
	config   *fakeConfigRepo
	requests *fakeRequestRepo
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:    &clock.Fixed{At: time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)},
		config:   &fakeConfigRepo{},
		notifier: &fakeNotifier{},
	}
	env.requests = newFakeRequestRepo(func() time.Time { return env.clock.At })

	users := newFakeUserRepo(
		user.User{ID: employeeID, FullName: "Rina Putri", Role: user.RoleEmployee, IsActive: true},
		user.User{ID: otherID, FullName: "Dewi Lestari", Role: user.RoleEmployee, IsActive: true},
		user.User{ID: adminID, FullName: "Budi Santoso", Role: user.RoleAdmin, IsActive: true},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewOvertimeService(fakeTx{}, env.config, env.requests, users, env.notifier, env.clock, logger)
	return env
}

func (e *testEnv) submit(t *testing.T, date, start, end string) overtime.RequestResponse {
	t.Helper()
	resp, err := e.svc.Submit(context.Background(), employeeID, overtime.SubmitRequest{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Reason:    "quarter-end close",
	})
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

// ===== SUBMIT TESTS =====

func TestOvertimeService_Submit_Success(t *testing.T) {
	env := newTestEnv(t)

	// Act
	resp := env.submit(t, "2025-03-10", "17:00", "20:00")

	// Assert
	assert.Equal(t, string(overtime.RequestStatusPending), resp.Status)
	assert.Equal(t, "17:00", resp.StartTime)
	assert.Equal(t, "20:00", resp.EndTime)
	assert.Equal(t, 180, resp.DurationMinutes)

	require.Len(t, env.notifier.sent, 1)
	sent := env.notifier.sent[0]
	assert.True(t, sent.toAdmins)
	assert.Equal(t, notification.TypeOvertimeRequested, sent.notifType)
	assert.Equal(t, employeeID, sent.exclude)
	assert.Contains(t, sent.message, "Rina Putri")
	assert.Equal(t, "/overtime/requests/"+resp.ID, sent.link)
}

func TestOvertimeService_Submit_InvalidWindow(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), employeeID, overtime.SubmitRequest{
		Date:      "2025-03-10",
		StartTime: "20:00",
		EndTime:   "17:00",
		Reason:    "late deploy",
	})

	require.ErrorIs(t, err, overtime.ErrInvalidWindow)
	var windowErr *overtime.InvalidWindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, timeofday.Must(20, 0), windowErr.Start)
	assert.Equal(t, timeofday.Must(17, 0), windowErr.End)
	assert.Empty(t, env.requests.requests)
}

func TestOvertimeService_Submit_EqualBoundsRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), employeeID, overtime.SubmitRequest{
		Date:      "2025-03-10",
		StartTime: "18:00",
		EndTime:   "18:00",
		Reason:    "nothing",
	})

	assert.ErrorIs(t, err, overtime.ErrInvalidWindow)
}

func TestOvertimeService_Submit_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Submit(context.Background(), employeeID, overtime.SubmitRequest{
		Date:      "10-03-2025",
		StartTime: "5pm",
		EndTime:   "20:00",
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Len(t, validationErrs, 3)
}

func TestOvertimeService_Submit_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Submit(context.Background(), employeeID, overtime.SubmitRequest{
		Date:      "2025-03-10",
		StartTime: "19:00",
		EndTime:   "21:00",
		Reason:    "second window",
	})

	assert.ErrorIs(t, err, overtime.ErrRequestDuplicate)
}

func TestOvertimeService_Submit_AfterRejectionAllowed(t *testing.T) {
	env := newTestEnv(t)
	first := env.submit(t, "2025-03-10", "17:00", "19:00")
	_, err := env.svc.Reject(context.Background(), admin, overtime.RejectRequest{ID: first.ID, Reason: "not needed"})
	require.NoError(t, err)

	second := env.submit(t, "2025-03-10", "17:00", "18:00")

	assert.NotEqual(t, first.ID, second.ID)
}

// ===== EDIT / CANCEL TESTS =====

func TestOvertimeService_Edit_Success(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	resp, err := env.svc.Edit(context.Background(), employeeID, overtime.EditRequest{
		ID:      created.ID,
		EndTime: strPtr("21:30"),
	})

	require.NoError(t, err)
	assert.Equal(t, "17:00", resp.StartTime)
	assert.Equal(t, "21:30", resp.EndTime)
	assert.Equal(t, 270, resp.DurationMinutes)
}

func TestOvertimeService_Edit_InvalidWindowKeepsRequest(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Edit(context.Background(), employeeID, overtime.EditRequest{
		ID:        created.ID,
		StartTime: strPtr("19:30"),
	})

	require.ErrorIs(t, err, overtime.ErrInvalidWindow)
	stored, err := env.requests.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, timeofday.Must(17, 0), stored.StartTime)
}

func TestOvertimeService_Edit_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Edit(context.Background(), otherID, overtime.EditRequest{
		ID:     created.ID,
		Reason: strPtr("mine now"),
	})

	assert.ErrorIs(t, err, overtime.ErrNotRequestOwner)
}

func TestOvertimeService_Edit_AlreadyApproved(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")
	_, err := env.svc.Approve(context.Background(), admin, created.ID)
	require.NoError(t, err)

	_, err = env.svc.Edit(context.Background(), employeeID, overtime.EditRequest{
		ID:      created.ID,
		EndTime: strPtr("23:00"),
	})

	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)
}

func TestOvertimeService_Cancel(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	resp, err := env.svc.Cancel(context.Background(), employeeID, created.ID)

	require.NoError(t, err)
	assert.Equal(t, string(overtime.RequestStatusCanceled), resp.Status)

	_, err = env.svc.Cancel(context.Background(), employeeID, created.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)

	_, err = env.svc.Approve(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed, "a canceled request cannot be approved")
}

// ===== REVIEW TESTS =====

func TestOvertimeService_Approve(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")
	env.clock.At = env.clock.At.Add(2 * time.Hour)

	resp, err := env.svc.Approve(context.Background(), admin, created.ID)

	require.NoError(t, err)
	assert.Equal(t, string(overtime.RequestStatusApproved), resp.Status)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, adminID, *resp.ReviewedBy)
	require.NotNil(t, resp.ReviewedAt)
	assert.Equal(t, "2025-03-10T10:00:00Z", *resp.ReviewedAt)

	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, notification.TypeOvertimeApproved, last.notifType)
	assert.Equal(t, employeeID, last.recipient)
}

func TestOvertimeService_Approve_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Approve(context.Background(), employee, created.ID)

	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
	stored, _ := env.requests.GetByID(context.Background(), created.ID)
	assert.Equal(t, overtime.RequestStatusPending, stored.Status)
}

func TestOvertimeService_Approve_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Approve(context.Background(), admin, "00000000-0000-4000-8000-000000000000")

	assert.ErrorIs(t, err, overtime.ErrRequestNotFound)
}

func TestOvertimeService_Reject(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	resp, err := env.svc.Reject(context.Background(), admin, overtime.RejectRequest{ID: created.ID, Reason: "budget frozen"})

	require.NoError(t, err)
	assert.Equal(t, string(overtime.RequestStatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "budget frozen", *resp.RejectionReason)

	last := env.notifier.sent[len(env.notifier.sent)-1]
	assert.Equal(t, notification.TypeOvertimeRejected, last.notifType)
	assert.Contains(t, last.message, "budget frozen")

	_, err = env.svc.Approve(context.Background(), admin, created.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestAlreadyProcessed)
}

func TestOvertimeService_Reject_ReasonRequired(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Reject(context.Background(), admin, overtime.RejectRequest{ID: created.ID})

	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

// ===== READ TESTS =====

func TestOvertimeService_Get_HiddenFromOtherEmployees(t *testing.T) {
	env := newTestEnv(t)
	created := env.submit(t, "2025-03-10", "17:00", "19:00")

	_, err := env.svc.Get(context.Background(), user.Actor{UserID: otherID, Role: user.RoleEmployee}, created.ID)
	assert.ErrorIs(t, err, overtime.ErrRequestNotFound)

	resp, err := env.svc.Get(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
}

func TestOvertimeService_ListMine(t *testing.T) {
	env := newTestEnv(t)
	env.submit(t, "2025-03-10", "17:00", "19:00")
	env.submit(t, "2025-03-11", "17:00", "18:00")
	_, err := env.svc.Submit(context.Background(), otherID, overtime.SubmitRequest{
		Date: "2025-03-10", StartTime: "17:00", EndTime: "19:00", Reason: "audit",
	})
	require.NoError(t, err)

	resp, err := env.svc.ListMine(context.Background(), employeeID, overtime.RequestFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, "2025-03-11", resp.Requests[0].Date)
}

func TestOvertimeService_List_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.List(context.Background(), employee, overtime.RequestFilter{})

	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

// ===== CONFIG TESTS =====

func TestOvertimeService_GetConfig_Missing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetConfig(context.Background())

	assert.ErrorIs(t, err, overtime.ErrConfigMissing)
}

func TestOvertimeService_UpdateConfig(t *testing.T) {
	env := newTestEnv(t)
	req := overtime.UpdateConfigRequest{
		OfficeStart:            "09:00",
		OfficeEnd:              "17:00",
		BreakMaxMinutes:        60,
		NightDifferentialStart: "22:00",
		NightDifferentialEnd:   "06:00",
		DailyMaxMinutes:        180,
	}

	_, err := env.svc.UpdateConfig(context.Background(), employee, req)
	require.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	resp, err := env.svc.UpdateConfig(context.Background(), admin, req)
	require.NoError(t, err)
	assert.Equal(t, "22:00", resp.NightDifferentialStart)
	assert.Equal(t, "06:00", resp.NightDifferentialEnd)

	got, err := env.svc.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.OfficeStart)
	assert.Equal(t, 180, got.DailyMaxMinutes)
	require.NotNil(t, got.UpdatedBy)
	assert.Equal(t, adminID, *got.UpdatedBy)
}

func TestOvertimeService_UpdateConfig_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateConfig(context.Background(), admin, overtime.UpdateConfigRequest{
		OfficeStart:            "09:00",
		OfficeEnd:              "09:00",
		BreakMaxMinutes:        -1,
		NightDifferentialStart: "22:00",
		NightDifferentialEnd:   "06:00",
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Nil(t, env.config.cfg)
}
