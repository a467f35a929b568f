package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/service/accounting"
)

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.Repository
	configRepo     overtime.ConfigRepository
	requestRepo    overtime.RequestRepository
	userRepo       user.UserRepository
	notifier       notification.Notifier
	clock          clock.Clock
	loc            *time.Location
	logger         *slog.Logger
}

// mutation applies one lifecycle step to a locked record.
type mutation func(record *attendance.Record, now time.Time) error

// timePtrToString formats an optional timestamp in the office location.
func (s *AttendanceServiceImpl) timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(s.loc).Format(time.RFC3339)
	return &formatted
}

// ClockIn implements attendance.Service.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	now := s.clock.Now()
	today := attendance.DateOf(now, s.loc)

	var record attendance.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetByUserAndDateForUpdate(ctx, userID, today)
		if err != nil {
			return fmt.Errorf("failed to get today's attendance: %w", err)
		}

		if existing != nil {
			// absent or on-leave placeholders can still be clocked into
			if err := existing.Stage.CheckClockIn(); err != nil {
				return err
			}
			record = *existing
		} else {
			record = attendance.Record{
				UserID:     userID,
				Date:       today,
				Visibility: attendance.VisibilityEnabled,
			}
		}

		record.ClockIn = &now
		record.Stage = attendance.StageClockedIn
		if err := s.recompute(ctx, &record); err != nil {
			return err
		}

		if existing != nil {
			if err := s.attendanceRepo.Update(ctx, record); err != nil {
				return fmt.Errorf("failed to update attendance record: %w", err)
			}
			return nil
		}

		created, err := s.attendanceRepo.Create(ctx, record)
		if err != nil {
			if apperror.IsRejection(err) {
				return err
			}
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		record = created
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("clock_in", userID, err)
	}

	s.logger.Info("attendance clocked in",
		"user_id", userID,
		"record_id", record.ID,
		"status", record.Status,
		"late_minutes", record.Accounting.LateMinutes,
	)

	if late := record.Accounting.LateMinutes; late > 0 {
		date := record.Date.Format("2006-01-02")
		s.send(ctx, record.UserID, notice{
			notifType:    notification.TypeAttendanceLate,
			title:        "Late Clock-In",
			userMessage:  fmt.Sprintf("You clocked in %s late on %s.", formatMinutes(late), date),
			adminTitle:   "Employee Clocked In Late",
			adminMessage: fmt.Sprintf("%s clocked in %s late on %s.", s.displayName(ctx, record.UserID), formatMinutes(late), date),
			link:         recordLink(record.ID),
			exclude:      record.UserID,
		})
	}

	return s.toResponse(record), nil
}

// StartBreak implements attendance.Service.
func (s *AttendanceServiceImpl) StartBreak(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	record, _, err := s.mutateActive(ctx, userID, func(record *attendance.Record, now time.Time) error {
		if err := record.Stage.CheckStartBreak(); err != nil {
			return err
		}
		record.BreakStart = &now
		record.Stage = attendance.StageOnBreak
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("start_break", userID, err)
	}

	s.logger.Info("attendance break started", "user_id", userID, "record_id", record.ID)
	return s.toResponse(record), nil
}

// EndBreak implements attendance.Service.
func (s *AttendanceServiceImpl) EndBreak(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	record, _, err := s.mutateActive(ctx, userID, func(record *attendance.Record, now time.Time) error {
		if err := record.Stage.CheckEndBreak(); err != nil {
			return err
		}
		record.BreakFinish = &now
		record.Stage = attendance.StageBreakTaken
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("end_break", userID, err)
	}

	s.logger.Info("attendance break ended",
		"user_id", userID,
		"record_id", record.ID,
		"break_minutes", record.Accounting.BreakMinutes,
	)

	s.notifyOverBreak(ctx, record)
	return s.toResponse(record), nil
}

// ClockOut implements attendance.Service.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, userID string) (attendance.RecordResponse, error) {
	var closedBreak bool
	record, gained, err := s.mutateActive(ctx, userID, func(record *attendance.Record, now time.Time) error {
		if err := record.Stage.CheckClockOut(); err != nil {
			return err
		}
		if record.Stage == attendance.StageOnBreak {
			record.BreakFinish = &now
			closedBreak = true
		}
		record.ClockOut = &now
		record.Stage = attendance.StageClockedOut
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("clock_out", userID, err)
	}

	s.logger.Info("attendance clocked out",
		"user_id", userID,
		"record_id", record.ID,
		"worked_minutes", record.Accounting.WorkedMinutes,
		"overtime_minutes", record.Accounting.OvertimeMinutes,
		"accrued_overtime_minutes", gained.OvertimeMinutes,
		"night_differential_minutes", record.Accounting.NightDifferentialMinutes,
	)

	if closedBreak {
		s.notifyOverBreak(ctx, record)
	}
	if early := record.Accounting.EarlyOutMinutes; early > 0 {
		date := record.Date.Format("2006-01-02")
		s.send(ctx, record.UserID, notice{
			notifType:    notification.TypeAttendanceEarlyOut,
			title:        "Early Clock-Out",
			userMessage:  fmt.Sprintf("You clocked out %s before office hours ended on %s.", formatMinutes(early), date),
			adminTitle:   "Employee Clocked Out Early",
			adminMessage: fmt.Sprintf("%s clocked out %s early on %s.", s.displayName(ctx, record.UserID), formatMinutes(early), date),
			link:         recordLink(record.ID),
			exclude:      record.UserID,
		})
	}

	return s.toResponse(record), nil
}

// Today implements attendance.Service.
func (s *AttendanceServiceImpl) Today(ctx context.Context, userID string) (attendance.TodayResponse, error) {
	now := s.clock.Now()
	today := attendance.DateOf(now, s.loc)

	record, err := s.findActive(ctx, userID, today, s.attendanceRepo.GetByUserAndDate)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	resp := attendance.TodayResponse{Date: today.Format("2006-01-02")}
	stage := attendance.StageNone
	if record != nil {
		recordResp := s.toResponse(*record)
		resp.Record = &recordResp
		stage = record.Stage
	}

	resp.CanClockIn = stage.CheckClockIn() == nil
	resp.CanStartBreak = stage.CheckStartBreak() == nil
	resp.CanEndBreak = stage.CheckEndBreak() == nil
	resp.CanClockOut = stage.CheckClockOut() == nil

	return resp, nil
}

// AdminEdit implements attendance.Service.
func (s *AttendanceServiceImpl) AdminEdit(ctx context.Context, actor user.Actor, req attendance.AdminEditRequest) (attendance.RecordResponse, error) {
	if !actor.IsAdmin() {
		return attendance.RecordResponse{}, s.fail("admin_edit", actor.UserID, user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	var record attendance.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.attendanceRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		if req.Status != nil {
			record.Status = attendance.Status(*req.Status)
			record.ClockIn, record.ClockOut = nil, nil
			record.BreakStart, record.BreakFinish = nil, nil
		} else {
			applyEdit(&record, req)
		}

		if err := record.CheckTimeline(s.loc); err != nil {
			return err
		}

		record.Stage = record.DeriveStage()
		record.LastEditedBy = &actor.UserID
		if err := s.recompute(ctx, &record); err != nil {
			return err
		}

		if _, err := s.accrue(ctx, &record); err != nil {
			return err
		}
		if err := s.attendanceRepo.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("admin_edit", actor.UserID, err)
	}

	s.logger.Info("attendance edited by admin",
		"record_id", record.ID,
		"user_id", record.UserID,
		"editor_id", actor.UserID,
		"status", record.Status,
		"stage", record.Stage,
	)

	date := record.Date.Format("2006-01-02")
	s.send(ctx, record.UserID, notice{
		notifType:    notification.TypeAttendanceEdited,
		title:        "Attendance Updated",
		userMessage:  fmt.Sprintf("Your attendance for %s was updated by an administrator.", date),
		adminTitle:   "Attendance Record Edited",
		adminMessage: fmt.Sprintf("The attendance of %s for %s was edited by %s.", s.displayName(ctx, record.UserID), date, s.displayName(ctx, actor.UserID)),
		link:         recordLink(record.ID),
		exclude:      actor.UserID,
	})

	return s.toResponse(record), nil
}

// SetVisibility implements attendance.Service.
func (s *AttendanceServiceImpl) SetVisibility(ctx context.Context, actor user.Actor, req attendance.SetVisibilityRequest) (attendance.RecordResponse, error) {
	if !actor.IsAdmin() {
		return attendance.RecordResponse{}, s.fail("set_visibility", actor.UserID, user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	var record attendance.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.attendanceRepo.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}
		record.Visibility = attendance.Visibility(req.Visibility)
		record.LastEditedBy = &actor.UserID
		if err := s.attendanceRepo.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance visibility: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, s.fail("set_visibility", actor.UserID, err)
	}

	s.logger.Info("attendance visibility changed", "record_id", record.ID, "visibility", record.Visibility, "editor_id", actor.UserID)
	return s.toResponse(record), nil
}

// Get implements attendance.Service.
func (s *AttendanceServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (attendance.RecordResponse, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	// other people's and hidden records do not exist for employees
	if !actor.IsAdmin() && (record.UserID != actor.UserID || record.Visibility == attendance.VisibilityDisabled) {
		return attendance.RecordResponse{}, attendance.ErrRecordNotFound
	}

	return s.toResponse(record), nil
}

// ListMine implements attendance.Service.
func (s *AttendanceServiceImpl) ListMine(ctx context.Context, userID string, filter attendance.Filter) (attendance.ListResponse, error) {
	filter.UserID = &userID
	filter.IncludeDisabled = false
	return s.list(ctx, filter)
}

// List implements attendance.Service.
func (s *AttendanceServiceImpl) List(ctx context.Context, actor user.Actor, filter attendance.Filter) (attendance.ListResponse, error) {
	if !actor.IsAdmin() {
		return attendance.ListResponse{}, user.ErrAdminPrivilegeRequired
	}
	filter.IncludeDisabled = true
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.Filter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, s.toResponse(record))
	}

	return attendance.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Records:    responses,
	}, nil
}

// mutateActive locks the user's active record, applies mutate, recomputes the
// snapshot, accrues what the step added and persists it. It returns the
// record and the accrued increase.
func (s *AttendanceServiceImpl) mutateActive(ctx context.Context, userID string, mutate mutation) (attendance.Record, attendance.Accrual, error) {
	now := s.clock.Now()
	today := attendance.DateOf(now, s.loc)

	var record attendance.Record
	var gained attendance.Accrual
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		active, err := s.findActive(ctx, userID, today, s.attendanceRepo.GetByUserAndDateForUpdate)
		if err != nil {
			return err
		}
		if active == nil {
			return attendance.ErrNotClockedIn
		}

		record = *active
		if err := mutate(&record, now); err != nil {
			return err
		}
		if err := s.recompute(ctx, &record); err != nil {
			return err
		}

		gained, err = s.accrue(ctx, &record)
		if err != nil {
			return err
		}
		if err := s.attendanceRepo.Update(ctx, record); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		return nil
	})
	return record, gained, err
}

type recordLookup func(ctx context.Context, userID string, date time.Time) (*attendance.Record, error)

// findActive returns today's record, or yesterday's when a shift that started
// yesterday is still open.
func (s *AttendanceServiceImpl) findActive(ctx context.Context, userID string, today time.Time, lookup recordLookup) (*attendance.Record, error) {
	record, err := lookup(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record != nil && record.Stage != attendance.StageNone {
		return record, nil
	}

	previous, err := lookup(ctx, userID, today.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("failed to get yesterday's attendance: %w", err)
	}
	if previous != nil && previous.Stage != attendance.StageNone && previous.Stage != attendance.StageClockedOut {
		return previous, nil
	}
	return record, nil
}

// recompute replaces the record's snapshot from its current timestamps.
func (s *AttendanceServiceImpl) recompute(ctx context.Context, record *attendance.Record) error {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load overtime config: %w", err)
	}

	var approved *overtime.Request
	if record.ClockOut != nil {
		approved, err = s.requestRepo.GetApprovedByUserAndDate(ctx, record.UserID, record.Date)
		if err != nil {
			return fmt.Errorf("failed to get approved overtime request: %w", err)
		}
	}

	in := accounting.InputFor(*record, cfg, approved, s.loc)
	record.Accounting = accounting.Compute(in)
	if record.ClockIn != nil {
		record.Status = accounting.StatusFor(in)
	}
	return nil
}

// accrue raises the record's accrued marks and adds the increase to the
// user's running totals. The record must be persisted afterwards so the marks
// stick. Totals never shrink.
func (s *AttendanceServiceImpl) accrue(ctx context.Context, record *attendance.Record) (attendance.Accrual, error) {
	gained := record.RaiseAccrued()
	if gained == (attendance.Accrual{}) {
		return gained, nil
	}
	if err := s.userRepo.AddAttendanceAccruals(ctx, record.UserID, gained.OvertimeMinutes, gained.NightDifferentialMinutes); err != nil {
		return attendance.Accrual{}, fmt.Errorf("failed to add attendance accruals: %w", err)
	}
	return gained, nil
}

func applyEdit(record *attendance.Record, req attendance.AdminEditRequest) {
	// timestamps were validated by req.Validate
	parse := func(s *string) *time.Time {
		t, _ := time.Parse(time.RFC3339, *s)
		return &t
	}

	if req.ClockIn != nil {
		record.ClockIn = parse(req.ClockIn)
	}
	if req.ClockOut != nil {
		record.ClockOut = parse(req.ClockOut)
	}
	if req.ClearClockOut {
		record.ClockOut = nil
	}
	if req.BreakStart != nil {
		record.BreakStart = parse(req.BreakStart)
	}
	if req.BreakFinish != nil {
		record.BreakFinish = parse(req.BreakFinish)
	}
	if req.ClearBreak {
		record.BreakStart, record.BreakFinish = nil, nil
	}
}

func (s *AttendanceServiceImpl) notifyOverBreak(ctx context.Context, record attendance.Record) {
	overage := record.Accounting.BreakOverageMinutes
	if overage <= 0 {
		return
	}
	date := record.Date.Format("2006-01-02")
	s.send(ctx, record.UserID, notice{
		notifType:    notification.TypeAttendanceOverBreak,
		title:        "Break Exceeded",
		userMessage:  fmt.Sprintf("Your break on %s exceeded the allowed time by %s.", date, formatMinutes(overage)),
		adminTitle:   "Employee Exceeded Break",
		adminMessage: fmt.Sprintf("%s exceeded the allowed break on %s by %s.", s.displayName(ctx, record.UserID), date, formatMinutes(overage)),
		link:         recordLink(record.ID),
		exclude:      record.UserID,
	})
}

// fail logs err at the level its class deserves and returns it unchanged.
func (s *AttendanceServiceImpl) fail(op, userID string, err error) error {
	if apperror.IsRejection(err) {
		s.logger.Info("attendance operation rejected", "op", op, "user_id", userID, "reason", err.Error())
	} else {
		s.logger.Error("attendance operation failed", "op", op, "user_id", userID, "error", err)
	}
	return err
}

func (s *AttendanceServiceImpl) toResponse(record attendance.Record) attendance.RecordResponse {
	acc := record.Accounting
	return attendance.RecordResponse{
		ID:                       record.ID,
		UserID:                   record.UserID,
		UserName:                 record.UserName,
		Date:                     record.Date.Format("2006-01-02"),
		ClockIn:                  s.timePtrToString(record.ClockIn),
		ClockOut:                 s.timePtrToString(record.ClockOut),
		BreakStart:               s.timePtrToString(record.BreakStart),
		BreakFinish:              s.timePtrToString(record.BreakFinish),
		Status:                   string(record.Status),
		Stage:                    string(record.Stage),
		LateMinutes:              acc.LateMinutes,
		BreakMinutes:             acc.BreakMinutes,
		BreakOverageMinutes:      acc.BreakOverageMinutes,
		WorkedMinutes:            acc.WorkedMinutes,
		ActualOvertimeMinutes:    acc.ActualOvertimeMinutes,
		OvertimeMinutes:          acc.OvertimeMinutes,
		NightDifferentialMinutes: acc.NightDifferentialMinutes,
		EarlyOutMinutes:          acc.EarlyOutMinutes,
		Visibility:               string(record.Visibility),
		LastEditedBy:             record.LastEditedBy,
		CreatedAt:                record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:                record.UpdatedAt.Format(time.RFC3339),
	}
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.Repository,
	configRepo overtime.ConfigRepository,
	requestRepo overtime.RequestRepository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	loc *time.Location,
	logger *slog.Logger,
) attendance.Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		configRepo:     configRepo,
		requestRepo:    requestRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		clock:          clk,
		loc:            loc,
		logger:         logger.With("service", "attendance"),
	}
}
