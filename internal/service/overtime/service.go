package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
)

type OvertimeServiceImpl struct {
	tx          database.Transactor
	configRepo  overtime.ConfigRepository
	requestRepo overtime.RequestRepository
	userRepo    user.UserRepository
	notifier    notification.Notifier
	clock       clock.Clock
	logger      *slog.Logger
}

func NewOvertimeService(
	tx database.Transactor,
	configRepo overtime.ConfigRepository,
	requestRepo overtime.RequestRepository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) overtime.Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &OvertimeServiceImpl{
		tx:          tx,
		configRepo:  configRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		clock:       clk,
		logger:      logger.With("service", "overtime"),
	}
}

// Submit implements overtime.Service.
func (s *OvertimeServiceImpl) Submit(ctx context.Context, userID string, req overtime.SubmitRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		return overtime.RequestResponse{}, s.fail("submit", userID, err)
	}

	request := overtime.Request{
		UserID:    userID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Reason:    req.Reason,
		Status:    overtime.RequestStatusPending,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.requestRepo.ExistsActiveForDate(ctx, userID, date, "")
		if err != nil {
			return fmt.Errorf("failed to check existing overtime requests: %w", err)
		}
		if exists {
			return overtime.ErrRequestDuplicate
		}

		request, err = s.requestRepo.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create overtime request: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, s.fail("submit", userID, err)
	}

	s.logger.Info("overtime request submitted", "request_id", request.ID, "user_id", userID, "date", req.Date)

	s.notifyAdmins(ctx, request, notification.TypeOvertimeRequested, "New Overtime Request",
		fmt.Sprintf("%s requested overtime on %s from %s to %s.", s.displayName(ctx, userID), req.Date, start, end))

	return toResponse(request), nil
}

// Edit implements overtime.Service.
func (s *OvertimeServiceImpl) Edit(ctx context.Context, userID string, req overtime.EditRequest) (overtime.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}

	var request overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = s.lockPendingOwned(ctx, userID, req.ID)
		if err != nil {
			return err
		}

		if req.Date != nil {
			request.Date, _ = time.Parse("2006-01-02", *req.Date)
		}
		startStr, endStr := request.StartTime.String(), request.EndTime.String()
		if req.StartTime != nil {
			startStr = *req.StartTime
		}
		if req.EndTime != nil {
			endStr = *req.EndTime
		}
		request.StartTime, request.EndTime, err = parseWindow(startStr, endStr)
		if err != nil {
			return err
		}
		if req.Reason != nil {
			request.Reason = *req.Reason
		}

		exists, err := s.requestRepo.ExistsActiveForDate(ctx, userID, request.Date, request.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing overtime requests: %w", err)
		}
		if exists {
			return overtime.ErrRequestDuplicate
		}

		request.UpdatedAt = s.clock.Now()
		if err := s.requestRepo.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update overtime request: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, s.fail("edit", userID, err)
	}

	s.logger.Info("overtime request edited", "request_id", request.ID, "user_id", userID)
	return toResponse(request), nil
}

// Cancel implements overtime.Service.
func (s *OvertimeServiceImpl) Cancel(ctx context.Context, userID string, id string) (overtime.RequestResponse, error) {
	var request overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = s.lockPendingOwned(ctx, userID, id)
		if err != nil {
			return err
		}

		request.Status = overtime.RequestStatusCanceled
		request.UpdatedAt = s.clock.Now()
		if err := s.requestRepo.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to cancel overtime request: %w", err)
		}
		return nil
	})
	if err != nil {
		return overtime.RequestResponse{}, s.fail("cancel", userID, err)
	}

	s.logger.Info("overtime request canceled", "request_id", request.ID, "user_id", userID)

	s.notifyAdmins(ctx, request, notification.TypeOvertimeCanceled, "Overtime Request Canceled",
		fmt.Sprintf("%s canceled the overtime request for %s.", s.displayName(ctx, userID), request.Date.Format("2006-01-02")))

	return toResponse(request), nil
}

// Approve implements overtime.Service.
func (s *OvertimeServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (overtime.RequestResponse, error) {
	request, err := s.review(ctx, actor, id, func(request *overtime.Request) {
		request.Status = overtime.RequestStatusApproved
	})
	if err != nil {
		return overtime.RequestResponse{}, s.fail("approve", actor.UserID, err)
	}

	s.logger.Info("overtime request approved", "request_id", request.ID, "user_id", request.UserID, "reviewer_id", actor.UserID)

	s.notifyUser(ctx, request, notification.TypeOvertimeApproved, "Overtime Request Approved",
		fmt.Sprintf("Your overtime request for %s from %s to %s was approved.",
			request.Date.Format("2006-01-02"), request.StartTime, request.EndTime))

	return toResponse(request), nil
}

// Reject implements overtime.Service.
func (s *OvertimeServiceImpl) Reject(ctx context.Context, actor user.Actor, req overtime.RejectRequest) (overtime.RequestResponse, error) {
	if !actor.IsAdmin() {
		return overtime.RequestResponse{}, s.fail("reject", actor.UserID, user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		return overtime.RequestResponse{}, err
	}

	request, err := s.review(ctx, actor, req.ID, func(request *overtime.Request) {
		request.Status = overtime.RequestStatusRejected
		request.RejectionReason = &req.Reason
	})
	if err != nil {
		return overtime.RequestResponse{}, s.fail("reject", actor.UserID, err)
	}

	s.logger.Info("overtime request rejected", "request_id", request.ID, "user_id", request.UserID, "reviewer_id", actor.UserID)

	s.notifyUser(ctx, request, notification.TypeOvertimeRejected, "Overtime Request Rejected",
		fmt.Sprintf("Your overtime request for %s was rejected: %s", request.Date.Format("2006-01-02"), req.Reason))

	return toResponse(request), nil
}

// Get implements overtime.Service.
func (s *OvertimeServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (overtime.RequestResponse, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return overtime.RequestResponse{}, err
	}
	if !actor.IsAdmin() && request.UserID != actor.UserID {
		return overtime.RequestResponse{}, overtime.ErrRequestNotFound
	}
	return toResponse(request), nil
}

// ListMine implements overtime.Service.
func (s *OvertimeServiceImpl) ListMine(ctx context.Context, userID string, filter overtime.RequestFilter) (overtime.ListRequestResponse, error) {
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// List implements overtime.Service.
func (s *OvertimeServiceImpl) List(ctx context.Context, actor user.Actor, filter overtime.RequestFilter) (overtime.ListRequestResponse, error) {
	if !actor.IsAdmin() {
		return overtime.ListRequestResponse{}, user.ErrAdminPrivilegeRequired
	}
	return s.list(ctx, filter)
}

func (s *OvertimeServiceImpl) list(ctx context.Context, filter overtime.RequestFilter) (overtime.ListRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return overtime.ListRequestResponse{}, err
	}

	requests, total, err := s.requestRepo.List(ctx, filter)
	if err != nil {
		return overtime.ListRequestResponse{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	responses := make([]overtime.RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toResponse(request))
	}

	return overtime.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Requests:   responses,
	}, nil
}

// GetConfig implements overtime.Service.
func (s *OvertimeServiceImpl) GetConfig(ctx context.Context) (overtime.ConfigResponse, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		return overtime.ConfigResponse{}, err
	}
	return toConfigResponse(cfg), nil
}

// UpdateConfig implements overtime.Service.
func (s *OvertimeServiceImpl) UpdateConfig(ctx context.Context, actor user.Actor, req overtime.UpdateConfigRequest) (overtime.ConfigResponse, error) {
	if !actor.IsAdmin() {
		return overtime.ConfigResponse{}, s.fail("update_config", actor.UserID, user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		return overtime.ConfigResponse{}, err
	}

	// formats were checked by Validate
	cfg := overtime.Config{
		BreakMaxMinutes: req.BreakMaxMinutes,
		DailyMaxMinutes: req.DailyMaxMinutes,
		UpdatedBy:       &actor.UserID,
		UpdatedAt:       s.clock.Now(),
	}
	cfg.OfficeStart, _ = timeofday.Parse(req.OfficeStart)
	cfg.OfficeEnd, _ = timeofday.Parse(req.OfficeEnd)
	cfg.NightDifferentialStart, _ = timeofday.Parse(req.NightDifferentialStart)
	cfg.NightDifferentialEnd, _ = timeofday.Parse(req.NightDifferentialEnd)

	saved, err := s.configRepo.Upsert(ctx, cfg)
	if err != nil {
		return overtime.ConfigResponse{}, s.fail("update_config", actor.UserID, fmt.Errorf("failed to save overtime config: %w", err))
	}

	s.logger.Info("overtime config updated",
		"editor_id", actor.UserID,
		"office_start", saved.OfficeStart.String(),
		"office_end", saved.OfficeEnd.String(),
		"break_max_minutes", saved.BreakMaxMinutes,
		"daily_max_minutes", saved.DailyMaxMinutes,
	)

	return toConfigResponse(saved), nil
}

// review moves a pending request to a terminal state on behalf of an admin.
func (s *OvertimeServiceImpl) review(ctx context.Context, actor user.Actor, id string, decide func(*overtime.Request)) (overtime.Request, error) {
	if !actor.IsAdmin() {
		return overtime.Request{}, user.ErrAdminPrivilegeRequired
	}

	var request overtime.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		request, err = s.requestRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return overtime.ErrRequestAlreadyProcessed
		}

		now := s.clock.Now()
		decide(&request)
		request.ReviewedBy = &actor.UserID
		request.ReviewedAt = &now
		request.UpdatedAt = now

		if err := s.requestRepo.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update overtime request: %w", err)
		}
		return nil
	})
	return request, err
}

// lockPendingOwned loads a request the caller owns and may still change.
func (s *OvertimeServiceImpl) lockPendingOwned(ctx context.Context, userID, id string) (overtime.Request, error) {
	request, err := s.requestRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return overtime.Request{}, err
	}
	if request.UserID != userID {
		return overtime.Request{}, overtime.ErrNotRequestOwner
	}
	if request.Status.IsTerminal() {
		return overtime.Request{}, overtime.ErrRequestAlreadyProcessed
	}
	return request, nil
}

// parseWindow parses and orders the request boundaries.
func parseWindow(startStr, endStr string) (timeofday.TimeOfDay, timeofday.TimeOfDay, error) {
	start, err := timeofday.Parse(startStr)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeofday.Parse(endStr)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, &overtime.InvalidWindowError{Start: start, End: end}
	}
	return start, end, nil
}

func (s *OvertimeServiceImpl) notifyUser(ctx context.Context, request overtime.Request, t notification.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(ctx, request.UserID, title, message, t, requestLink(request.ID)); err != nil {
		s.logger.Warn("failed to notify user", "user_id", request.UserID, "type", t, "error", err)
	}
}

func (s *OvertimeServiceImpl) notifyAdmins(ctx context.Context, request overtime.Request, t notification.NotificationType, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyAdmins(ctx, title, message, t, requestLink(request.ID), request.UserID); err != nil {
		s.logger.Warn("failed to notify admins", "type", t, "error", err)
	}
}

func (s *OvertimeServiceImpl) displayName(ctx context.Context, userID string) string {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u.FullName == "" {
		return userID
	}
	return u.FullName
}

func (s *OvertimeServiceImpl) fail(op, userID string, err error) error {
	if apperror.IsRejection(err) {
		s.logger.Info("overtime operation rejected", "op", op, "user_id", userID, "reason", err.Error())
	} else {
		s.logger.Error("overtime operation failed", "op", op, "user_id", userID, "error", err)
	}
	return err
}

func requestLink(id string) string {
	return "/overtime/requests/" + id
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func toResponse(request overtime.Request) overtime.RequestResponse {
	return overtime.RequestResponse{
		ID:              request.ID,
		UserID:          request.UserID,
		UserName:        request.UserName,
		Date:            request.Date.Format("2006-01-02"),
		StartTime:       request.StartTime.String(),
		EndTime:         request.EndTime.String(),
		DurationMinutes: int(request.WindowDuration() / time.Minute),
		Reason:          request.Reason,
		Status:          string(request.Status),
		ReviewedBy:      request.ReviewedBy,
		ReviewedAt:      timePtrToString(request.ReviewedAt),
		RejectionReason: request.RejectionReason,
		CreatedAt:       request.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       request.UpdatedAt.Format(time.RFC3339),
	}
}

func toConfigResponse(cfg overtime.Config) overtime.ConfigResponse {
	return overtime.ConfigResponse{
		OfficeStart:            cfg.OfficeStart.String(),
		OfficeEnd:              cfg.OfficeEnd.String(),
		BreakMaxMinutes:        cfg.BreakMaxMinutes,
		NightDifferentialStart: cfg.NightDifferentialStart.String(),
		NightDifferentialEnd:   cfg.NightDifferentialEnd.String(),
		DailyMaxMinutes:        cfg.DailyMaxMinutes,
		UpdatedBy:              cfg.UpdatedBy,
		UpdatedAt:              cfg.UpdatedAt.Format(time.RFC3339),
	}
}
