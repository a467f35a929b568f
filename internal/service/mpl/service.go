package mpl

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/service/accounting"
	"github.com/shopspring/decimal"
)

type MplServiceImpl struct {
	tx             database.Transactor
	mplRepo        mpl.Repository
	attendanceRepo attendance.Repository
	userRepo       user.UserRepository
	notifier       notification.Notifier
	clock          clock.Clock
	loc            *time.Location
	logger         *slog.Logger
}

func NewMplService(
	tx database.Transactor,
	mplRepo mpl.Repository,
	attendanceRepo attendance.Repository,
	userRepo user.UserRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	loc *time.Location,
	logger *slog.Logger,
) mpl.Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MplServiceImpl{
		tx:             tx,
		mplRepo:        mplRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		clock:          clk,
		loc:            loc,
		logger:         logger.With("service", "mpl"),
	}
}

// Quota implements mpl.Service.
func (s *MplServiceImpl) Quota(ctx context.Context, actor user.Actor, req mpl.QuotaRequest) (mpl.QuotaResponse, error) {
	if err := req.Validate(); err != nil {
		return mpl.QuotaResponse{}, err
	}
	if !actor.IsAdmin() && actor.UserID != req.UserID {
		return mpl.QuotaResponse{}, user.ErrAdminPrivilegeRequired
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return mpl.QuotaResponse{}, err
	}

	quota, err := s.quota(ctx, req.UserID, s.cutoff(req.ReferenceDate))
	if err != nil {
		return mpl.QuotaResponse{}, err
	}
	return toQuotaResponse(req.UserID, quota), nil
}

// Convert implements mpl.Service.
func (s *MplServiceImpl) Convert(ctx context.Context, actor user.Actor, req mpl.ConvertRequest) (mpl.ConversionResponse, error) {
	if !actor.IsAdmin() {
		return mpl.ConversionResponse{}, s.fail("convert", actor.UserID, user.ErrAdminPrivilegeRequired)
	}
	if err := req.Validate(); err != nil {
		if req.Units < 1 {
			return mpl.ConversionResponse{}, fmt.Errorf("%w: %w", mpl.ErrNothingToConvert, err)
		}
		return mpl.ConversionResponse{}, err
	}

	cutoff := s.cutoff(req.ReferenceDate)
	var conversion mpl.Conversion

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// serializes concurrent conversions for the same user
		if _, err := s.userRepo.LockAccumulators(ctx, req.UserID); err != nil {
			return err
		}

		quota, err := s.quota(ctx, req.UserID, cutoff)
		if err != nil {
			return err
		}
		if req.Units > quota.Remaining {
			return &mpl.QuotaExceededError{Requested: req.Units, Quota: quota}
		}

		conversion, err = s.mplRepo.Append(ctx, mpl.Conversion{
			UserID:                req.UserID,
			CutoffStart:           cutoff.Start,
			CutoffEnd:             cutoff.End,
			TotalOvertimeHours:    quota.TotalOvertimeHours.Round(2),
			MplConverted:          req.Units,
			ResidualOvertimeHours: accounting.ResidualHours(quota, req.Units),
			ConvertedBy:           actor.UserID,
			ConvertedAt:           s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record mpl conversion: %w", err)
		}

		if err := s.userRepo.AddMplCredits(ctx, req.UserID, decimal.NewFromInt(int64(req.Units))); err != nil {
			return fmt.Errorf("failed to add mpl credits: %w", err)
		}
		return nil
	})
	if err != nil {
		return mpl.ConversionResponse{}, s.fail("convert", actor.UserID, err)
	}

	s.logger.Info("overtime converted to mpl",
		"conversion_id", conversion.ID,
		"user_id", req.UserID,
		"units", req.Units,
		"cutoff_start", cutoff.Start.Format("2006-01-02"),
		"converted_by", actor.UserID,
	)

	if s.notifier != nil {
		message := fmt.Sprintf("%d MPL unit(s) were credited from your overtime for %s to %s. Residual overtime: %s hours.",
			req.Units, cutoff.Start.Format("2006-01-02"), cutoff.End.Format("2006-01-02"), conversion.ResidualOvertimeHours.String())
		if err := s.notifier.NotifyUser(ctx, req.UserID, "Overtime Converted to MPL", message, notification.TypeMplConverted, "/mpl/history"); err != nil {
			s.logger.Warn("failed to notify user", "user_id", req.UserID, "error", err)
		}
	}

	return toConversionResponse(conversion), nil
}

// History implements mpl.Service.
func (s *MplServiceImpl) History(ctx context.Context, actor user.Actor, userID string, filter mpl.HistoryFilter) (mpl.ListConversionResponse, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return mpl.ListConversionResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := filter.Validate(); err != nil {
		return mpl.ListConversionResponse{}, err
	}

	offset := (filter.Page - 1) * filter.Limit
	conversions, total, err := s.mplRepo.ListByUser(ctx, userID, filter.Limit, offset)
	if err != nil {
		return mpl.ListConversionResponse{}, fmt.Errorf("failed to list mpl conversions: %w", err)
	}

	responses := make([]mpl.ConversionResponse, 0, len(conversions))
	for _, c := range conversions {
		responses = append(responses, toConversionResponse(c))
	}

	return mpl.ListConversionResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Conversions: responses,
	}, nil
}

// Balance implements mpl.Service.
func (s *MplServiceImpl) Balance(ctx context.Context, actor user.Actor, userID string) (mpl.BalanceResponse, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return mpl.BalanceResponse{}, user.ErrAdminPrivilegeRequired
	}

	acc, err := s.userRepo.GetAccumulators(ctx, userID)
	if err != nil {
		return mpl.BalanceResponse{}, err
	}

	return mpl.BalanceResponse{
		UserID:                   userID,
		OvertimeMinutes:          acc.OvertimeMinutes,
		NightDifferentialMinutes: acc.NightDifferentialMinutes,
		MplCredits:               acc.MplCredits,
	}, nil
}

func (s *MplServiceImpl) quota(ctx context.Context, userID string, cutoff mpl.Cutoff) (mpl.Quota, error) {
	minutes, err := s.attendanceRepo.SumOvertimeMinutes(ctx, userID, cutoff.Start, cutoff.End)
	if err != nil {
		return mpl.Quota{}, fmt.Errorf("failed to sum overtime minutes: %w", err)
	}
	converted, err := s.mplRepo.SumConverted(ctx, userID, cutoff.Start, cutoff.End)
	if err != nil {
		return mpl.Quota{}, fmt.Errorf("failed to sum converted mpl: %w", err)
	}
	return accounting.QuotaFor(cutoff, minutes, converted), nil
}

// cutoff resolves the window around a YYYY-MM-DD reference, or today.
func (s *MplServiceImpl) cutoff(referenceDate string) mpl.Cutoff {
	if ref, err := time.Parse("2006-01-02", referenceDate); err == nil {
		return accounting.CutoffFor(ref)
	}
	return accounting.CutoffFor(s.clock.Now().In(s.loc))
}

func (s *MplServiceImpl) fail(op, userID string, err error) error {
	if apperror.IsRejection(err) {
		s.logger.Info("mpl operation rejected", "op", op, "user_id", userID, "reason", err.Error())
	} else {
		s.logger.Error("mpl operation failed", "op", op, "user_id", userID, "error", err)
	}
	return err
}

func toQuotaResponse(userID string, q mpl.Quota) mpl.QuotaResponse {
	return mpl.QuotaResponse{
		UserID:             userID,
		CutoffStart:        q.Cutoff.Start.Format("2006-01-02"),
		CutoffEnd:          q.Cutoff.End.Format("2006-01-02"),
		TotalOvertimeHours: q.TotalOvertimeHours.Round(2),
		MaxConvertible:     q.MaxConvertible,
		AlreadyConverted:   q.AlreadyConverted,
		Remaining:          q.Remaining,
	}
}

func toConversionResponse(c mpl.Conversion) mpl.ConversionResponse {
	return mpl.ConversionResponse{
		ID:                    c.ID,
		UserID:                c.UserID,
		CutoffStart:           c.CutoffStart.Format("2006-01-02"),
		CutoffEnd:             c.CutoffEnd.Format("2006-01-02"),
		TotalOvertimeHours:    c.TotalOvertimeHours,
		MplConverted:          c.MplConverted,
		ResidualOvertimeHours: c.ResidualOvertimeHours,
		ConvertedBy:           c.ConvertedBy,
		ConvertedAt:           c.ConvertedAt.Format(time.RFC3339),
	}
}
