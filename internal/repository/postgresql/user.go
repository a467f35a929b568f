package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	if !isUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, full_name, email, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var found user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID,
		&found.FullName,
		&found.Email,
		&found.Role,
		&found.IsActive,
		&found.CreatedAt,
		&found.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return found, nil
}

// ListAdminIDs implements user.UserRepository.
func (r *userRepositoryImpl) ListAdminIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM users WHERE role = $1 AND is_active = true ORDER BY created_at`, string(user.RoleAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to list administrators: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan administrator ids: %w", err)
	}
	return ids, nil
}

func (r *userRepositoryImpl) readAccumulators(ctx context.Context, userID string, lock bool) (user.Accumulators, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, accumulated_overtime_minutes, accumulated_night_differential_minutes, mpl_credits, updated_at
		FROM users
		WHERE id = $1
	`
	if lock {
		query += " FOR UPDATE"
	}

	var acc user.Accumulators
	err := q.QueryRow(ctx, query, userID).Scan(
		&acc.UserID,
		&acc.OvertimeMinutes,
		&acc.NightDifferentialMinutes,
		&acc.MplCredits,
		&acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Accumulators{}, user.ErrUserNotFound
		}
		return user.Accumulators{}, fmt.Errorf("failed to read accumulators: %w", err)
	}
	return acc, nil
}

// GetAccumulators implements user.UserRepository.
func (r *userRepositoryImpl) GetAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return r.readAccumulators(ctx, userID, false)
}

// LockAccumulators implements user.UserRepository.
func (r *userRepositoryImpl) LockAccumulators(ctx context.Context, userID string) (user.Accumulators, error) {
	return r.readAccumulators(ctx, userID, true)
}

// AddAttendanceAccruals implements user.UserRepository.
func (r *userRepositoryImpl) AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error {
	if overtimeMinutes < 0 || nightDifferentialMinutes < 0 {
		return fmt.Errorf("accruals must not be negative: overtime %d, night differential %d", overtimeMinutes, nightDifferentialMinutes)
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users SET
			accumulated_overtime_minutes = accumulated_overtime_minutes + $2,
			accumulated_night_differential_minutes = accumulated_night_differential_minutes + $3,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := q.Exec(ctx, query, userID, overtimeMinutes, nightDifferentialMinutes)
	if err != nil {
		return fmt.Errorf("failed to add attendance accruals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// AddMplCredits implements user.UserRepository.
func (r *userRepositoryImpl) AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error {
	if credits.IsNegative() {
		return fmt.Errorf("mpl credits must not be negative: %s", credits)
	}

	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `UPDATE users SET mpl_credits = mpl_credits + $2, updated_at = NOW() WHERE id = $1`, userID, credits)
	if err != nil {
		return fmt.Errorf("failed to add mpl credits: %w", err)
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
