package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ============= Config =============

type overtimeConfigRepository struct {
	db *database.DB
}

func NewOvertimeConfigRepository(db *database.DB) overtime.ConfigRepository {
	return &overtimeConfigRepository{db: db}
}

// Get implements overtime.ConfigRepository.
func (r *overtimeConfigRepository) Get(ctx context.Context) (overtime.Config, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT office_start, office_end, break_max_minutes,
			   night_differential_start, night_differential_end, daily_max_minutes,
			   updated_by, updated_at
		FROM overtime_config
		WHERE id
	`

	var cfg overtime.Config
	var officeStart, officeEnd, nightStart, nightEnd pgtype.Time
	err := q.QueryRow(ctx, query).Scan(
		&officeStart, &officeEnd, &cfg.BreakMaxMinutes,
		&nightStart, &nightEnd, &cfg.DailyMaxMinutes,
		&cfg.UpdatedBy, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Config{}, overtime.ErrConfigMissing
		}
		return overtime.Config{}, fmt.Errorf("failed to get overtime config: %w", err)
	}

	cfg.OfficeStart = timeFromPg(officeStart)
	cfg.OfficeEnd = timeFromPg(officeEnd)
	cfg.NightDifferentialStart = timeFromPg(nightStart)
	cfg.NightDifferentialEnd = timeFromPg(nightEnd)
	return cfg, nil
}

// Upsert implements overtime.ConfigRepository.
func (r *overtimeConfigRepository) Upsert(ctx context.Context, cfg overtime.Config) (overtime.Config, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_config (
			id, office_start, office_end, break_max_minutes,
			night_differential_start, night_differential_end, daily_max_minutes,
			updated_by, updated_at
		) VALUES (true, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			office_start = EXCLUDED.office_start,
			office_end = EXCLUDED.office_end,
			break_max_minutes = EXCLUDED.break_max_minutes,
			night_differential_start = EXCLUDED.night_differential_start,
			night_differential_end = EXCLUDED.night_differential_end,
			daily_max_minutes = EXCLUDED.daily_max_minutes,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		timeToPg(cfg.OfficeStart), timeToPg(cfg.OfficeEnd), cfg.BreakMaxMinutes,
		timeToPg(cfg.NightDifferentialStart), timeToPg(cfg.NightDifferentialEnd), cfg.DailyMaxMinutes,
		cfg.UpdatedBy, cfg.UpdatedAt,
	)
	if err != nil {
		return overtime.Config{}, fmt.Errorf("failed to upsert overtime config: %w", err)
	}
	return cfg, nil
}

// ============= Requests =============

const overtimeRequestColumns = `
	r.id, r.user_id, r.date, r.start_time, r.end_time, r.reason, r.status,
	r.reviewed_by, r.reviewed_at, r.rejection_reason, r.created_at, r.updated_at,
	u.full_name
`

type overtimeRequestRepository struct {
	db *database.DB
}

func NewOvertimeRequestRepository(db *database.DB) overtime.RequestRepository {
	return &overtimeRequestRepository{db: db}
}

func scanOvertimeRequest(row pgx.Row) (overtime.Request, error) {
	var req overtime.Request
	var start, end pgtype.Time
	err := row.Scan(
		&req.ID, &req.UserID, &req.Date, &start, &end, &req.Reason, &req.Status,
		&req.ReviewedBy, &req.ReviewedAt, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
		&req.UserName,
	)
	if err != nil {
		return overtime.Request{}, err
	}
	req.StartTime = timeFromPg(start)
	req.EndTime = timeFromPg(end)
	return req, nil
}

// Create implements overtime.RequestRepository.
func (r *overtimeRequestRepository) Create(ctx context.Context, req overtime.Request) (overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests (user_id, date, start_time, end_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.UserID, req.Date, timeToPg(req.StartTime), timeToPg(req.EndTime), req.Reason, string(req.Status),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "idx_overtime_requests_active") {
			return overtime.Request{}, overtime.ErrRequestDuplicate
		}
		return overtime.Request{}, fmt.Errorf("failed to create overtime request: %w", err)
	}
	return req, nil
}

func (r *overtimeRequestRepository) getByID(ctx context.Context, id string, forUpdate bool) (overtime.Request, error) {
	if !isUUID(id) {
		return overtime.Request{}, overtime.ErrRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + overtimeRequestColumns + `
		FROM overtime_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`
	if forUpdate {
		query += " FOR UPDATE OF r"
	}

	req, err := scanOvertimeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Request{}, overtime.ErrRequestNotFound
		}
		return overtime.Request{}, fmt.Errorf("failed to get overtime request: %w", err)
	}
	return req, nil
}

// GetByID implements overtime.RequestRepository.
func (r *overtimeRequestRepository) GetByID(ctx context.Context, id string) (overtime.Request, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate implements overtime.RequestRepository.
func (r *overtimeRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (overtime.Request, error) {
	return r.getByID(ctx, id, true)
}

// GetApprovedByUserAndDate implements overtime.RequestRepository.
func (r *overtimeRequestRepository) GetApprovedByUserAndDate(ctx context.Context, userID string, date time.Time) (*overtime.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + overtimeRequestColumns + `
		FROM overtime_requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1 AND r.date = $2 AND r.status = $3
		LIMIT 1`

	req, err := scanOvertimeRequest(q.QueryRow(ctx, query, userID, date, string(overtime.RequestStatusApproved)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get approved overtime request: %w", err)
	}
	return &req, nil
}

// ExistsActiveForDate implements overtime.RequestRepository.
func (r *overtimeRequestRepository) ExistsActiveForDate(ctx context.Context, userID string, date time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM overtime_requests
			WHERE user_id = $1
			  AND date = $2
			  AND status IN ('pending', 'approved')
			  AND ($3 = '' OR id::text <> $3)
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, userID, date, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active overtime requests: %w", err)
	}
	return exists, nil
}

// Update implements overtime.RequestRepository.
func (r *overtimeRequestRepository) Update(ctx context.Context, req overtime.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests SET
			date = $2, start_time = $3, end_time = $4, reason = $5, status = $6,
			reviewed_by = $7, reviewed_at = $8, rejection_reason = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		req.ID, req.Date, timeToPg(req.StartTime), timeToPg(req.EndTime), req.Reason, string(req.Status),
		req.ReviewedBy, req.ReviewedAt, req.RejectionReason,
	)
	if err != nil {
		if isUniqueViolation(err, "idx_overtime_requests_active") {
			return overtime.ErrRequestDuplicate
		}
		return fmt.Errorf("failed to update overtime request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return overtime.ErrRequestNotFound
	}
	return nil
}

// List implements overtime.RequestRepository.
func (r *overtimeRequestRepository) List(ctx context.Context, filter overtime.RequestFilter) ([]overtime.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	var args []interface{}
	addArg := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil && *filter.UserID != "" {
		addArg("r.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil && *filter.Status != "" {
		addArg("r.status = $%d", *filter.Status)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		addArg("r.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		addArg("r.date <= $%d", *filter.EndDate)
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM overtime_requests r WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM overtime_requests r
		JOIN users u ON u.id = r.user_id
		WHERE %s
		ORDER BY r.date %s, r.created_at DESC
		LIMIT $%d OFFSET $%d
	`, overtimeRequestColumns, where, sortDirection(filter.SortOrder), len(args)+1, len(args)+2)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.Request
	for rows.Next() {
		req, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate overtime requests: %w", err)
	}

	return requests, total, nil
}
