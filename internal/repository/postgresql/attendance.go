package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.user_id, a.date, a.clock_in, a.clock_out, a.break_start, a.break_finish,
	a.status, a.stage,
	a.late_minutes, a.break_minutes, a.break_overage_minutes, a.worked_minutes,
	a.actual_overtime_minutes, a.overtime_minutes, a.night_differential_minutes, a.early_out_minutes,
	a.accrued_overtime_minutes, a.accrued_night_differential_minutes,
	a.visibility, a.last_edited_by, a.created_at, a.updated_at,
	u.full_name
`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	acc := &rec.Accounting
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.ClockIn, &rec.ClockOut, &rec.BreakStart, &rec.BreakFinish,
		&rec.Status, &rec.Stage,
		&acc.LateMinutes, &acc.BreakMinutes, &acc.BreakOverageMinutes, &acc.WorkedMinutes,
		&acc.ActualOvertimeMinutes, &acc.OvertimeMinutes, &acc.NightDifferentialMinutes, &acc.EarlyOutMinutes,
		&rec.Accrued.OvertimeMinutes, &rec.Accrued.NightDifferentialMinutes,
		&rec.Visibility, &rec.LastEditedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.UserName,
	)
	return rec, err
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			user_id, date, clock_in, clock_out, break_start, break_finish, status, stage,
			late_minutes, break_minutes, break_overage_minutes, worked_minutes,
			actual_overtime_minutes, overtime_minutes, night_differential_minutes, early_out_minutes,
			accrued_overtime_minutes, accrued_night_differential_minutes,
			visibility, last_edited_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		) RETURNING id, created_at, updated_at
	`

	acc := rec.Accounting
	err := q.QueryRow(ctx, query,
		rec.UserID, rec.Date, rec.ClockIn, rec.ClockOut, rec.BreakStart, rec.BreakFinish,
		string(rec.Status), string(rec.Stage),
		acc.LateMinutes, acc.BreakMinutes, acc.BreakOverageMinutes, acc.WorkedMinutes,
		acc.ActualOvertimeMinutes, acc.OvertimeMinutes, acc.NightDifferentialMinutes, acc.EarlyOutMinutes,
		rec.Accrued.OvertimeMinutes, rec.Accrued.NightDifferentialMinutes,
		string(rec.Visibility), rec.LastEditedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "attendance_records_user_date_key") {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

func (a *attendanceRepository) getOne(ctx context.Context, where string, forUpdate bool, args ...interface{}) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := "SELECT " + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE ` + where
	if forUpdate {
		query += " FOR UPDATE OF a"
	}

	return scanAttendance(q.QueryRow(ctx, query, args...))
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	if !isUUID(id) {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	rec, err := a.getOne(ctx, "a.id = $1", false, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// GetByIDForUpdate implements attendance.Repository.
func (a *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Record, error) {
	if !isUUID(id) {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	rec, err := a.getOne(ctx, "a.id = $1", true, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to lock attendance record: %w", err)
	}
	return rec, nil
}

func (a *attendanceRepository) getByUserAndDate(ctx context.Context, userID string, date time.Time, forUpdate bool) (*attendance.Record, error) {
	rec, err := a.getOne(ctx, "a.user_id = $1 AND a.date = $2", forUpdate, userID, date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record by user and date: %w", err)
	}
	return &rec, nil
}

// GetByUserAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	return a.getByUserAndDate(ctx, userID, date, false)
}

// GetByUserAndDateForUpdate implements attendance.Repository.
func (a *attendanceRepository) GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	return a.getByUserAndDate(ctx, userID, date, true)
}

// Update implements attendance.Repository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			clock_in = $2, clock_out = $3, break_start = $4, break_finish = $5,
			status = $6, stage = $7,
			late_minutes = $8, break_minutes = $9, break_overage_minutes = $10, worked_minutes = $11,
			actual_overtime_minutes = $12, overtime_minutes = $13, night_differential_minutes = $14,
			early_out_minutes = $15,
			accrued_overtime_minutes = $16, accrued_night_differential_minutes = $17,
			visibility = $18, last_edited_by = $19, updated_at = NOW()
		WHERE id = $1
	`

	acc := rec.Accounting
	result, err := q.Exec(ctx, query,
		rec.ID, rec.ClockIn, rec.ClockOut, rec.BreakStart, rec.BreakFinish,
		string(rec.Status), string(rec.Stage),
		acc.LateMinutes, acc.BreakMinutes, acc.BreakOverageMinutes, acc.WorkedMinutes,
		acc.ActualOvertimeMinutes, acc.OvertimeMinutes, acc.NightDifferentialMinutes,
		acc.EarlyOutMinutes,
		rec.Accrued.OvertimeMinutes, rec.Accrued.NightDifferentialMinutes,
		string(rec.Visibility), rec.LastEditedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"TRUE"}
	var args []interface{}
	addArg := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil && *filter.UserID != "" {
		addArg("a.user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil && *filter.Status != "" {
		addArg("a.status = $%d", *filter.Status)
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		addArg("a.date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		addArg("a.date <= $%d", *filter.EndDate)
	}
	if !filter.IncludeDisabled {
		addArg("a.visibility = $%d", string(attendance.VisibilityEnabled))
	}
	where := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendance_records a WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.date %s, u.full_name ASC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, sortDirection(filter.SortOrder), len(args)+1, len(args)+2)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

// SumOvertimeMinutes implements attendance.Repository.
func (a *attendanceRepository) SumOvertimeMinutes(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT COALESCE(SUM(overtime_minutes), 0)
		FROM attendance_records
		WHERE user_id = $1
		  AND date BETWEEN $2 AND $3
		  AND visibility = 'enabled'
	`

	var total int64
	if err := q.QueryRow(ctx, query, userID, from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum overtime minutes: %w", err)
	}
	return total, nil
}
