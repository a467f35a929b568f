package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/database"
)

type mplRepository struct {
	db *database.DB
}

func NewMplRepository(db *database.DB) mpl.Repository {
	return &mplRepository{db: db}
}

// Append implements mpl.Repository.
func (r *mplRepository) Append(ctx context.Context, c mpl.Conversion) (mpl.Conversion, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_mpl_conversions (
			user_id, cutoff_start, cutoff_end, total_overtime_hours,
			mpl_converted, residual_overtime_hours, converted_by, converted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		c.UserID, c.CutoffStart, c.CutoffEnd, c.TotalOvertimeHours,
		c.MplConverted, c.ResidualOvertimeHours, c.ConvertedBy, c.ConvertedAt,
	).Scan(&c.ID)
	if err != nil {
		return mpl.Conversion{}, fmt.Errorf("failed to append mpl conversion: %w", err)
	}
	return c, nil
}

// SumConverted implements mpl.Repository.
func (r *mplRepository) SumConverted(ctx context.Context, userID string, cutoffStart, cutoffEnd time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(mpl_converted), 0)::int
		FROM overtime_mpl_conversions
		WHERE user_id = $1 AND cutoff_start = $2 AND cutoff_end = $3
	`

	var total int
	if err := q.QueryRow(ctx, query, userID, cutoffStart, cutoffEnd).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum mpl conversions: %w", err)
	}
	return total, nil
}

// ListByUser implements mpl.Repository.
func (r *mplRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]mpl.Conversion, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM overtime_mpl_conversions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count mpl conversions: %w", err)
	}

	query := `
		SELECT id, user_id, cutoff_start, cutoff_end, total_overtime_hours,
			   mpl_converted, residual_overtime_hours, converted_by, converted_at
		FROM overtime_mpl_conversions
		WHERE user_id = $1
		ORDER BY converted_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query mpl conversions: %w", err)
	}
	defer rows.Close()

	var conversions []mpl.Conversion
	for rows.Next() {
		var c mpl.Conversion
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.CutoffStart, &c.CutoffEnd, &c.TotalOvertimeHours,
			&c.MplConverted, &c.ResidualOvertimeHours, &c.ConvertedBy, &c.ConvertedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan mpl conversion: %w", err)
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate mpl conversions: %w", err)
	}

	return conversions, total, nil
}
