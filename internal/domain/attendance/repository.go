package attendance

import (
	"context"
	"time"
)

// Repository stores attendance records. Dates are calendar dates at UTC
// midnight.
type Repository interface {
	// Create inserts a record and returns ErrAlreadyClockedIn when one
	// already exists for the same user and date
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID returns ErrRecordNotFound when missing
	GetByID(ctx context.Context, id string) (Record, error)

	// GetByIDForUpdate also locks the row for the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id string) (Record, error)

	// GetByUserAndDateForUpdate returns nil when the user has no record that day
	GetByUserAndDateForUpdate(ctx context.Context, userID string, date time.Time) (*Record, error)

	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)

	Update(ctx context.Context, record Record) error

	List(ctx context.Context, filter Filter) ([]Record, int64, error)

	// SumOvertimeMinutes totals the capped overtime of enabled records in
	// [from, to], both inclusive
	SumOvertimeMinutes(ctx context.Context, userID string, from, to time.Time) (int64, error)
}
