package user

import (
	"context"

	"github.com/shopspring/decimal"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (User, error)

	// ListAdminIDs returns ids of active administrators
	ListAdminIDs(ctx context.Context) ([]string, error)

	// GetAccumulators reads the running totals of a user.
	GetAccumulators(ctx context.Context, userID string) (Accumulators, error)

	// LockAccumulators reads the running totals and locks the row until the
	// surrounding transaction ends.
	LockAccumulators(ctx context.Context, userID string) (Accumulators, error)

	// AddAttendanceAccruals adds overtime and night differential minutes.
	AddAttendanceAccruals(ctx context.Context, userID string, overtimeMinutes, nightDifferentialMinutes int) error

	// AddMplCredits adds converted leave credits.
	AddMplCredits(ctx context.Context, userID string, credits decimal.Decimal) error
}
