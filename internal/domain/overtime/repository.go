package overtime

import (
	"context"
	"time"
)

// ConfigRepository reads and writes the singleton schedule row.
type ConfigRepository interface {
	// Get returns ErrConfigMissing when the row has not been created yet
	Get(ctx context.Context) (Config, error)
	Upsert(ctx context.Context, cfg Config) (Config, error)
}

type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)

	// GetByID returns ErrRequestNotFound when missing
	GetByID(ctx context.Context, id string) (Request, error)

	// GetByIDForUpdate also locks the row for the surrounding transaction
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)

	// GetApprovedByUserAndDate returns nil when no approved request exists
	GetApprovedByUserAndDate(ctx context.Context, userID string, date time.Time) (*Request, error)

	// ExistsActiveForDate reports a pending or approved request other than excludeID
	ExistsActiveForDate(ctx context.Context, userID string, date time.Time, excludeID string) (bool, error)

	Update(ctx context.Context, request Request) error
	List(ctx context.Context, filter RequestFilter) ([]Request, int64, error)
}
