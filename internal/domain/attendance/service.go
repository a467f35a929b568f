package attendance

import (
	"context"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
)

// Service drives a user's day from clock-in to clock-out
type Service interface {
	ClockIn(ctx context.Context, userID string) (RecordResponse, error)
	StartBreak(ctx context.Context, userID string) (RecordResponse, error)
	EndBreak(ctx context.Context, userID string) (RecordResponse, error)
	ClockOut(ctx context.Context, userID string) (RecordResponse, error)

	// Today returns the current record and the actions allowed next
	Today(ctx context.Context, userID string) (TodayResponse, error)

	// AdminEdit rewrites timestamps and recomputes every derived figure
	AdminEdit(ctx context.Context, actor user.Actor, req AdminEditRequest) (RecordResponse, error)

	// SetVisibility hides or restores a record; records are never deleted
	SetVisibility(ctx context.Context, actor user.Actor, req SetVisibilityRequest) (RecordResponse, error)

	Get(ctx context.Context, actor user.Actor, id string) (RecordResponse, error)
	ListMine(ctx context.Context, userID string, filter Filter) (ListResponse, error)
	List(ctx context.Context, actor user.Actor, filter Filter) (ListResponse, error)
}
