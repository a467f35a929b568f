package overtime

import (
	"context"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
)

// Service covers the overtime request lifecycle and the schedule settings
type Service interface {
	// Submit files a pending request for the caller
	Submit(ctx context.Context, userID string, req SubmitRequest) (RequestResponse, error)

	// Edit changes a pending request; owner only
	Edit(ctx context.Context, userID string, req EditRequest) (RequestResponse, error)

	// Cancel withdraws a pending request; owner only
	Cancel(ctx context.Context, userID string, id string) (RequestResponse, error)

	Approve(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	Reject(ctx context.Context, actor user.Actor, req RejectRequest) (RequestResponse, error)

	// Get returns a request visible to the actor (owner or admin)
	Get(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	ListMine(ctx context.Context, userID string, filter RequestFilter) (ListRequestResponse, error)
	List(ctx context.Context, actor user.Actor, filter RequestFilter) (ListRequestResponse, error)

	GetConfig(ctx context.Context) (ConfigResponse, error)
	UpdateConfig(ctx context.Context, actor user.Actor, req UpdateConfigRequest) (ConfigResponse, error)
}
