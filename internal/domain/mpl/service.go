package mpl

import (
	"context"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
)

type Service interface {
	// Quota previews the convertible balance; owner or admin
	Quota(ctx context.Context, actor user.Actor, req QuotaRequest) (QuotaResponse, error)

	// Convert turns overtime hours of a cutoff into leave credits; admin only
	Convert(ctx context.Context, actor user.Actor, req ConvertRequest) (ConversionResponse, error)

	History(ctx context.Context, actor user.Actor, userID string, filter HistoryFilter) (ListConversionResponse, error)
	Balance(ctx context.Context, actor user.Actor, userID string) (BalanceResponse, error)
}
