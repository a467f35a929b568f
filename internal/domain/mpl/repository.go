package mpl

import (
	"context"
	"time"
)

// Repository is the append-only conversion ledger.
type Repository interface {
	Append(ctx context.Context, conversion Conversion) (Conversion, error)

	// SumConverted totals the units already converted for exactly this cutoff
	SumConverted(ctx context.Context, userID string, cutoffStart, cutoffEnd time.Time) (int, error)

	// ListByUser returns entries newest first
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Conversion, int64, error)
}
