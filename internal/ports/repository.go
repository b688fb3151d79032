package ports

import (
	"context"
	"time"

	"hiloActivator/internal/domain"
)

// KlineCacheKey identifies one fetched batch of klines.
type KlineCacheKey struct {
	Symbol   string
	Interval string
	Limit    int
}

// KlineCache stores fetched kline batches for a limited time.
type KlineCache interface {
	// Get returns the cached batch if it was stored less than maxAge ago.
	// Returns nil, nil when there is no fresh entry.
	Get(ctx context.Context, key KlineCacheKey, maxAge time.Duration) ([]*domain.Kline, error)
	// Put replaces the batch stored under key.
	Put(ctx context.Context, key KlineCacheKey, klines []*domain.Kline) error
	// Purge removes batches older than maxAge and returns how many were removed.
	Purge(ctx context.Context, maxAge time.Duration) (int64, error)
}
