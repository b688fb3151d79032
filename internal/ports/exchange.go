package ports

import (
	"context"
	"time"

	"hiloActivator/internal/domain"
)

// MarketDataClient supplies historical klines.
// This abstraction decouples the indicator pipeline from a specific exchange or file source.
type MarketDataClient interface {
	// GetKlines retrieves the most recent klines for the symbol, oldest first.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)
}

// ExchangeClient is a MarketDataClient backed by a live exchange.
type ExchangeClient interface {
	MarketDataClient

	// GetKlinesRange fetches all klines between start and end, paging as needed.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Kline, error)

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error

	// GetServerTime retrieves the current server time from the exchange.
	GetServerTime(ctx context.Context) (time.Time, error)
}
