package app

import (
	"context"
	"fmt"
	"time"

	"hiloActivator/internal/ports"
)

// maxClockSkew matches the default recvWindow of the exchange API.
const maxClockSkew = 5 * time.Second

// CheckExchange pings the exchange and reads its clock. The server time is
// returned so callers can anchor historical ranges on it instead of the local clock.
func CheckExchange(ctx context.Context, logger ports.Logger, client ports.ExchangeClient) (time.Time, error) {
	if err := client.Ping(ctx); err != nil {
		return time.Time{}, fmt.Errorf("exchange preflight failed: %w", err)
	}
	serverTime, err := client.GetServerTime(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("exchange preflight failed: %w", err)
	}

	skew := time.Since(serverTime)
	fields := map[string]interface{}{"serverTime": serverTime.Format(time.RFC3339), "clockSkew": skew.String()}
	if skew > maxClockSkew || skew < -maxClockSkew {
		logger.Warn(ctx, "Local clock differs from exchange time", fields)
	} else {
		logger.Debug(ctx, "Exchange reachable", fields)
	}
	return serverTime, nil
}
