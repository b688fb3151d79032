package csvsource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/adapters/logger"
	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
	"hiloActivator/internal/utils"
)

var _ ports.MarketDataClient = (*Source)(nil)

func writeFile(t *testing.T, klines []*domain.Kline) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "klines.csv")
	require.NoError(t, utils.WriteKlinesToCSV(klines, path))
	return path
}

func series(symbol, interval string, n int) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, n)
	for i := range out {
		out[i] = &domain.Kline{
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Symbol:   symbol, Interval: interval,
			Open: 1, High: 2, Low: 0.5, Close: float64(i),
		}
	}
	return out
}

func TestSource_GetKlines(t *testing.T) {
	rows := append(series("BTCUSDT", "1h", 5), series("ETHUSDT", "1h", 3)...)
	src := New(writeFile(t, rows), logger.Nop())
	ctx := context.Background()

	got, err := src.GetKlines(ctx, "BTC/USDT", "1h", 0)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = src.GetKlines(ctx, "BTCUSDT", "1h", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3.0, got[0].Close)
	assert.Equal(t, 4.0, got[1].Close)

	_, err = src.GetKlines(ctx, "BTCUSDT", "1d", 10)
	assert.ErrorIs(t, err, ports.ErrNoData)
}

func TestSource_RowsWithoutSymbolMatchAnything(t *testing.T) {
	src := New(writeFile(t, series("", "", 4)), logger.Nop())

	got, err := src.GetKlines(context.Background(), "SOL/USDT", "4h", 10)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "SOLUSDT", got[0].Symbol)
	assert.Equal(t, "4h", got[0].Interval)
}

func TestSource_MissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope.csv"), logger.Nop())
	_, err := src.GetKlines(context.Background(), "BTCUSDT", "1d", 10)
	assert.ErrorIs(t, err, ports.ErrNoData)
}

func TestSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("unused.csv", logger.Nop()).GetKlines(ctx, "BTCUSDT", "1d", 10)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
