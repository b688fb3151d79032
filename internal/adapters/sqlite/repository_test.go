package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

var _ ports.KlineCache = (*Repository)(nil)

// setupTestDB creates a file-backed database in a temp dir, or an in-memory one.
func setupTestDB(t *testing.T, inMemory bool) (*Repository, *time.Time) {
	t.Helper()

	path := MemoryPath
	if !inMemory {
		path = filepath.Join(t.TempDir(), "cache", "klines.db")
	}
	repo, err := NewRepository(Config{DBPath: path, Logger: &mockLogger{}})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	return repo, &clock
}

func sampleKlines(n int) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, n)
	for i := range out {
		open := start.Add(time.Duration(i) * 24 * time.Hour)
		out[i] = &domain.Kline{
			OpenTime:  open,
			CloseTime: open.Add(24*time.Hour - time.Millisecond),
			Symbol:    "BTCUSDT",
			Interval:  "1d",
			Open:      100 + float64(i),
			High:      110 + float64(i),
			Low:       90 + float64(i),
			Close:     105 + float64(i),
			Volume:    1000.5,
		}
	}
	return out
}

func TestRepository_PutAndGet(t *testing.T) {
	for _, inMemory := range []bool{true, false} {
		name := "file"
		if inMemory {
			name = "memory"
		}
		t.Run(name, func(t *testing.T) {
			repo, _ := setupTestDB(t, inMemory)
			ctx := context.Background()
			key := ports.KlineCacheKey{Symbol: "BTCUSDT", Interval: "1d", Limit: 3}

			got, err := repo.Get(ctx, key, time.Hour)
			require.NoError(t, err)
			assert.Nil(t, got, "empty cache is a miss")

			want := sampleKlines(3)
			require.NoError(t, repo.Put(ctx, key, want))

			got, err = repo.Get(ctx, key, time.Hour)
			require.NoError(t, err)
			require.Len(t, got, 3)
			for i := range want {
				assert.True(t, want[i].OpenTime.Equal(got[i].OpenTime))
				assert.True(t, want[i].CloseTime.Equal(got[i].CloseTime))
				assert.Equal(t, want[i].Close, got[i].Close)
				assert.Equal(t, want[i].Volume, got[i].Volume)
				assert.Equal(t, "BTCUSDT", got[i].Symbol)
			}
		})
	}
}

func TestRepository_KeysAreIndependent(t *testing.T) {
	repo, _ := setupTestDB(t, true)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, ports.KlineCacheKey{Symbol: "BTCUSDT", Interval: "1d", Limit: 3}, sampleKlines(3)))

	for _, key := range []ports.KlineCacheKey{
		{Symbol: "ETHUSDT", Interval: "1d", Limit: 3},
		{Symbol: "BTCUSDT", Interval: "4h", Limit: 3},
		{Symbol: "BTCUSDT", Interval: "1d", Limit: 5},
	} {
		got, err := repo.Get(ctx, key, 0)
		require.NoError(t, err)
		assert.Nil(t, got, "%+v", key)
	}
}

func TestRepository_PutReplaces(t *testing.T) {
	repo, _ := setupTestDB(t, true)
	ctx := context.Background()
	key := ports.KlineCacheKey{Symbol: "BTCUSDT", Interval: "1d", Limit: 5}

	require.NoError(t, repo.Put(ctx, key, sampleKlines(5)))
	require.NoError(t, repo.Put(ctx, key, sampleKlines(2)))

	got, err := repo.Get(ctx, key, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRepository_TTL(t *testing.T) {
	repo, clock := setupTestDB(t, true)
	ctx := context.Background()
	key := ports.KlineCacheKey{Symbol: "BTCUSDT", Interval: "1d", Limit: 3}
	require.NoError(t, repo.Put(ctx, key, sampleKlines(3)))

	*clock = clock.Add(59 * time.Minute)
	got, err := repo.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	*clock = clock.Add(2 * time.Minute)
	got, err = repo.Get(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, got, "entry older than ttl is a miss")

	got, err = repo.Get(ctx, key, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3, "zero max age accepts any entry")
}

func TestRepository_Purge(t *testing.T) {
	repo, clock := setupTestDB(t, false)
	ctx := context.Background()
	old := ports.KlineCacheKey{Symbol: "BTCUSDT", Interval: "1d", Limit: 3}
	fresh := ports.KlineCacheKey{Symbol: "ETHUSDT", Interval: "1d", Limit: 3}

	require.NoError(t, repo.Put(ctx, old, sampleKlines(3)))
	*clock = clock.Add(2 * time.Hour)
	require.NoError(t, repo.Put(ctx, fresh, sampleKlines(3)))

	n, err := repo.Purge(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.Get(ctx, old, 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.Get(ctx, fresh, 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	var orphans int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM klines WHERE symbol = 'BTCUSDT'`).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{})
	assert.Error(t, err)
}
