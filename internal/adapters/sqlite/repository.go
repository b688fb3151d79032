package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"hiloActivator/internal/domain"
	"hiloActivator/internal/ports"
)

// MemoryPath keeps the cache inside the process.
const MemoryPath = ":memory:"

// Repository implements the ports.KlineCache interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string // empty or MemoryPath for an in-process cache
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = MemoryPath
	}

	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			err = fmt.Errorf("failed to create data directory '%s': %w: %w", filepath.Dir(dbPath), ports.ErrDBConnection, err)
			cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
			return nil, err
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// a single connection: an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	repo := &Repository{db: db, logger: cfg.Logger, now: time.Now}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Kline cache ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS kline_batches (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		lim INTEGER NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (symbol, interval, lim)
	);

	CREATE TABLE IF NOT EXISTS klines (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		lim INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		open_time INTEGER NOT NULL,
		close_time INTEGER NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		PRIMARY KEY (symbol, interval, lim, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_kline_batches_fetched_at ON kline_batches (fetched_at);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrUpdateFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Get returns the cached klines for key when they are younger than maxAge.
// A miss or a stale entry yields nil without error. maxAge <= 0 accepts any age.
func (r *Repository) Get(ctx context.Context, key ports.KlineCacheKey, maxAge time.Duration) ([]*domain.Kline, error) {
	const batchQuery = `SELECT fetched_at FROM kline_batches WHERE symbol = ? AND interval = ? AND lim = ?`

	var fetchedAt int64
	err := r.db.QueryRowContext(ctx, batchQuery, key.Symbol, key.Interval, key.Limit).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %s %s failed: %w: %w", key.Symbol, key.Interval, ports.ErrQueryFailed, err)
	}

	age := r.now().Sub(time.UnixMilli(fetchedAt))
	if maxAge > 0 && age > maxAge {
		r.logger.Debug(ctx, "Cached klines expired", map[string]interface{}{
			"symbol": key.Symbol, "interval": key.Interval, "age": age.String(),
		})
		return nil, nil
	}

	const klineQuery = `
	SELECT open_time, close_time, open, high, low, close, volume
	FROM klines
	WHERE symbol = ? AND interval = ? AND lim = ?
	ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, klineQuery, key.Symbol, key.Interval, key.Limit)
	if err != nil {
		return nil, fmt.Errorf("cache read for %s %s failed: %w: %w", key.Symbol, key.Interval, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var klines []*domain.Kline
	for rows.Next() {
		var openMs, closeMs int64
		k := &domain.Kline{Symbol: key.Symbol, Interval: key.Interval}
		if err := rows.Scan(&openMs, &closeMs, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan cached kline: %w: %w", ports.ErrQueryFailed, err)
		}
		k.OpenTime = time.UnixMilli(openMs).UTC()
		k.CloseTime = time.UnixMilli(closeMs).UTC()
		klines = append(klines, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached klines: %w: %w", ports.ErrQueryFailed, err)
	}
	return klines, nil
}

// Put replaces the cached klines for key and stamps them with the current time.
func (r *Repository) Put(ctx context.Context, key ports.KlineCacheKey, klines []*domain.Kline) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM klines WHERE symbol = ? AND interval = ? AND lim = ?`,
		key.Symbol, key.Interval, key.Limit); err != nil {
		return fmt.Errorf("failed to clear cached klines: %w: %w", ports.ErrUpdateFailed, err)
	}

	const upsertBatch = `
	INSERT INTO kline_batches (symbol, interval, lim, fetched_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(symbol, interval, lim) DO UPDATE SET fetched_at = excluded.fetched_at`
	if _, err = tx.ExecContext(ctx, upsertBatch, key.Symbol, key.Interval, key.Limit, r.now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to store kline batch: %w: %w", ports.ErrUpdateFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO klines (symbol, interval, lim, seq, open_time, close_time, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare kline insert: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer stmt.Close()

	seq := 0
	for _, k := range klines {
		if k == nil {
			continue
		}
		if _, err = stmt.ExecContext(ctx, key.Symbol, key.Interval, key.Limit, seq,
			k.OpenTime.UnixMilli(), k.CloseTime.UnixMilli(), k.Open, k.High, k.Low, k.Close, k.Volume); err != nil {
			return fmt.Errorf("failed to insert cached kline: %w: %w", ports.ErrUpdateFailed, err)
		}
		seq++
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cached klines: %w: %w", ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Klines cached", map[string]interface{}{
		"symbol": key.Symbol, "interval": key.Interval, "limit": key.Limit, "count": seq,
	})
	return nil
}

// Purge deletes batches older than maxAge and returns how many were removed.
func (r *Repository) Purge(ctx context.Context, maxAge time.Duration) (n int64, err error) {
	cutoff := r.now().Add(-maxAge).UnixMilli()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin purge transaction: %w: %w", ports.ErrUpdateFailed, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	const deleteKlines = `
	DELETE FROM klines WHERE EXISTS (
		SELECT 1 FROM kline_batches b
		WHERE b.symbol = klines.symbol AND b.interval = klines.interval AND b.lim = klines.lim
		  AND b.fetched_at < ?)`
	if _, err = tx.ExecContext(ctx, deleteKlines, cutoff); err != nil {
		return 0, fmt.Errorf("failed to purge klines: %w: %w", ports.ErrUpdateFailed, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM kline_batches WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge kline batches: %w: %w", ports.ErrUpdateFailed, err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("failed to count purged batches: %w: %w", ports.ErrUpdateFailed, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w: %w", ports.ErrUpdateFailed, err)
	}
	return n, nil
}
