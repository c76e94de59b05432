package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fishmarket/internal/core"
	"fishmarket/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the single persistence layer for the ledger. All
// multi-write operations run inside one SQL transaction.
type SQLiteRepository struct {
	db               *sql.DB
	logger           *log.Logger
	clampOutstanding bool
}

// Option configures the repository.
type Option func(*SQLiteRepository)

// WithClampedOutstanding makes the daily summary clamp its cumulative
// outstanding total at zero instead of carrying the signed net.
func WithClampedOutstanding(clamp bool) Option {
	return func(r *SQLiteRepository) { r.clampOutstanding = clamp }
}

// WithLogger sets the logger used for storage diagnostics such as balance
// drift warnings.
func WithLogger(logger *log.Logger) Option {
	return func(r *SQLiteRepository) { r.logger = logger.WithComponent(log.ComponentStorage) }
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	for _, opt := range opts {
		opt(repo)
	}
	if repo.logger == nil {
		repo.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentStorage)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", core.ErrPersistence, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit transaction: %v", core.ErrPersistence, err)
	}
	return nil
}

func entityTable(kind core.EntityKind) string {
	if kind == core.EntityFarmer {
		return "farmers"
	}
	return "customers"
}

func txnTable(kind core.EntityKind) (table, fk string) {
	if kind == core.EntityFarmer {
		return "farmer_transactions", "farmer_id"
	}
	return "transactions", "customer_id"
}

// DeriveBalanceCents is the authoritative balance: the sum of balance
// changes over the entity's non-voided transactions.
func (r *SQLiteRepository) DeriveBalanceCents(ctx context.Context, kind core.EntityKind, id int64) (int64, error) {
	table, fk := txnTable(kind)
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(balance_change_cents), 0) FROM %s WHERE %s = ? AND status = 'completed'`,
		table, fk)

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&cents); err != nil {
		return 0, fmt.Errorf("%w: derive balance: %v", core.ErrPersistence, err)
	}
	return cents, nil
}

// CachedBalanceCents reads the stored balance column without derivation.
func (r *SQLiteRepository) CachedBalanceCents(ctx context.Context, kind core.EntityKind, id int64) (int64, error) {
	query := fmt.Sprintf(`SELECT balance_cents FROM %s WHERE id = ?`, entityTable(kind))

	var cents int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&cents)
	if err == sql.ErrNoRows {
		return 0, &core.NotFoundError{Entity: string(kind), ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read cached balance: %v", core.ErrPersistence, err)
	}
	return cents, nil
}

// PatchCachedBalance overwrites the cached balance column with the given
// value. Used by reconciliation when the cache has drifted.
func (r *SQLiteRepository) PatchCachedBalance(ctx context.Context, kind core.EntityKind, id int64, cents int64) error {
	query := fmt.Sprintf(
		`UPDATE %s SET balance_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		entityTable(kind))

	res, err := r.db.ExecContext(ctx, query, cents, id)
	if err != nil {
		return fmt.Errorf("%w: patch cached balance: %v", core.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: string(kind), ID: id}
	}
	return nil
}

// parseTimestamp reads the text form SQLite stores for CURRENT_TIMESTAMP.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
