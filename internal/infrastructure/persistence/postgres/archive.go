// Package postgres implements the optional durable snapshot archive.
// Every save appends one snapshot row; Load returns the payload of the
// latest row. The archive is a fallback behind the primary key-value
// store, not a normalized relational model of the roster.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnectionClosed indicates the connection pool is closed.
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")

	// ErrMigrationFailed indicates a migration failure.
	ErrMigrationFailed = errors.New("postgres: migration failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds PostgreSQL connection configuration.
type Config struct {
	// Host is the database host.
	Host string

	// Port is the database port (default 5432).
	Port int

	// Database is the database name.
	Database string

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// SSLMode is the SSL mode (disable, require, verify-ca, verify-full).
	SSLMode string

	// MaxConns is the maximum number of connections in the pool.
	MaxConns int32

	// MinConns is the minimum number of connections in the pool.
	MinConns int32

	// MaxConnLifetime is the maximum lifetime of a connection.
	MaxConnLifetime time.Duration

	// ConnectTimeout is the timeout for establishing a connection.
	ConnectTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Port:            5432,
		Database:        "eduflow",
		User:            "postgres",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		ConnectTimeout:  10 * time.Second,
	}
}

// DSN returns the connection string for PostgreSQL.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s connect_timeout=%d",
		c.Host,
		c.Port,
		c.Database,
		c.User,
		c.Password,
		c.SSLMode,
		int(c.ConnectTimeout.Seconds()),
	)
}

// PoolConfig returns pgxpool configuration.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	config.MaxConns = c.MaxConns
	config.MinConns = c.MinConns
	config.MaxConnLifetime = c.MaxConnLifetime

	return config, nil
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	return pool, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// ══════════════════════════════════════════════════════════════════════════════

const schemaSQL = `
CREATE TABLE IF NOT EXISTS roster_snapshots (
	id         BIGSERIAL PRIMARY KEY,
	taken_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_roster_snapshots_taken_at
	ON roster_snapshots (taken_at DESC);
`

// Migrate ensures the archive schema exists.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT ARCHIVE
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotArchive stores roster snapshots in PostgreSQL.
// It implements roster.SnapshotStore: Save appends a row, Load reads the
// latest one.
type SnapshotArchive struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewSnapshotArchive creates an archive over an existing pool.
func NewSnapshotArchive(pool *pgxpool.Pool, log *logger.Logger) *SnapshotArchive {
	return &SnapshotArchive{
		pool: pool,
		log:  log.With(logger.Component("snapshot-archive")),
	}
}

// Load returns the latest archived snapshot.
// An empty archive yields shared.ErrNoSnapshot.
func (a *SnapshotArchive) Load(ctx context.Context) ([]record.Record, error) {
	var payload []byte
	err := a.pool.QueryRow(ctx,
		`SELECT payload FROM roster_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNoSnapshot
		}
		return nil, shared.WrapError("persist", "Load", shared.ErrPersistence, "archive query failed", err)
	}

	var records []record.Record
	if err := json.Unmarshal(payload, &records); err != nil {
		a.log.Warn("malformed archived snapshot, treating as empty", logger.Err(err))
		return nil, shared.ErrNoSnapshot
	}

	return records, nil
}

// Save appends a snapshot row. Older rows are kept as history.
func (a *SnapshotArchive) Save(ctx context.Context, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return shared.WrapError("persist", "Save", shared.ErrPersistence, "snapshot encode failed", err)
	}

	if _, err := a.pool.Exec(ctx,
		`INSERT INTO roster_snapshots (payload) VALUES ($1)`, payload,
	); err != nil {
		return shared.WrapError("persist", "Save", shared.ErrPersistence, "archive insert failed", err)
	}
	return nil
}
