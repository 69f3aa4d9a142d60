// Package redis implements the primary key-value persistence for the registry.
// The full roster and the label vocabulary are stored as JSON blobs under
// fixed versioned keys, following a whole-state snapshot model: every save
// rewrites the whole value (last-write-wins), every load reads it back whole.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS & KEYS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrStoreConnection is returned when the Redis connection fails.
	ErrStoreConnection = errors.New("store: connection failed")

	// ErrStoreSerialization is returned when the snapshot cannot be encoded.
	ErrStoreSerialization = errors.New("store: serialization failed")
)

// Versioned storage keys. The suffixes are part of the on-disk contract:
// bumping a version abandons the previous payload shape.
const (
	// KeyStudents holds the full roster snapshot.
	KeyStudents = "eduflow:students:v8"

	// KeyGroups holds the label vocabulary.
	KeyGroups = "eduflow:groups:v2"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store persists roster snapshots and the label vocabulary in Redis.
// It implements roster.SnapshotStore and labels.Store.
type Store struct {
	client *redis.Client
	config Config
	log    *logger.Logger
}

// NewStore creates a Store and verifies the connection with a ping.
func NewStore(cfg Config, log *logger.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreConnection, err)
	}

	return &Store{
		client: client,
		config: cfg,
		log:    log.With(logger.Component("redis-store")),
	}, nil
}

// Client returns the underlying Redis client for advanced operations.
func (s *Store) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Load reads the roster snapshot. A missing key yields shared.ErrNoSnapshot.
// A malformed or non-array payload is treated the same way: the registry
// starts empty rather than refusing to boot on corrupted state.
func (s *Store) Load(ctx context.Context) ([]record.Record, error) {
	data, err := s.client.Get(ctx, KeyStudents).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNoSnapshot
		}
		return nil, shared.WrapError("persist", "Load", shared.ErrPersistence, "redis get failed", err)
	}

	var records []record.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warn("malformed roster snapshot, treating as empty",
			logger.StorageKey(KeyStudents), logger.Err(err))
		return nil, shared.ErrNoSnapshot
	}

	return records, nil
}

// Save rewrites the whole roster snapshot (no TTL - the snapshot is the
// system of record, not a cache entry).
func (s *Store) Save(ctx context.Context, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreSerialization, err)
	}

	if err := s.client.Set(ctx, KeyStudents, data, 0).Err(); err != nil {
		return shared.WrapError("persist", "Save", shared.ErrPersistence, "redis set failed", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LABEL VOCABULARY
// ══════════════════════════════════════════════════════════════════════════════

// LoadLabels reads the vocabulary. Missing or malformed data yields
// shared.ErrNoSnapshot so the caller falls back to the default vocabulary.
func (s *Store) LoadLabels(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, KeyGroups).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNoSnapshot
		}
		return nil, shared.WrapError("persist", "LoadLabels", shared.ErrPersistence, "redis get failed", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		s.log.Warn("malformed vocabulary payload, treating as empty",
			logger.StorageKey(KeyGroups), logger.Err(err))
		return nil, shared.ErrNoSnapshot
	}

	return names, nil
}

// SaveLabels rewrites the whole vocabulary.
func (s *Store) SaveLabels(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}

	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreSerialization, err)
	}

	if err := s.client.Set(ctx, KeyGroups, data, 0).Err(); err != nil {
		return shared.WrapError("persist", "SaveLabels", shared.ErrPersistence, "redis set failed", err)
	}
	return nil
}
