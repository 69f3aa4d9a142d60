// Package registry owns the in-memory state of the service: the roster and
// the label vocabulary. All mutations are serialized behind one mutex - the
// registry behaves as a strictly run-to-completion state machine even under
// a concurrent HTTP server. Every successful mutation is followed by a
// synchronous best-effort snapshot save.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eduflow/eduflow-registry/internal/domain/labels"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/logger"
)

// Registry holds the authoritative in-memory state.
type Registry struct {
	mu    sync.Mutex
	rost  *roster.Roster
	vocab *labels.Vocabulary

	snapshots  roster.SnapshotStore
	archive    roster.SnapshotStore // optional durable fallback, may be nil
	labelStore labels.Store

	log *logger.Logger
}

// Dependencies wires the registry's collaborators.
type Dependencies struct {
	Snapshots  roster.SnapshotStore
	Archive    roster.SnapshotStore // optional
	LabelStore labels.Store
	Logger     *logger.Logger
}

// New creates an empty registry.
func New(deps Dependencies) *Registry {
	return &Registry{
		rost:       roster.New(),
		vocab:      labels.New(nil),
		snapshots:  deps.Snapshots,
		archive:    deps.Archive,
		labelStore: deps.LabelStore,
		log:        deps.Logger.With(logger.Component("registry")),
	}
}

// Load hydrates the registry from the stores. Absent roster data yields an
// empty roster; an absent vocabulary falls back to the default groups.
// Only hard persistence failures are returned.
func (g *Registry) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	records, err := g.snapshots.Load(ctx)
	switch {
	case err == nil:
		g.rost.BulkLoad(records)
		g.log.Info("roster loaded", logger.RosterSize(g.rost.Len()))
	case errors.Is(err, shared.ErrNoSnapshot):
		g.rost.BulkLoad(nil)
		g.log.Info("no roster snapshot, starting empty")
	default:
		return err
	}

	names, err := g.labelStore.LoadLabels(ctx)
	switch {
	case err == nil:
		g.vocab.Replace(names)
	case errors.Is(err, shared.ErrNoSnapshot):
		g.vocab.Replace(labels.DefaultGroups())
		g.log.Info("no vocabulary stored, using defaults")
	default:
		return err
	}

	return nil
}

// Mutate runs fn against the roster under the registry mutex. When fn
// succeeds the roster snapshot is saved synchronously; a save failure is
// logged and swallowed - the in-memory roster stays authoritative for the
// session.
func (g *Registry) Mutate(ctx context.Context, op string, fn func(*roster.Roster) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := fn(g.rost); err != nil {
		return err
	}

	g.persistRoster(ctx, op)
	return nil
}

// MutateLabels runs fn against the vocabulary under the registry mutex,
// then persists the vocabulary with the same log-and-continue contract.
func (g *Registry) MutateLabels(ctx context.Context, op string, fn func(*labels.Vocabulary) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := fn(g.vocab); err != nil {
		return err
	}

	if err := g.labelStore.SaveLabels(ctx, g.vocab.List()); err != nil {
		g.log.Error("vocabulary save failed, continuing with in-memory state",
			logger.Operation(op), logger.Err(err))
	}
	return nil
}

// persistRoster saves to the primary store and, when configured, the archive.
// Callers must hold the mutex.
func (g *Registry) persistRoster(ctx context.Context, op string) {
	start := time.Now()
	seq := g.rost.ToSequence()

	if err := g.snapshots.Save(ctx, seq); err != nil {
		g.log.Error("snapshot save failed, continuing with in-memory state",
			logger.Operation(op), logger.RosterSize(len(seq)), logger.Err(err))
	}

	if g.archive != nil {
		if err := g.archive.Save(ctx, seq); err != nil {
			g.log.Warn("archive save failed",
				logger.Operation(op), logger.Err(err))
		}
	}

	g.log.Debug("roster persisted",
		logger.Operation(op), logger.RosterSize(len(seq)), logger.Latency(time.Since(start)))
}

// Snapshot returns a deep-copied view of the roster in its current order.
func (g *Registry) Snapshot() []record.Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rost.ToSequence()
}

// Labels returns a copy of the current vocabulary.
func (g *Registry) Labels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vocab.List()
}

// Flush persists the current state unconditionally. Called on shutdown.
func (g *Registry) Flush(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.persistRoster(ctx, "Flush")
	if err := g.labelStore.SaveLabels(ctx, g.vocab.List()); err != nil {
		g.log.Error("vocabulary flush failed", logger.Err(err))
	}
}
