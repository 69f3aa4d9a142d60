package query

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// ══════════════════════════════════════════════════════════════════════════════

// Dashboard aggregates the cohort view: the summary numbers, per-group
// membership for every vocabulary label, and the low-attendance watchlist.
type Dashboard struct {
	Summary   stats.Summary          `json:"summary"`
	Groups    []stats.GroupShare     `json:"groups"`
	Watchlist []stats.WatchlistEntry `json:"watchlist"`
}

// GetDashboardHandler handles the dashboard query.
type GetDashboardHandler struct {
	reg       *registry.Registry
	threshold float64
}

// NewGetDashboardHandler creates a new handler with the given watchlist
// threshold (pass 0 for the default).
func NewGetDashboardHandler(reg *registry.Registry, threshold float64) *GetDashboardHandler {
	if threshold <= 0 {
		threshold = stats.DefaultWatchlistThreshold
	}
	return &GetDashboardHandler{reg: reg, threshold: threshold}
}

// Handle builds the dashboard from the current snapshot.
func (h *GetDashboardHandler) Handle(ctx context.Context) (*Dashboard, error) {
	snapshot := h.reg.Snapshot()
	return &Dashboard{
		Summary:   stats.Summarize(snapshot),
		Groups:    stats.GroupMembership(snapshot, h.reg.Labels()),
		Watchlist: stats.Watchlist(snapshot, h.threshold),
	}, nil
}
