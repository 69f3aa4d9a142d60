package command

import (
	"context"
	"fmt"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SORT ROSTER COMMAND
// Sorting is a mutation: it rewrites the stored roster order, which then
// persists like any other change.
// ══════════════════════════════════════════════════════════════════════════════

// SortRosterCommand selects the sort field and direction.
type SortRosterCommand struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// SortRosterHandler handles the SortRosterCommand.
type SortRosterHandler struct {
	reg *registry.Registry
}

// NewSortRosterHandler creates a new handler.
func NewSortRosterHandler(reg *registry.Registry) *SortRosterHandler {
	return &SortRosterHandler{reg: reg}
}

// Handle sorts the roster stably by the given field.
func (h *SortRosterHandler) Handle(ctx context.Context, cmd SortRosterCommand) error {
	field, ok := roster.ParseSortField(cmd.Field)
	if !ok {
		return fmt.Errorf("sort_roster: %q: %w", cmd.Field, shared.ErrInvalidSortField)
	}

	return h.reg.Mutate(ctx, "SortRoster", func(rost *roster.Roster) error {
		rost.Sort(field, cmd.Ascending)
		return nil
	})
}
