package command

import (
	"context"
	"fmt"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RemoveStudentCommand identifies the record to delete.
type RemoveStudentCommand struct {
	ID string `json:"id"`
}

// RemoveStudentResult reports whether a record was deleted.
type RemoveStudentResult struct {
	Removed bool `json:"removed"`
}

// RemoveStudentHandler handles the RemoveStudentCommand.
type RemoveStudentHandler struct {
	reg *registry.Registry
}

// NewRemoveStudentHandler creates a new handler.
func NewRemoveStudentHandler(reg *registry.Registry) *RemoveStudentHandler {
	return &RemoveStudentHandler{reg: reg}
}

// Handle deletes the first record with the given ID, preserving the
// relative order of the rest. A missing record is not an error.
func (h *RemoveStudentHandler) Handle(ctx context.Context, cmd RemoveStudentCommand) (*RemoveStudentResult, error) {
	if record.NormalizeID(cmd.ID) == "" {
		return nil, fmt.Errorf("remove_student: %w", shared.ErrMissingID)
	}

	result := &RemoveStudentResult{}
	err := h.reg.Mutate(ctx, "RemoveStudent", func(rost *roster.Roster) error {
		result.Removed = rost.Delete(cmd.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
