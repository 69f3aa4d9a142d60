package command

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/labels"
)

// ══════════════════════════════════════════════════════════════════════════════
// LABEL VOCABULARY COMMANDS
// The vocabulary and the records are independent: removing a label does NOT
// cascade into student records - dangling group references stay in place.
// ══════════════════════════════════════════════════════════════════════════════

// AddLabelCommand introduces a new group label.
type AddLabelCommand struct {
	Name string `json:"name"`
}

// RemoveLabelCommand deletes a group label from the vocabulary.
type RemoveLabelCommand struct {
	Name string `json:"name"`
}

// ManageLabelsHandler handles both vocabulary commands.
type ManageLabelsHandler struct {
	reg *registry.Registry
}

// NewManageLabelsHandler creates a new handler.
func NewManageLabelsHandler(reg *registry.Registry) *ManageLabelsHandler {
	return &ManageLabelsHandler{reg: reg}
}

// HandleAdd adds the label to the vocabulary.
func (h *ManageLabelsHandler) HandleAdd(ctx context.Context, cmd AddLabelCommand) error {
	return h.reg.MutateLabels(ctx, "AddLabel", func(v *labels.Vocabulary) error {
		return v.Add(cmd.Name)
	})
}

// HandleRemove removes the label from the vocabulary only.
func (h *ManageLabelsHandler) HandleRemove(ctx context.Context, cmd RemoveLabelCommand) error {
	return h.reg.MutateLabels(ctx, "RemoveLabel", func(v *labels.Vocabulary) error {
		return v.Remove(cmd.Name)
	})
}
