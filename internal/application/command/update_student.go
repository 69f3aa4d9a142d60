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
// UPDATE STUDENT COMMAND
// Replaces all mutable profile fields of an existing record. The record's
// attendance and payment ledgers are carried over untouched; the ID may
// change as long as the new ID does not collide with another record.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateStudentCommand contains the new field values for an existing record.
type UpdateStudentCommand struct {
	// TargetID addresses the record being updated.
	TargetID string `json:"target_id"`

	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Score         float64  `json:"score"`
	JoinDate      string   `json:"join_date"`
	BacklogCount  int      `json:"backlog_count"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	FeesPaid      float64  `json:"fees_paid"`
	FeesTotal     float64  `json:"fees_total"`
	GuardianName  string   `json:"guardian_name"`
	GuardianPhone string   `json:"guardian_phone"`
	GuardianEmail string   `json:"guardian_email"`
	Groups        []string `json:"groups"`
}

// UpdateStudentResult reports whether the target existed.
type UpdateStudentResult struct {
	Found  bool          `json:"found"`
	Record record.Record `json:"record,omitempty"`
}

// UpdateStudentHandler handles the UpdateStudentCommand.
type UpdateStudentHandler struct {
	reg *registry.Registry
}

// NewUpdateStudentHandler creates a new handler.
func NewUpdateStudentHandler(reg *registry.Registry) *UpdateStudentHandler {
	return &UpdateStudentHandler{reg: reg}
}

// Handle applies the update. A missing target is not an error - the result
// carries Found=false. Changing the ID to one held by another record is a
// validation failure.
func (h *UpdateStudentHandler) Handle(ctx context.Context, cmd UpdateStudentCommand) (*UpdateStudentResult, error) {
	if record.NormalizeID(cmd.TargetID) == "" {
		return nil, fmt.Errorf("update_student: %w", shared.ErrMissingID)
	}

	donor, err := record.NewRecord(record.NewRecordParams{
		ID:            cmd.ID,
		Name:          cmd.Name,
		Score:         cmd.Score,
		JoinDate:      cmd.JoinDate,
		BacklogCount:  cmd.BacklogCount,
		Phone:         cmd.Phone,
		Email:         cmd.Email,
		FeesPaid:      cmd.FeesPaid,
		FeesTotal:     cmd.FeesTotal,
		GuardianName:  cmd.GuardianName,
		GuardianPhone: cmd.GuardianPhone,
		GuardianEmail: cmd.GuardianEmail,
		Groups:        cmd.Groups,
	})
	if err != nil {
		return nil, fmt.Errorf("update_student: %w", err)
	}

	result := &UpdateStudentResult{}

	err = h.reg.Mutate(ctx, "UpdateStudent", func(rost *roster.Roster) error {
		target, ok := rost.Search(cmd.TargetID)
		if !ok {
			return nil // Found stays false, nothing persisted changes
		}

		// The ledgers survive a profile update.
		donor.Attendance = target.Clone().Attendance
		donor.Payments = target.Clone().Payments
		if donor.AvatarRef == nil {
			donor.AvatarRef = target.AvatarRef
		}

		if donor.ID != target.ID {
			if _, exists := rost.Search(string(donor.ID)); exists {
				return shared.ErrDuplicateID
			}
		}

		target.ReplaceFields(donor)
		result.Found = true
		result.Record = *target.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
