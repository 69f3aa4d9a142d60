// Package command contains write operations (CQRS - Commands).
// Every handler validates its command, acquires the registry mutation lock,
// applies the change, and lets the registry persist the snapshot
// synchronously (log-and-continue on save failure).
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
// ENROLL STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// EnrollStudentCommand contains the data to enroll a new student.
type EnrollStudentCommand struct {
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

// toParams maps the command onto the record factory parameters.
func (c EnrollStudentCommand) toParams() record.NewRecordParams {
	return record.NewRecordParams{
		ID:            c.ID,
		Name:          c.Name,
		Score:         c.Score,
		JoinDate:      c.JoinDate,
		BacklogCount:  c.BacklogCount,
		Phone:         c.Phone,
		Email:         c.Email,
		FeesPaid:      c.FeesPaid,
		FeesTotal:     c.FeesTotal,
		GuardianName:  c.GuardianName,
		GuardianPhone: c.GuardianPhone,
		GuardianEmail: c.GuardianEmail,
		Groups:        c.Groups,
	}
}

// EnrollStudentResult contains the result of the enrollment.
type EnrollStudentResult struct {
	Record record.Record `json:"record"`
}

// EnrollStudentHandler handles the EnrollStudentCommand.
type EnrollStudentHandler struct {
	reg *registry.Registry
}

// NewEnrollStudentHandler creates a new handler.
func NewEnrollStudentHandler(reg *registry.Registry) *EnrollStudentHandler {
	return &EnrollStudentHandler{reg: reg}
}

// Handle enrolls a student. A duplicate normalized ID is a validation
// failure and leaves the roster unchanged.
func (h *EnrollStudentHandler) Handle(ctx context.Context, cmd EnrollStudentCommand) (*EnrollStudentResult, error) {
	// Factory validation happens before the lock: a malformed command
	// never touches the roster.
	rec, err := record.NewRecord(cmd.toParams())
	if err != nil {
		return nil, fmt.Errorf("enroll_student: %w", err)
	}

	err = h.reg.Mutate(ctx, "EnrollStudent", func(rost *roster.Roster) error {
		if _, exists := rost.Search(string(rec.ID)); exists {
			return shared.ErrDuplicateID
		}
		rost.Insert(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &EnrollStudentResult{Record: *rec.Clone()}, nil
}
