package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG ATTENDANCE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// LogAttendanceCommand marks one student for one session date.
type LogAttendanceCommand struct {
	ID     string                  `json:"id"`
	Date   string                  `json:"date"`
	Status record.AttendanceStatus `json:"status"`
}

// LogAttendanceHandler handles the LogAttendanceCommand.
type LogAttendanceHandler struct {
	reg *registry.Registry
}

// NewLogAttendanceHandler creates a new handler.
func NewLogAttendanceHandler(reg *registry.Registry) *LogAttendanceHandler {
	return &LogAttendanceHandler{reg: reg}
}

// Handle records the mark. Re-marking the same date overwrites the status.
func (h *LogAttendanceHandler) Handle(ctx context.Context, cmd LogAttendanceCommand) error {
	return h.reg.Mutate(ctx, "LogAttendance", func(rost *roster.Roster) error {
		rec, ok := rost.Search(cmd.ID)
		if !ok {
			return shared.ErrRecordNotFound
		}
		return rec.LogAttendance(cmd.Date, cmd.Status)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE ATTENDANCE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RemoveAttendanceCommand clears the mark for one date.
type RemoveAttendanceCommand struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// RemoveAttendanceHandler handles the RemoveAttendanceCommand.
type RemoveAttendanceHandler struct {
	reg *registry.Registry
}

// NewRemoveAttendanceHandler creates a new handler.
func NewRemoveAttendanceHandler(reg *registry.Registry) *RemoveAttendanceHandler {
	return &RemoveAttendanceHandler{reg: reg}
}

// Handle removes the mark. A date without a mark is a no-op, not an error.
func (h *RemoveAttendanceHandler) Handle(ctx context.Context, cmd RemoveAttendanceCommand) error {
	return h.reg.Mutate(ctx, "RemoveAttendance", func(rost *roster.Roster) error {
		rec, ok := rost.Search(cmd.ID)
		if !ok {
			return shared.ErrRecordNotFound
		}
		rec.RemoveAttendance(cmd.Date)
		return nil
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// BULK ATTENDANCE COMMAND
// One roll call: a single session date, a status per student ID. Unknown
// IDs are silently skipped and the remaining marks are still applied.
// ══════════════════════════════════════════════════════════════════════════════

// BulkAttendanceCommand is a full roll call for one date.
type BulkAttendanceCommand struct {
	Date  string                             `json:"date"`
	Marks map[string]record.AttendanceStatus `json:"marks"`
}

// Validate checks the shared session date and statuses up front so a bad
// roll call never half-applies.
func (c BulkAttendanceCommand) Validate() error {
	if !timeutil.IsValidDay(c.Date) {
		return shared.ErrInvalidDate
	}
	for _, status := range c.Marks {
		if !status.IsValid() {
			return shared.ErrInvalidStatus
		}
	}
	return nil
}

// BulkAttendanceResult reports which marks were applied.
type BulkAttendanceResult struct {
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped"`
}

// BulkAttendanceHandler handles the BulkAttendanceCommand.
type BulkAttendanceHandler struct {
	reg *registry.Registry
}

// NewBulkAttendanceHandler creates a new handler.
func NewBulkAttendanceHandler(reg *registry.Registry) *BulkAttendanceHandler {
	return &BulkAttendanceHandler{reg: reg}
}

// Handle applies the roll call. IDs are processed in sorted order so the
// outcome is deterministic regardless of map iteration.
func (h *BulkAttendanceHandler) Handle(ctx context.Context, cmd BulkAttendanceCommand) (*BulkAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("bulk_attendance: %w", err)
	}

	ids := make([]string, 0, len(cmd.Marks))
	for id := range cmd.Marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &BulkAttendanceResult{Skipped: []string{}}
	err := h.reg.Mutate(ctx, "BulkAttendance", func(rost *roster.Roster) error {
		for _, id := range ids {
			rec, ok := rost.Search(id)
			if !ok {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			if err := rec.LogAttendance(cmd.Date, cmd.Marks[id]); err != nil {
				return err
			}
			result.Applied++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
