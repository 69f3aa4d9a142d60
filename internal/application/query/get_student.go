// Package query contains read operations (CQRS - Queries).
// Queries work on deep-copied snapshots of the registry state and never
// mutate anything.
package query

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentQuery identifies the record to fetch.
type GetStudentQuery struct {
	ID string
}

// GetStudentHandler handles the GetStudentQuery.
type GetStudentHandler struct {
	reg *registry.Registry
}

// NewGetStudentHandler creates a new handler.
func NewGetStudentHandler(reg *registry.Registry) *GetStudentHandler {
	return &GetStudentHandler{reg: reg}
}

// Handle returns a copy of the record or shared.ErrRecordNotFound.
func (h *GetStudentHandler) Handle(ctx context.Context, q GetStudentQuery) (*record.Record, error) {
	id := record.NormalizeID(q.ID)
	for _, rec := range h.reg.Snapshot() {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, shared.ErrRecordNotFound
}
