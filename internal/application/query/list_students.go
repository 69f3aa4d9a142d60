package query

import (
	"context"
	"strings"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST STUDENTS QUERY
// Free-text search covers name, ID, phone, email and guardian name
// (case-insensitive substring). The group filter is an exact label match.
// Both narrow the roster view; order is the stored roster order.
// ══════════════════════════════════════════════════════════════════════════════

// ListStudentsQuery carries the optional filters.
type ListStudentsQuery struct {
	Search string
	Group  string
}

// ListStudentsResult is the filtered view.
type ListStudentsResult struct {
	Records []record.Record `json:"records"`
	Total   int             `json:"total"` // full roster size before filtering
}

// ListStudentsHandler handles the ListStudentsQuery.
type ListStudentsHandler struct {
	reg *registry.Registry
}

// NewListStudentsHandler creates a new handler.
func NewListStudentsHandler(reg *registry.Registry) *ListStudentsHandler {
	return &ListStudentsHandler{reg: reg}
}

// Handle returns the filtered snapshot.
func (h *ListStudentsHandler) Handle(ctx context.Context, q ListStudentsQuery) (*ListStudentsResult, error) {
	all := h.reg.Snapshot()
	result := &ListStudentsResult{Records: make([]record.Record, 0, len(all)), Total: len(all)}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, rec := range all {
		if q.Group != "" && !rec.InGroup(q.Group) {
			continue
		}
		if needle != "" && !matchesSearch(&rec, needle) {
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func matchesSearch(r *record.Record, needle string) bool {
	haystacks := []string{
		r.Name,
		string(r.ID),
		r.Phone,
		r.Email,
		r.GuardianName,
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
