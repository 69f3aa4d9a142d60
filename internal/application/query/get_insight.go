package query

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET INSIGHT QUERY
// Best-effort AI summary over the current roster snapshot. Single attempt:
// a collaborator failure surfaces as an external-service error, never a
// retry loop.
// ══════════════════════════════════════════════════════════════════════════════

// Summarizer produces a cohort insight text. Implemented by the genai client.
type Summarizer interface {
	Summarize(ctx context.Context, records []record.Record) (string, error)
}

// Insight is the query result.
type Insight struct {
	Text string `json:"text"`
}

// GetInsightHandler handles the insight query.
type GetInsightHandler struct {
	reg        *registry.Registry
	summarizer Summarizer
}

// NewGetInsightHandler creates a new handler.
func NewGetInsightHandler(reg *registry.Registry, summarizer Summarizer) *GetInsightHandler {
	return &GetInsightHandler{reg: reg, summarizer: summarizer}
}

// Handle generates the insight. An empty roster is a validation error -
// there is nothing to analyze.
func (h *GetInsightHandler) Handle(ctx context.Context) (*Insight, error) {
	snapshot := h.reg.Snapshot()
	if len(snapshot) == 0 {
		return nil, shared.ErrEmptyRoster
	}

	text, err := h.summarizer.Summarize(ctx, snapshot)
	if err != nil {
		return nil, err
	}
	return &Insight{Text: text}, nil
}
