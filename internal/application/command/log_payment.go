package command

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/application/registry"
	"github.com/eduflow/eduflow-registry/internal/domain/record"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG PAYMENT COMMAND
// Appends one transaction to the student's payment ledger. The ledger is
// append-only: there is no payment removal command.
// ══════════════════════════════════════════════════════════════════════════════

// LogPaymentCommand records one fee payment.
type LogPaymentCommand struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// LogPaymentResult carries the new ledger entry and the recomputed total.
type LogPaymentResult struct {
	Entry    record.PaymentEntry `json:"entry"`
	FeesPaid float64             `json:"fees_paid"`
}

// LogPaymentHandler handles the LogPaymentCommand.
type LogPaymentHandler struct {
	reg *registry.Registry
}

// NewLogPaymentHandler creates a new handler.
func NewLogPaymentHandler(reg *registry.Registry) *LogPaymentHandler {
	return &LogPaymentHandler{reg: reg}
}

// Handle appends the payment. A non-positive amount is rejected and the
// ledger stays untouched.
func (h *LogPaymentHandler) Handle(ctx context.Context, cmd LogPaymentCommand) (*LogPaymentResult, error) {
	result := &LogPaymentResult{}
	err := h.reg.Mutate(ctx, "LogPayment", func(rost *roster.Roster) error {
		rec, ok := rost.Search(cmd.ID)
		if !ok {
			return shared.ErrRecordNotFound
		}
		entry, err := rec.LogPayment(cmd.Amount, cmd.Note)
		if err != nil {
			return err
		}
		result.Entry = entry
		result.FeesPaid = rec.FeesPaid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
