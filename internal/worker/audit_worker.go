// Package worker holds the background consumers for published ledger
// events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store"
)

// AuditWorker turns transaction events into an audit log. It reads the
// ledger back from the store so the logged record reflects what was
// actually persisted, not what the publisher claimed.
type AuditWorker struct {
	store store.AccountStore
}

func NewAuditWorker(st store.AccountStore) *AuditWorker {
	return &AuditWorker{store: st}
}

// HandleTransactionEvent processes one event. Unknown actions are an
// error so the delivery is requeued and surfaces in broker metrics.
func (w *AuditWorker) HandleTransactionEvent(msg *amqp.TransactionEventMessage) error {
	ctx := context.Background()

	switch msg.Action {
	case amqp.ActionCreated:
		return w.auditCreated(ctx, msg)
	case amqp.ActionDeleted:
		slog.InfoContext(ctx, "Audit: transaction deleted",
			"account_id", msg.AccountID,
			"transaction_id", msg.TransactionID,
			"at", msg.Timestamp)
		return nil
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
}

func (w *AuditWorker) auditCreated(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	ledger, err := w.store.LoadLedger(ctx, msg.AccountID)
	if err != nil {
		return fmt.Errorf("load ledger for %s: %w", msg.AccountID, err)
	}

	tx, ok := findTransaction(ledger, msg.TransactionID)
	if !ok {
		// Deleted before we got here. Log what we know and move on.
		slog.WarnContext(ctx, "Audit: created transaction no longer present",
			"account_id", msg.AccountID,
			"transaction_id", msg.TransactionID)
		return nil
	}

	slog.InfoContext(ctx, "Audit: transaction created",
		"account_id", msg.AccountID,
		"transaction_id", tx.ID,
		"category", string(tx.Category),
		"entered_amount", tx.EnteredAmount,
		"entered_currency", string(tx.EnteredCurrency),
		"amount_reference", tx.AmountReference,
		"rate_at_entry", tx.RateAtEntry,
		"at", msg.Timestamp)
	return nil
}

func findTransaction(l *core.Ledger, id string) (core.Transaction, bool) {
	for _, t := range l.All() {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
