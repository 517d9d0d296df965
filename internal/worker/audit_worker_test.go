package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func seedTransaction(t *testing.T, st store.AccountStore, id string) {
	t.Helper()
	ctx := context.Background()
	l, err := st.LoadLedger(ctx, store.BootstrapAccountID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tx, err := core.NewTransaction(id, decimal.NewFromInt(10), core.CurrencyReference, core.CategoryFood,
		decimal.RequireFromString("36.50"), time.Now(), "")
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	if err := l.Append(tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := st.SaveLedger(ctx, store.BootstrapAccountID, l); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestHandleTransactionEvent(t *testing.T) {
	st := memory.New()
	seedTransaction(t, st, "100")
	w := NewAuditWorker(st)

	if err := w.HandleTransactionEvent(amqp.NewTransactionEventMessage(store.BootstrapAccountID, "100", amqp.ActionCreated)); err != nil {
		t.Fatalf("created: %v", err)
	}
	if err := w.HandleTransactionEvent(amqp.NewTransactionEventMessage(store.BootstrapAccountID, "100", amqp.ActionDeleted)); err != nil {
		t.Fatalf("deleted: %v", err)
	}
	// A created event whose transaction is already gone is not a failure.
	if err := w.HandleTransactionEvent(amqp.NewTransactionEventMessage(store.BootstrapAccountID, "999", amqp.ActionCreated)); err != nil {
		t.Fatalf("missing transaction: %v", err)
	}
}

func TestHandleTransactionEventUnknownAction(t *testing.T) {
	w := NewAuditWorker(memory.New())
	if err := w.HandleTransactionEvent(amqp.NewTransactionEventMessage("a@x.com", "1", "archived")); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}
