package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsSeedBootstrapAccount(t *testing.T) {
	s := newTestStore(t)
	acc, err := s.VerifyCredentials(context.Background(), store.BootstrapAccountID, store.BootstrapSecret)
	if err != nil {
		t.Fatalf("bootstrap login failed: %v", err)
	}
	if acc.DisplayName != store.BootstrapDisplayName {
		t.Fatalf("display name: got %q", acc.DisplayName)
	}
}

func TestCreateVerifyAndDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateAccount(ctx, "a@x.com", "Ana", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateAccount(ctx, "a@x.com", "Other", "secret2"); !errors.Is(err, store.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
	if _, err := s.CreateAccount(ctx, "b@x.com", "Bea", "short"); !errors.Is(err, store.ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}

	if _, err := s.VerifyCredentials(ctx, "a@x.com", "secret1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "a@x.com", "wrong"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.VerifyCredentials(ctx, "nobody@x.com", "secret1"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown id, got %v", err)
	}
}

func TestLedgerSaveIsFullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateAccount(ctx, "a@x.com", "Ana", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	l, err := s.LoadLedger(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}

	rate := decimal.RequireFromString("36.50")
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	for i, spec := range []struct {
		id, amount string
		cat        core.Category
	}{
		{"100", "50", core.CategoryFood},
		{"101", "12.30", core.CategoryTransport},
		{"102", "7", core.CategoryOther},
	} {
		tx, err := core.NewTransaction(spec.id, decimal.RequireFromString(spec.amount), core.CurrencyLocal, spec.cat, rate, base.Add(time.Duration(i)*time.Minute), "")
		if err != nil {
			t.Fatalf("build tx %s: %v", spec.id, err)
		}
		if err := l.Append(tx); err != nil {
			t.Fatalf("append %s: %v", spec.id, err)
		}
	}
	if err := s.SaveLedger(ctx, "a@x.com", l); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadLedger(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("expected 3 transactions, got %d", loaded.Len())
	}
	// Order survives the round trip: newest first.
	all := loaded.All()
	if all[0].ID != "102" || all[2].ID != "100" {
		t.Fatalf("unexpected order: %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}
	if !all[2].EnteredAmount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("entered amount: got %s", all[2].EnteredAmount)
	}
	if !all[2].RateAtEntry.Equal(rate) {
		t.Fatalf("rate at entry: got %s", all[2].RateAtEntry)
	}
	if !all[2].Timestamp.Equal(base) {
		t.Fatalf("timestamp: got %v", all[2].Timestamp)
	}

	// Save after a removal replaces the whole ledger.
	loaded.Remove("101")
	if err := s.SaveLedger(ctx, "a@x.com", loaded); err != nil {
		t.Fatalf("save after remove: %v", err)
	}
	again, err := s.LoadLedger(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Len() != 2 {
		t.Fatalf("expected 2 transactions after replace, got %d", again.Len())
	}
}

func TestLedgersArePartitionedPerAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateAccount(ctx, "a@x.com", "Ana", "secret1"); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := s.CreateAccount(ctx, "b@x.com", "Bea", "secret2"); err != nil {
		t.Fatalf("create b: %v", err)
	}

	la, _ := s.LoadLedger(ctx, "a@x.com")
	tx, err := core.NewTransaction("1", decimal.NewFromInt(9), core.CurrencyReference, core.CategoryHealth, decimal.NewFromInt(36), time.Now().UTC().Truncate(time.Second), "")
	if err != nil {
		t.Fatalf("build tx: %v", err)
	}
	if err := la.Append(tx); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.SaveLedger(ctx, "a@x.com", la); err != nil {
		t.Fatalf("save: %v", err)
	}

	lb, err := s.LoadLedger(ctx, "b@x.com")
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	if lb.Len() != 0 {
		t.Fatalf("account b sees %d foreign transactions", lb.Len())
	}
}

func TestActiveAccountSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finanzas.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetActiveAccount(ctx, store.BootstrapAccountID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	id, err := reopened.ActiveAccount(ctx)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if id != store.BootstrapAccountID {
		t.Fatalf("active account: got %q", id)
	}
}
