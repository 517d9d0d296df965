package session

import (
	"context"
	"errors"
	"testing"

	"finanzas/internal/store"
	"finanzas/internal/store/memory"
)

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.New())

	if m.Current() != nil {
		t.Fatalf("expected logged out at start")
	}

	s, err := m.Login(ctx, store.BootstrapAccountID, store.BootstrapSecret)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.Token == "" {
		t.Fatalf("expected a session token")
	}
	if s.Ledger == nil || s.Ledger.Len() != 0 {
		t.Fatalf("expected empty loaded ledger")
	}
	if m.Current() != s {
		t.Fatalf("current should return the active session")
	}

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if m.Current() != nil {
		t.Fatalf("expected logged out after logout")
	}
	// Logout with no session is a no-op.
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("double logout: %v", err)
	}
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memory.New())

	if _, err := m.Login(ctx, store.BootstrapAccountID, "wrong"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if m.Current() != nil {
		t.Fatalf("failed login must not create a session")
	}

	// Failure also must not displace an existing session.
	if _, err := m.Login(ctx, store.BootstrapAccountID, store.BootstrapSecret); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := m.Login(ctx, store.BootstrapAccountID, "wrong"); err == nil {
		t.Fatalf("expected error")
	}
	if m.Current() == nil {
		t.Fatalf("existing session lost after failed login")
	}
}

func TestLoginReplacesActiveSession(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	if _, err := st.CreateAccount(ctx, "a@x.com", "Ana", "secret1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	m := NewManager(st)

	first, err := m.Login(ctx, store.BootstrapAccountID, store.BootstrapSecret)
	if err != nil {
		t.Fatalf("login 1: %v", err)
	}
	second, err := m.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login 2: %v", err)
	}
	if m.Current() != second {
		t.Fatalf("second login should be active")
	}
	if first.Token == second.Token {
		t.Fatalf("tokens must differ per session")
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	m := NewManager(st)

	if _, err := m.Resume(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if _, err := m.Login(ctx, store.BootstrapAccountID, store.BootstrapSecret); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A fresh manager over the same store sees the persisted session.
	restarted := NewManager(st)
	s, err := restarted.Resume(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if s.Account.ID != store.BootstrapAccountID {
		t.Fatalf("resumed account: got %q", s.Account.ID)
	}

	// Logout clears the persisted session too.
	if err := restarted.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := NewManager(st).Resume(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
}
