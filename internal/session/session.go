// Package session tracks the single active account session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

// ErrNoSession is returned for operations that require a logged-in account.
var ErrNoSession = errors.New("no active session")

// Session is one authenticated account with its ledger loaded in memory.
// The ledger here is the working copy; every mutation is written back to the
// store as a whole before the operation returns.
type Session struct {
	Account   store.Account
	Token     string
	Ledger    *core.Ledger
	StartedAt time.Time
}

// Manager holds at most one active session per process and delegates
// credential checks and ledger persistence to the account store.
type Manager struct {
	mu     sync.Mutex
	store  store.AccountStore
	active *Session
}

func NewManager(st store.AccountStore) *Manager {
	return &Manager{store: st}
}

// Login verifies credentials and activates a session with the account's
// ledger loaded. A previously active session is replaced; a failed login
// leaves the current state untouched.
func (m *Manager) Login(ctx context.Context, id, secret string) (*Session, error) {
	acc, err := m.store.VerifyCredentials(ctx, id, secret)
	if err != nil {
		return nil, err
	}
	ledger, err := m.store.LoadLedger(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Account:   acc,
		Token:     uuid.New().String(),
		Ledger:    ledger,
		StartedAt: time.Now(),
	}

	m.mu.Lock()
	m.active = s
	m.mu.Unlock()

	if err := m.store.SetActiveAccount(ctx, acc.ID); err != nil {
		slog.WarnContext(ctx, "Failed to persist active session", "account_id", acc.ID, "error", err)
	}

	slog.InfoContext(ctx, "Session started", "account_id", acc.ID, "transactions", ledger.Len())
	return s, nil
}

// Activate starts a session for an already-verified account, used right
// after registration.
func (m *Manager) Activate(ctx context.Context, acc store.Account) (*Session, error) {
	ledger, err := m.store.LoadLedger(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		Account:   acc,
		Token:     uuid.New().String(),
		Ledger:    ledger,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.active = s
	m.mu.Unlock()

	if err := m.store.SetActiveAccount(ctx, acc.ID); err != nil {
		slog.WarnContext(ctx, "Failed to persist active session", "account_id", acc.ID, "error", err)
	}
	return s, nil
}

// Logout clears the active session. Persisted account data is untouched.
// Logging out without a session is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	had := m.active != nil
	var accountID string
	if had {
		accountID = m.active.Account.ID
	}
	m.active = nil
	m.mu.Unlock()

	if !had {
		return nil
	}
	if err := m.store.SetActiveAccount(ctx, ""); err != nil {
		slog.WarnContext(ctx, "Failed to clear persisted session", "error", err)
	}
	slog.InfoContext(ctx, "Session ended", "account_id", accountID)
	return nil
}

// Current returns the active session, or nil when logged out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Resume restores the session persisted by a previous run, if any. Returns
// ErrNoSession when nothing was persisted.
func (m *Manager) Resume(ctx context.Context) (*Session, error) {
	id, err := m.store.ActiveAccount(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoSession
	}
	ledger, err := m.store.LoadLedger(ctx, id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		// The account is resumed by id alone; the secret was checked when
		// the persisted session was created.
		Account:   store.Account{ID: id},
		Token:     uuid.New().String(),
		Ledger:    ledger,
		StartedAt: time.Now(),
	}
	m.mu.Lock()
	m.active = s
	m.mu.Unlock()

	slog.InfoContext(ctx, "Session resumed", "account_id", id, "transactions", ledger.Len())
	return s, nil
}
