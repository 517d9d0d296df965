// Package memory provides the in-memory AccountStore used as the default
// backend and as the fake in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

type account struct {
	store.Account
	ledger []core.Transaction // newest first
}

type Store struct {
	mu       sync.Mutex
	accounts map[string]*account
	activeID string
}

// New returns a store pre-seeded with the bootstrap account.
func New() *Store {
	s := &Store{accounts: make(map[string]*account)}
	s.accounts[store.BootstrapAccountID] = &account{
		Account: store.Account{
			ID:          store.BootstrapAccountID,
			DisplayName: store.BootstrapDisplayName,
			Secret:      store.BootstrapSecret,
			CreatedAt:   time.Now(),
		},
	}
	return s
}

func (s *Store) CreateAccount(_ context.Context, id, displayName, secret string) (store.Account, error) {
	if id == "" || displayName == "" || secret == "" {
		return store.Account{}, core.ErrInvalidInput
	}
	if len(secret) < store.MinSecretLen {
		return store.Account{}, store.ErrWeakSecret
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[id]; exists {
		return store.Account{}, store.ErrDuplicateAccount
	}
	acc := &account{Account: store.Account{
		ID:          id,
		DisplayName: displayName,
		Secret:      secret,
		CreatedAt:   time.Now(),
	}}
	s.accounts[id] = acc
	return acc.Account, nil
}

func (s *Store) VerifyCredentials(_ context.Context, id, secret string) (store.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[id]
	if !exists || acc.Secret != secret {
		return store.Account{}, store.ErrInvalidCredentials
	}
	return acc.Account, nil
}

func (s *Store) LoadLedger(_ context.Context, accountID string) (*core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[accountID]
	if !exists {
		return core.NewLedger(nil), nil
	}
	return core.NewLedger(acc.ledger), nil
}

func (s *Store) SaveLedger(_ context.Context, accountID string, ledger *core.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[accountID]
	if !exists {
		return store.ErrInvalidCredentials
	}
	acc.ledger = ledger.All()
	return nil
}

func (s *Store) ActiveAccount(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, nil
}

func (s *Store) SetActiveAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = accountID
	return nil
}

func (s *Store) Close() error { return nil }
