// Package store defines the durable account store port and its errors.
//
// Backends live in subpackages (memory, sqlite); the rest of the system only
// sees this interface so tests can inject the in-memory implementation.
package store

import (
	"context"
	"errors"
	"time"

	"finanzas/internal/core"
)

// Account is one registered user owning exactly one ledger.
//
// Secret is stored and compared in cleartext. This mirrors the shipped
// behavior on purpose: hashing changes the persisted format and is tracked
// as a separate upgrade, not silently applied here.
type Account struct {
	ID          string // login identifier, unique, case-sensitive
	DisplayName string
	Secret      string
	CreatedAt   time.Time
}

// MinSecretLen is the minimum secret length accepted at registration.
const MinSecretLen = 6

// Bootstrap account present at first run so the system is usable without
// provisioning. Predates the MinSecretLen policy, which binds CreateAccount
// only.
const (
	BootstrapAccountID   = "admin@admin.com"
	BootstrapSecret      = "admin"
	BootstrapDisplayName = "Admin"
)

var (
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrWeakSecret         = errors.New("secret does not meet the minimum policy")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// AccountStore is the durable mapping from account id to credentials and
// ledger. Implementations are process-local and single-writer: SaveLedger
// replaces the whole persisted ledger as one unit.
type AccountStore interface {
	// CreateAccount registers a new account with an empty ledger.
	CreateAccount(ctx context.Context, id, displayName, secret string) (Account, error)

	// VerifyCredentials looks the account up by id and compares the secret
	// by equality, returning ErrInvalidCredentials on any mismatch.
	VerifyCredentials(ctx context.Context, id, secret string) (Account, error)

	// LoadLedger returns the persisted ledger for the account, or an empty
	// ledger if none has been saved yet.
	LoadLedger(ctx context.Context, accountID string) (*core.Ledger, error)

	// SaveLedger fully replaces the persisted ledger contents.
	SaveLedger(ctx context.Context, accountID string, ledger *core.Ledger) error

	// ActiveAccount returns the persisted active-session account id, or ""
	// when no session is persisted.
	ActiveAccount(ctx context.Context) (string, error)

	// SetActiveAccount persists the active-session account id; "" clears it.
	SetActiveAccount(ctx context.Context, accountID string) error

	Close() error
}
