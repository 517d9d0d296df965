// Package sqlite provides the durable AccountStore backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finanzas/internal/core"
	"finanzas/internal/store"
)

type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies pending
// migrations. The initial migration seeds the bootstrap account.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrStoreUnavailable, err))
}

func (s *Store) CreateAccount(ctx context.Context, id, displayName, secret string) (store.Account, error) {
	if id == "" || displayName == "" || secret == "" {
		return store.Account{}, core.ErrInvalidInput
	}
	if len(secret) < store.MinSecretLen {
		return store.Account{}, store.ErrWeakSecret
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, display_name, secret, created_at)
		VALUES (?, ?, ?, ?)
	`, id, displayName, secret, now.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.Account{}, store.ErrDuplicateAccount
		}
		return store.Account{}, unavailable("insert account", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", id)

	return store.Account{ID: id, DisplayName: displayName, Secret: secret, CreatedAt: now}, nil
}

func (s *Store) VerifyCredentials(ctx context.Context, id, secret string) (store.Account, error) {
	var acc store.Account
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, secret, created_at
		FROM accounts
		WHERE id = ?
	`, id).Scan(&acc.ID, &acc.DisplayName, &acc.Secret, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Account{}, store.ErrInvalidCredentials
		}
		return store.Account{}, unavailable("query account", err)
	}

	// Cleartext equality, inherited contract; see store.Account.
	if acc.Secret != secret {
		return store.Account{}, store.ErrInvalidCredentials
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		acc.CreatedAt = t
	}
	return acc, nil
}

func (s *Store) LoadLedger(ctx context.Context, accountID string) (*core.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, entered_amount, entered_currency, amount_reference,
		       amount_local, category, timestamp, rate_at_entry, attachment
		FROM transactions
		WHERE account_id = ?
		ORDER BY position ASC
	`, accountID)
	if err != nil {
		return nil, unavailable("query transactions", err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var entered, ref, local, rate, ts, currency, category string
		var attachment sql.NullString
		if err := rows.Scan(&t.ID, &entered, &currency, &ref, &local, &category, &ts, &rate, &attachment); err != nil {
			return nil, unavailable("scan transaction", err)
		}
		if t.EnteredAmount, err = decimal.NewFromString(entered); err != nil {
			return nil, fmt.Errorf("parse entered amount for %s: %w", t.ID, err)
		}
		if t.AmountReference, err = decimal.NewFromString(ref); err != nil {
			return nil, fmt.Errorf("parse reference amount for %s: %w", t.ID, err)
		}
		if t.AmountLocal, err = decimal.NewFromString(local); err != nil {
			return nil, fmt.Errorf("parse local amount for %s: %w", t.ID, err)
		}
		if t.RateAtEntry, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("parse rate for %s: %w", t.ID, err)
		}
		if t.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp for %s: %w", t.ID, err)
		}
		t.EnteredCurrency = core.Currency(currency)
		t.Category = core.Category(category)
		if attachment.Valid {
			t.Attachment = attachment.String
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate transactions", err)
	}

	return core.NewLedger(items), nil
}

// SaveLedger replaces the account's persisted ledger inside one database
// transaction, so a reader never observes a partial write.
func (s *Store) SaveLedger(ctx context.Context, accountID string, ledger *core.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, accountID); err != nil {
		return unavailable("clear ledger", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (account_id, id, position, entered_amount,
			entered_currency, amount_reference, amount_local, category,
			timestamp, rate_at_entry, attachment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return unavailable("prepare insert", err)
	}
	defer stmt.Close()

	for pos, t := range ledger.All() {
		var attachment any
		if t.Attachment != "" {
			attachment = t.Attachment
		}
		_, err := stmt.ExecContext(ctx,
			accountID, t.ID, pos,
			t.EnteredAmount.String(), string(t.EnteredCurrency),
			t.AmountReference.String(), t.AmountLocal.String(),
			string(t.Category), t.Timestamp.UTC().Format(time.RFC3339),
			t.RateAtEntry.String(), attachment,
		)
		if err != nil {
			return unavailable("insert transaction", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit ledger", err)
	}

	slog.DebugContext(ctx, "Ledger saved", "account_id", accountID, "transactions", ledger.Len())
	return nil
}

func (s *Store) ActiveAccount(ctx context.Context) (string, error) {
	var id sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT account_id FROM active_session WHERE singleton = 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", unavailable("query active session", err)
	}
	if !id.Valid {
		return "", nil
	}
	return id.String, nil
}

func (s *Store) SetActiveAccount(ctx context.Context, accountID string) error {
	var id any
	if accountID != "" {
		id = accountID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_session (singleton, account_id) VALUES (1, ?)
		ON CONFLICT (singleton) DO UPDATE SET account_id = excluded.account_id
	`, id)
	if err != nil {
		return unavailable("set active session", err)
	}
	return nil
}
