// Package services orchestrates ledger operations across the session,
// the account store and the event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/session"
	"finanzas/internal/store"
)

// EventPublisher is the slice of the AMQP client the tracker needs.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, accountID, transactionID, action string) error
}

// Tracker is the boundary for everything the API exposes: accounts,
// sessions, the exchange rate, transaction entry and reports. Every
// mutation is persisted as a whole-ledger write before it becomes
// visible; event publishing is best effort and never fails a request.
type Tracker struct {
	mu        sync.Mutex
	store     store.AccountStore
	sessions  *session.Manager
	publisher EventPublisher
	rate      decimal.Decimal

	now func() time.Time
}

// NewTracker wires the tracker. publisher may be nil when AMQP is not
// configured. initialRate is the local-per-reference rate used until the
// first rate update.
func NewTracker(st store.AccountStore, sessions *session.Manager, publisher EventPublisher, initialRate decimal.Decimal) *Tracker {
	return &Tracker{
		store:     st,
		sessions:  sessions,
		publisher: publisher,
		rate:      initialRate,
		now:       time.Now,
	}
}

// Register creates the account and starts a session for it right away.
func (t *Tracker) Register(ctx context.Context, id, displayName, secret string) (*session.Session, error) {
	acc, err := t.store.CreateAccount(ctx, id, displayName, secret)
	if err != nil {
		return nil, err
	}
	return t.sessions.Activate(ctx, acc)
}

// Login verifies credentials and activates a session.
func (t *Tracker) Login(ctx context.Context, id, secret string) (*session.Session, error) {
	return t.sessions.Login(ctx, id, secret)
}

// Logout ends the active session, if any.
func (t *Tracker) Logout(ctx context.Context) error {
	return t.sessions.Logout(ctx)
}

// Resume restores the session persisted by a previous run.
func (t *Tracker) Resume(ctx context.Context) (*session.Session, error) {
	return t.sessions.Resume(ctx)
}

// Session returns the active session, or nil when logged out.
func (t *Tracker) Session() *session.Session {
	return t.sessions.Current()
}

// Rate returns the current exchange rate (units of local per one unit of
// reference).
func (t *Tracker) Rate() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rate
}

// SetRate replaces the current exchange rate. Transactions already
// recorded keep the rate that was in effect when they were entered.
func (t *Tracker) SetRate(ctx context.Context, rate decimal.Decimal) error {
	if rate.Sign() <= 0 {
		return fmt.Errorf("%w: rate must be positive, got %s", core.ErrInvalidRate, rate)
	}
	t.mu.Lock()
	old := t.rate
	t.rate = rate
	t.mu.Unlock()

	slog.InfoContext(ctx, "Exchange rate updated", "old", old, "new", rate)
	return nil
}

// SubmitInput is one transaction as entered at the boundary, amounts still
// in string form.
type SubmitInput struct {
	Amount     string
	Currency   string
	Category   string
	Attachment string
}

// SubmitTransaction validates the input, converts the amount at the
// current rate, appends the transaction to the active ledger and persists
// the result. The conversion rate is frozen into the transaction.
func (t *Tracker) SubmitTransaction(ctx context.Context, in SubmitInput) (core.Transaction, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return core.Transaction{}, session.ErrNoSession
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	currency, err := core.ParseCurrency(in.Currency)
	if err != nil {
		return core.Transaction{}, err
	}
	category, err := core.ParseCategory(in.Category)
	if err != nil {
		return core.Transaction{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	working := core.NewLedger(sess.Ledger.All())
	tx, err := core.NewTransaction(working.NewID(t.now()), amount, currency, category, t.rate, t.now(), in.Attachment)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := working.Append(tx); err != nil {
		return core.Transaction{}, err
	}

	if err := t.store.SaveLedger(ctx, sess.Account.ID, working); err != nil {
		return core.Transaction{}, fmt.Errorf("save ledger: %w", err)
	}
	sess.Ledger = working

	t.publish(ctx, sess.Account.ID, tx.ID, amqp.ActionCreated)

	slog.InfoContext(ctx, "Transaction recorded",
		"account_id", sess.Account.ID,
		"transaction_id", tx.ID,
		"category", string(tx.Category),
		"currency", string(tx.EnteredCurrency))
	return tx, nil
}

// DeleteTransaction removes the transaction with the given id from the
// active ledger. Deleting an id that does not exist succeeds without
// touching the store.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	sess := t.sessions.Current()
	if sess == nil {
		return session.ErrNoSession
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	working := core.NewLedger(sess.Ledger.All())
	before := working.Len()
	working.Remove(id)
	if working.Len() == before {
		return nil
	}

	if err := t.store.SaveLedger(ctx, sess.Account.ID, working); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	sess.Ledger = working

	t.publish(ctx, sess.Account.ID, id, amqp.ActionDeleted)

	slog.InfoContext(ctx, "Transaction deleted",
		"account_id", sess.Account.ID,
		"transaction_id", id)
	return nil
}

// Transactions returns the active ledger, newest first.
func (t *Tracker) Transactions(ctx context.Context) ([]core.Transaction, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return nil, session.ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return sess.Ledger.All(), nil
}

// DailyTotal reports reference-currency spending for the calendar day
// containing day.
func (t *Tracker) DailyTotal(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return decimal.Zero, session.ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.TotalForDay(sess.Ledger, day), nil
}

// MonthlyTotal reports reference-currency spending for the current
// calendar month.
func (t *Tracker) MonthlyTotal(ctx context.Context) (decimal.Decimal, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return decimal.Zero, session.ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.TotalForMonth(sess.Ledger, t.now()), nil
}

// CategoryBreakdown reports the all-time total per category alongside its
// share of the current month's spending.
func (t *Tracker) CategoryBreakdown(ctx context.Context) (map[core.Category]core.CategoryTotal, error) {
	sess := t.sessions.Current()
	if sess == nil {
		return nil, session.ErrNoSession
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return core.CategoryBreakdown(sess.Ledger, t.now()), nil
}

func (t *Tracker) publish(ctx context.Context, accountID, transactionID, action string) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishTransactionEvent(ctx, accountID, transactionID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"account_id", accountID,
			"transaction_id", transactionID,
			"action", action,
			"error", err)
	}
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}
