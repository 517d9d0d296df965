package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyLocal is the volatile local currency (e.g. bolívar).
	CurrencyLocal Currency = "local"
	// CurrencyReference is the stable reference currency (e.g. US dollar).
	CurrencyReference Currency = "reference"
)

const (
	CategoryFood      Category = "food"
	CategoryTransport Category = "transport"
	CategoryServices  Category = "services"
	CategoryShopping  Category = "shopping"
	CategoryHealth    Category = "health"
	CategoryOther     Category = "other"
)

type (
	Currency string

	Category string

	// Transaction is a single recorded expense. Immutable once created;
	// the only mutation a ledger supports is removal.
	Transaction struct {
		ID              string
		EnteredAmount   decimal.Decimal
		EnteredCurrency Currency
		AmountReference decimal.Decimal // rounded to 2 decimals
		AmountLocal     decimal.Decimal // rounded to 2 decimals
		Category        Category
		Timestamp       time.Time
		RateAtEntry     decimal.Decimal // frozen at entry, never retroactively changed
		Attachment      string          // opaque reference, optional
	}
)

var (
	ErrInvalidInput    = errors.New("missing required field")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidRate     = errors.New("invalid exchange rate")
)

// Categories returns the closed set of valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFood, CategoryTransport, CategoryServices,
		CategoryShopping, CategoryHealth, CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryServices,
		CategoryShopping, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

func (c Currency) Valid() bool {
	return c == CurrencyLocal || c == CurrencyReference
}

// ParseCategory maps a wire string onto the closed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", ErrInvalidInput
	}
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// ParseCurrency maps a wire string onto the two supported currencies.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", ErrInvalidInput
	}
	if !c.Valid() {
		return "", ErrInvalidInput
	}
	return c, nil
}

// NewTransaction builds a fully-validated transaction: the entered amount is
// converted with the supplied rate and both derived amounts are frozen
// together with the rate that produced them.
func NewTransaction(id string, entered decimal.Decimal, currency Currency, category Category, rate decimal.Decimal, now time.Time, attachment string) (Transaction, error) {
	if !currency.Valid() {
		return Transaction{}, ErrInvalidInput
	}
	if !category.Valid() {
		return Transaction{}, ErrInvalidCategory
	}
	ref, local, err := Convert(entered, currency, rate)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:              id,
		EnteredAmount:   entered,
		EnteredCurrency: currency,
		AmountReference: ref,
		AmountLocal:     local,
		Category:        category,
		Timestamp:       now,
		RateAtEntry:     rate,
		Attachment:      attachment,
	}, nil
}

// Validate checks the invariants a ledger expects of an appended transaction.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrInvalidInput
	}
	if !t.EnteredAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.EnteredCurrency.Valid() {
		return ErrInvalidInput
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if !t.RateAtEntry.IsPositive() {
		return ErrInvalidRate
	}
	if t.Timestamp.IsZero() {
		return ErrInvalidInput
	}
	return nil
}
