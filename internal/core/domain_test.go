package core

import (
	"testing"
	"time"
)

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("category %q should be valid", c)
		}
	}
	for _, c := range []Category{"", "groceries", "FOOD "} {
		if c.Valid() {
			t.Fatalf("category %q should be invalid", c)
		}
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		out  Category
		err  error
	}{
		{"food", CategoryFood, nil},
		{" Transport ", CategoryTransport, nil},
		{"OTHER", CategoryOther, nil},
		{"", "", ErrInvalidInput},
		{"groceries", "", ErrInvalidCategory},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if err != tc.err {
			t.Fatalf("%q expected err %v, got %v", tc.in, tc.err, err)
		}
		if got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	if c, err := ParseCurrency("Local"); err != nil || c != CurrencyLocal {
		t.Fatalf("expected local, got %q (err=%v)", c, err)
	}
	if _, err := ParseCurrency("eur"); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewTransaction(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	tx, err := NewTransaction("1", dec("100"), CurrencyLocal, CategoryFood, dec("36.50"), now, "")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !tx.AmountReference.Equal(dec("2.74")) {
		t.Fatalf("amount reference: got %s", tx.AmountReference)
	}
	if !tx.AmountLocal.Equal(dec("100")) {
		t.Fatalf("amount local: got %s", tx.AmountLocal)
	}
	if !tx.RateAtEntry.Equal(dec("36.50")) {
		t.Fatalf("rate at entry: got %s", tx.RateAtEntry)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if _, err := NewTransaction("1", dec("100"), CurrencyLocal, "groceries", dec("36.50"), now, ""); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if _, err := NewTransaction("1", dec("-1"), CurrencyLocal, CategoryFood, dec("36.50"), now, ""); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := NewTransaction("1", dec("1"), CurrencyLocal, CategoryFood, dec("0"), now, ""); err != ErrInvalidRate {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	good, err := NewTransaction("42", dec("5"), CurrencyReference, CategoryHealth, dec("36.50"), now, "ref:receipt")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	bads := []Transaction{
		func() Transaction { c := good; c.ID = "" ; return c }(),
		func() Transaction { c := good; c.EnteredAmount = dec("0"); return c }(),
		func() Transaction { c := good; c.EnteredCurrency = "eur"; return c }(),
		func() Transaction { c := good; c.Category = "x"; return c }(),
		func() Transaction { c := good; c.RateAtEntry = dec("0"); return c }(),
		func() Transaction { c := good; c.Timestamp = time.Time{}; return c }(),
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
