package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is an all-time reference-currency sum for one category with
// its share of the current month's spending.
type CategoryTotal struct {
	Category   Category
	Total      decimal.Decimal
	Percentage int64
}

// TotalForDay sums AmountReference over transactions recorded on the same
// calendar day as day, interpreted in day's location.
func TotalForDay(l *Ledger, day time.Time) decimal.Decimal {
	total := decimal.Zero
	y, m, d := day.Date()
	for _, t := range l.All() {
		ty, tm, td := t.Timestamp.In(day.Location()).Date()
		if ty == y && tm == m && td == d {
			total = total.Add(t.AmountReference)
		}
	}
	return total
}

// TotalForMonth sums AmountReference over transactions in the same calendar
// month and year as now, interpreted in now's location.
func TotalForMonth(l *Ledger, now time.Time) decimal.Decimal {
	total := decimal.Zero
	y, m, _ := now.Date()
	for _, t := range l.All() {
		ty, tm, _ := t.Timestamp.In(now.Location()).Date()
		if ty == y && tm == m {
			total = total.Add(t.AmountReference)
		}
	}
	return total
}

// TotalsByCategory sums AmountReference per category over the entire ledger.
// Note the window asymmetry: category totals are all-time while the
// percentage denominator is the current month's total.
func TotalsByCategory(l *Ledger) map[Category]decimal.Decimal {
	totals := make(map[Category]decimal.Decimal)
	for _, t := range l.All() {
		totals[t.Category] = totals[t.Category].Add(t.AmountReference)
	}
	return totals
}

// CategoryPercentage computes categoryTotal/monthTotal as an integer percent,
// rounded half-up. A zero month total yields 0 rather than dividing.
func CategoryPercentage(categoryTotal, monthTotal decimal.Decimal) int64 {
	if monthTotal.IsZero() {
		return 0
	}
	return categoryTotal.Div(monthTotal).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CategoryBreakdown combines the all-time per-category totals with their
// current-month percentage shares. Ordering is left to the caller since the
// map carries no order.
func CategoryBreakdown(l *Ledger, now time.Time) map[Category]CategoryTotal {
	month := TotalForMonth(l, now)
	out := make(map[Category]CategoryTotal)
	for cat, total := range TotalsByCategory(l) {
		out[cat] = CategoryTotal{
			Category:   cat,
			Total:      total,
			Percentage: CategoryPercentage(total, month),
		}
	}
	return out
}
