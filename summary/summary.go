/*
Package summary provides the finance dashboard aggregation.

PURPOSE:
  Simple sum-by-month and sum-by-category rollups over finance entries
  (rent received, operating costs paid, repairs). This is deliberately
  thin: the settlement core does the hard math, the dashboard just sums.
*/
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/hauswart/settlement-engine/billing"
)

// EntryKind separates money coming in from money going out.
type EntryKind string

const (
	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"
)

// FinanceEntry is one booked income or expense line for a building.
type FinanceEntry struct {
	BuildingID string
	BookedAt   billing.Date
	Category   string
	Kind       EntryKind
	Amount     decimal.Decimal
}

// MonthTotals is one month's aggregate for the dashboard.
type MonthTotals struct {
	Year     int
	Month    int
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// MonthlyTotals sums entries per calendar month of the given year.
// All twelve months appear, zero-filled when nothing was booked.
func MonthlyTotals(entries []FinanceEntry, year int) []MonthTotals {
	months := make([]MonthTotals, 12)
	for i := range months {
		months[i] = MonthTotals{Year: year, Month: i + 1}
	}

	for _, e := range entries {
		if e.BookedAt.Year() != year {
			continue
		}
		m := &months[int(e.BookedAt.Month())-1]
		switch e.Kind {
		case KindExpense:
			m.Expenses = m.Expenses.Add(e.Amount)
		default:
			m.Income = m.Income.Add(e.Amount)
		}
	}

	for i := range months {
		months[i].Net = months[i].Income.Sub(months[i].Expenses)
	}
	return months
}

// ByCategory sums entries per category label within a period.
func ByCategory(entries []FinanceEntry, period billing.Period) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, e := range entries {
		if !period.Contains(e.BookedAt) {
			continue
		}
		amount := e.Amount
		if e.Kind == KindExpense {
			amount = amount.Neg()
		}
		totals[e.Category] = totals[e.Category].Add(amount)
	}
	return totals
}
