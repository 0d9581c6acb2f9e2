// Package report computes the dashboard aggregates over a ledger. Amounts
// are summed with exact decimal arithmetic so totals never drift.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/mahadsiddiqui/khata/pkg/ledger"
)

// Summary is the aggregate view of a (possibly date-filtered) ledger.
type Summary struct {
	// Income, Expense, and Balance are per-currency totals.
	Income  map[ledger.Currency]decimal.Decimal
	Expense map[ledger.Currency]decimal.Decimal
	Balance map[ledger.Currency]decimal.Decimal
	// ByCategory holds per-category expense totals, keyed by currency
	// then category.
	ByCategory map[ledger.Currency]map[string]decimal.Decimal
	// Count is the number of transactions included.
	Count int
}

// Range restricts a summary to transactions with From <= Date <= To.
// Dates are ISO calendar strings, so lexicographic comparison is
// chronological. Empty bounds are unbounded.
type Range struct {
	From string
	To   string
}

func (r Range) contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// Summarize aggregates the ledger's transactions within the range.
func Summarize(l *ledger.Ledger, r Range) Summary {
	s := Summary{
		Income:     map[ledger.Currency]decimal.Decimal{},
		Expense:    map[ledger.Currency]decimal.Decimal{},
		Balance:    map[ledger.Currency]decimal.Decimal{},
		ByCategory: map[ledger.Currency]map[string]decimal.Decimal{},
	}

	for _, t := range l.Transactions {
		if !r.contains(t.Date) {
			continue
		}
		s.Count++
		amount := decimal.NewFromFloat(t.Amount)

		switch t.Type {
		case ledger.Income:
			s.Income[t.Currency] = s.Income[t.Currency].Add(amount)
			s.Balance[t.Currency] = s.Balance[t.Currency].Add(amount)
		case ledger.Expense:
			s.Expense[t.Currency] = s.Expense[t.Currency].Add(amount)
			s.Balance[t.Currency] = s.Balance[t.Currency].Sub(amount)
			if s.ByCategory[t.Currency] == nil {
				s.ByCategory[t.Currency] = map[string]decimal.Decimal{}
			}
			s.ByCategory[t.Currency][t.Category] = s.ByCategory[t.Currency][t.Category].Add(amount)
		}
	}
	return s
}
