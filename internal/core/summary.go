package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Totals holds the income and expense sums of a set of transactions.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryAmount represents an expense amount aggregated by category name.
type CategoryAmount struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// Summary is everything a dashboard needs to render totals and the
// category chart.
type Summary struct {
	Totals
	ByCategory []CategoryAmount `json:"byCategory"`
}

// ComputeBalance sums income and expense amounts. Transactions with an
// unknown kind are ignored.
func ComputeBalance(txs []Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case Income:
			t.Income = t.Income.Add(tx.Amount)
		case Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// Summarize derives totals and the expense breakdown by category.
// Categories are ordered by amount, largest first, ties broken by name.
func Summarize(txs []Transaction) Summary {
	s := Summary{Totals: ComputeBalance(txs)}

	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Kind != Expense {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	for name, amount := range sums {
		ca := CategoryAmount{Name: name, Amount: amount}
		if s.Expense.IsPositive() {
			ca.Percent, _ = amount.Div(s.Expense).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		}
		s.ByCategory = append(s.ByCategory, ca)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		a, b := s.ByCategory[i], s.ByCategory[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Name < b.Name
	})
	return s
}

// Breakdown returns the category sums as a map.
func (s Summary) Breakdown() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.ByCategory))
	for _, c := range s.ByCategory {
		out[c.Name] = c.Amount
	}
	return out
}
