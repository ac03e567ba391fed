package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"budgetbuddy/internal/core"
)

const barWidth = 30

// renderSummary prints totals followed by one bar per expense category,
// scaled to the category's share of all expenses.
func renderSummary(w io.Writer, s core.Summary) {
	fmt.Fprintf(w, "Income:  %12s\n", core.FormatAmount(s.Income))
	fmt.Fprintf(w, "Expense: %12s\n", core.FormatAmount(s.Expense))
	fmt.Fprintf(w, "Balance: %12s\n", core.FormatAmount(s.Balance))

	if len(s.ByCategory) == 0 {
		fmt.Fprintln(w, "\nNo expenses to chart.")
		return
	}

	nameWidth := 0
	for _, c := range s.ByCategory {
		nameWidth = max(nameWidth, len(displayName(c.Name)))
	}

	fmt.Fprintln(w, "\nExpenses by category:")
	for _, c := range s.ByCategory {
		filled := int(math.Round(c.Percent / 100 * barWidth))
		if filled == 0 && c.Amount.IsPositive() {
			filled = 1
		}
		fmt.Fprintf(w, "  %-*s %s%s %6.2f%% %s\n",
			nameWidth, displayName(c.Name),
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled),
			c.Percent, core.FormatAmount(c.Amount))
	}
}

func displayName(category string) string {
	if strings.TrimSpace(category) == "" {
		return "(uncategorized)"
	}
	return category
}
