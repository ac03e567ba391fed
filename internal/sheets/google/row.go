package google

import (
	"budgetbuddy/internal/core"
)

const dateLayout = "2006-01-02"

// transactionRow lays out columns A to F: date, type, category, amount,
// owner email, id.
func transactionRow(t core.Transaction) []any {
	return []any{
		t.OccurredAt.UTC().Format(dateLayout),
		t.Kind.String(),
		t.Category,
		core.FormatAmount(t.Amount),
		t.OwnerEmail,
		t.ID,
	}
}
