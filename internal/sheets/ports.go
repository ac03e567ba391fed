// Package sheets defines the spreadsheet mirror port. Adapters live in
// sub-packages.
package sheets

import (
	"context"

	"budgetbuddy/internal/core"
)

// TransactionWriter appends one transaction to the mirror and returns a
// reference to the written row.
type TransactionWriter interface {
	AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
