// Package memory is an in-process spreadsheet mirror for development and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ sheets.TransactionWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// AppendTransaction records t and returns a synthetic row reference.
func (w *Writer) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, t)
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Transaction(nil), w.rows...)
}
