// Package memory is an in-memory ledger used in tests and when no Google
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/core"
)

type Ledger struct {
	mu   sync.Mutex
	rows []core.Expense
}

func New() *Ledger {
	return &Ledger{}
}

// Append stores the record and returns a synthetic row reference.
func (l *Ledger) Append(_ context.Context, e core.Expense) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, e)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Remove drops the row with the given number. Unknown numbers are a no-op,
// matching the ledger adapter contract.
func (l *Ledger) Remove(_ context.Context, number string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.rows {
		if e.Number == number {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the stored rows.
func (l *Ledger) Rows() []core.Expense {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Expense(nil), l.rows...)
}
