package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for the ledger export adapters.
type (
	// ExpenseAppender appends a record to the external ledger and returns a
	// reference to the written row.
	ExpenseAppender interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseRemover removes a previously exported record, identified by its
	// formatted number (unique per year).
	ExpenseRemover interface {
		Remove(ctx context.Context, number string) error
	}
)
