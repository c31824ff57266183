package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

// ExportWorker mirrors saved expenses onto the external ledger. It consumes
// AMQP change messages and sweeps the pending backlog as a backup for lost
// messages, so export is at-least-once.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	ledger    sheets.ExpenseAppender
	remover   sheets.ExpenseRemover
	batchSize int
}

func NewExportWorker(repo *storage.SQLiteRepository, ledger sheets.ExpenseAppender, remover sheets.ExpenseRemover, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   repo,
		ledger:    ledger,
		remover:   remover,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExpenseMessage) error {
	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the export ran; nothing to mirror.
		slog.WarnContext(ctx, "Expense gone before export", "id", msg.ID, "number", msg.Number)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	return w.export(ctx, expense.ID, expense)
}

// HandleDeleteMessage removes the exported ledger row for a deleted record.
func (w *ExportWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExpenseMessage) error {
	if w.remover == nil {
		slog.WarnContext(ctx, "No ledger remover configured, skipping", "number", msg.Number)
		return nil
	}

	if err := w.remover.Remove(ctx, msg.Number); err != nil {
		return fmt.Errorf("remove ledger row %s: %w", msg.Number, err)
	}
	return nil
}

// ProcessPending exports any records that have not reached the ledger yet.
// This is the backup path for lost AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending export: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, e := range pending {
		if err := w.export(ctx, e.ID, e); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense",
				"id", e.ID, "number", e.Number, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck drains a larger slice of the backlog once at worker startup,
// to recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending export for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, e := range pending {
		if err := w.export(ctx, e.ID, e); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense during startup",
				"id", e.ID, "number", e.Number, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) export(ctx context.Context, id int64, e core.Expense) error {
	ref, err := w.ledger.Append(ctx, e)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", id,
		"number", e.Number,
		"ledger_ref", ref)

	return nil
}
