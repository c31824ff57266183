package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/sheets/memory"
	"gastos/internal/storage"
)

type failingLedger struct{}

func (failingLedger) Append(context.Context, core.Expense) (string, error) {
	return "", errors.New("ledger unavailable")
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "gastos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedExpense(t *testing.T, repo *storage.SQLiteRepository, number string) int64 {
	t.Helper()
	id, err := repo.InsertExpense(context.Background(), core.Expense{
		Number:   number,
		Year:     2025,
		Date:     core.NewDate(2025, 5, 20),
		Concept:  "Dietas obra norte",
		Category: core.Dietas,
		Amount:   core.Money{Cents: 3200},
		VAT:      1000,
		Payment:  core.Efectivo,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return id
}

func TestHandleExportMessageMarksSynced(t *testing.T) {
	repo := newTestRepo(t)
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, ledger, 10)
	ctx := context.Background()

	id := seedExpense(t, repo, "GAS-2025-0001")
	if err := w.HandleExportMessage(ctx, amqp.NewExportMessage(id, "GAS-2025-0001")); err != nil {
		t.Fatalf("handle export: %v", err)
	}

	rows := ledger.Rows()
	if len(rows) != 1 || rows[0].Number != "GAS-2025-0001" {
		t.Fatalf("unexpected ledger rows: %+v", rows)
	}

	// The record is no longer pending.
	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending exports, got %d", len(pending))
	}
}

func TestHandleExportMessageGoneRecord(t *testing.T) {
	repo := newTestRepo(t)
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, ledger, 10)

	// Record deleted before the worker got to it: handled without error, so
	// the message is acked rather than requeued forever.
	if err := w.HandleExportMessage(context.Background(), amqp.NewExportMessage(999, "GAS-2025-0999")); err != nil {
		t.Fatalf("expected nil for gone record, got %v", err)
	}
	if len(ledger.Rows()) != 0 {
		t.Fatalf("nothing should have been exported")
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	repo := newTestRepo(t)
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, ledger, 10)
	ctx := context.Background()

	id := seedExpense(t, repo, "GAS-2025-0001")
	if err := w.HandleExportMessage(ctx, amqp.NewExportMessage(id, "GAS-2025-0001")); err != nil {
		t.Fatalf("handle export: %v", err)
	}
	if err := w.HandleDeleteMessage(ctx, amqp.NewDeleteMessage(id, "GAS-2025-0001")); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(ledger.Rows()) != 0 {
		t.Fatalf("ledger row should be removed")
	}
}

func TestExportFailureMarksError(t *testing.T) {
	repo := newTestRepo(t)
	w := NewExportWorker(repo, failingLedger{}, nil, 10)
	ctx := context.Background()

	id := seedExpense(t, repo, "GAS-2025-0001")
	if err := w.HandleExportMessage(ctx, amqp.NewExportMessage(id, "GAS-2025-0001")); err == nil {
		t.Fatalf("expected export error")
	}

	// Still pending (sync_status error counts as not exported), so the sweep
	// retries it later.
	pending, err := repo.ListPendingExport(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("expected record still pending, got %+v", pending)
	}
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	repo := newTestRepo(t)
	ledger := memory.New()
	w := NewExportWorker(repo, ledger, ledger, 2)
	ctx := context.Background()

	for _, n := range []string{"GAS-2025-0001", "GAS-2025-0002", "GAS-2025-0003"} {
		seedExpense(t, repo, n)
	}

	if err := w.StartupCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if got := len(ledger.Rows()); got != 3 {
		t.Fatalf("expected 3 exported rows, got %d", got)
	}
}
