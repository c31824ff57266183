package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sequence"
	"gastos/internal/storage"
)

func newTestService(t *testing.T) *ExpenseService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "gastos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	svc := NewExpenseService(repo, sequence.NewAllocator(repo, "GAS"), nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func draft(date core.Date) core.Expense {
	return core.Expense{
		Date:     date,
		Concept:  "Gasolina furgoneta",
		Supplier: "Repsol",
		Category: core.Transporte,
		Amount:   core.Money{Cents: 6500},
		VAT:      2100,
		Payment:  core.Tarjeta,
	}
}

func TestCreateExpenseAssignsNumberAndYear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateExpense(ctx, draft(core.NewDate(2025, 3, 10)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Number != "GAS-2025-0001" || first.Year != 2025 {
		t.Fatalf("unexpected first record: number=%q year=%d", first.Number, first.Year)
	}
	if first.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	second, err := svc.CreateExpense(ctx, draft(core.NewDate(2025, 4, 2)))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Number != "GAS-2025-0002" {
		t.Fatalf("expected GAS-2025-0002, got %q", second.Number)
	}

	// A different year starts its own sequence.
	other, err := svc.CreateExpense(ctx, draft(core.NewDate(2026, 1, 5)))
	if err != nil {
		t.Fatalf("create other year: %v", err)
	}
	if other.Number != "GAS-2026-0001" {
		t.Fatalf("expected GAS-2026-0001, got %q", other.Number)
	}
}

func TestCreateExpenseValidationBeforeAnyWrite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := draft(core.NewDate(2025, 1, 1))
	bad.Concept = ""
	if _, err := svc.CreateExpense(ctx, bad); !errors.Is(err, core.ErrEmptyConcept) {
		t.Fatalf("expected ErrEmptyConcept, got %v", err)
	}

	// The rejected record must not have consumed a number.
	ok, err := svc.CreateExpense(ctx, draft(core.NewDate(2025, 1, 2)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok.Number != "GAS-2025-0001" {
		t.Fatalf("validation failure leaked a sequence number: got %q", ok.Number)
	}
}

func TestDeleteExpense(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.CreateExpense(ctx, draft(core.NewDate(2025, 2, 1)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteExpense(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteExpense(ctx, saved.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %d records", len(snap))
	}
}
