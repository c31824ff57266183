// Package services wires the storage, numbering and messaging pieces behind
// the operations the handlers call.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/sequence"
	"gastos/internal/storage"
)

// ErrAllocation marks a failure to obtain the next per-year number. The
// record is never written when this is returned.
var ErrAllocation = errors.New("number allocation failed")

// ExpenseService orchestrates expense operations across SQLite, the sequence
// allocator and AMQP.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	allocator  *sequence.Allocator
	amqpClient *amqp.Client
}

func NewExpenseService(repo *storage.SQLiteRepository, allocator *sequence.Allocator, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    repo,
		allocator:  allocator,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates the record, allocates its per-year number and
// persists it. The number is allocated before the insert; if allocation
// fails, nothing is written. A failed export publish is logged but does not
// fail the request, the worker's backlog sweep picks the record up later.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	e.Year = e.Date.Year()

	number, err := s.allocator.Allocate(ctx, e.Year)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %v", ErrAllocation, err)
	}
	e.Number = number

	id, err := s.storage.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	if err := s.publishExport(ctx, id, number); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"id", id, "number", number, "error", err)
		// Don't fail the request - expense is saved locally
	}

	return e, nil
}

// DeleteExpense removes a record and asks the worker to remove the exported
// ledger row.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	e, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := s.publishDelete(ctx, id, e.Number); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "number", e.Number, "error", err)
		// Don't fail the request - expense is deleted locally
	}

	return nil
}

// Snapshot returns the current full ordered record set.
func (s *ExpenseService) Snapshot(ctx context.Context) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx)
}

// Subscribe opens a live query on the store.
func (s *ExpenseService) Subscribe(ctx context.Context) (*storage.Subscription, error) {
	return s.storage.Subscribe(ctx)
}

func (s *ExpenseService) publishExport(ctx context.Context, id int64, number string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}
	return s.amqpClient.PublishExport(ctx, id, number)
}

func (s *ExpenseService) publishDelete(ctx context.Context, id int64, number string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishDelete(ctx, id, number)
}

// Close closes storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
