package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the export pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

var ErrNotFound = errors.New("expense not found")

type SQLiteRepository struct {
	db  *sql.DB
	hub *snapshotHub
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// A single connection serializes write transactions, which is what makes
	// the counter read-modify-write below behave like one atomic document
	// update across concurrent callers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := applySchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteRepository{
		db:  db,
		hub: newSnapshotHub(),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.hub != nil {
		r.hub.close()
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Increment implements sequence.CounterStore. The counter is read and written
// back inside a single transaction: an absent row reads as 0, the new value
// is upserted unconditionally. Lost updates are ruled out by the transaction,
// not by a uniqueness constraint.
func (r *SQLiteRepository) Increment(ctx context.Context, key string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin counter transaction: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE key = ?`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read counter %s: %w", key, err)
	}

	next := current + 1
	_, err = tx.ExecContext(ctx, `
		INSERT INTO counters (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, next)
	if err != nil {
		return 0, fmt.Errorf("write counter %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit counter %s: %w", key, err)
	}
	return next, nil
}

// InsertExpense persists a numbered record and pushes a fresh snapshot to all
// subscribers. The record must already carry its allocated number.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (number, year, date, concept, supplier, category,
			amount_cents, vat_rate, payment, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Number, e.Year, e.Date.ISO(), e.Concept, e.Supplier, string(e.Category),
		e.Amount.Cents, int64(e.VAT), string(e.Payment), e.Notes, e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"number", e.Number,
		"concept", e.Concept,
		"amount_cents", e.Amount.Cents)

	r.broadcast(ctx)
	return id, nil
}

// DeleteExpense removes a record by id and pushes a fresh snapshot.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)

	r.broadcast(ctx)
	return nil
}

const expenseColumns = `id, number, year, date, concept, supplier, category,
	amount_cents, vat_rate, payment, notes, created_at`

// ListExpenses returns every record ordered by date descending, creation
// timestamp descending. This is the order every snapshot carries.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// GetExpense retrieves a single expense by ID.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListPendingExport returns records not yet exported to the ledger, oldest
// first, capped at limit.
func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE sync_status != ?
		ORDER BY created_at ASC
		LIMIT ?`, SyncDone, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// MarkSynced marks an expense as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an expense as having failed export.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncError, id)
	if err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

// broadcast re-reads the full ordered set and pushes it to every subscriber.
// Snapshots always replace the world; subscribers never see deltas.
func (r *SQLiteRepository) broadcast(ctx context.Context) {
	records, err := r.ListExpenses(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build snapshot", "error", err)
		r.hub.fail(err)
		return
	}
	r.hub.publish(records)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                 core.Expense
		date              string
		category, payment string
		vat               int64
	)
	err := row.Scan(&e.ID, &e.Number, &e.Year, &date, &e.Concept, &e.Supplier,
		&category, &e.Amount.Cents, &vat, &payment, &e.Notes, &e.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.Date = d
	e.Category = core.Category(category)
	e.Payment = core.PaymentMethod(payment)
	e.VAT = core.VATRate(vat)
	return e, nil
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}
