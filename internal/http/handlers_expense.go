package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/services"
	"gastos/internal/storage"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.withPermission(auth.Read, s.handleListExpenses)(w, r)
	case http.MethodPost:
		s.withPermission(auth.Write, s.handleCreateExpense)(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListExpenses serves the filtered view over the latest snapshot.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records := s.state.All()

	years := core.Years(records)
	selected := core.SelectYear(strings.TrimSpace(q.Get("year")), years)

	view := core.ComputeView(records, core.Filter{
		Text: q.Get("q"),
		Year: selected,
	})

	resp := listResponse{
		Records:      make([]expenseJSON, 0, len(view.Records)),
		Totals:       toTotalsJSON(view.Totals),
		Years:        years,
		SelectedYear: selected,
		Count:        len(view.Records),
	}
	for _, e := range view.Records {
		resp.Records = append(resp.Records, toExpenseJSON(e))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	draft, err := parseExpenseRequest(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.creator.CreateExpense(r.Context(), draft)
	if err != nil {
		if errors.Is(err, services.ErrAllocation) {
			slog.ErrorContext(r.Context(), "Number allocation failed",
				"error", err, "year", draft.Date.Year())
			writeError(w, http.StatusBadGateway, "could not allocate expense number, nothing was saved")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"concept", draft.Concept,
			"amount_cents", draft.Amount.Cents,
			"component", "expense_handler",
			"operation", "create")
		writeError(w, http.StatusInternalServerError, "error saving expense")
		return
	}

	atomic.AddInt64(&s.appMetrics.totalCreated, 1)

	slog.InfoContext(r.Context(), "Expense created",
		"number", saved.Number,
		"concept", saved.Concept,
		"amount_cents", saved.Amount.Cents,
		"component", "expense_handler",
		"operation", "create")

	w.Header().Set("Location", fmt.Sprintf("/api/expenses/%d", saved.ID))
	writeJSON(w, http.StatusCreated, toExpenseJSON(saved))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete && r.Method != http.MethodPost {
		w.Header().Set("Allow", "DELETE, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.deleter.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			"error", err,
			"id", id,
			"component", "expense_handler",
			"operation", "delete")
		writeError(w, http.StatusInternalServerError, "error deleting expense")
		return
	}

	atomic.AddInt64(&s.appMetrics.totalDeleted, 1)

	slog.InfoContext(r.Context(), "Expense deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMe reports the caller's identity and the actions the matrix grants,
// so the UI can hide what the caller may not do.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email, role := s.identity(r)

	actions := auth.Actions(role)
	strs := make([]string, 0, len(actions))
	for _, a := range actions {
		strs = append(strs, string(a))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"email":    email,
		"role":     string(role),
		"actions":  strs,
		"allowed":  auth.IsAllowedEmail(email, s.opts.AuthConfig.AllowedEmails),
		"enforced": s.opts.Enforce,
	})
}
