// Package http is the presentation boundary: form intake, the filtered list
// with totals, the live snapshot stream and the printed receipts.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/storage"
)

// Ports consumed from the service layer.
type (
	ExpenseCreator interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	}

	ExpenseDeleter interface {
		DeleteExpense(ctx context.Context, id int64) error
	}

	// LiveSource opens live queries over the record store.
	LiveSource interface {
		Subscribe(ctx context.Context) (*storage.Subscription, error)
	}
)

// Options carries the presentation configuration.
type Options struct {
	OrgName     string
	AuthConfig  auth.Config
	Enforce     bool // apply the permission matrix server-side
	IdentHeader string
}

type appMetrics struct {
	totalCreated  int64
	totalDeleted  int64
	snapshotsSeen int64
}

type Server struct {
	http.Server

	creator ExpenseCreator
	deleter ExpenseDeleter
	live    LiveSource
	state   *StateContainer
	opts    Options

	appMetrics appMetrics

	liveMu     sync.Mutex
	liveCancel context.CancelFunc

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, creator ExpenseCreator, deleter ExpenseDeleter, live LiveSource, opts Options) *Server {
	if opts.IdentHeader == "" {
		opts.IdentHeader = "X-Auth-Email"
	}

	s := &Server{
		creator: creator,
		deleter: deleter,
		live:    live,
		state:   NewStateContainer(),
		opts:    opts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/expenses", s.handleExpenses)
	mux.HandleFunc("/api/expenses/", s.withPermission(auth.Delete, s.handleDeleteExpense))
	mux.HandleFunc("/api/expenses/stream", s.withPermission(auth.Read, s.handleStream))
	mux.HandleFunc("/print/last", s.withPermission(auth.Read, s.handlePrintLast))
	mux.HandleFunc("/print/listing", s.withPermission(auth.Read, s.handlePrintListing))

	s.Server = http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// State exposes the snapshot container to the live loop and to tests.
func (s *Server) State() *StateContainer {
	return s.state
}

// StartLive opens the live query feeding the state container, first tearing
// down any previous subscription so snapshots are never delivered twice. It
// blocks until ctx is done or the snapshot channel closes. Subscription
// errors are logged and the view stays frozen at the last good snapshot.
func (s *Server) StartLive(ctx context.Context) error {
	liveCtx, cancel := context.WithCancel(ctx)

	s.liveMu.Lock()
	if s.liveCancel != nil {
		s.liveCancel()
	}
	s.liveCancel = cancel
	s.liveMu.Unlock()

	sub, err := s.live.Subscribe(liveCtx)
	if err != nil {
		cancel()
		return err
	}
	defer sub.Cancel()

	for {
		select {
		case <-liveCtx.Done():
			return liveCtx.Err()
		case snap, ok := <-sub.Snapshots:
			if !ok {
				return nil
			}
			s.state.ReplaceAll(snap)
			atomic.AddInt64(&s.appMetrics.snapshotsSeen, 1)
			slog.DebugContext(liveCtx, "Snapshot applied", "records", len(snap))
		case err := <-sub.Errs:
			slog.ErrorContext(liveCtx, "Live query error, view frozen at last snapshot", "error", err)
		}
	}
}

// identity resolves the caller's email and role from the trusted header.
func (s *Server) identity(r *http.Request) (string, auth.Role) {
	email := r.Header.Get(s.opts.IdentHeader)
	return email, auth.RoleOf(email, s.opts.AuthConfig)
}

// withPermission gates a handler on the permission matrix. Without
// enforcement the matrix stays advisory: the request proceeds and the UI is
// expected to consult /api/me.
func (s *Server) withPermission(action auth.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Enforce {
			email, role := s.identity(r)
			if !auth.Can(role, action) {
				slog.WarnContext(r.Context(), "Permission denied",
					"email", email, "role", role, "action", action, "url", r.URL.Path)
				writeError(w, http.StatusForbidden, "permission denied")
				return
			}
		}
		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and the live loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.liveMu.Lock()
		if s.liveCancel != nil {
			s.liveCancel()
		}
		s.liveMu.Unlock()

		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ConfigureTimeouts applies the standard server limits.
func (s *Server) ConfigureTimeouts() {
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 0 // the SSE stream writes for the connection lifetime
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16 // 64KB
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"loaded":    s.state.Loaded(),
		"created":   atomic.LoadInt64(&s.appMetrics.totalCreated),
		"deleted":   atomic.LoadInt64(&s.appMetrics.totalDeleted),
		"snapshots": atomic.LoadInt64(&s.appMetrics.snapshotsSeen),
	})
}
