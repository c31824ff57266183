package storage

import (
	"context"
	"errors"
	"sync"

	"gastos/internal/core"
)

// ErrClosed is returned by Subscribe after the repository has been closed.
var ErrClosed = errors.New("record store is closed")

// Subscription is a live query over the full record set. Every mutation
// delivers the entire current ordered set on Snapshots; query failures arrive
// on Errs while the subscriber's last good snapshot stays valid.
type Subscription struct {
	Snapshots <-chan []core.Expense
	Errs      <-chan error
	cancel    func()
}

// Cancel tears the subscription down. It is safe to call more than once;
// callers re-subscribing must cancel the previous subscription first to avoid
// duplicate delivery.
func (s *Subscription) Cancel() {
	s.cancel()
}

// NewSubscription wraps raw channels into a Subscription. Fakes standing in
// for the repository use it; the repository builds its own through the hub.
func NewSubscription(snapshots <-chan []core.Expense, errs <-chan error, cancel func()) *Subscription {
	if cancel == nil {
		cancel = func() {}
	}
	return &Subscription{Snapshots: snapshots, Errs: errs, cancel: cancel}
}

type subscriber struct {
	snapshots chan []core.Expense
	errs      chan error
}

// snapshotHub fans full snapshots out to subscribers. Channels are buffered
// with depth one and stale pending snapshots are dropped before a newer one
// is queued, so a slow subscriber always wakes up to the latest state.
type snapshotHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	closed bool
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[int]*subscriber)}
}

// subscribe registers a new subscriber with initial already queued as its
// first snapshot. It reports false once the hub has been closed; the channels
// are only ever closed under the same lock, so the queued send cannot race a
// close. Callers get nothing to touch in the closed case.
func (h *snapshotHub) subscribe(initial []core.Expense) (*subscriber, func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, nil, false
	}

	sub := &subscriber{
		snapshots: make(chan []core.Expense, 1),
		errs:      make(chan error, 1),
	}
	sub.snapshots <- initial

	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.snapshots)
			}
		})
	}
	return sub, cancel, true
}

func (h *snapshotHub) publish(records []core.Expense) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		// Replace any undelivered snapshot with the newer one.
		select {
		case <-sub.snapshots:
		default:
		}
		sub.snapshots <- records
	}
}

func (h *snapshotHub) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		select {
		case <-sub.errs:
		default:
		}
		sub.errs <- err
	}
}

func (h *snapshotHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.snapshots)
	}
}

// Subscribe opens a live query ordered by date descending, creation timestamp
// descending. The current set is delivered immediately as the first snapshot;
// after that, every insert or delete pushes a full replacement. The
// subscription ends when ctx is done or Cancel is called.
func (r *SQLiteRepository) Subscribe(ctx context.Context) (*Subscription, error) {
	initial, err := r.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}

	sub, cancel, ok := r.hub.subscribe(initial)
	if !ok {
		return nil, ErrClosed
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return &Subscription{
		Snapshots: sub.snapshots,
		Errs:      sub.errs,
		cancel:    cancel,
	}, nil
}
