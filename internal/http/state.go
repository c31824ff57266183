package http

import (
	"sync"

	"gastos/internal/core"
)

// StateContainer holds the presentation layer's read-only copy of the record
// set. It is replaced wholesale by each live snapshot and never patched
// incrementally; handlers only ever read it.
type StateContainer struct {
	mu      sync.RWMutex
	records []core.Expense
	loaded  bool
}

func NewStateContainer() *StateContainer {
	return &StateContainer{}
}

// ReplaceAll swaps in a complete new record set.
func (c *StateContainer) ReplaceAll(records []core.Expense) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = records
	c.loaded = true
}

// All returns the current record set. The slice is shared read-only data and
// must not be mutated by callers; every write path goes through ReplaceAll.
func (c *StateContainer) All() []core.Expense {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records
}

// Loaded reports whether at least one snapshot has arrived.
func (c *StateContainer) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
