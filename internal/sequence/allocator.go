// Package sequence issues the per-year expense numbers. Numbers are unique,
// gapless and strictly increasing within a year, as long as the backing
// counter store increments atomically.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CounterStore is the transactional counter port. Increment must perform an
// atomic read-modify-write on the counter for key: absent counters read as 0,
// the incremented value is written back unconditionally (upsert), and the new
// value is returned. If the transaction cannot commit, Increment returns an
// error and the counter is unchanged.
type CounterStore interface {
	Increment(ctx context.Context, key string) (int64, error)
}

type Allocator struct {
	counters CounterStore
	prefix   string
}

// DefaultPrefix matches the numbers the organization already has on paper.
const DefaultPrefix = "GAS"

func NewAllocator(counters CounterStore, prefix string) *Allocator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Allocator{counters: counters, prefix: prefix}
}

// Allocate produces the next formatted number for the year, e.g.
// "GAS-2025-0001". On any counter failure the allocation fails as a whole;
// callers must not persist a record without a number.
func (a *Allocator) Allocate(ctx context.Context, year int) (string, error) {
	next, err := a.counters.Increment(ctx, a.CounterKey(year))
	if err != nil {
		return "", fmt.Errorf("increment counter for %d: %w", year, err)
	}
	return fmt.Sprintf("%s-%d-%s", a.prefix, year, Pad4(next)), nil
}

// CounterKey is the counter document key for a year ("gas_2025").
func (a *Allocator) CounterKey(year int) string {
	return fmt.Sprintf("%s_%d", strings.ToLower(a.prefix), year)
}

// Pad4 zero-pads to width 4. Larger numbers widen, they are never truncated.
func Pad4(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}
