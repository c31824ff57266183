package sequence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

// memCounters is an in-memory CounterStore with the same atomicity contract
// as the SQLite implementation.
type memCounters struct {
	mu     sync.Mutex
	values map[string]int64
	fail   error
}

func newMemCounters() *memCounters {
	return &memCounters{values: make(map[string]int64)}
}

func (m *memCounters) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	m.values[key]++
	return m.values[key], nil
}

func TestAllocateSequentialPerYear(t *testing.T) {
	a := NewAllocator(newMemCounters(), "GAS")
	ctx := context.Background()

	cases := []struct {
		year int
		want string
	}{
		{2025, "GAS-2025-0001"},
		{2025, "GAS-2025-0002"},
		{2026, "GAS-2026-0001"}, // independent per-year sequence
		{2025, "GAS-2025-0003"},
	}
	for _, tc := range cases {
		got, err := a.Allocate(ctx, tc.year)
		if err != nil {
			t.Fatalf("allocate %d: %v", tc.year, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestAllocateConcurrentNoDuplicatesNoGaps(t *testing.T) {
	const n = 100
	counters := newMemCounters()
	a := NewAllocator(counters, "GAS")

	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := a.Allocate(context.Background(), 2025)
			if err != nil {
				t.Errorf("allocate: %v", err)
				return
			}
			results <- num
		}()
	}
	wg.Wait()
	close(results)

	var got []string
	for num := range results {
		got = append(got, num)
	}
	if len(got) != n {
		t.Fatalf("expected %d numbers, got %d", n, len(got))
	}
	sort.Strings(got)
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("duplicate number %q", got[i])
		}
	}
	// Gapless: the sorted set is exactly 0001..0100.
	for i, num := range got {
		want := "GAS-2025-" + Pad4(int64(i+1))
		if num != want {
			t.Fatalf("position %d expected %q, got %q", i, want, num)
		}
	}
}

func TestAllocateFailurePropagates(t *testing.T) {
	counters := newMemCounters()
	counters.fail = errors.New("contention exhausted")
	a := NewAllocator(counters, "GAS")

	if _, err := a.Allocate(context.Background(), 2025); err == nil {
		t.Fatalf("expected error when counter transaction fails")
	}
}

func TestCounterKey(t *testing.T) {
	a := NewAllocator(newMemCounters(), "GAS")
	if got := a.CounterKey(2025); got != "gas_2025" {
		t.Fatalf("expected gas_2025, got %q", got)
	}
}

func TestPad4(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1, "0001"},
		{7, "0007"},
		{42, "0042"},
		{9999, "9999"},
		{12345, "12345"}, // widens, no truncation
	}
	for _, tc := range cases {
		if got := Pad4(tc.in); got != tc.want {
			t.Fatalf("Pad4(%d) expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
