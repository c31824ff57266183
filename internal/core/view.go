package core

import (
	"sort"
	"strconv"
	"strings"
)

// Filter is the transient filter state coming from the list controls.
type Filter struct {
	Text string // case-insensitive substring, empty matches all
	Year string // exact year as string, empty matches all
}

// Totals are the running sums over a filtered record set.
type Totals struct {
	Base  Money
	VAT   Money
	Total Money
}

// View is the derived list state: the records that pass the filter, in store
// order, plus their totals.
type View struct {
	Records []Expense
	Totals  Totals
}

// Matches reports whether the expense passes both filter dimensions.
func (f Filter) Matches(e Expense) bool {
	txt := strings.ToLower(strings.TrimSpace(f.Text))
	if txt != "" {
		ok := strings.Contains(strings.ToLower(e.Concept), txt) ||
			strings.Contains(strings.ToLower(e.Supplier), txt) ||
			strings.Contains(strings.ToLower(string(e.Category)), txt) ||
			strings.Contains(strings.ToLower(e.Number), txt)
		if !ok {
			return false
		}
	}
	if f.Year != "" && strconv.Itoa(e.Year) != f.Year {
		return false
	}
	return true
}

// ComputeView derives the filtered view and its totals from the full record
// set. It is pure: no state is read or written beyond its arguments. Each
// record's VAT and total are computed individually before accumulation, so
// rounding follows the per-row order, never sum(base) times an average rate.
func ComputeView(records []Expense, f Filter) View {
	v := View{Records: make([]Expense, 0, len(records))}
	for _, e := range records {
		if !f.Matches(e) {
			continue
		}
		vat := e.VATAmount()
		v.Totals.Base = v.Totals.Base.Add(e.Amount)
		v.Totals.VAT = v.Totals.VAT.Add(vat)
		v.Totals.Total = v.Totals.Total.Add(e.Amount.Add(vat))
		v.Records = append(v.Records, e)
	}
	return v
}

// Years returns the distinct years present across all records, descending.
// The year selector is always derived from the full set, not the filtered one.
func Years(records []Expense) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, e := range records {
		if _, ok := seen[e.Year]; ok {
			continue
		}
		seen[e.Year] = struct{}{}
		years = append(years, e.Year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// SelectYear keeps the current selection if that year is still present,
// otherwise resets to "" (all years).
func SelectYear(current string, years []int) string {
	if current == "" {
		return ""
	}
	for _, y := range years {
		if strconv.Itoa(y) == current {
			return current
		}
	}
	return ""
}
