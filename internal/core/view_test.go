package core

import (
	"reflect"
	"testing"
)

func sampleRecords() []Expense {
	return []Expense{
		{Number: "GAS-2025-0002", Year: 2025, Date: NewDate(2025, 2, 1), Concept: "Factura mensual", Supplier: "Telco SA", Category: Suministros, Amount: Money{Cents: 10000}, VAT: 2100, Payment: Domiciliacion, CreatedAt: 2},
		{Number: "GAS-2025-0001", Year: 2025, Date: NewDate(2025, 1, 15), Concept: "Gasolina", Supplier: "Repsol", Category: Transporte, Amount: Money{Cents: 5000}, VAT: 1000, Payment: Tarjeta, CreatedAt: 1},
		{Number: "GAS-2024-0003", Year: 2024, Date: NewDate(2024, 12, 30), Concept: "Material obra", Supplier: "Almacén", Category: Materiales, Amount: Money{Cents: 20000}, VAT: 2100, Payment: Transferencia, CreatedAt: 3},
	}
}

func TestComputeViewTotalsOrderOfOperations(t *testing.T) {
	records := []Expense{
		{Year: 2025, Date: NewDate(2025, 1, 1), Concept: "a", Amount: Money{Cents: 10000}, VAT: 2100},
		{Year: 2025, Date: NewDate(2025, 1, 2), Concept: "b", Amount: Money{Cents: 5000}, VAT: 1000},
	}

	v := ComputeView(records, Filter{})
	if len(v.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(v.Records))
	}
	// base 150.00, VAT 21.00 + 5.00 = 26.00 (per-record, not 150 * avg rate),
	// total 176.00
	if v.Totals.Base.Cents != 15000 {
		t.Fatalf("base expected 15000, got %d", v.Totals.Base.Cents)
	}
	if v.Totals.VAT.Cents != 2600 {
		t.Fatalf("vat expected 2600, got %d", v.Totals.VAT.Cents)
	}
	if v.Totals.Total.Cents != 17600 {
		t.Fatalf("total expected 17600, got %d", v.Totals.Total.Cents)
	}
}

func TestComputeViewTextFilter(t *testing.T) {
	records := sampleRecords()

	cases := []struct {
		text string
		want []string // expected numbers, in store order
	}{
		{"", []string{"GAS-2025-0002", "GAS-2025-0001", "GAS-2024-0003"}},
		{"fact", []string{"GAS-2025-0002"}},       // matches concept "Factura mensual"
		{"REPSOL", []string{"GAS-2025-0001"}},     // supplier, case-insensitive
		{"materiales", []string{"GAS-2024-0003"}}, // category
		{"2024-0003", []string{"GAS-2024-0003"}},  // formatted number
		{"nohit", nil},
	}
	for _, tc := range cases {
		v := ComputeView(records, Filter{Text: tc.text})
		var got []string
		for _, e := range v.Records {
			got = append(got, e.Number)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("text %q expected %v, got %v", tc.text, tc.want, got)
		}
	}
}

func TestComputeViewYearFilter(t *testing.T) {
	records := sampleRecords()

	all := ComputeView(records, Filter{Year: ""})
	if len(all.Records) != 3 {
		t.Fatalf("empty year should match all, got %d", len(all.Records))
	}

	only2024 := ComputeView(records, Filter{Year: "2024"})
	if len(only2024.Records) != 1 || only2024.Records[0].Year != 2024 {
		t.Fatalf("year 2024 expected only the 2024 record, got %v", only2024.Records)
	}

	// Both filters combine with AND.
	none := ComputeView(records, Filter{Text: "fact", Year: "2024"})
	if len(none.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(none.Records))
	}
}

func TestYears(t *testing.T) {
	got := Years(sampleRecords())
	if !reflect.DeepEqual(got, []int{2025, 2024}) {
		t.Fatalf("expected [2025 2024], got %v", got)
	}
	if got := Years(nil); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestSelectYear(t *testing.T) {
	years := []int{2025, 2023}
	cases := []struct {
		current, want string
	}{
		{"2023", "2023"}, // still present, preserved
		{"2024", ""},     // gone, reset to all years
		{"", ""},
	}
	for _, tc := range cases {
		if got := SelectYear(tc.current, years); got != tc.want {
			t.Fatalf("current %q expected %q, got %q", tc.current, tc.want, got)
		}
	}
}
