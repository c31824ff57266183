package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2025 || d.ISO() != "2025-03-09" {
		t.Fatalf("unexpected date %v", d)
	}

	for _, in := range []string{"", "2025", "09/03/2025", "not-a-date"} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("%q expected error", in)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:     NewDate(2025, 1, 1),
		Concept:  "Factura mensual",
		Category: Oficina,
		Amount:   Money{Cents: 1000},
		VAT:      2100,
		Payment:  Tarjeta,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Zero amount and zero VAT are both legitimate.
	free := good
	free.Amount = Money{}
	free.VAT = 0
	if err := free.Validate(); err != nil {
		t.Fatalf("expected zero amount ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*Expense)
		want error
	}{
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrInvalidDate},
		{"empty concept", func(e *Expense) { e.Concept = "  " }, ErrEmptyConcept},
		{"unknown category", func(e *Expense) { e.Category = "Varios" }, ErrUnknownCategory},
		{"unknown payment", func(e *Expense) { e.Payment = "Cheque" }, ErrUnknownPayment},
		{"negative amount", func(e *Expense) { e.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"negative vat", func(e *Expense) { e.VAT = -1 }, ErrInvalidVATRate},
	}
	for _, tc := range cases {
		e := good
		tc.mut(&e)
		if err := e.Validate(); err != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
