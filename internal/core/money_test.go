package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0", 0, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseVATRate(t *testing.T) {
	cases := []struct {
		in  string
		out VATRate
		ok  bool
	}{
		{"21", 2100, true},
		{"10,5", 1050, true},
		{"0", 0, true},
		{"", 0, true}, // blank means no VAT
		{"-21", 0, false},
		{"iva", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseVATRate(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestVATOn(t *testing.T) {
	cases := []struct {
		base int64
		rate VATRate
		want int64
	}{
		{10000, 2100, 2100}, // 100.00 @ 21% = 21.00
		{5000, 1000, 500},   // 50.00 @ 10% = 5.00
		{999, 2100, 210},    // 9.99 @ 21% = 2.0979 -> 2.10
		{1, 2100, 0},        // 0.01 @ 21% = 0.0021 -> 0.00
		{100, 0, 0},
	}
	for _, tc := range cases {
		got := tc.rate.VATOn(Money{Cents: tc.base})
		if got.Cents != tc.want {
			t.Fatalf("%d @ %d expected %d, got %d", tc.base, tc.rate, tc.want, got.Cents)
		}
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0,00"},
		{5, "0,05"},
		{123456, "1234,56"},
		{-250, "-2,50"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Format(); got != tc.want {
			t.Fatalf("%d expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestVATRatePercent(t *testing.T) {
	cases := []struct {
		rate VATRate
		want string
	}{
		{2100, "21"},
		{1050, "10,5"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := tc.rate.Percent(); got != tc.want {
			t.Fatalf("%d expected %q, got %q", tc.rate, tc.want, got)
		}
	}
}
