// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts and VAT
// percentages from strings and the rounding rules used when computing
// per-record VAT.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Negative values are rejected;
// zero is allowed (an expense may have a zero base amount).
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only non-negative values allowed
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseVATRate converts a percentage string ("21", "10,5") into a VATRate.
// The rate uses the same hundredths representation as cents, so the parsing
// rules are shared.
func ParseVATRate(s string) (VATRate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil // blank VAT means 0%
	}
	v, err := ParseDecimalToCents(s)
	if err != nil {
		return 0, ErrInvalidVATRate
	}
	return VATRate(v), nil
}

// VATOn returns the VAT amount for a base amount at this rate, rounded
// half-up to the cent. The per-record rounding happens here, before any
// accumulation into totals.
func (r VATRate) VATOn(base Money) Money {
	return Money{Cents: (base.Cents*int64(r) + 5000) / 10000}
}

// VATAmount returns the VAT portion of the expense.
func (e Expense) VATAmount() Money {
	return e.VAT.VATOn(e.Amount)
}

// Total returns base plus VAT for the expense.
func (e Expense) Total() Money {
	return Money{Cents: e.Amount.Cents + e.VATAmount().Cents}
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Euros returns the euro value as a float64 for display purposes.
// Note: Use cents for calculations to avoid floating-point precision issues.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Format renders the amount with two decimals and a comma separator, the way
// the printed receipts show it ("1234,50").
func (m Money) Format() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + strconv.FormatInt(c/100, 10) + "," + pad2(c%100)
}

// Percent renders the rate as a human percentage ("21" or "10,5").
func (r VATRate) Percent() string {
	whole := int64(r) / 100
	frac := int64(r) % 100
	if frac == 0 {
		return strconv.FormatInt(whole, 10)
	}
	s := strconv.FormatInt(whole, 10) + "," + pad2(frac)
	return strings.TrimSuffix(s, "0")
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
