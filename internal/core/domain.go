package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Materiales  Category = "Materiales"
	Transporte  Category = "Transporte"
	Dietas      Category = "Dietas"
	Oficina     Category = "Oficina"
	Suministros Category = "Suministros"
	Otros       Category = "Otros"
)

const (
	Efectivo      PaymentMethod = "Efectivo"
	Tarjeta       PaymentMethod = "Tarjeta"
	Transferencia PaymentMethod = "Transferencia"
	Domiciliacion PaymentMethod = "Domiciliación"
)

type (
	Category string

	PaymentMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// VATRate is a VAT percentage in hundredths of a percent (21% = 2100).
	VATRate int64

	Expense struct {
		ID        int64 // Database ID, assigned by the store
		Number    string
		Year      int
		Date      Date
		Concept   string
		Supplier  string
		Category  Category
		Amount    Money
		VAT       VATRate
		Payment   PaymentMethod
		Notes     string
		CreatedAt int64 // unix milliseconds, ordering tiebreak
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidVATRate  = errors.New("invalid vat rate")
	ErrEmptyConcept    = errors.New("empty concept")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownPayment  = errors.New("unknown payment method")
)

func (c Category) Validate() error {
	switch c {
	case Materiales, Transporte, Dietas, Oficina, Suministros, Otros:
		return nil
	}
	return ErrUnknownCategory
}

func (p PaymentMethod) Validate() error {
	switch p {
	case Efectivo, Tarjeta, Transferencia, Domiciliacion:
		return nil
	}
	return ErrUnknownPayment
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Year returns the year of the date.
func (d Date) Year() int {
	return d.Time.Year()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r VATRate) Validate() error {
	if r < 0 {
		return ErrInvalidVATRate
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Concept)) == 0 {
		return ErrEmptyConcept
	}
	if len(e.Concept) > 200 {
		return errors.New("concept too long (max 200 characters)")
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if err := e.Payment.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return e.VAT.Validate()
}
