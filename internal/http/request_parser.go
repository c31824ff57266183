// This file implements parsing of expense submissions. The browser form
// posts url-encoded fields; scripted clients send the same fields as JSON.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gastos/internal/core"
)

type expenseForm struct {
	Date     string `json:"date"`
	Concept  string `json:"concept"`
	Supplier string `json:"supplier"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	VATPct   string `json:"vatPct"`
	Payment  string `json:"payment"`
	Notes    string `json:"notes"`
}

// parseExpenseRequest reads a submission from either encoding and builds the
// unvalidated draft record. Field-level problems come back as a message
// suitable for inline display.
func parseExpenseRequest(r *http.Request) (core.Expense, error) {
	form, err := readExpenseForm(r)
	if err != nil {
		return core.Expense{}, err
	}

	date, err := core.ParseDate(form.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid date %q", form.Date)
	}

	cents, err := core.ParseDecimalToCents(form.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q", form.Amount)
	}

	rate, err := core.ParseVATRate(form.VATPct)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid vat %q", form.VATPct)
	}

	return core.Expense{
		Date:     date,
		Concept:  strings.TrimSpace(form.Concept),
		Supplier: strings.TrimSpace(form.Supplier),
		Category: core.Category(strings.TrimSpace(form.Category)),
		Amount:   core.Money{Cents: cents},
		VAT:      rate,
		Payment:  core.PaymentMethod(strings.TrimSpace(form.Payment)),
		Notes:    strings.TrimSpace(form.Notes),
	}, nil
}

func readExpenseForm(r *http.Request) (expenseForm, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return expenseForm{}, fmt.Errorf("read request body")
		}
		var f expenseForm
		if err := json.Unmarshal(body, &f); err != nil {
			return expenseForm{}, fmt.Errorf("invalid request format")
		}
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return expenseForm{}, fmt.Errorf("invalid request format")
	}
	return expenseFormFromValues(r.Form), nil
}

func expenseFormFromValues(values url.Values) expenseForm {
	return expenseForm{
		Date:     values.Get("date"),
		Concept:  values.Get("concept"),
		Supplier: values.Get("supplier"),
		Category: values.Get("category"),
		Amount:   values.Get("amount"),
		VATPct:   values.Get("vat"),
		Payment:  values.Get("payment"),
		Notes:    values.Get("notes"),
	}
}
