package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"gastos/internal/core"
)

// expenseJSON is the wire shape of a record. Amounts travel as integer cents
// next to their formatted form so clients never re-do money arithmetic.
type expenseJSON struct {
	ID            int64  `json:"id"`
	Number        string `json:"number"`
	Year          int    `json:"year"`
	Date          string `json:"date"`
	Concept       string `json:"concept"`
	Supplier      string `json:"supplier,omitempty"`
	Category      string `json:"category"`
	AmountCents   int64  `json:"amountCents"`
	Amount        string `json:"amount"`
	VATPct        string `json:"vatPct"`
	VATCents      int64  `json:"vatCents"`
	VAT           string `json:"vat"`
	TotalCents    int64  `json:"totalCents"`
	Total         string `json:"total"`
	Payment       string `json:"payment"`
	Notes         string `json:"notes,omitempty"`
	CreatedAtUnix int64  `json:"createdAt"`
}

type totalsJSON struct {
	BaseCents  int64  `json:"baseCents"`
	Base       string `json:"base"`
	VATCents   int64  `json:"vatCents"`
	VAT        string `json:"vat"`
	TotalCents int64  `json:"totalCents"`
	Total      string `json:"total"`
}

type listResponse struct {
	Records      []expenseJSON `json:"records"`
	Totals       totalsJSON    `json:"totals"`
	Years        []int         `json:"years"`
	SelectedYear string        `json:"selectedYear"`
	Count        int           `json:"count"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	vat := e.VATAmount()
	total := e.Total()
	return expenseJSON{
		ID:            e.ID,
		Number:        e.Number,
		Year:          e.Year,
		Date:          e.Date.ISO(),
		Concept:       e.Concept,
		Supplier:      e.Supplier,
		Category:      string(e.Category),
		AmountCents:   e.Amount.Cents,
		Amount:        e.Amount.Format(),
		VATPct:        e.VAT.Percent(),
		VATCents:      vat.Cents,
		VAT:           vat.Format(),
		TotalCents:    total.Cents,
		Total:         total.Format(),
		Payment:       string(e.Payment),
		Notes:         e.Notes,
		CreatedAtUnix: e.CreatedAt,
	}
}

func toTotalsJSON(t core.Totals) totalsJSON {
	return totalsJSON{
		BaseCents:  t.Base.Cents,
		Base:       t.Base.Format(),
		VATCents:   t.VAT.Cents,
		VAT:        t.VAT.Format(),
		TotalCents: t.Total.Cents,
		Total:      t.Total.Format(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
