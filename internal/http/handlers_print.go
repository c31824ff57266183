package http

import (
	"log/slog"
	"net/http"
	"strings"
	"text/template"
	"time"

	"gastos/internal/core"
)

// Receipt output is sized for 74mm thermal paper: 42 monospace columns.
const receiptWidth = 42

var receiptTmpl = template.Must(template.New("receipt").Parse(
	`{{.Rule}}
{{.Org}}
JUSTIFICANTE DE GASTO
{{.Rule}}
Nº         {{.Number}}
Fecha      {{.Date}}
Concepto   {{.Concept}}
{{if .Supplier}}Proveedor  {{.Supplier}}
{{end}}Categoría  {{.Category}}
{{.Rule}}
Base       {{.Base}} EUR
IVA {{.VATPct}}%    {{.VATAmount}} EUR
TOTAL      {{.Total}} EUR
{{.Rule}}
Pago       {{.Payment}}
{{if .Notes}}Notas      {{.Notes}}
{{end}}{{.Rule}}
Impreso    {{.PrintedAt}}
`))

var listingTmpl = template.Must(template.New("listing").Parse(
	`{{.Rule}}
{{.Org}}
LISTADO DE GASTOS{{if .Year}} {{.Year}}{{end}}
{{.Rule}}
{{range .Lines}}{{.Number}}  {{.Date}}
  {{.Concept}}
  Base {{.Base}}  IVA {{.VATAmount}}  Tot {{.Total}}
{{end}}{{.Rule}}
Registros  {{.Count}}
Base       {{.Base}} EUR
IVA        {{.VATAmount}} EUR
TOTAL      {{.Total}} EUR
{{.Rule}}
Impreso    {{.PrintedAt}}
`))

type receiptData struct {
	Rule      string
	Org       string
	Number    string
	Date      string
	Concept   string
	Supplier  string
	Category  string
	Base      string
	VATPct    string
	VATAmount string
	Total     string
	Payment   string
	Notes     string
	PrintedAt string
}

type listingLine struct {
	Number    string
	Date      string
	Concept   string
	Base      string
	VATAmount string
	Total     string
}

type listingData struct {
	Rule      string
	Org       string
	Year      string
	Lines     []listingLine
	Count     int
	Base      string
	VATAmount string
	Total     string
	PrintedAt string
}

// handlePrintLast renders the most recent record as a plain-text receipt.
func (s *Server) handlePrintLast(w http.ResponseWriter, r *http.Request) {
	records := s.state.All()
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, "no expenses recorded")
		return
	}
	e := records[0] // ordering puts the newest first

	data := receiptData{
		Rule:      strings.Repeat("=", receiptWidth),
		Org:       s.opts.OrgName,
		Number:    e.Number,
		Date:      e.Date.ISO(),
		Concept:   clip(e.Concept, receiptWidth-11),
		Supplier:  clip(e.Supplier, receiptWidth-11),
		Category:  string(e.Category),
		Base:      e.Amount.Format(),
		VATPct:    e.VAT.Percent(),
		VATAmount: e.VATAmount().Format(),
		Total:     e.Total().Format(),
		Payment:   string(e.Payment),
		Notes:     clip(e.Notes, receiptWidth-11),
		PrintedAt: time.Now().Format("2006-01-02 15:04"),
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := receiptTmpl.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render receipt", "error", err)
	}
}

// handlePrintListing renders the filtered listing with totals, honouring the
// same q and year parameters as the list endpoint.
func (s *Server) handlePrintListing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records := s.state.All()

	years := core.Years(records)
	selected := core.SelectYear(strings.TrimSpace(q.Get("year")), years)

	view := core.ComputeView(records, core.Filter{
		Text: q.Get("q"),
		Year: selected,
	})

	lines := make([]listingLine, 0, len(view.Records))
	for _, e := range view.Records {
		lines = append(lines, listingLine{
			Number:    e.Number,
			Date:      e.Date.ISO(),
			Concept:   clip(e.Concept, receiptWidth-2),
			Base:      e.Amount.Format(),
			VATAmount: e.VATAmount().Format(),
			Total:     e.Total().Format(),
		})
	}

	data := listingData{
		Rule:      strings.Repeat("=", receiptWidth),
		Org:       s.opts.OrgName,
		Year:      selected,
		Lines:     lines,
		Count:     len(view.Records),
		Base:      view.Totals.Base.Format(),
		VATAmount: view.Totals.VAT.Format(),
		Total:     view.Totals.Total.Format(),
		PrintedAt: time.Now().Format("2006-01-02 15:04"),
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := listingTmpl.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render listing", "error", err)
	}
}

func clip(s string, max int) string {
	if max < 1 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
