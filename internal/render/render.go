// Package render turns a report into display rows, a text table, a bar
// chart and downloadable documents.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"controle/internal/core"
	"controle/internal/locale"
	"controle/internal/report"
)

const (
	Title         = "Relatório Financeiro"
	SheetName     = "Controle Financeiro"
	SummaryIntro  = "Resumo de lançamentos:"
	IncomeLabel   = "Entradas"
	ExpenseLabel  = "Saídas"
	BalanceLabel  = "Saldo"
	ChartTitle    = "Entradas e Saídas por Mês"
	ChartXLabel   = "Ano / Mês"
	ChartYLabelFm = "Valor (%s)"
)

// Columns is the header row shared by every tabular rendering.
var Columns = []string{"Data", "Tipo", "Descrição", "Valor"}

// Row is one entry formatted for display.
type Row struct {
	Date        string
	Kind        string
	Description string
	Amount      string
	Income      bool
}

func (r Row) cells() []string {
	return []string{r.Date, r.Kind, r.Description, r.Amount}
}

// Rows formats the report entries in insertion order.
func Rows(r report.Report, loc locale.Locale) []Row {
	out := make([]Row, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, Row{
			Date:        e.Date.Format(),
			Kind:        e.Kind.String(),
			Description: e.Description,
			Amount:      loc.Currency(e.Amount),
			Income:      e.Kind == core.Income,
		})
	}
	return out
}

// SummaryLine is one labelled total.
type SummaryLine struct {
	Label  string
	Amount string
	Cents  int64
}

// SummaryLines returns the income, expense and balance lines.
func SummaryLines(s report.Summary, loc locale.Locale) []SummaryLine {
	return []SummaryLine{
		{Label: IncomeLabel, Amount: loc.Currency(s.Income), Cents: s.Income.Cents},
		{Label: ExpenseLabel, Amount: loc.Currency(s.Expense), Cents: s.Expense.Cents},
		{Label: BalanceLabel, Amount: loc.Currency(s.Balance()), Cents: s.Balance().Cents},
	}
}

// Heading is the document title including the period.
func Heading(r report.Report, loc locale.Locale) string {
	return Title + " - " + loc.PeriodLabel(r.Period)
}

// Format is a downloadable document type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Formats lists every export format.
var Formats = []Format{FormatXLSX, FormatDOCX, FormatPDF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatXLSX, FormatDOCX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FileName returns the download name for a period.
func (f Format) FileName(p core.Period) string {
	base := "relatorio_financeiro"
	if f == FormatXLSX {
		base = "controle_financeiro"
	}
	if p.WholeYear() {
		return fmt.Sprintf("%s_%04d.%s", base, p.Year, f)
	}
	return fmt.Sprintf("%s_%04d_%02d.%s", base, p.Year, p.Month, f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Export renders r in the given format.
func Export(f Format, r report.Report, loc locale.Locale) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return XLSX(r, loc)
	case FormatDOCX:
		return DOCX(r, loc)
	case FormatPDF:
		return PDF(r, loc)
	}
	return nil, fmt.Errorf("unknown export format %q", f)
}

// Bundle renders every format concurrently.
func Bundle(r report.Report, loc locale.Locale) (map[Format][]byte, error) {
	out := make([][]byte, len(Formats))
	var g errgroup.Group
	for i, f := range Formats {
		g.Go(func() error {
			b, err := Export(f, r, loc)
			if err != nil {
				return fmt.Errorf("render %s: %w", f, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	bundle := make(map[Format][]byte, len(Formats))
	for i, f := range Formats {
		bundle[f] = out[i]
	}
	return bundle, nil
}
