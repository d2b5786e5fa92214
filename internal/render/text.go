package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"controle/internal/locale"
	"controle/internal/report"
)

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2e7d32"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c62828"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Text writes the report as a terminal table followed by the summary.
// Income rows are green and expense rows red when the terminal supports it.
func Text(w io.Writer, r report.Report, loc locale.Locale) error {
	rows := Rows(r, loc)
	if _, err := fmt.Fprintln(w, Heading(r, loc)); err != nil {
		return err
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "Nenhum lançamento no período."); err != nil {
			return err
		}
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(Columns...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if row < 0 || row >= len(rows) {
					return cellStyle
				}
				if rows[row].Income {
					return cellStyle.Inherit(incomeStyle)
				}
				return cellStyle.Inherit(expenseStyle)
			})
		for _, row := range rows {
			t.Row(row.cells()...)
		}
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}
	for _, l := range SummaryLines(r.Summary, loc) {
		if _, err := fmt.Fprintf(w, "%-9s %s\n", l.Label+":", l.Amount); err != nil {
			return err
		}
	}
	return nil
}
