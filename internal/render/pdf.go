package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"controle/internal/locale"
	"controle/internal/report"
)

// pdfLines returns every line of the PDF report: the heading, one line per
// entry and the three summary lines.
func pdfLines(r report.Report, loc locale.Locale) []string {
	rows := Rows(r, loc)
	lines := make([]string, 0, len(rows)+4)
	lines = append(lines, Heading(r, loc))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s - %s - %s - %s", row.Date, row.Description, row.Kind, row.Amount))
	}
	for _, l := range SummaryLines(r.Summary, loc) {
		lines = append(lines, l.Label+": "+l.Amount)
	}
	return lines
}

// PDF renders a single-column A4 report using the core Helvetica font.
// Text is translated to cp1252 so accents and the euro sign survive.
func PDF(r report.Report, loc locale.Locale) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	lines := pdfLines(r, loc)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 10, tr(lines[0]), "", "C", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range lines[1:] {
		pdf.MultiCell(0, 8, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
