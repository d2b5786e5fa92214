package render

import (
	"bytes"
	"fmt"

	"github.com/gomutex/godocx"

	"controle/internal/locale"
	"controle/internal/report"
)

const docxTableStyle = "LightList-Accent1"

// DOCX renders a heading, an introductory line, the entries table and the
// summary paragraph.
func DOCX(r report.Report, loc locale.Locale) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}
	if _, err := doc.AddHeading(Title, 0); err != nil {
		return nil, fmt.Errorf("heading: %w", err)
	}
	doc.AddParagraph(loc.PeriodLabel(r.Period))
	doc.AddParagraph(SummaryIntro)

	tbl := doc.AddTable()
	tbl.Style(docxTableStyle)
	hdr := tbl.AddRow()
	for _, c := range Columns {
		hdr.AddCell().AddParagraph(c)
	}
	for _, row := range Rows(r, loc) {
		tr := tbl.AddRow()
		for _, c := range row.cells() {
			tr.AddCell().AddParagraph(c)
		}
	}

	for _, l := range SummaryLines(r.Summary, loc) {
		doc.AddParagraph(l.Label + ": " + l.Amount)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}
