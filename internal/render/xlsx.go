package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"controle/internal/locale"
	"controle/internal/report"
)

// numFmtTwoDecimals is excelize's built-in "#,##0.00".
const numFmtTwoDecimals = 4

// XLSX renders one sheet with a header row and one row per entry. Amounts are
// stored as numbers so the spreadsheet can sum them.
func XLSX(r report.Report, _ locale.Locale) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, e := range r.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{e.Date.Format(), e.Kind.String(), e.Description, e.Amount.Decimal().InexactFloat64()}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return nil, err
	}
	if n := len(r.Entries); n > 0 {
		money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, "D2", fmt.Sprintf("D%d", n+1), money); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(SheetName, "C", "C", 40); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
