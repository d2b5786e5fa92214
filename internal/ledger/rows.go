package ledger

import (
	"log/slog"
	"strings"

	"controle/internal/core"
)

// Header is the column order written by tabular backends.
var Header = []string{"Date", "Type", "Description", "Amount"}

// Columns maps logical fields to positions in a tabular row.
type Columns struct {
	Date, Kind, Description, Amount int
}

// DefaultColumns matches Header.
var DefaultColumns = Columns{Date: 0, Kind: 1, Description: 2, Amount: 3}

var headerAliases = map[string]string{
	"date":        "date",
	"data":        "date",
	"type":        "kind",
	"tipo":        "kind",
	"description": "description",
	"descrição":   "description",
	"descricao":   "description",
	"amount":      "amount",
	"valor":       "amount",
}

// ColumnsFromHeader resolves column positions from a header row. It
// accepts the English header and the Portuguese one used by older files
// (Data, Descrição, Tipo, Valor), in any order. ok is false when the row
// is not a header.
func ColumnsFromHeader(row []string) (Columns, bool) {
	cols := Columns{Date: -1, Kind: -1, Description: -1, Amount: -1}
	for i, cell := range row {
		switch headerAliases[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))] {
		case "date":
			cols.Date = i
		case "kind":
			cols.Kind = i
		case "description":
			cols.Description = i
		case "amount":
			cols.Amount = i
		}
	}
	if cols.Date < 0 || cols.Kind < 0 || cols.Description < 0 || cols.Amount < 0 {
		return DefaultColumns, false
	}
	return cols, true
}

// ParseRow converts a stored row into an entry with best-effort parsing:
// an unreadable amount becomes zero, an unreadable date or type drops the
// row (ok=false). The description is kept exactly as stored.
func ParseRow(row []string, cols Columns) (core.Entry, bool) {
	date, err := core.ParseDate(cell(row, cols.Date))
	if err != nil {
		slog.Debug("Dropping ledger row with invalid date", "row", row, "error", err)
		return core.Entry{}, false
	}
	kind, err := core.ParseKind(cell(row, cols.Kind))
	if err != nil {
		slog.Debug("Dropping ledger row with invalid type", "row", row, "error", err)
		return core.Entry{}, false
	}
	return core.Entry{
		Date:        date,
		Kind:        kind,
		Description: cell(row, cols.Description),
		Amount:      core.ParseAmount(cell(row, cols.Amount)),
	}, true
}

// FormatRow is the inverse of ParseRow using DefaultColumns.
func FormatRow(e core.Entry) []string {
	return []string{e.Date.ISO(), e.Kind.String(), e.Description, e.Amount.Decimal().StringFixed(2)}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
