package importer

import (
	"errors"
	"strings"
)

var (
	ErrSourceUnavailable     = errors.New("source file unavailable")
	ErrSheetNotFound         = errors.New("sheet not found")
	ErrMissingRequiredColumn = errors.New("missing required column")
)

// Row is one raw spreadsheet row. Cells are aligned with the sheet's
// header; short rows read as empty beyond their last cell.
type Row struct {
	Number int
	Cells  []string
}

func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[col])
}

// Sheet is one worksheet read into memory: the header row labels plus all
// data rows below it, in file order.
type Sheet struct {
	File   string
	Name   string
	Header []string
	Rows   []Row
}

// SheetSelector picks a worksheet by name, or by zero-based index when the
// name is empty.
type SheetSelector struct {
	Index int
	Name  string
}

// NormalizedRow maps canonical field names to cleaned values. Every field
// of the document vocabulary is present; absent columns read as "".
type NormalizedRow struct {
	Number int
	Fields map[string]string
}

func (n NormalizedRow) Field(name string) string {
	return n.Fields[name]
}

// Empty reports whether every canonical field is empty.
func (n NormalizedRow) Empty() bool {
	for _, value := range n.Fields {
		if value != "" {
			return false
		}
	}
	return true
}
