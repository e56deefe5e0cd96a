package importer

import (
	"fmt"
	"strings"
)

// AliasTable maps a canonical field name to the ordered list of raw column
// labels that may carry it. Matching is exact string equality after
// trimming; the first alias present in the header wins.
type AliasTable map[string][]string

// ColumnMap maps resolved canonical field names to source column indexes.
// Canonical names with no matching alias are absent.
type ColumnMap map[string]int

// ResolveColumns resolves a sheet header against an alias table.
func ResolveColumns(header []string, aliases AliasTable) ColumnMap {
	trimmed := make([]string, len(header))
	for i, label := range header {
		trimmed[i] = strings.TrimSpace(label)
	}

	resolved := make(ColumnMap, len(aliases))
	for canonical, raws := range aliases {
		for _, raw := range raws {
			raw = strings.TrimSpace(raw)
			for idx, label := range trimmed {
				if label == raw {
					resolved[canonical] = idx
					break
				}
			}
			if _, ok := resolved[canonical]; ok {
				break
			}
		}
	}
	return resolved
}

// Require fails when any of the given canonical fields is unresolved.
// Optional fields are simply read as empty and need no check.
func (m ColumnMap) Require(fields ...string) error {
	for _, field := range fields {
		if _, ok := m[field]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredColumn, field)
		}
	}
	return nil
}

// Normalize projects a raw row onto the document vocabulary. Every
// vocabulary field is present in the result, possibly empty.
func (m ColumnMap) Normalize(row Row, vocabulary []string) NormalizedRow {
	fields := make(map[string]string, len(vocabulary))
	for _, name := range vocabulary {
		idx, ok := m[name]
		if !ok {
			fields[name] = ""
			continue
		}
		fields[name] = cleanValue(row.Cell(idx))
	}
	return NormalizedRow{Number: row.Number, Fields: fields}
}

// cleanValue trims a cell and blanks the placeholder values the source
// exports use for "not applicable".
func cleanValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "/" || value == "-" || strings.EqualFold(value, "nan") {
		return ""
	}
	return value
}
