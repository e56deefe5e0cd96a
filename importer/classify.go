package importer

import "strings"

// ClassifiedRow is a retained row with its parent fields densely populated.
type ClassifiedRow struct {
	NormalizedRow
	ChildCandidate bool
}

// Classify filters and enriches the normalized rows of one workbook, in
// file order:
//
//   - rows with every canonical field empty are dropped;
//   - rows echoing the sheet header mid-body are dropped;
//   - administrative rows (signature markers in the ordinal field) are
//     dropped;
//   - parent fields are forward-filled from the last non-empty value seen.
//
// A retained row is a child candidate when its milestone label is non-empty
// after cleaning. Forward-fill never applies to the label, so running
// Classify over its own output reproduces it unchanged.
func Classify(rows []NormalizedRow) []ClassifiedRow {
	lastSeen := make(map[string]string, len(parentFields))
	retained := make([]ClassifiedRow, 0, len(rows))

	for _, row := range rows {
		if row.Empty() || isHeaderEcho(row) || isAdministrative(row.Field(FieldOrdinal)) {
			continue
		}

		for _, field := range parentFields {
			if row.Fields[field] == "" {
				row.Fields[field] = lastSeen[field]
			} else {
				lastSeen[field] = row.Fields[field]
			}
		}

		retained = append(retained, ClassifiedRow{
			NormalizedRow:  row,
			ChildCandidate: row.Field(FieldMilestone) != "",
		})
	}
	return retained
}

func isHeaderEcho(row NormalizedRow) bool {
	for _, value := range row.Fields {
		if value == "" {
			continue
		}
		lowered := strings.ToLower(value)
		for _, keyword := range headerEchoKeywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return true
			}
		}
	}
	return false
}

func isAdministrative(ordinal string) bool {
	if ordinal == "" {
		return false
	}
	lowered := strings.ToLower(ordinal)
	for _, marker := range administrativeMarkers {
		if strings.Contains(lowered, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
