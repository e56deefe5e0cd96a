package workbook

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006年1月2日",
	"2006-01-02 15:04:05",
	"01-02-06",
}

// ParseDate parses one of the date spellings seen in source workbooks.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// CanonicalDate rewrites a parseable date cell as YYYY-MM-DD. Unparseable
// input is kept as-is; the schema deliberately stores dates as strings to
// tolerate partial source values.
func CanonicalDate(value string) string {
	if parsed, ok := ParseDate(value); ok {
		return parsed.Format("2006-01-02")
	}
	return strings.TrimSpace(value)
}
