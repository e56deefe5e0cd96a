package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Filename date tokens, tried in this fixed priority order.
var datePatterns = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}`), "2006-01-02"},
	{regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`), "2006年1月2日"},
	{regexp.MustCompile(`\d{8}`), "20060102"},
}

// ExtractFileDate pulls an embedded date token out of a file name.
func ExtractFileDate(name string) (time.Time, bool) {
	for _, pattern := range datePatterns {
		match := pattern.re.FindString(name)
		if match == "" {
			continue
		}
		parsed, err := time.Parse(pattern.layout, match)
		if err != nil {
			continue
		}
		return parsed, true
	}
	return time.Time{}, false
}

// SourceDate returns the filename's date token in canonical form, or ""
// when the name carries none.
func SourceDate(name string) string {
	parsed, ok := ExtractFileDate(name)
	if !ok {
		return ""
	}
	return parsed.Format("2006-01-02")
}

// ListWorkbooks returns the spreadsheet files of a directory in name order,
// skipping editor lock files.
func ListWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, dir)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".xls" && ext != ".xlsm" {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}

// ClosestWorkbook picks the directory's workbook whose filename date is
// nearest to the reference time. Files without a date token are ignored.
func ClosestWorkbook(dir string, ref time.Time) (string, time.Time, error) {
	paths, err := ListWorkbooks(dir)
	if err != nil {
		return "", time.Time{}, err
	}

	var (
		closest     string
		closestDate time.Time
		minDiff     time.Duration = -1
	)
	for _, path := range paths {
		fileDate, ok := ExtractFileDate(filepath.Base(path))
		if !ok {
			continue
		}
		diff := ref.Sub(fileDate)
		if diff < 0 {
			diff = -diff
		}
		if minDiff < 0 || diff < minDiff {
			minDiff = diff
			closest = path
			closestDate = fileDate
		}
	}

	if closest == "" {
		return "", time.Time{}, fmt.Errorf("%w: no dated workbook in %s", ErrSourceUnavailable, dir)
	}
	return closest, closestDate, nil
}
