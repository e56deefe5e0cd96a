package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads worksheets into Sheet values. HeaderRow is the
// zero-based index of the header row; rows above it are discarded. The
// reader never mutates the source file.
type ExcelReader struct {
	HeaderRow int
}

func (r *ExcelReader) Read(path string, sel SheetSelector) (*Sheet, error) {
	file, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name, err := resolveSheet(file, sel, path)
	if err != nil {
		return nil, err
	}
	return r.readSheet(file, path, name)
}

// ReadAll reads every worksheet of the workbook in declared order.
func (r *ExcelReader) ReadAll(path string) ([]*Sheet, error) {
	file, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	names := file.GetSheetList()
	sheets := make([]*Sheet, 0, len(names))
	for _, name := range names {
		sheet, err := r.readSheet(file, path, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (r *ExcelReader) readSheet(file *excelize.File, path, name string) (*Sheet, error) {
	rows, err := file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
	}

	sheet := &Sheet{File: path, Name: name}
	if len(rows) <= r.HeaderRow {
		return sheet, nil
	}

	sheet.Header = placeholderLabels(rows[r.HeaderRow])
	for i, cells := range rows[r.HeaderRow+1:] {
		sheet.Rows = append(sheet.Rows, Row{
			Number: r.HeaderRow + i + 2,
			Cells:  cells,
		})
	}
	return sheet, nil
}

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, path)
	}
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	return file, nil
}

func resolveSheet(file *excelize.File, sel SheetSelector, path string) (string, error) {
	if sel.Name != "" {
		idx, err := file.GetSheetIndex(sel.Name)
		if err != nil || idx < 0 {
			return "", fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sel.Name, path)
		}
		return sel.Name, nil
	}
	name := file.GetSheetName(sel.Index)
	if name == "" {
		return "", fmt.Errorf("%w: index %d in %s", ErrSheetNotFound, sel.Index, path)
	}
	return name, nil
}

// placeholderLabels trims header labels and substitutes a positional
// placeholder for anonymous columns, so alias tables can address them.
func placeholderLabels(header []string) []string {
	labels := make([]string, len(header))
	for i, label := range header {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("column_%d", i)
		}
		labels[i] = label
	}
	return labels
}
