package importer

import (
	"path/filepath"

	"planimport/workbook"
)

// ReadOptions select the worksheet and header placement for a workbook.
// The zero value reads the first sheet with the header on the first row.
// Plan exports carry a title banner on the first row, so callers usually
// pass HeaderRow 1 for them.
type ReadOptions struct {
	Sheet     SheetSelector
	HeaderRow int
	Aliases   AliasTable
}

// ReadPlan reads one project-plan workbook into a reconciliation batch:
// reader, header normalizer, classifier/forward-filler, splitter.
func ReadPlan(path string, opts ReadOptions) (*PlanBatch, error) {
	aliases := opts.Aliases
	if aliases == nil {
		aliases = PlanAliases()
	}

	reader := &ExcelReader{HeaderRow: opts.HeaderRow}
	sheet, err := reader.Read(path, opts.Sheet)
	if err != nil {
		return nil, err
	}

	columns := ResolveColumns(sheet.Header, aliases)
	if err := columns.Require(FieldProjectName, FieldMilestone); err != nil {
		return nil, err
	}

	vocabulary := PlanVocabulary()
	normalized := make([]NormalizedRow, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		normalized = append(normalized, columns.Normalize(row, vocabulary))
	}

	classified := Classify(normalized)
	batch := SplitPlanRows(classified, SourceDate(filepath.Base(path)))
	batch.File = path
	batch.RowsRead = len(sheet.Rows)
	return batch, nil
}

// ProcessLogBatch is one process-log workbook's candidates. The export
// carries three worksheets in fixed order: process entries, the
// per-department load summary, and the per-operator detail.
type ProcessLogBatch struct {
	File            string
	SourceDate      string
	RowsRead        int
	Entries         []workbook.ProcessEntry
	DeptLoads       []workbook.DeptLoad
	OperatorDetails []workbook.OperatorDetail
}

// ReadProcessLog reads a process-log workbook. Columns are positional;
// rows missing both key columns are skipped. The filename's date token is
// stamped on every record as provenance.
func ReadProcessLog(path string) (*ProcessLogBatch, error) {
	reader := &ExcelReader{}
	sheets, err := reader.ReadAll(path)
	if err != nil {
		return nil, err
	}

	batch := &ProcessLogBatch{
		File:       path,
		SourceDate: SourceDate(filepath.Base(path)),
	}
	for i, sheet := range sheets {
		batch.RowsRead += len(sheet.Rows)
		switch i {
		case 0:
			batch.Entries = append(batch.Entries, processEntries(sheet, batch.SourceDate)...)
		case 1:
			batch.DeptLoads = append(batch.DeptLoads, deptLoads(sheet, batch.SourceDate)...)
		case 2:
			batch.OperatorDetails = append(batch.OperatorDetails, operatorDetails(sheet, batch.SourceDate)...)
		}
	}
	return batch, nil
}

func processEntries(sheet *Sheet, sourceDate string) []workbook.ProcessEntry {
	entries := make([]workbook.ProcessEntry, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		entry := workbook.ProcessEntry{
			SourceDate:    sourceDate,
			NodeID:        cleanValue(row.Cell(0)),
			ProcessID:     cleanValue(row.Cell(1)),
			Title:         cleanValue(row.Cell(2)),
			ProcessName:   cleanValue(row.Cell(3)),
			ProcessType:   cleanValue(row.Cell(4)),
			Branch:        cleanValue(row.Cell(5)),
			Department:    cleanValue(row.Cell(6)),
			Operator:      cleanValue(row.Cell(7)),
			OperationType: cleanValue(row.Cell(8)),
			NodeName:      cleanValue(row.Cell(9)),
			FirstReceived: cleanValue(row.Cell(10)),
			LastProcessed: cleanValue(row.Cell(11)),
			TotalDuration: cleanValue(row.Cell(12)),
			TotalTimeout:  cleanValue(row.Cell(13)),
		}
		if entry.NodeID == "" && entry.ProcessID == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func deptLoads(sheet *Sheet, sourceDate string) []workbook.DeptLoad {
	loads := make([]workbook.DeptLoad, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		load := workbook.DeptLoad{
			SourceDate:     sourceDate,
			Department:     cleanValue(row.Cell(0)),
			PersonnelCount: cleanValue(row.Cell(1)),
			TimeoutCount:   cleanValue(row.Cell(2)),
		}
		if load.Department == "" {
			continue
		}
		loads = append(loads, load)
	}
	return loads
}

func operatorDetails(sheet *Sheet, sourceDate string) []workbook.OperatorDetail {
	details := make([]workbook.OperatorDetail, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		detail := workbook.OperatorDetail{
			SourceDate:    sourceDate,
			Operator:      cleanValue(row.Cell(0)),
			Department:    cleanValue(row.Cell(1)),
			OperationType: cleanValue(row.Cell(2)),
			Quantity:      cleanValue(row.Cell(3)),
		}
		if detail.Operator == "" && detail.Department == "" {
			continue
		}
		details = append(details, detail)
	}
	return details
}
