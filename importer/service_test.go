package importer

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadProcessLog_ThreeSheets(t *testing.T) {
	t.Parallel()

	file := excelize.NewFile()
	first := file.GetSheetName(0)

	entrySheet := [][]any{
		{"节点ID", "流程ID", "标题", "流程名称", "流程类型", "分支", "部门", "处理人", "操作类型", "节点名称", "首次接收", "最后处理", "总时长", "总超时"},
		{"n1", "p1", "采购审批", "采购流程", "审批", "主干", "研发部", "王工", "同意", "部门审批", "2026-01-10", "2026-01-12", "48h", "0"},
		{"", "", "残留说明行"},
	}
	loadSheet := [][]any{
		{"部门", "人数", "超时数"},
		{"研发部", "12", "3"},
		{""},
	}
	detailSheet := [][]any{
		{"处理人", "部门", "操作类型", "数量"},
		{"王工", "研发部", "同意", "7"},
	}

	writeSheet := func(name string, rows [][]any) {
		t.Helper()
		if name != first {
			if _, err := file.NewSheet(name); err != nil {
				t.Fatalf("new sheet %s: %v", name, err)
			}
		}
		for i, cells := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := file.SetSheetRow(name, cell, &cells); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	writeSheet(first, entrySheet)
	writeSheet("部门负荷", loadSheet)
	writeSheet("处理明细", detailSheet)

	path := filepath.Join(t.TempDir(), "流程处理20260115.xlsx")
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	_ = file.Close()

	batch, err := ReadProcessLog(path)
	if err != nil {
		t.Fatalf("read process log: %v", err)
	}

	if batch.SourceDate != "2026-01-15" {
		t.Fatalf("expected filename date, got %q", batch.SourceDate)
	}
	if len(batch.Entries) != 1 {
		t.Fatalf("expected 1 process entry (keyless rows skipped), got %d", len(batch.Entries))
	}
	entry := batch.Entries[0]
	if entry.NodeID != "n1" || entry.ProcessID != "p1" || entry.TotalTimeout != "0" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.SourceDate != "2026-01-15" {
		t.Fatalf("expected source date stamped on entry, got %q", entry.SourceDate)
	}

	if len(batch.DeptLoads) != 1 {
		t.Fatalf("expected 1 department load, got %d", len(batch.DeptLoads))
	}
	if batch.DeptLoads[0].Department != "研发部" || batch.DeptLoads[0].TimeoutCount != "3" {
		t.Fatalf("unexpected load: %+v", batch.DeptLoads[0])
	}

	if len(batch.OperatorDetails) != 1 {
		t.Fatalf("expected 1 operator detail, got %d", len(batch.OperatorDetails))
	}
	if batch.OperatorDetails[0].Operator != "王工" || batch.OperatorDetails[0].Quantity != "7" {
		t.Fatalf("unexpected detail: %+v", batch.OperatorDetails[0])
	}
}
