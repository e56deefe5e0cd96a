package importer

import (
	"errors"
	"testing"
)

func TestResolveColumns_FirstAliasWins(t *testing.T) {
	t.Parallel()

	header := []string{"序号", "关键节点", "关键里程碑节点"}
	columns := ResolveColumns(header, PlanAliases())

	// "关键里程碑节点" is listed before "关键节点" in the alias table, so the
	// later column wins even though "关键节点" appears first in the header.
	if got := columns[FieldMilestone]; got != 2 {
		t.Fatalf("expected milestone column 2, got %d", got)
	}
	if got := columns[FieldOrdinal]; got != 0 {
		t.Fatalf("expected ordinal column 0, got %d", got)
	}
}

func TestResolveColumns_PlaceholderLabels(t *testing.T) {
	t.Parallel()

	header := []string{"column_0", "column_1", "column_2", "column_3", "column_4", "column_5"}
	columns := ResolveColumns(header, PlanAliases())

	if got := columns[FieldProjectName]; got != 1 {
		t.Fatalf("expected project name at placeholder column 1, got %d", got)
	}
	if got := columns[FieldMilestone]; got != 5 {
		t.Fatalf("expected milestone at placeholder column 5, got %d", got)
	}
}

func TestColumnMap_Require(t *testing.T) {
	t.Parallel()

	columns := ColumnMap{FieldProjectName: 0}
	if err := columns.Require(FieldProjectName); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := columns.Require(FieldProjectName, FieldMilestone)
	if !errors.Is(err, ErrMissingRequiredColumn) {
		t.Fatalf("expected ErrMissingRequiredColumn, got %v", err)
	}
}

func TestNormalize_CleansPlaceholderValues(t *testing.T) {
	t.Parallel()

	columns := ColumnMap{FieldProjectName: 0, FieldMilestone: 1, FieldImpactCycle: 2}
	row := Row{Number: 3, Cells: []string{" 项目A ", "/", "nan"}}

	normalized := columns.Normalize(row, PlanVocabulary())

	if got := normalized.Field(FieldProjectName); got != "项目A" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := normalized.Field(FieldMilestone); got != "" {
		t.Fatalf("expected slash placeholder cleaned to empty, got %q", got)
	}
	if got := normalized.Field(FieldImpactCycle); got != "" {
		t.Fatalf("expected nan cleaned to empty, got %q", got)
	}
	// Unresolved vocabulary fields read as empty rather than missing.
	if _, ok := normalized.Fields[FieldDepartment]; !ok {
		t.Fatal("expected every vocabulary field present")
	}
	if normalized.Number != 3 {
		t.Fatalf("expected row number preserved, got %d", normalized.Number)
	}
}
