package config

import (
	"strings"
	"testing"
)

func TestValidateYAMLContent_Defaults(t *testing.T) {
	cfg, err := ValidateYAMLContent([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Import.DBPath != "planimport.db" {
		t.Fatalf("expected default db path, got %q", cfg.Import.DBPath)
	}
	if cfg.Import.Mode != "best_effort" {
		t.Fatalf("expected default mode, got %q", cfg.Import.Mode)
	}
	if cfg.Source.Directory != "." {
		t.Fatalf("expected default source directory, got %q", cfg.Source.Directory)
	}
}

func TestValidateYAMLContent_FullConfig(t *testing.T) {
	content := `
source:
  directory: ./exports
import:
  db_path: ./data/plan.db
  actor: scheduler
  mode: all_or_nothing
rules:
  - name: plans
    file_template: 里程碑
    document: plan
  - name: logs
    file_template: 流程处理
    document: oplog
`
	cfg, err := ValidateYAMLContent([]byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Import.Mode != "all_or_nothing" || cfg.Import.Actor != "scheduler" {
		t.Fatalf("unexpected import config: %+v", cfg.Import)
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(cfg.Rules))
	}
}

func TestValidateYAMLContent_InvalidMode(t *testing.T) {
	content := `
import:
  db_path: ./plan.db
  mode: sometimes
`
	if _, err := ValidateYAMLContent([]byte(content)); err == nil {
		t.Fatal("expected validation error for unknown mode")
	}
}

func TestValidateYAMLContent_RuleValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
rules:
  - file_template: 里程碑
    document: plan
`,
			wantErr: "name is required",
		},
		{
			name: "duplicate name",
			content: `
rules:
  - name: a
    file_template: 里程碑
    document: plan
  - name: A
    file_template: 流程处理
    document: oplog
`,
			wantErr: "duplicate rule name",
		},
		{
			name: "missing template",
			content: `
rules:
  - name: a
    document: plan
`,
			wantErr: "file_template is required",
		},
		{
			name: "unknown document",
			content: `
rules:
  - name: a
    file_template: 里程碑
    document: worklog
`,
			wantErr: "is not supported",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateYAMLContent([]byte(tc.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	if _, err := ValidateYAMLContent([]byte(ExampleYAML())); err != nil {
		t.Fatalf("example config must validate: %v", err)
	}
}

func TestDocumentForFile(t *testing.T) {
	cfg := &Config{
		Rules: []Rule{
			{Name: "plans", FileTemplate: "里程碑", Document: "plan"},
			{Name: "logs", FileTemplate: "流程处理", Document: "oplog"},
		},
	}

	if got := cfg.DocumentForFile("项目关键里程碑节点计划2026-01-15.xlsx"); got != "plan" {
		t.Fatalf("expected plan, got %q", got)
	}
	if got := cfg.DocumentForFile("流程处理20260115.xlsx"); got != "oplog" {
		t.Fatalf("expected oplog, got %q", got)
	}
	if got := cfg.DocumentForFile("unknown.xlsx"); got != "plan" {
		t.Fatalf("expected plan default, got %q", got)
	}
}
