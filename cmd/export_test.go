package cmd

import "testing"

func TestDetectExportFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "plan.csv", want: "csv"},
		{path: "plan.xlsx", want: "excel"},
		{path: "plan.XLSM", want: "excel"},
		{path: "plan.xls", want: "excel"},
		{path: "plan.unknown", want: "csv"},
		{path: "plan", want: "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := detectExportFormat(tt.path); got != tt.want {
				t.Fatalf("detectExportFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
