package cmd

import "testing"

func TestBatchExitCode(t *testing.T) {
	tests := []struct {
		name   string
		files  int
		failed int
		want   int
	}{
		{name: "all succeeded", files: 3, failed: 0, want: exitSuccess},
		{name: "no files", files: 0, failed: 0, want: exitNoFiles},
		{name: "some failed", files: 3, failed: 1, want: exitPartialFailures},
		{name: "all failed", files: 3, failed: 3, want: exitPartialFailures},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := batchExitCode(tt.files, tt.failed); got != tt.want {
				t.Fatalf("batchExitCode(%d, %d) = %d, want %d", tt.files, tt.failed, got, tt.want)
			}
		})
	}
}
