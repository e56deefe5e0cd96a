package workbook

import "testing"

func TestParseDate_AcceptedLayouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  string
	}{
		{value: "2026-01-15", want: "2026-01-15"},
		{value: "2026/01/15", want: "2026-01-15"},
		{value: "2026.01.15", want: "2026-01-15"},
		{value: "2026年1月15日", want: "2026-01-15"},
		{value: "2026-01-15 08:30:00", want: "2026-01-15"},
	}

	for _, tc := range cases {
		parsed, ok := ParseDate(tc.value)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", tc.value)
		}
		if got := parsed.Format("2006-01-02"); got != tc.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestParseDate_Rejects(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "   ", "not a date", "第三季度"} {
		if _, ok := ParseDate(value); ok {
			t.Fatalf("ParseDate(%q) unexpectedly succeeded", value)
		}
	}
}

func TestCanonicalDate_KeepsUnparseableInput(t *testing.T) {
	t.Parallel()

	if got := CanonicalDate("2026/01/15"); got != "2026-01-15" {
		t.Fatalf("expected canonical form, got %q", got)
	}
	if got := CanonicalDate(" 第三季度 "); got != "第三季度" {
		t.Fatalf("expected trimmed original, got %q", got)
	}
	if got := CanonicalDate(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
