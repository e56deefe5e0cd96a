package cmd

import "testing"

func TestImpactValue(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		present bool
		want    string
	}{
		{name: "absent", value: 0, present: false, want: "(none)"},
		{name: "explicit zero", value: 0, present: true, want: "0"},
		{name: "positive", value: 5, present: true, want: "5"},
		{name: "negative", value: -2, present: true, want: "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := impactValue(tt.value, tt.present); got != tt.want {
				t.Fatalf("impactValue(%d, %t) = %q, want %q", tt.value, tt.present, got, tt.want)
			}
		})
	}
}
