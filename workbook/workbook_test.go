package workbook

import "testing"

func TestNewProject_RequiresName(t *testing.T) {
	t.Parallel()

	if _, err := NewProject("   "); err == nil {
		t.Fatal("expected error for blank project name")
	}

	project, err := NewProject("  项目A  ")
	if err != nil {
		t.Fatalf("new project: %v", err)
	}
	if project.Name != "项目A" {
		t.Fatalf("expected trimmed name, got %q", project.Name)
	}
}

func TestNewMilestone_RequiresLabel(t *testing.T) {
	t.Parallel()

	if _, err := NewMilestone("项目A", ""); err == nil {
		t.Fatal("expected error for blank milestone label")
	}

	milestone, err := NewMilestone("项目A", " 图纸设计 ")
	if err != nil {
		t.Fatalf("new milestone: %v", err)
	}
	if milestone.Label != "图纸设计" {
		t.Fatalf("expected trimmed label, got %q", milestone.Label)
	}
	if milestone.ProjectName != "项目A" {
		t.Fatalf("expected owner key, got %q", milestone.ProjectName)
	}
}

func TestParseImpactCycle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "integer", raw: "5", want: 5, wantOK: true},
		{name: "float truncates", raw: "3.7", want: 3, wantOK: true},
		{name: "explicit zero", raw: "0", want: 0, wantOK: true},
		{name: "padded", raw: " 12 ", want: 12, wantOK: true},
		{name: "empty", raw: "", want: 0, wantOK: false},
		{name: "blank", raw: "   ", want: 0, wantOK: false},
		{name: "non numeric", raw: "待定", want: 0, wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseImpactCycle(tc.raw)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("ParseImpactCycle(%q) = (%d, %t), want (%d, %t)", tc.raw, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestImpactChanged(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		oldRaw string
		newRaw string
		want   bool
	}{
		{name: "same value", oldRaw: "3", newRaw: "3", want: false},
		{name: "different value", oldRaw: "3", newRaw: "5", want: true},
		{name: "empty to value", oldRaw: "", newRaw: "5", want: true},
		{name: "value to empty", oldRaw: "5", newRaw: "", want: true},
		{name: "empty to zero", oldRaw: "", newRaw: "0", want: true},
		{name: "both empty", oldRaw: "", newRaw: "", want: false},
		{name: "both non numeric", oldRaw: "待定", newRaw: "未知", want: false},
		{name: "float equals int", oldRaw: "3.2", newRaw: "3", want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ImpactChanged(tc.oldRaw, tc.newRaw); got != tc.want {
				t.Fatalf("ImpactChanged(%q, %q) = %t, want %t", tc.oldRaw, tc.newRaw, got, tc.want)
			}
		})
	}
}

func TestSplitCustomerInfo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		combined     string
		wantCustomer string
		wantStatus   string
	}{
		{name: "ascii parenthetical", combined: "客户A(已下单)", wantCustomer: "客户A", wantStatus: "已下单"},
		{name: "full width parenthetical", combined: "客户B（批量生产）", wantCustomer: "客户B", wantStatus: "批量生产"},
		{name: "no parenthetical", combined: "客户C", wantCustomer: "客户C", wantStatus: ""},
		{name: "empty", combined: "", wantCustomer: "", wantStatus: ""},
		{name: "padded", combined: "  客户D (试产)  ", wantCustomer: "客户D", wantStatus: "试产"},
		{name: "unbalanced keeps whole value", combined: "客户E(进行中", wantCustomer: "客户E(进行中", wantStatus: ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			customer, status := SplitCustomerInfo(tc.combined)
			if customer != tc.wantCustomer || status != tc.wantStatus {
				t.Fatalf("SplitCustomerInfo(%q) = (%q, %q), want (%q, %q)",
					tc.combined, customer, status, tc.wantCustomer, tc.wantStatus)
			}
		})
	}
}
