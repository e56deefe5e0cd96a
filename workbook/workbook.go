package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

// Project is the parent record reconciled by business key (Name).
type Project struct {
	ID           int64
	Name         string
	ProductName  string
	ProductImage string
	CustomerName string
	OrderStatus  string
	SourceDate   string
}

// NewProject builds a project candidate. The name acts as the business key
// and must be non-empty.
func NewProject(name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, fmt.Errorf("project name must not be empty")
	}
	return Project{Name: name}, nil
}

// Milestone is the child record owned by a Project. Date fields stay strings
// in YYYY-MM-DD-like form to tolerate partial source values.
type Milestone struct {
	ID               int64
	ProjectID        int64
	ProjectName      string
	Sequence         int
	Label            string
	Department       string
	PlannedStart     string
	PlannedEnd       string
	ActualCompletion string
	Person           string
	ExceptionType    string
	ImpactCycle      string
	ResponseMeasures string
	SourceDate       string
}

// NewMilestone builds a milestone candidate. Rows without a label are
// dropped upstream, never defaulted, so an empty label here is an error.
func NewMilestone(projectName, label string) (Milestone, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Milestone{}, fmt.Errorf("milestone label must not be empty")
	}
	return Milestone{ProjectName: strings.TrimSpace(projectName), Label: label}, nil
}

// ImpactChange records one numeric change of a milestone's impact cycle.
// HadPriorOld/HadPriorNew distinguish "no value" from an explicit 0.
type ImpactChange struct {
	ID          int64
	MilestoneID int64
	ProjectID   int64
	OldRaw      string
	NewRaw      string
	Old         int
	New         int
	HadPriorOld bool
	HadPriorNew bool
	ModifiedBy  string
	ModifiedAt  string
}

// ParseImpactCycle parses an impact-cycle cell as whole days. The second
// return value reports whether a numeric value was present at all;
// non-numeric and empty input both yield (0, false).
func ParseImpactCycle(raw string) (int, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int(parsed), true
}

// ImpactChanged reports whether old and new impact-cycle cells differ once
// parsed. A transition between "no value" and any numeric value counts as a
// change even when both parse to the same integer.
func ImpactChanged(oldRaw, newRaw string) bool {
	oldVal, oldOK := ParseImpactCycle(oldRaw)
	newVal, newOK := ParseImpactCycle(newRaw)
	if oldOK != newOK {
		return true
	}
	if !oldOK && !newOK {
		return false
	}
	return oldVal != newVal
}

// SplitCustomerInfo separates the combined "customer name and order status"
// cell. A trailing parenthetical holds the order status.
func SplitCustomerInfo(combined string) (customer, status string) {
	combined = strings.TrimSpace(combined)
	if combined == "" {
		return "", ""
	}
	if idx := strings.LastIndex(combined, "("); idx >= 0 && strings.HasSuffix(combined, ")") {
		return strings.TrimSpace(combined[:idx]), strings.TrimSpace(combined[idx+1 : len(combined)-1])
	}
	if idx := strings.LastIndex(combined, "（"); idx >= 0 && strings.HasSuffix(combined, "）") {
		return strings.TrimSpace(combined[:idx]), strings.TrimSpace(strings.TrimSuffix(combined[idx+len("（"):], "）"))
	}
	return combined, ""
}
