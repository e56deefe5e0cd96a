package reconcile

import (
	"fmt"
	"sort"

	"planimport/workbook"
)

// sequenceMilestones orders each parent's children by planned start date
// and assigns their Sequence numbers. Children without a parseable planned
// start sort last and are excluded from the overlap check. An adjacent
// pair whose planned windows overlap is reported as a validation
// inconsistency; the batch continues.
func sequenceMilestones(milestones []workbook.Milestone, result *Result) []workbook.Milestone {
	byParent := make(map[string][]workbook.Milestone)
	parentOrder := make([]string, 0, 8)
	for _, milestone := range milestones {
		if _, ok := byParent[milestone.ProjectName]; !ok {
			parentOrder = append(parentOrder, milestone.ProjectName)
		}
		byParent[milestone.ProjectName] = append(byParent[milestone.ProjectName], milestone)
	}

	sequenced := make([]workbook.Milestone, 0, len(milestones))
	for _, parent := range parentOrder {
		children := byParent[parent]

		dated := make([]workbook.Milestone, 0, len(children))
		undated := make([]workbook.Milestone, 0)
		for _, child := range children {
			if _, ok := workbook.ParseDate(child.PlannedStart); ok {
				dated = append(dated, child)
			} else {
				undated = append(undated, child)
			}
		}

		sort.SliceStable(dated, func(i, j int) bool {
			left, _ := workbook.ParseDate(dated[i].PlannedStart)
			right, _ := workbook.ParseDate(dated[j].PlannedStart)
			return left.Before(right)
		})

		for i := 0; i+1 < len(dated); i++ {
			end, endOK := workbook.ParseDate(dated[i].PlannedEnd)
			nextStart, _ := workbook.ParseDate(dated[i+1].PlannedStart)
			if endOK && end.After(nextStart) {
				result.Inconsistencies = append(result.Inconsistencies, workbook.Failure{
					Record: dated[i].Label,
					Reason: workbook.ReasonValidationInconsistency,
					Detail: fmt.Sprintf(
						"project %q: milestone %q planned end %s is later than milestone %q planned start %s",
						parent, dated[i].Label, dated[i].PlannedEnd, dated[i+1].Label, dated[i+1].PlannedStart),
				})
			}
		}

		sequence := 0
		for _, child := range dated {
			sequence++
			child.Sequence = sequence
			sequenced = append(sequenced, child)
		}
		for _, child := range undated {
			sequence++
			child.Sequence = sequence
			sequenced = append(sequenced, child)
		}
	}
	return sequenced
}
