package importer

import (
	"fmt"
	"strings"

	"planimport/workbook"
)

// PlanBatch is one workbook's candidates, ready for reconciliation.
type PlanBatch struct {
	File         string
	SourceDate   string
	RowsRead     int
	RowsRetained int
	Projects     []workbook.Project
	Milestones   []workbook.Milestone
	Failed       []workbook.Failure
}

// SplitPlanRows partitions classified rows into deduplicated parent
// candidates and child candidates tagged with their owning parent's
// business key. First-seen wins for a duplicated parent's descriptive
// attributes. A child whose parent key resolves against no parent in the
// batch is moved to the Failed list, never silently dropped.
func SplitPlanRows(rows []ClassifiedRow, sourceDate string) *PlanBatch {
	batch := &PlanBatch{SourceDate: sourceDate, RowsRetained: len(rows)}
	seen := make(map[string]struct{})
	order := make([]string, 0, 8)

	for _, row := range rows {
		name := row.Field(FieldProjectName)
		if name != "" {
			if _, ok := seen[name]; !ok {
				project, err := workbook.NewProject(name)
				if err != nil {
					batch.Failed = append(batch.Failed, workbook.Failure{
						Row:    row.Number,
						Reason: workbook.ReasonParseFailure,
						Detail: err.Error(),
					})
					continue
				}
				project.ProductName = row.Field(FieldProductName)
				project.ProductImage = row.Field(FieldProductImage)
				project.CustomerName, project.OrderStatus = workbook.SplitCustomerInfo(row.Field(FieldCustomerInfo))
				project.SourceDate = sourceDate
				batch.Projects = append(batch.Projects, project)
				seen[name] = struct{}{}
				order = append(order, name)
			}
		}

		if !row.ChildCandidate {
			continue
		}

		owner := resolveParentKey(name, order)
		if owner == "" {
			batch.Failed = append(batch.Failed, workbook.Failure{
				Row:    row.Number,
				Record: row.Field(FieldMilestone),
				Reason: workbook.ReasonUnresolvedParent,
				Detail: fmt.Sprintf("no project in batch matches %q", name),
			})
			continue
		}

		milestone, err := workbook.NewMilestone(owner, row.Field(FieldMilestone))
		if err != nil {
			batch.Failed = append(batch.Failed, workbook.Failure{
				Row:    row.Number,
				Reason: workbook.ReasonParseFailure,
				Detail: err.Error(),
			})
			continue
		}
		milestone.Department = row.Field(FieldDepartment)
		milestone.PlannedStart = workbook.CanonicalDate(row.Field(FieldPlannedStart))
		milestone.PlannedEnd = workbook.CanonicalDate(row.Field(FieldPlannedEnd))
		milestone.ActualCompletion = workbook.CanonicalDate(row.Field(FieldActualCompletion))
		milestone.Person = row.Field(FieldPerson)
		milestone.ExceptionType = row.Field(FieldExceptionType)
		milestone.ImpactCycle = row.Field(FieldImpactCycle)
		milestone.ResponseMeasures = row.Field(FieldResponseMeasures)
		milestone.SourceDate = sourceDate
		batch.Milestones = append(batch.Milestones, milestone)
	}

	return batch
}

// resolveParentKey matches a child's forward-filled parent key against the
// batch's parent keys: exact match first, then prefix match in either
// direction, first parent in file order wins.
func resolveParentKey(name string, parents []string) string {
	if name == "" {
		return ""
	}
	for _, parent := range parents {
		if parent == name {
			return parent
		}
	}
	for _, parent := range parents {
		if strings.HasPrefix(parent, name) || strings.HasPrefix(name, parent) {
			return parent
		}
	}
	return ""
}
