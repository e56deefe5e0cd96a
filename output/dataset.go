package output

import (
	"strconv"

	"planimport/audit"
	"planimport/workbook"
)

// Dataset is one tabular export: a header row and data rows, already
// flattened to strings so every writer renders the same content.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// PlanDataset flattens the stored plan into one milestone-per-row view
// with the owning project's columns repeated, the shape the source
// workbooks use.
func PlanDataset(projects []workbook.Project, milestones []workbook.Milestone) Dataset {
	byID := make(map[int64]workbook.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	ds := Dataset{
		Headers: []string{
			"ProjectName", "ProductName", "ProductImage", "CustomerName", "OrderStatus",
			"Sequence", "Milestone", "Department", "PlannedStart", "PlannedEnd",
			"ActualCompletion", "Person", "ExceptionType", "ImpactCycle",
			"ResponseMeasures", "SourceDate",
		},
	}
	for _, m := range milestones {
		p := byID[m.ProjectID]
		ds.Rows = append(ds.Rows, []string{
			p.Name, p.ProductName, p.ProductImage, p.CustomerName, p.OrderStatus,
			strconv.Itoa(m.Sequence), m.Label, m.Department, m.PlannedStart, m.PlannedEnd,
			m.ActualCompletion, m.Person, m.ExceptionType, m.ImpactCycle,
			m.ResponseMeasures, m.SourceDate,
		})
	}
	return ds
}

// ProjectDataset exports the project table alone, for projects without
// any persisted milestones.
func ProjectDataset(projects []workbook.Project) Dataset {
	ds := Dataset{
		Headers: []string{"ProjectName", "ProductName", "ProductImage", "CustomerName", "OrderStatus", "SourceDate"},
	}
	for _, p := range projects {
		ds.Rows = append(ds.Rows, []string{p.Name, p.ProductName, p.ProductImage, p.CustomerName, p.OrderStatus, p.SourceDate})
	}
	return ds
}

// ChangeLogDataset flattens change records for export, newest first as
// returned by the store.
func ChangeLogDataset(records []audit.Record) Dataset {
	ds := Dataset{
		Headers: []string{"BatchID", "Table", "RecordID", "Operation", "OldData", "NewData", "Actor", "LoggedAt"},
	}
	for _, rec := range records {
		oldData, _ := rec.OldData.JSON()
		newData, _ := rec.NewData.JSON()
		ds.Rows = append(ds.Rows, []string{
			rec.BatchID.String(),
			rec.Table,
			strconv.FormatInt(rec.RecordID, 10),
			string(rec.Operation),
			oldData,
			newData,
			rec.Actor,
			rec.LoggedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return ds
}
