package reconcile

import "planimport/workbook"

// Store is the relational-store contract the engine reconciles against.
// No engine code issues raw queries; everything goes through one
// transaction per batch.
type Store interface {
	Begin() (Tx, error)
}

// Tx is one batch transaction. Find methods return (record, found, error);
// bulk inserts return the inserted records with their assigned ids.
type Tx interface {
	FindProjectByName(name string) (workbook.Project, bool, error)
	InsertProjects(projects []workbook.Project) ([]workbook.Project, error)
	UpdateProject(project workbook.Project) error

	FindMilestone(projectID int64, label string) (workbook.Milestone, bool, error)
	InsertMilestones(milestones []workbook.Milestone) ([]workbook.Milestone, error)
	UpdateMilestone(milestone workbook.Milestone) error
	InsertImpactChange(change workbook.ImpactChange) error

	FindProcessEntry(nodeID, processID string) (workbook.ProcessEntry, bool, error)
	InsertProcessEntries(entries []workbook.ProcessEntry) ([]workbook.ProcessEntry, error)
	UpdateProcessEntry(entry workbook.ProcessEntry) error

	FindDeptLoad(department, personnelCount string) (workbook.DeptLoad, bool, error)
	InsertDeptLoads(loads []workbook.DeptLoad) ([]workbook.DeptLoad, error)
	UpdateDeptLoad(load workbook.DeptLoad) error

	FindOperatorDetail(operator, department string) (workbook.OperatorDetail, bool, error)
	InsertOperatorDetails(details []workbook.OperatorDetail) ([]workbook.OperatorDetail, error)
	UpdateOperatorDetail(detail workbook.OperatorDetail) error

	Commit() error
	Rollback() error
}
