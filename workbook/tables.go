package workbook

// Destination table names, shared between the reconciliation engine, the
// change log, and the store.
const (
	TableProject        = "sys_project"
	TableMilestone      = "sys_project_milestone"
	TableProcessEntry   = "process_log"
	TableDeptLoad       = "dept_load"
	TableOperatorDetail = "operator_detail"
)
