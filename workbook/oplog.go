package workbook

// ProcessEntry is one row of the process-log export. All values stay strings
// exactly as exported; the (NodeID, ProcessID) pair is the reconciliation key.
type ProcessEntry struct {
	ID            int64
	SourceDate    string
	NodeID        string
	ProcessID     string
	Title         string
	ProcessName   string
	ProcessType   string
	Branch        string
	Department    string
	Operator      string
	OperationType string
	NodeName      string
	FirstReceived string
	LastProcessed string
	TotalDuration string
	TotalTimeout  string
}

// DeptLoad is the per-department personnel summary. Reconciled by the
// (Department, PersonnelCount) pair; only timeout count and source date are
// overwritten on update.
type DeptLoad struct {
	ID             int64
	SourceDate     string
	Department     string
	PersonnelCount string
	TimeoutCount   string
}

// OperatorDetail is the per-operator breakdown. Reconciled by the
// (Operator, Department) pair.
type OperatorDetail struct {
	ID            int64
	SourceDate    string
	Operator      string
	Department    string
	OperationType string
	Quantity      string
}
