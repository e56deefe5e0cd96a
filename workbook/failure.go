package workbook

// Failure reasons surfaced in batch results. Row-level failures are values,
// not errors; they never abort the remaining rows.
const (
	ReasonParseFailure            = "parse_failure"
	ReasonUnresolvedParent        = "unresolved_parent"
	ReasonValidationInconsistency = "validation_inconsistency"
	ReasonPersistenceFailure      = "persistence_failure"
)

// Failure describes one row (or record) that could not be reconciled.
type Failure struct {
	Row    int
	Record string
	Reason string
	Detail string
}
