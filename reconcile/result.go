package reconcile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"planimport/audit"
	"planimport/workbook"
)

// Mode selects the batch commit semantics.
type Mode string

const (
	// ModeBestEffort records row-level failures and commits the rows that
	// succeeded. The batch is only rolled back when nothing succeeded.
	ModeBestEffort Mode = "best_effort"
	// ModeAllOrNothing rolls the whole batch back on the first row-level
	// persistence failure.
	ModeAllOrNothing Mode = "all_or_nothing"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.TrimSpace(strings.ToLower(value))) {
	case "", ModeBestEffort:
		return ModeBestEffort, nil
	case ModeAllOrNothing:
		return ModeAllOrNothing, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (supported: best_effort|all_or_nothing)", value)
	}
}

// RecordSummary identifies one record created or updated by a batch, by
// destination table, persisted id, and business key.
type RecordSummary struct {
	Table     string
	RecordID  int64
	Key       string
	Operation audit.Operation
}

// Result is the structured summary of one reconciled batch.
type Result struct {
	BatchID         uuid.UUID
	Success         bool
	Message         string
	Inserted        map[string]int
	Updated         map[string]int
	Imported        []RecordSummary
	ImpactChanges   int
	Inconsistencies []workbook.Failure
	Failed          []workbook.Failure
}

func newResult() *Result {
	return &Result{
		BatchID:  uuid.New(),
		Inserted: make(map[string]int),
		Updated:  make(map[string]int),
	}
}

// InsertedTotal sums inserts across destination tables.
func (r *Result) InsertedTotal() int {
	total := 0
	for _, n := range r.Inserted {
		total += n
	}
	return total
}

// UpdatedTotal sums updates across destination tables.
func (r *Result) UpdatedTotal() int {
	total := 0
	for _, n := range r.Updated {
		total += n
	}
	return total
}

func (r *Result) written() int {
	return r.InsertedTotal() + r.UpdatedTotal()
}

func (r *Result) recordInsert(table string, id int64, key string) {
	r.Inserted[table]++
	r.Imported = append(r.Imported, RecordSummary{Table: table, RecordID: id, Key: key, Operation: audit.OpInsert})
}

func (r *Result) recordUpdate(table string, id int64, key string) {
	r.Updated[table]++
	r.Imported = append(r.Imported, RecordSummary{Table: table, RecordID: id, Key: key, Operation: audit.OpUpdate})
}
