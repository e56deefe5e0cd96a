package reconcile

import (
	"fmt"

	"planimport/audit"
	"planimport/workbook"
)

// ReconcileProcessLog reconciles one process-log workbook's three
// destinations. Each destination has its own composite key, reflecting
// which columns the upstream export keeps immutable per logical entity:
// process entries match on (node id, process id), the department summary
// on (department, personnel count), the operator detail on (operator,
// department).
func (e *Engine) ReconcileProcessLog(entries []workbook.ProcessEntry, loads []workbook.DeptLoad, details []workbook.OperatorDetail) (*Result, error) {
	result := newResult()

	tx, err := e.store.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin batch transaction: %w", err)
	}

	var pending []audit.Record

	stagedEntries := make([]workbook.ProcessEntry, 0, len(entries))
	for _, entry := range entries {
		existing, found, err := tx.FindProcessEntry(entry.NodeID, entry.ProcessID)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("look up process entry (%s, %s): %w", entry.NodeID, entry.ProcessID, err)
		}
		if !found {
			stagedEntries = append(stagedEntries, entry)
			continue
		}

		entry.ID = existing.ID
		if err := tx.UpdateProcessEntry(entry); err != nil {
			if abortErr := e.rowFailure(result, tx, workbook.Failure{
				Record: entry.NodeID + "/" + entry.ProcessID,
				Reason: workbook.ReasonPersistenceFailure,
				Detail: err.Error(),
			}, err); abortErr != nil {
				return nil, abortErr
			}
			continue
		}
		result.recordUpdate(workbook.TableProcessEntry, existing.ID, entry.NodeID+"/"+entry.ProcessID)
		if before, after := processEntrySnapshot(existing), processEntrySnapshot(entry); !after.Equal(before) {
			pending = append(pending, e.changeRecord(result, workbook.TableProcessEntry, existing.ID,
				audit.OpUpdate, before, after))
		}
	}
	insertedEntries, err := tx.InsertProcessEntries(stagedEntries)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert process entries: %w", err)
	}
	for _, entry := range insertedEntries {
		result.recordInsert(workbook.TableProcessEntry, entry.ID, entry.NodeID+"/"+entry.ProcessID)
		pending = append(pending, e.changeRecord(result, workbook.TableProcessEntry, entry.ID,
			audit.OpInsert, nil, processEntrySnapshot(entry)))
	}

	stagedLoads := make([]workbook.DeptLoad, 0, len(loads))
	for _, load := range loads {
		existing, found, err := tx.FindDeptLoad(load.Department, load.PersonnelCount)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("look up department load (%s, %s): %w", load.Department, load.PersonnelCount, err)
		}
		if !found {
			stagedLoads = append(stagedLoads, load)
			continue
		}

		// Key columns stay; only the timeout count and provenance move.
		updated := existing
		updated.SourceDate = load.SourceDate
		updated.TimeoutCount = load.TimeoutCount
		if err := tx.UpdateDeptLoad(updated); err != nil {
			if abortErr := e.rowFailure(result, tx, workbook.Failure{
				Record: load.Department,
				Reason: workbook.ReasonPersistenceFailure,
				Detail: err.Error(),
			}, err); abortErr != nil {
				return nil, abortErr
			}
			continue
		}
		result.recordUpdate(workbook.TableDeptLoad, existing.ID, load.Department)
		if before, after := deptLoadSnapshot(existing), deptLoadSnapshot(updated); !after.Equal(before) {
			pending = append(pending, e.changeRecord(result, workbook.TableDeptLoad, existing.ID,
				audit.OpUpdate, before, after))
		}
	}
	insertedLoads, err := tx.InsertDeptLoads(stagedLoads)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert department loads: %w", err)
	}
	for _, load := range insertedLoads {
		result.recordInsert(workbook.TableDeptLoad, load.ID, load.Department)
		pending = append(pending, e.changeRecord(result, workbook.TableDeptLoad, load.ID,
			audit.OpInsert, nil, deptLoadSnapshot(load)))
	}

	stagedDetails := make([]workbook.OperatorDetail, 0, len(details))
	for _, detail := range details {
		existing, found, err := tx.FindOperatorDetail(detail.Operator, detail.Department)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("look up operator detail (%s, %s): %w", detail.Operator, detail.Department, err)
		}
		if !found {
			stagedDetails = append(stagedDetails, detail)
			continue
		}

		updated := existing
		updated.SourceDate = detail.SourceDate
		updated.OperationType = detail.OperationType
		updated.Quantity = detail.Quantity
		if err := tx.UpdateOperatorDetail(updated); err != nil {
			if abortErr := e.rowFailure(result, tx, workbook.Failure{
				Record: detail.Operator,
				Reason: workbook.ReasonPersistenceFailure,
				Detail: err.Error(),
			}, err); abortErr != nil {
				return nil, abortErr
			}
			continue
		}
		result.recordUpdate(workbook.TableOperatorDetail, existing.ID, detail.Operator)
		if before, after := operatorDetailSnapshot(existing), operatorDetailSnapshot(updated); !after.Equal(before) {
			pending = append(pending, e.changeRecord(result, workbook.TableOperatorDetail, existing.ID,
				audit.OpUpdate, before, after))
		}
	}
	insertedDetails, err := tx.InsertOperatorDetails(stagedDetails)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert operator details: %w", err)
	}
	for _, detail := range insertedDetails {
		result.recordInsert(workbook.TableOperatorDetail, detail.ID, detail.Operator)
		pending = append(pending, e.changeRecord(result, workbook.TableOperatorDetail, detail.ID,
			audit.OpInsert, nil, operatorDetailSnapshot(detail)))
	}

	return e.finish(result, tx, pending)
}
