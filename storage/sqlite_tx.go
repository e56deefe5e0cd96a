package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"planimport/reconcile"
	"planimport/workbook"
)

// SQLiteTx wraps one sql.Tx as a batch transaction.
type SQLiteTx struct {
	tx *sql.Tx
}

var _ reconcile.Tx = (*SQLiteTx)(nil)

func (t *SQLiteTx) Commit() error {
	return t.tx.Commit()
}

func (t *SQLiteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *SQLiteTx) FindProjectByName(name string) (workbook.Project, bool, error) {
	var p workbook.Project
	err := t.tx.QueryRow(`
SELECT id, project_name, product_name, product_image, customer_name, order_status, source_date
FROM sys_project
WHERE project_name = ?;`, name).
		Scan(&p.ID, &p.Name, &p.ProductName, &p.ProductImage, &p.CustomerName, &p.OrderStatus, &p.SourceDate)
	if errors.Is(err, sql.ErrNoRows) {
		return workbook.Project{}, false, nil
	}
	if err != nil {
		return workbook.Project{}, false, fmt.Errorf("find project: %w", err)
	}
	return p, true, nil
}

func (t *SQLiteTx) InsertProjects(projects []workbook.Project) ([]workbook.Project, error) {
	if len(projects) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.Prepare(`
INSERT INTO sys_project (project_name, product_name, product_image, customer_name, order_status, source_date)
VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, fmt.Errorf("prepare project insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]workbook.Project, 0, len(projects))
	for _, p := range projects {
		res, err := stmt.Exec(p.Name, p.ProductName, p.ProductImage, p.CustomerName, p.OrderStatus, p.SourceDate)
		if err != nil {
			return nil, fmt.Errorf("insert project %q: %w", p.Name, err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("project id for %q: %w", p.Name, err)
		}
		inserted = append(inserted, p)
	}
	return inserted, nil
}

func (t *SQLiteTx) UpdateProject(project workbook.Project) error {
	_, err := t.tx.Exec(`
UPDATE sys_project
SET product_name = ?, product_image = ?, customer_name = ?, order_status = ?, source_date = ?,
	updated_at = CURRENT_TIMESTAMP
WHERE id = ?;`,
		project.ProductName, project.ProductImage, project.CustomerName, project.OrderStatus,
		project.SourceDate, project.ID)
	if err != nil {
		return fmt.Errorf("update project %q: %w", project.Name, err)
	}
	return nil
}

func (t *SQLiteTx) FindMilestone(projectID int64, label string) (workbook.Milestone, bool, error) {
	var m workbook.Milestone
	err := t.tx.QueryRow(`
SELECT id, project_id, sequence, milestone, responsible_department, planned_start_time,
	planned_end_time, actual_completion_time, responsible_person, exception_type,
	impact_cycle, response_measures, source_date
FROM sys_project_milestone
WHERE project_id = ? AND milestone = ?;`, projectID, label).
		Scan(&m.ID, &m.ProjectID, &m.Sequence, &m.Label, &m.Department, &m.PlannedStart,
			&m.PlannedEnd, &m.ActualCompletion, &m.Person, &m.ExceptionType,
			&m.ImpactCycle, &m.ResponseMeasures, &m.SourceDate)
	if errors.Is(err, sql.ErrNoRows) {
		return workbook.Milestone{}, false, nil
	}
	if err != nil {
		return workbook.Milestone{}, false, fmt.Errorf("find milestone: %w", err)
	}
	return m, true, nil
}

func (t *SQLiteTx) InsertMilestones(milestones []workbook.Milestone) ([]workbook.Milestone, error) {
	if len(milestones) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.Prepare(`
INSERT INTO sys_project_milestone (project_id, sequence, milestone, responsible_department,
	planned_start_time, planned_end_time, actual_completion_time, responsible_person,
	exception_type, impact_cycle, response_measures, source_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, fmt.Errorf("prepare milestone insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]workbook.Milestone, 0, len(milestones))
	for _, m := range milestones {
		res, err := stmt.Exec(m.ProjectID, m.Sequence, m.Label, m.Department,
			m.PlannedStart, m.PlannedEnd, m.ActualCompletion, m.Person,
			m.ExceptionType, m.ImpactCycle, m.ResponseMeasures, m.SourceDate)
		if err != nil {
			return nil, fmt.Errorf("insert milestone %q: %w", m.Label, err)
		}
		if m.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("milestone id for %q: %w", m.Label, err)
		}
		inserted = append(inserted, m)
	}
	return inserted, nil
}

func (t *SQLiteTx) UpdateMilestone(milestone workbook.Milestone) error {
	_, err := t.tx.Exec(`
UPDATE sys_project_milestone
SET sequence = ?, responsible_department = ?, planned_start_time = ?, planned_end_time = ?,
	actual_completion_time = ?, responsible_person = ?, exception_type = ?, impact_cycle = ?,
	response_measures = ?, source_date = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?;`,
		milestone.Sequence, milestone.Department, milestone.PlannedStart, milestone.PlannedEnd,
		milestone.ActualCompletion, milestone.Person, milestone.ExceptionType, milestone.ImpactCycle,
		milestone.ResponseMeasures, milestone.SourceDate, milestone.ID)
	if err != nil {
		return fmt.Errorf("update milestone %q: %w", milestone.Label, err)
	}
	return nil
}

func (t *SQLiteTx) InsertImpactChange(change workbook.ImpactChange) error {
	_, err := t.tx.Exec(`
INSERT INTO sys_milestone_impact_history (milestone_id, project_id, old_impact_cycle,
	new_impact_cycle, old_raw, new_raw, had_prior_old, had_prior_new, modified_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		change.MilestoneID, change.ProjectID, change.Old, change.New,
		change.OldRaw, change.NewRaw, change.HadPriorOld, change.HadPriorNew, change.ModifiedBy)
	if err != nil {
		return fmt.Errorf("insert impact change for milestone %d: %w", change.MilestoneID, err)
	}
	return nil
}

func (t *SQLiteTx) FindProcessEntry(nodeID, processID string) (workbook.ProcessEntry, bool, error) {
	var e workbook.ProcessEntry
	err := t.tx.QueryRow(`
SELECT id, source_date, node_id, process_id, title, process_name, process_type, branch,
	department, operator, operation_type, node_name, first_received, last_processed,
	total_duration, total_timeout
FROM process_log
WHERE node_id = ? AND process_id = ?;`, nodeID, processID).
		Scan(&e.ID, &e.SourceDate, &e.NodeID, &e.ProcessID, &e.Title, &e.ProcessName,
			&e.ProcessType, &e.Branch, &e.Department, &e.Operator, &e.OperationType,
			&e.NodeName, &e.FirstReceived, &e.LastProcessed, &e.TotalDuration, &e.TotalTimeout)
	if errors.Is(err, sql.ErrNoRows) {
		return workbook.ProcessEntry{}, false, nil
	}
	if err != nil {
		return workbook.ProcessEntry{}, false, fmt.Errorf("find process entry: %w", err)
	}
	return e, true, nil
}

func (t *SQLiteTx) InsertProcessEntries(entries []workbook.ProcessEntry) ([]workbook.ProcessEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.Prepare(`
INSERT INTO process_log (source_date, node_id, process_id, title, process_name, process_type,
	branch, department, operator, operation_type, node_name, first_received, last_processed,
	total_duration, total_timeout)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, fmt.Errorf("prepare process entry insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]workbook.ProcessEntry, 0, len(entries))
	for _, e := range entries {
		res, err := stmt.Exec(e.SourceDate, e.NodeID, e.ProcessID, e.Title, e.ProcessName,
			e.ProcessType, e.Branch, e.Department, e.Operator, e.OperationType,
			e.NodeName, e.FirstReceived, e.LastProcessed, e.TotalDuration, e.TotalTimeout)
		if err != nil {
			return nil, fmt.Errorf("insert process entry (%s, %s): %w", e.NodeID, e.ProcessID, err)
		}
		if e.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("process entry id for (%s, %s): %w", e.NodeID, e.ProcessID, err)
		}
		inserted = append(inserted, e)
	}
	return inserted, nil
}

func (t *SQLiteTx) UpdateProcessEntry(entry workbook.ProcessEntry) error {
	_, err := t.tx.Exec(`
UPDATE process_log
SET source_date = ?, title = ?, process_name = ?, process_type = ?, branch = ?, department = ?,
	operator = ?, operation_type = ?, node_name = ?, first_received = ?, last_processed = ?,
	total_duration = ?, total_timeout = ?
WHERE id = ?;`,
		entry.SourceDate, entry.Title, entry.ProcessName, entry.ProcessType, entry.Branch,
		entry.Department, entry.Operator, entry.OperationType, entry.NodeName,
		entry.FirstReceived, entry.LastProcessed, entry.TotalDuration, entry.TotalTimeout, entry.ID)
	if err != nil {
		return fmt.Errorf("update process entry (%s, %s): %w", entry.NodeID, entry.ProcessID, err)
	}
	return nil
}

func (t *SQLiteTx) FindDeptLoad(department, personnelCount string) (workbook.DeptLoad, bool, error) {
	var l workbook.DeptLoad
	err := t.tx.QueryRow(`
SELECT id, source_date, department, personnel_count, timeout_count
FROM dept_load
WHERE department = ? AND personnel_count = ?;`, department, personnelCount).
		Scan(&l.ID, &l.SourceDate, &l.Department, &l.PersonnelCount, &l.TimeoutCount)
	if errors.Is(err, sql.ErrNoRows) {
		return workbook.DeptLoad{}, false, nil
	}
	if err != nil {
		return workbook.DeptLoad{}, false, fmt.Errorf("find department load: %w", err)
	}
	return l, true, nil
}

func (t *SQLiteTx) InsertDeptLoads(loads []workbook.DeptLoad) ([]workbook.DeptLoad, error) {
	if len(loads) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.Prepare(`
INSERT INTO dept_load (source_date, department, personnel_count, timeout_count)
VALUES (?, ?, ?, ?);`)
	if err != nil {
		return nil, fmt.Errorf("prepare department load insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]workbook.DeptLoad, 0, len(loads))
	for _, l := range loads {
		res, err := stmt.Exec(l.SourceDate, l.Department, l.PersonnelCount, l.TimeoutCount)
		if err != nil {
			return nil, fmt.Errorf("insert department load %q: %w", l.Department, err)
		}
		if l.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("department load id for %q: %w", l.Department, err)
		}
		inserted = append(inserted, l)
	}
	return inserted, nil
}

func (t *SQLiteTx) UpdateDeptLoad(load workbook.DeptLoad) error {
	_, err := t.tx.Exec(`
UPDATE dept_load
SET source_date = ?, timeout_count = ?
WHERE id = ?;`, load.SourceDate, load.TimeoutCount, load.ID)
	if err != nil {
		return fmt.Errorf("update department load %q: %w", load.Department, err)
	}
	return nil
}

func (t *SQLiteTx) FindOperatorDetail(operator, department string) (workbook.OperatorDetail, bool, error) {
	var d workbook.OperatorDetail
	err := t.tx.QueryRow(`
SELECT id, source_date, operator, department, operation_type, quantity
FROM operator_detail
WHERE operator = ? AND department = ?;`, operator, department).
		Scan(&d.ID, &d.SourceDate, &d.Operator, &d.Department, &d.OperationType, &d.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return workbook.OperatorDetail{}, false, nil
	}
	if err != nil {
		return workbook.OperatorDetail{}, false, fmt.Errorf("find operator detail: %w", err)
	}
	return d, true, nil
}

func (t *SQLiteTx) InsertOperatorDetails(details []workbook.OperatorDetail) ([]workbook.OperatorDetail, error) {
	if len(details) == 0 {
		return nil, nil
	}
	stmt, err := t.tx.Prepare(`
INSERT INTO operator_detail (source_date, operator, department, operation_type, quantity)
VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return nil, fmt.Errorf("prepare operator detail insert: %w", err)
	}
	defer stmt.Close()

	inserted := make([]workbook.OperatorDetail, 0, len(details))
	for _, d := range details {
		res, err := stmt.Exec(d.SourceDate, d.Operator, d.Department, d.OperationType, d.Quantity)
		if err != nil {
			return nil, fmt.Errorf("insert operator detail %q: %w", d.Operator, err)
		}
		if d.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("operator detail id for %q: %w", d.Operator, err)
		}
		inserted = append(inserted, d)
	}
	return inserted, nil
}

func (t *SQLiteTx) UpdateOperatorDetail(detail workbook.OperatorDetail) error {
	_, err := t.tx.Exec(`
UPDATE operator_detail
SET source_date = ?, operation_type = ?, quantity = ?
WHERE id = ?;`, detail.SourceDate, detail.OperationType, detail.Quantity, detail.ID)
	if err != nil {
		return fmt.Errorf("update operator detail %q: %w", detail.Operator, err)
	}
	return nil
}
