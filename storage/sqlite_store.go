package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"planimport/audit"
	"planimport/reconcile"
	"planimport/workbook"
)

// SQLiteStore is the relational store adapter. It implements the
// reconciliation engine's Store contract and the change-log sink.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ reconcile.Store = (*SQLiteStore)(nil)
	_ audit.Logger    = (*SQLiteStore)(nil)
)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single connection keeps the foreign_keys pragma effective and avoids
	// writer contention between the batch transaction and the change log.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS sys_project (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_name TEXT NOT NULL UNIQUE,
	product_name TEXT NOT NULL DEFAULT '',
	product_image TEXT NOT NULL DEFAULT '',
	customer_name TEXT NOT NULL DEFAULT '',
	order_status TEXT NOT NULL DEFAULT '',
	source_date TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sys_project_milestone (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL REFERENCES sys_project(id) ON DELETE CASCADE,
	sequence INTEGER NOT NULL DEFAULT 0,
	milestone TEXT NOT NULL,
	responsible_department TEXT NOT NULL DEFAULT '',
	planned_start_time TEXT NOT NULL DEFAULT '',
	planned_end_time TEXT NOT NULL DEFAULT '',
	actual_completion_time TEXT NOT NULL DEFAULT '',
	responsible_person TEXT NOT NULL DEFAULT '',
	exception_type TEXT NOT NULL DEFAULT '',
	impact_cycle TEXT NOT NULL DEFAULT '',
	response_measures TEXT NOT NULL DEFAULT '',
	source_date TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(project_id, milestone)
);

CREATE TABLE IF NOT EXISTS sys_milestone_impact_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	milestone_id INTEGER NOT NULL REFERENCES sys_project_milestone(id) ON DELETE CASCADE,
	project_id INTEGER NOT NULL,
	old_impact_cycle INTEGER NOT NULL DEFAULT 0,
	new_impact_cycle INTEGER NOT NULL DEFAULT 0,
	old_raw TEXT NOT NULL DEFAULT '',
	new_raw TEXT NOT NULL DEFAULT '',
	had_prior_old INTEGER NOT NULL DEFAULT 0,
	had_prior_new INTEGER NOT NULL DEFAULT 0,
	modified_by TEXT NOT NULL DEFAULT '',
	modified_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS change_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL DEFAULT '',
	table_name TEXT NOT NULL,
	record_id INTEGER NOT NULL,
	operation TEXT NOT NULL,
	old_data TEXT NOT NULL DEFAULT '',
	new_data TEXT NOT NULL DEFAULT '',
	actor TEXT NOT NULL DEFAULT '',
	logged_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS process_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_date TEXT NOT NULL DEFAULT '',
	node_id TEXT NOT NULL DEFAULT '',
	process_id TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	process_name TEXT NOT NULL DEFAULT '',
	process_type TEXT NOT NULL DEFAULT '',
	branch TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	operator TEXT NOT NULL DEFAULT '',
	operation_type TEXT NOT NULL DEFAULT '',
	node_name TEXT NOT NULL DEFAULT '',
	first_received TEXT NOT NULL DEFAULT '',
	last_processed TEXT NOT NULL DEFAULT '',
	total_duration TEXT NOT NULL DEFAULT '',
	total_timeout TEXT NOT NULL DEFAULT '',
	UNIQUE(node_id, process_id)
);

CREATE TABLE IF NOT EXISTS dept_load (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_date TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	personnel_count TEXT NOT NULL DEFAULT '',
	timeout_count TEXT NOT NULL DEFAULT '',
	UNIQUE(department, personnel_count)
);

CREATE TABLE IF NOT EXISTS operator_detail (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_date TEXT NOT NULL DEFAULT '',
	operator TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	operation_type TEXT NOT NULL DEFAULT '',
	quantity TEXT NOT NULL DEFAULT '',
	UNIQUE(operator, department)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Begin opens one batch transaction.
func (s *SQLiteStore) Begin() (reconcile.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &SQLiteTx{tx: tx}, nil
}

// Append writes one change record. Called outside the batch transaction;
// a failure here is the caller's warning, never a batch failure.
func (s *SQLiteStore) Append(rec audit.Record) error {
	oldData, err := rec.OldData.JSON()
	if err != nil {
		return err
	}
	newData, err := rec.NewData.JSON()
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
INSERT INTO change_log (batch_id, table_name, record_id, operation, old_data, new_data, actor, logged_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.BatchID.String(),
		rec.Table,
		rec.RecordID,
		string(rec.Operation),
		oldData,
		newData,
		rec.Actor,
		rec.LoggedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append change record: %w", err)
	}
	return nil
}

// ListChangeRecords returns change records, newest first. An empty table
// name matches every table; limit <= 0 means no limit.
func (s *SQLiteStore) ListChangeRecords(table string, limit int) ([]audit.Record, error) {
	query := `
SELECT id, batch_id, table_name, record_id, operation, old_data, new_data, actor, logged_at
FROM change_log`
	args := make([]any, 0, 2)
	if table != "" {
		query += ` WHERE table_name = ?`
		args = append(args, table)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	records := make([]audit.Record, 0, 32)
	for rows.Next() {
		var (
			rec       audit.Record
			batchRaw  string
			opRaw     string
			oldRaw    string
			newRaw    string
			loggedRaw string
		)
		if err := rows.Scan(&rec.ID, &batchRaw, &rec.Table, &rec.RecordID, &opRaw, &oldRaw, &newRaw, &rec.Actor, &loggedRaw); err != nil {
			return nil, fmt.Errorf("scan change record: %w", err)
		}
		rec.Operation = audit.Operation(opRaw)
		if batchRaw != "" {
			if parsed, err := uuid.Parse(batchRaw); err == nil {
				rec.BatchID = parsed
			}
		}
		if rec.OldData, err = audit.SnapshotFromJSON(oldRaw); err != nil {
			return nil, fmt.Errorf("decode old snapshot for change %d: %w", rec.ID, err)
		}
		if rec.NewData, err = audit.SnapshotFromJSON(newRaw); err != nil {
			return nil, fmt.Errorf("decode new snapshot for change %d: %w", rec.ID, err)
		}
		if parsed, err := time.Parse(time.RFC3339, loggedRaw); err == nil {
			rec.LoggedAt = parsed
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change log: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) ListProjects() ([]workbook.Project, error) {
	rows, err := s.db.Query(`
SELECT id, project_name, product_name, product_image, customer_name, order_status, source_date
FROM sys_project
ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]workbook.Project, 0, 32)
	for rows.Next() {
		var p workbook.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ProductName, &p.ProductImage, &p.CustomerName, &p.OrderStatus, &p.SourceDate); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *SQLiteStore) ListMilestones() ([]workbook.Milestone, error) {
	rows, err := s.db.Query(`
SELECT m.id, m.project_id, p.project_name, m.sequence, m.milestone, m.responsible_department,
	m.planned_start_time, m.planned_end_time, m.actual_completion_time, m.responsible_person,
	m.exception_type, m.impact_cycle, m.response_measures, m.source_date
FROM sys_project_milestone m
JOIN sys_project p ON p.id = m.project_id
ORDER BY m.project_id, m.sequence, m.id;`)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	milestones := make([]workbook.Milestone, 0, 64)
	for rows.Next() {
		var m workbook.Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.ProjectName, &m.Sequence, &m.Label, &m.Department,
			&m.PlannedStart, &m.PlannedEnd, &m.ActualCompletion, &m.Person,
			&m.ExceptionType, &m.ImpactCycle, &m.ResponseMeasures, &m.SourceDate); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return milestones, nil
}

// ListImpactChanges returns impact-cycle history rows, newest first.
// milestoneID <= 0 matches every milestone.
func (s *SQLiteStore) ListImpactChanges(milestoneID int64) ([]workbook.ImpactChange, error) {
	query := `
SELECT id, milestone_id, project_id, old_impact_cycle, new_impact_cycle, old_raw, new_raw,
	had_prior_old, had_prior_new, modified_by, modified_at
FROM sys_milestone_impact_history`
	args := make([]any, 0, 1)
	if milestoneID > 0 {
		query += ` WHERE milestone_id = ?`
		args = append(args, milestoneID)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query impact history: %w", err)
	}
	defer rows.Close()

	changes := make([]workbook.ImpactChange, 0, 8)
	for rows.Next() {
		var c workbook.ImpactChange
		if err := rows.Scan(&c.ID, &c.MilestoneID, &c.ProjectID, &c.Old, &c.New, &c.OldRaw, &c.NewRaw,
			&c.HadPriorOld, &c.HadPriorNew, &c.ModifiedBy, &c.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan impact change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate impact history: %w", err)
	}
	return changes, nil
}

// Purge removes all imported data. Milestones cascade with their projects;
// one DELETE change record is written per project so the removal is
// traceable. The change log itself is kept.
func (s *SQLiteStore) Purge(actor string) (map[string]int, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, 5)
	batchID := uuid.New()
	// Milestones go first so their count is reported even though the
	// project cascade would remove them anyway.
	for _, table := range []string{
		workbook.TableMilestone,
		workbook.TableProject,
		workbook.TableProcessEntry,
		workbook.TableDeptLoad,
		workbook.TableOperatorDetail,
	} {
		res, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s;`, table))
		if err != nil {
			return counts, fmt.Errorf("purge %s: %w", table, err)
		}
		deleted, err := res.RowsAffected()
		if err == nil {
			counts[table] = int(deleted)
		}
	}

	for _, p := range projects {
		rec := audit.Record{
			BatchID:   batchID,
			Table:     workbook.TableProject,
			RecordID:  p.ID,
			Operation: audit.OpDelete,
			OldData: audit.Snapshot{
				"project_name":  p.Name,
				"product_name":  p.ProductName,
				"customer_name": p.CustomerName,
				"order_status":  p.OrderStatus,
			},
			Actor:    actor,
			LoggedAt: time.Now().UTC(),
		}
		if err := s.Append(rec); err != nil {
			return counts, err
		}
	}
	return counts, nil
}
