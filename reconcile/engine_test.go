package reconcile

import (
	"errors"
	"testing"

	"planimport/audit"
	"planimport/workbook"
)

// memStore is an in-memory Store for engine tests. A single instance is
// reused across batches so insert-then-update sequences can be exercised.
type memStore struct {
	nextID     int64
	projects   map[string]workbook.Project
	milestones map[int64]map[string]workbook.Milestone
	impacts    []workbook.ImpactChange

	failUpdateMilestone string

	committed  int
	rolledBack int
}

func newMemStore() *memStore {
	return &memStore{
		projects:   make(map[string]workbook.Project),
		milestones: make(map[int64]map[string]workbook.Milestone),
	}
}

func (s *memStore) Begin() (Tx, error) {
	return &memTx{store: s}, nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) Commit() error {
	t.store.committed++
	return nil
}

func (t *memTx) Rollback() error {
	t.store.rolledBack++
	return nil
}

func (t *memTx) FindProjectByName(name string) (workbook.Project, bool, error) {
	p, ok := t.store.projects[name]
	return p, ok, nil
}

func (t *memTx) InsertProjects(projects []workbook.Project) ([]workbook.Project, error) {
	inserted := make([]workbook.Project, 0, len(projects))
	for _, p := range projects {
		t.store.nextID++
		p.ID = t.store.nextID
		t.store.projects[p.Name] = p
		inserted = append(inserted, p)
	}
	return inserted, nil
}

func (t *memTx) UpdateProject(project workbook.Project) error {
	t.store.projects[project.Name] = project
	return nil
}

func (t *memTx) FindMilestone(projectID int64, label string) (workbook.Milestone, bool, error) {
	m, ok := t.store.milestones[projectID][label]
	return m, ok, nil
}

func (t *memTx) InsertMilestones(milestones []workbook.Milestone) ([]workbook.Milestone, error) {
	inserted := make([]workbook.Milestone, 0, len(milestones))
	for _, m := range milestones {
		t.store.nextID++
		m.ID = t.store.nextID
		if t.store.milestones[m.ProjectID] == nil {
			t.store.milestones[m.ProjectID] = make(map[string]workbook.Milestone)
		}
		t.store.milestones[m.ProjectID][m.Label] = m
		inserted = append(inserted, m)
	}
	return inserted, nil
}

func (t *memTx) UpdateMilestone(milestone workbook.Milestone) error {
	if t.store.failUpdateMilestone != "" && milestone.Label == t.store.failUpdateMilestone {
		return errors.New("simulated constraint violation")
	}
	t.store.milestones[milestone.ProjectID][milestone.Label] = milestone
	return nil
}

func (t *memTx) InsertImpactChange(change workbook.ImpactChange) error {
	t.store.impacts = append(t.store.impacts, change)
	return nil
}

func (t *memTx) FindProcessEntry(nodeID, processID string) (workbook.ProcessEntry, bool, error) {
	return workbook.ProcessEntry{}, false, nil
}

func (t *memTx) InsertProcessEntries(entries []workbook.ProcessEntry) ([]workbook.ProcessEntry, error) {
	inserted := make([]workbook.ProcessEntry, 0, len(entries))
	for _, e := range entries {
		t.store.nextID++
		e.ID = t.store.nextID
		inserted = append(inserted, e)
	}
	return inserted, nil
}

func (t *memTx) UpdateProcessEntry(entry workbook.ProcessEntry) error { return nil }

func (t *memTx) FindDeptLoad(department, personnelCount string) (workbook.DeptLoad, bool, error) {
	return workbook.DeptLoad{}, false, nil
}

func (t *memTx) InsertDeptLoads(loads []workbook.DeptLoad) ([]workbook.DeptLoad, error) {
	inserted := make([]workbook.DeptLoad, 0, len(loads))
	for _, l := range loads {
		t.store.nextID++
		l.ID = t.store.nextID
		inserted = append(inserted, l)
	}
	return inserted, nil
}

func (t *memTx) UpdateDeptLoad(load workbook.DeptLoad) error { return nil }

func (t *memTx) FindOperatorDetail(operator, department string) (workbook.OperatorDetail, bool, error) {
	return workbook.OperatorDetail{}, false, nil
}

func (t *memTx) InsertOperatorDetails(details []workbook.OperatorDetail) ([]workbook.OperatorDetail, error) {
	inserted := make([]workbook.OperatorDetail, 0, len(details))
	for _, d := range details {
		t.store.nextID++
		d.ID = t.store.nextID
		inserted = append(inserted, d)
	}
	return inserted, nil
}

func (t *memTx) UpdateOperatorDetail(detail workbook.OperatorDetail) error { return nil }

// memLogger collects change records.
type memLogger struct {
	records []audit.Record
	fail    bool
}

func (l *memLogger) Append(rec audit.Record) error {
	if l.fail {
		return errors.New("log sink unavailable")
	}
	l.records = append(l.records, rec)
	return nil
}

func planFixture() ([]workbook.Project, []workbook.Milestone) {
	projects := []workbook.Project{
		{Name: "项目A", ProductName: "产品X", CustomerName: "客户A", SourceDate: "2026-01-15"},
	}
	milestones := []workbook.Milestone{
		{ProjectName: "项目A", Label: "图纸设计", PlannedStart: "2026-01-20", PlannedEnd: "2026-02-01", SourceDate: "2026-01-15"},
		{ProjectName: "项目A", Label: "样机验证", PlannedStart: "2026-02-02", PlannedEnd: "2026-02-20", ImpactCycle: "5", SourceDate: "2026-01-15"},
	}
	return projects, milestones
}

func TestReconcilePlan_InsertsThenUpdates(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	logger := &memLogger{}
	engine := New(store, logger, Options{Actor: "tester"})

	projects, milestones := planFixture()
	first, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !first.Success {
		t.Fatalf("expected success, got %q", first.Message)
	}
	if first.InsertedTotal() != 3 || first.UpdatedTotal() != 0 {
		t.Fatalf("expected 3 inserts on first run, got %d/%d", first.InsertedTotal(), first.UpdatedTotal())
	}

	// Second run with identical input must match everything by business key.
	projects, milestones = planFixture()
	second, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.InsertedTotal() != 0 || second.UpdatedTotal() != 3 {
		t.Fatalf("expected 3 updates on second run, got %d/%d", second.InsertedTotal(), second.UpdatedTotal())
	}
	if len(store.projects) != 1 {
		t.Fatalf("expected 1 stored project, got %d", len(store.projects))
	}
	if store.committed != 2 || store.rolledBack != 0 {
		t.Fatalf("unexpected tx counts: committed %d, rolled back %d", store.committed, store.rolledBack)
	}

	// The identical second run refreshed every row without changing values,
	// so only the first run's inserts show up in the change log.
	if len(logger.records) != 3 {
		t.Fatalf("expected 3 change records, got %d", len(logger.records))
	}
	for _, rec := range logger.records {
		if rec.Operation != audit.OpInsert {
			t.Fatalf("unexpected operation %q", rec.Operation)
		}
		if rec.Actor != "tester" {
			t.Fatalf("expected actor carried into change record, got %q", rec.Actor)
		}
		if rec.RecordID == 0 {
			t.Fatal("expected change record to carry the persisted id")
		}
	}
}

func TestReconcilePlan_EditedFieldWritesOneChangeRecord(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	logger := &memLogger{}
	engine := New(store, logger, Options{})

	projects, milestones := planFixture()
	if _, err := engine.ReconcilePlan(projects, milestones, nil); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	seeded := len(logger.records)

	projects, milestones = planFixture()
	milestones[1].PlannedEnd = "2026-02-25"
	result, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("edited run: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	written := logger.records[seeded:]
	if len(written) != 1 {
		t.Fatalf("expected exactly 1 change record, got %d", len(written))
	}
	rec := written[0]
	if rec.Operation != audit.OpUpdate || rec.Table != workbook.TableMilestone {
		t.Fatalf("unexpected change record: %+v", rec)
	}
	if rec.OldData["planned_end_time"] != "2026-02-20" || rec.NewData["planned_end_time"] != "2026-02-25" {
		t.Fatalf("unexpected snapshots: old=%v new=%v", rec.OldData, rec.NewData)
	}

	stored := store.milestones[store.projects["项目A"].ID]
	if stored["样机验证"].PlannedEnd != "2026-02-25" {
		t.Fatalf("expected stored value updated, got %q", stored["样机验证"].PlannedEnd)
	}
	if stored["图纸设计"].PlannedEnd != "2026-02-01" {
		t.Fatalf("expected untouched sibling, got %q", stored["图纸设计"].PlannedEnd)
	}
}

func TestReconcilePlan_ListsImportedRecords(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{})

	projects, milestones := planFixture()
	first, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Imported) != 3 {
		t.Fatalf("expected 3 imported summaries, got %d", len(first.Imported))
	}
	byKey := make(map[string]RecordSummary, len(first.Imported))
	for _, rec := range first.Imported {
		if rec.Operation != audit.OpInsert {
			t.Fatalf("expected INSERT summary, got %+v", rec)
		}
		if rec.RecordID == 0 {
			t.Fatalf("expected persisted id on summary, got %+v", rec)
		}
		byKey[rec.Key] = rec
	}
	if byKey["项目A"].Table != workbook.TableProject {
		t.Fatalf("expected project summary, got %+v", byKey["项目A"])
	}
	if byKey["图纸设计"].Table != workbook.TableMilestone || byKey["样机验证"].Table != workbook.TableMilestone {
		t.Fatalf("expected milestone summaries, got %v", byKey)
	}

	// A refresh is still reported per record even when no field changed.
	projects, milestones = planFixture()
	second, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Imported) != 3 {
		t.Fatalf("expected 3 imported summaries on refresh, got %d", len(second.Imported))
	}
	for _, rec := range second.Imported {
		if rec.Operation != audit.OpUpdate {
			t.Fatalf("expected UPDATE summary on refresh, got %+v", rec)
		}
	}
}

func TestReconcilePlan_AssignsSequenceByPlannedStart(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{})

	projects := []workbook.Project{{Name: "项目A"}}
	milestones := []workbook.Milestone{
		{ProjectName: "项目A", Label: "后节点", PlannedStart: "2026-03-01"},
		{ProjectName: "项目A", Label: "先节点", PlannedStart: "2026-01-01"},
		{ProjectName: "项目A", Label: "未排期"},
	}

	if _, err := engine.ReconcilePlan(projects, milestones, nil); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	stored := store.milestones[store.projects["项目A"].ID]
	if stored["先节点"].Sequence != 1 {
		t.Fatalf("expected earliest milestone first, got sequence %d", stored["先节点"].Sequence)
	}
	if stored["后节点"].Sequence != 2 {
		t.Fatalf("expected later milestone second, got sequence %d", stored["后节点"].Sequence)
	}
	if stored["未排期"].Sequence != 3 {
		t.Fatalf("expected undated milestone last, got sequence %d", stored["未排期"].Sequence)
	}
}

func TestReconcilePlan_ReportsOverlapInconsistency(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{})

	projects := []workbook.Project{{Name: "项目A"}}
	milestones := []workbook.Milestone{
		{ProjectName: "项目A", Label: "图纸设计", PlannedStart: "2026-01-01", PlannedEnd: "2026-02-15"},
		{ProjectName: "项目A", Label: "样机验证", PlannedStart: "2026-02-01", PlannedEnd: "2026-03-01"},
	}

	result, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !result.Success {
		t.Fatalf("overlap is a warning, not a failure: %q", result.Message)
	}
	if len(result.Inconsistencies) != 1 {
		t.Fatalf("expected 1 inconsistency, got %v", result.Inconsistencies)
	}
	warning := result.Inconsistencies[0]
	if warning.Reason != workbook.ReasonValidationInconsistency {
		t.Fatalf("expected validation-inconsistency reason, got %q", warning.Reason)
	}
	if warning.Record != "图纸设计" {
		t.Fatalf("expected offending milestone tagged, got %q", warning.Record)
	}
}

func TestReconcilePlan_ImpactChangeHistory(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{Actor: "tester"})

	projects := []workbook.Project{{Name: "项目A"}}
	base := []workbook.Milestone{{ProjectName: "项目A", Label: "样机验证"}}
	if _, err := engine.ReconcilePlan(projects, base, nil); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	// Empty -> "5" is a change even though both could read as numbers.
	changed := []workbook.Milestone{{ProjectName: "项目A", Label: "样机验证", ImpactCycle: "5"}}
	result, err := engine.ReconcilePlan([]workbook.Project{{Name: "项目A"}}, changed, nil)
	if err != nil {
		t.Fatalf("changed run: %v", err)
	}
	if result.ImpactChanges != 1 {
		t.Fatalf("expected 1 impact change, got %d", result.ImpactChanges)
	}
	if len(store.impacts) != 1 {
		t.Fatalf("expected 1 stored impact change, got %d", len(store.impacts))
	}
	change := store.impacts[0]
	if change.HadPriorOld || !change.HadPriorNew || change.New != 5 {
		t.Fatalf("unexpected impact change: %+v", change)
	}
	if change.ModifiedBy != "tester" {
		t.Fatalf("expected actor on impact change, got %q", change.ModifiedBy)
	}

	// Same value again records nothing.
	same := []workbook.Milestone{{ProjectName: "项目A", Label: "样机验证", ImpactCycle: "5"}}
	result, err = engine.ReconcilePlan([]workbook.Project{{Name: "项目A"}}, same, nil)
	if err != nil {
		t.Fatalf("same run: %v", err)
	}
	if result.ImpactChanges != 0 || len(store.impacts) != 1 {
		t.Fatalf("expected no further impact change, got %d (%d stored)", result.ImpactChanges, len(store.impacts))
	}
}

func TestReconcilePlan_BestEffortKeepsGoodRows(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{Mode: ModeBestEffort})

	projects, milestones := planFixture()
	if _, err := engine.ReconcilePlan(projects, milestones, nil); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	store.failUpdateMilestone = "样机验证"
	projects, milestones = planFixture()
	result, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("best-effort run: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected partial success, got %q", result.Message)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failed row, got %d", len(result.Failed))
	}
	if result.Failed[0].Reason != workbook.ReasonPersistenceFailure {
		t.Fatalf("expected persistence failure, got %q", result.Failed[0].Reason)
	}
	if result.UpdatedTotal() != 2 {
		t.Fatalf("expected 2 surviving updates, got %d", result.UpdatedTotal())
	}
}

func TestReconcilePlan_AllOrNothingAborts(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{Mode: ModeAllOrNothing})

	projects, milestones := planFixture()
	if _, err := engine.ReconcilePlan(projects, milestones, nil); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	store.failUpdateMilestone = "样机验证"
	committedBefore := store.committed
	projects, milestones = planFixture()
	if _, err := engine.ReconcilePlan(projects, milestones, nil); err == nil {
		t.Fatal("expected batch abort error")
	}
	if store.committed != committedBefore {
		t.Fatal("expected no commit after abort")
	}
	if store.rolledBack == 0 {
		t.Fatal("expected rollback on abort")
	}
}

func TestReconcilePlan_RollsBackWhenNothingSucceeded(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	engine := New(store, &memLogger{}, Options{})

	carried := []workbook.Failure{
		{Row: 4, Record: "孤儿节点", Reason: workbook.ReasonUnresolvedParent, Detail: "no parent"},
	}
	result, err := engine.ReconcilePlan(nil, nil, carried)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Success {
		t.Fatal("expected failed batch")
	}
	if store.committed != 0 || store.rolledBack != 1 {
		t.Fatalf("unexpected tx counts: committed %d, rolled back %d", store.committed, store.rolledBack)
	}
}

func TestReconcilePlan_AuditFailureDoesNotFailBatch(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	logger := &memLogger{fail: true}
	var warnings int
	engine := New(store, logger, Options{
		Warnf: func(format string, args ...any) { warnings++ },
	})

	projects, milestones := planFixture()
	result, err := engine.ReconcilePlan(projects, milestones, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite audit failures, got %q", result.Message)
	}
	if store.committed != 1 {
		t.Fatalf("expected commit, got %d", store.committed)
	}
	if warnings != 3 {
		t.Fatalf("expected 3 warnings, got %d", warnings)
	}
}

func TestReconcileProcessLog_Inserts(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	logger := &memLogger{}
	engine := New(store, logger, Options{})

	entries := []workbook.ProcessEntry{{NodeID: "n1", ProcessID: "p1", Title: "审批"}}
	loads := []workbook.DeptLoad{{Department: "研发部", PersonnelCount: "12", TimeoutCount: "3"}}
	details := []workbook.OperatorDetail{{Operator: "王工", Department: "研发部", Quantity: "7"}}

	result, err := engine.ReconcileProcessLog(entries, loads, details)
	if err != nil {
		t.Fatalf("reconcile process log: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.Inserted[workbook.TableProcessEntry] != 1 ||
		result.Inserted[workbook.TableDeptLoad] != 1 ||
		result.Inserted[workbook.TableOperatorDetail] != 1 {
		t.Fatalf("unexpected insert counts: %v", result.Inserted)
	}
	if len(logger.records) != 3 {
		t.Fatalf("expected 3 change records, got %d", len(logger.records))
	}
	if len(result.Imported) != 3 {
		t.Fatalf("expected 3 imported summaries, got %d", len(result.Imported))
	}
	keys := make(map[string]bool, len(result.Imported))
	for _, rec := range result.Imported {
		keys[rec.Key] = true
	}
	if !keys["n1/p1"] || !keys["研发部"] || !keys["王工"] {
		t.Fatalf("unexpected summary keys: %v", keys)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if mode, err := ParseMode(""); err != nil || mode != ModeBestEffort {
		t.Fatalf("expected default best_effort, got %q (%v)", mode, err)
	}
	if mode, err := ParseMode(" All_Or_Nothing "); err != nil || mode != ModeAllOrNothing {
		t.Fatalf("expected all_or_nothing, got %q (%v)", mode, err)
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
