// Package reconcile decides insert-vs-update for workbook candidates
// against the relational store, one transaction per batch, with change-log
// capture of every write.
package reconcile

import (
	"fmt"
	"log"
	"time"

	"planimport/audit"
	"planimport/workbook"
)

// Engine reconciles candidate batches against the store. It assumes
// single-writer ingestion: parent overwrite is last-writer-wins with no
// optimistic-concurrency check.
type Engine struct {
	store Store
	log   audit.Logger
	actor string
	mode  Mode
	warnf func(format string, args ...any)
}

type Options struct {
	Actor string
	Mode  Mode
	// Warnf receives change-log write failures; defaults to log.Printf.
	Warnf func(format string, args ...any)
}

func New(store Store, logger audit.Logger, opts Options) *Engine {
	engine := &Engine{
		store: store,
		log:   logger,
		actor: opts.Actor,
		mode:  opts.Mode,
		warnf: opts.Warnf,
	}
	if engine.actor == "" {
		engine.actor = "importer"
	}
	if engine.mode == "" {
		engine.mode = ModeBestEffort
	}
	if engine.warnf == nil {
		engine.warnf = log.Printf
	}
	return engine
}

// ReconcilePlan reconciles one plan workbook's project and milestone
// candidates. Failures carried in from classification/splitting are kept
// in the result. Projects resolve by business key (name); milestones by
// resolved project id plus label.
func (e *Engine) ReconcilePlan(projects []workbook.Project, milestones []workbook.Milestone, carried []workbook.Failure) (*Result, error) {
	result := newResult()
	result.Failed = append(result.Failed, carried...)

	tx, err := e.store.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin batch transaction: %w", err)
	}

	var pending []audit.Record

	// Parent resolution: overwrite-or-stage per candidate, then one bulk
	// insert so children can resolve their parent ids.
	resolvedID := make(map[string]int64, len(projects))
	stagedProjects := make([]workbook.Project, 0, len(projects))
	for _, project := range projects {
		existing, found, err := tx.FindProjectByName(project.Name)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("look up project %q: %w", project.Name, err)
		}
		if !found {
			stagedProjects = append(stagedProjects, project)
			continue
		}

		project.ID = existing.ID
		if err := tx.UpdateProject(project); err != nil {
			if abortErr := e.rowFailure(result, tx, workbook.Failure{
				Record: project.Name,
				Reason: workbook.ReasonPersistenceFailure,
				Detail: err.Error(),
			}, err); abortErr != nil {
				return nil, abortErr
			}
			continue
		}
		resolvedID[project.Name] = existing.ID
		result.recordUpdate(workbook.TableProject, existing.ID, project.Name)
		// A refresh that changed nothing leaves no change-log trace.
		if before, after := projectSnapshot(existing), projectSnapshot(project); !after.Equal(before) {
			pending = append(pending, e.changeRecord(result, workbook.TableProject, existing.ID,
				audit.OpUpdate, before, after))
		}
	}

	insertedProjects, err := tx.InsertProjects(stagedProjects)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert projects: %w", err)
	}
	for _, project := range insertedProjects {
		resolvedID[project.Name] = project.ID
		result.recordInsert(workbook.TableProject, project.ID, project.Name)
		pending = append(pending, e.changeRecord(result, workbook.TableProject, project.ID,
			audit.OpInsert, nil, projectSnapshot(project)))
	}

	// Ordering check and sequence assignment per parent.
	sequenced := sequenceMilestones(milestones, result)

	// Child resolution by (project id, label).
	stagedMilestones := make([]workbook.Milestone, 0, len(sequenced))
	for _, milestone := range sequenced {
		projectID, ok := resolvedID[milestone.ProjectName]
		if !ok {
			result.Failed = append(result.Failed, workbook.Failure{
				Record: milestone.Label,
				Reason: workbook.ReasonUnresolvedParent,
				Detail: fmt.Sprintf("project %q was not persisted", milestone.ProjectName),
			})
			continue
		}
		milestone.ProjectID = projectID

		existing, found, err := tx.FindMilestone(projectID, milestone.Label)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("look up milestone %q: %w", milestone.Label, err)
		}
		if !found {
			stagedMilestones = append(stagedMilestones, milestone)
			continue
		}

		milestone.ID = existing.ID
		if err := tx.UpdateMilestone(milestone); err != nil {
			if abortErr := e.rowFailure(result, tx, workbook.Failure{
				Record: milestone.Label,
				Reason: workbook.ReasonPersistenceFailure,
				Detail: err.Error(),
			}, err); abortErr != nil {
				return nil, abortErr
			}
			continue
		}
		result.recordUpdate(workbook.TableMilestone, existing.ID, milestone.Label)
		if before, after := milestoneSnapshot(existing), milestoneSnapshot(milestone); !after.Equal(before) {
			pending = append(pending, e.changeRecord(result, workbook.TableMilestone, existing.ID,
				audit.OpUpdate, before, after))
		}

		if workbook.ImpactChanged(existing.ImpactCycle, milestone.ImpactCycle) {
			change := impactChange(existing, milestone, e.actor)
			if err := tx.InsertImpactChange(change); err != nil {
				if abortErr := e.rowFailure(result, tx, workbook.Failure{
					Record: milestone.Label,
					Reason: workbook.ReasonPersistenceFailure,
					Detail: err.Error(),
				}, err); abortErr != nil {
					return nil, abortErr
				}
				continue
			}
			result.ImpactChanges++
		}
	}

	insertedMilestones, err := tx.InsertMilestones(stagedMilestones)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("insert milestones: %w", err)
	}
	for _, milestone := range insertedMilestones {
		result.recordInsert(workbook.TableMilestone, milestone.ID, milestone.Label)
		pending = append(pending, e.changeRecord(result, workbook.TableMilestone, milestone.ID,
			audit.OpInsert, nil, milestoneSnapshot(milestone)))
	}

	return e.finish(result, tx, pending)
}

// finish applies the commit policy and flushes buffered change records.
// Change records are written outside the batch transaction so an audit
// failure can never roll back the primary writes.
func (e *Engine) finish(result *Result, tx Tx, pending []audit.Record) (*Result, error) {
	if result.written() == 0 && len(result.Failed) > 0 {
		_ = tx.Rollback()
		result.Success = false
		result.Message = fmt.Sprintf("no rows succeeded; batch rolled back (%d failed)", len(result.Failed))
		return result, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	for _, rec := range pending {
		if err := e.log.Append(rec); err != nil {
			e.warnf("change log write failed for %s:%d: %v", rec.Table, rec.RecordID, err)
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("inserted %d, updated %d, failed %d",
		result.InsertedTotal(), result.UpdatedTotal(), len(result.Failed))
	return result, nil
}

// rowFailure records one row's persistence failure, or aborts the batch in
// all-or-nothing mode.
func (e *Engine) rowFailure(result *Result, tx Tx, failure workbook.Failure, cause error) error {
	if e.mode == ModeAllOrNothing {
		_ = tx.Rollback()
		return fmt.Errorf("batch aborted on row failure: %w", cause)
	}
	result.Failed = append(result.Failed, failure)
	return nil
}

func (e *Engine) changeRecord(result *Result, table string, recordID int64, op audit.Operation, oldData, newData audit.Snapshot) audit.Record {
	return audit.Record{
		BatchID:   result.BatchID,
		Table:     table,
		RecordID:  recordID,
		Operation: op,
		OldData:   oldData,
		NewData:   newData,
		Actor:     e.actor,
		LoggedAt:  time.Now().UTC(),
	}
}

func impactChange(existing, incoming workbook.Milestone, actor string) workbook.ImpactChange {
	oldVal, oldOK := workbook.ParseImpactCycle(existing.ImpactCycle)
	newVal, newOK := workbook.ParseImpactCycle(incoming.ImpactCycle)
	return workbook.ImpactChange{
		MilestoneID: existing.ID,
		ProjectID:   existing.ProjectID,
		OldRaw:      existing.ImpactCycle,
		NewRaw:      incoming.ImpactCycle,
		Old:         oldVal,
		New:         newVal,
		HadPriorOld: oldOK,
		HadPriorNew: newOK,
		ModifiedBy:  actor,
	}
}
