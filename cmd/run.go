package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"planimport/audit"
	"planimport/config"
	"planimport/importer"
	"planimport/reconcile"
	"planimport/storage"
)

// fileResult is one workbook's import outcome, shared by import and batch.
type fileResult struct {
	File     string
	Document string
	RowsRead int
	Result   *reconcile.Result
}

func openEngine(dbPath, actor, modeValue string) (*storage.SQLiteStore, *reconcile.Engine, error) {
	mode, err := reconcile.ParseMode(modeValue)
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.New(store, store, reconcile.Options{
		Actor: actor,
		Mode:  mode,
	})
	return store, engine, nil
}

// importWorkbook runs the full pipeline for one workbook: read, normalize,
// classify, split, reconcile.
func importWorkbook(engine *reconcile.Engine, path, document string, headerRow int) (*fileResult, error) {
	switch document {
	case "plan":
		batch, err := importer.ReadPlan(path, importer.ReadOptions{HeaderRow: headerRow})
		if err != nil {
			return nil, err
		}
		result, err := engine.ReconcilePlan(batch.Projects, batch.Milestones, batch.Failed)
		if err != nil {
			return nil, err
		}
		return &fileResult{File: path, Document: document, RowsRead: batch.RowsRead, Result: result}, nil
	case "oplog":
		batch, err := importer.ReadProcessLog(path)
		if err != nil {
			return nil, err
		}
		result, err := engine.ReconcileProcessLog(batch.Entries, batch.DeptLoads, batch.OperatorDetails)
		if err != nil {
			return nil, err
		}
		return &fileResult{File: path, Document: document, RowsRead: batch.RowsRead, Result: result}, nil
	default:
		return nil, fmt.Errorf("unsupported document type %q (supported: plan, oplog)", document)
	}
}

// resolveDocument maps the --type flag or config routing rules to a
// document type for one workbook.
func resolveDocument(flagValue string, cfg *config.Config, path string) string {
	document := strings.ToLower(strings.TrimSpace(flagValue))
	if document != "" && document != "auto" {
		return document
	}
	return cfg.DocumentForFile(filepath.Base(path))
}

func printFileResult(fr *fileResult) {
	result := fr.Result
	fmt.Printf("Import completed. File: %s, Type: %s, Batch: %s\n", fr.File, fr.Document, result.BatchID)
	fmt.Printf("  Rows read: %d, Inserted: %d, Updated: %d, Impact changes: %d, Failed: %d\n",
		fr.RowsRead, result.InsertedTotal(), result.UpdatedTotal(), result.ImpactChanges, len(result.Failed))
	for _, rec := range result.Imported {
		fmt.Printf("  %s %s #%d %s\n", rec.Operation, rec.Table, rec.RecordID, rec.Key)
	}

	for _, warning := range result.Inconsistencies {
		fmt.Fprintf(os.Stderr, "  warning (%s): %s\n", warning.Reason, warning.Detail)
	}
	for _, failure := range result.Failed {
		fmt.Fprintf(os.Stderr, "  failed row %d (%s): %s: %s\n", failure.Row, failure.Record, failure.Reason, failure.Detail)
	}
}

func printChangeRecord(rec audit.Record) {
	oldData, _ := rec.OldData.JSON()
	newData, _ := rec.NewData.JSON()
	fmt.Printf("%s %s #%d %s by %s\n", rec.LoggedAt.Format("2006-01-02 15:04:05"), rec.Table, rec.RecordID, rec.Operation, rec.Actor)
	if oldData != "" && oldData != "{}" {
		fmt.Printf("  old: %s\n", oldData)
	}
	if newData != "" && newData != "{}" {
		fmt.Printf("  new: %s\n", newData)
	}
}
