package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"planimport/config"
)

var (
	importInputs    []string
	importType      string
	importDBPath    string
	importActor     string
	importMode      string
	importHeaderRow int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import plan/process-log workbooks into a local SQLite database",
	Long: `Read workbook files, normalize each row, and reconcile results into SQLite.

Document type "plan" reads a project milestone plan export: header aliases
are resolved, parent fields are forward-filled down merged-cell gaps, and
rows split into project and milestone candidates. Document type "oplog"
reads a three-sheet process-log export.

When --type is omitted (or "auto"), the type is routed per file through the
configuration's rules (file_template match); unmatched files import as plan.

Existing records matched by business key are updated in place, new records
are inserted, and every write is captured in the change log.`,
	Example: `
  # Import one plan workbook
  planimport import -i 项目关键里程碑节点计划2026-01-15.xlsx --type plan --db ./planimport.db

  # Import a process-log workbook
  planimport import -i 流程处理20260115.xlsx --type oplog

  # Import several files, routed by config rules
  planimport import -i plan-2026-01-15.xlsx -i 流程处理20260115.xlsx

  # Abort the whole batch on the first row failure
  planimport import -i plan-2026-01-15.xlsx --mode all_or_nothing

  # Import with custom config file
  planimport --configFile ./custom-planimport.yaml import -i ./plan.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, engine, err := openEngine(
			resolveValue(importDBPath, cfg.Import.DBPath),
			resolveValue(importActor, cfg.Import.Actor),
			resolveValue(importMode, cfg.Import.Mode),
		)
		if err != nil {
			return err
		}
		defer store.Close()

		for _, input := range importInputs {
			document := resolveDocument(importType, cfg, input)
			fr, err := importWorkbook(engine, input, document, importHeaderRow)
			if err != nil {
				return fmt.Errorf("import %s: %w", input, err)
			}
			printFileResult(fr)
		}

		return nil
	},
}

func resolveValue(flagValue, configValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return configValue
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input workbook path (repeatable)")
	importCmd.Flags().StringVarP(&importType, "type", "t", "auto", "Document type: plan|oplog|auto (auto routes via config rules)")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to local SQLite database (default from config import.db_path)")
	importCmd.Flags().StringVar(&importActor, "actor", "", "Actor recorded in the change log (default from config import.actor)")
	importCmd.Flags().StringVar(&importMode, "mode", "", "Commit policy: best_effort|all_or_nothing (default from config import.mode)")
	importCmd.Flags().IntVar(&importHeaderRow, "header-row", 1, "Zero-based header row index for plan workbooks (plan exports carry a title banner on row 0)")

	_ = importCmd.MarkFlagRequired("input")
}
