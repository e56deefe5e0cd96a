package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"planimport/output"
	"planimport/storage"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored plan data from SQLite to CSV/Excel",
	Long: `Export reconciled data from SQLite.

Modes:
- plan (alias: milestones): one row per milestone with the owning
  project's columns repeated
- projects: the project table alone
- changelog: the change log, newest first

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export the plan to CSV
  planimport export --mode plan --db ./planimport.db --output ./plan.csv

  # Export the plan to Excel
  planimport export --mode plan --db ./planimport.db --output ./plan.xlsx

  # Export the change log
  planimport export --mode changelog --db ./planimport.db --output ./changes.csv

  # Force Excel format independent of extension
  planimport export --mode plan --format excel --db ./planimport.db --output ./plan.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		var dataset output.Dataset
		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "plan", "milestones":
			projects, err := store.ListProjects()
			if err != nil {
				return err
			}
			milestones, err := store.ListMilestones()
			if err != nil {
				return err
			}
			dataset = output.PlanDataset(projects, milestones)
		case "projects":
			projects, err := store.ListProjects()
			if err != nil {
				return err
			}
			dataset = output.ProjectDataset(projects)
		case "changelog":
			records, err := store.ListChangeRecords("", 0)
			if err != nil {
				return err
			}
			dataset = output.ChangeLogDataset(records)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: plan, milestones, projects, changelog)", exportMode)
		}

		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}
		if err := writer.Write(exportOutput, dataset); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Mode: %s, Format: %s, File: %s\n", len(dataset.Rows), mode, format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "plan", "Export mode: plan|milestones|projects|changelog")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./planimport.db", "Path to local SQLite database")

	_ = exportCmd.MarkFlagRequired("output")
}
