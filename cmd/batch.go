package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"planimport/config"
	"planimport/importer"
)

var (
	batchLatest    bool
	batchType      string
	batchDBPath    string
	batchActor     string
	batchMode      string
	batchHeaderRow int
)

// Batch exit codes, distinguishable by calling scripts. Fatal errors
// (config, database) exit 1 through the normal cobra error path.
const (
	exitSuccess         = 0
	exitNoFiles         = 2
	exitPartialFailures = 3
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Import every workbook of a directory",
	Long: `Import all spreadsheet files of a directory in one run. Editor lock
files (~$...) are skipped. When the directory argument is omitted, the
configuration's source.directory is used.

With --latest, only the single workbook whose filename date is closest to
today is imported.

The exit code reports the outcome:
  0  every file imported successfully
  2  no workbooks found in the directory
  3  one or more files failed
  1  fatal error before any file was processed (config, database)`,
	Example: `
  # Import every workbook in a directory
  planimport batch ./exports

  # Import the directory configured as source.directory
  planimport batch

  # Import only the workbook dated closest to today
  planimport batch ./exports --latest
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		dir := cfg.Source.Directory
		if len(args) == 1 {
			dir = args[0]
		}

		var paths []string
		if batchLatest {
			closest, fileDate, err := importer.ClosestWorkbook(dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Selected workbook dated %s: %s\n", fileDate.Format("2006-01-02"), closest)
			paths = []string{closest}
		} else {
			paths, err = importer.ListWorkbooks(dir)
			if err != nil {
				return err
			}
		}
		if len(paths) == 0 {
			fmt.Fprintf(os.Stderr, "No workbooks found in %s\n", dir)
			os.Exit(batchExitCode(0, 0))
		}

		store, engine, err := openEngine(
			resolveValue(batchDBPath, cfg.Import.DBPath),
			resolveValue(batchActor, cfg.Import.Actor),
			resolveValue(batchMode, cfg.Import.Mode),
		)
		if err != nil {
			return err
		}

		succeeded, failed := 0, 0
		for _, path := range paths {
			document := resolveDocument(batchType, cfg, path)
			fr, err := importWorkbook(engine, path, document, batchHeaderRow)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "Import failed. File: %s: %v\n", path, err)
				continue
			}
			if fr.Result.Success {
				succeeded++
			} else {
				failed++
			}
			printFileResult(fr)
		}
		_ = store.Close()

		fmt.Printf("Batch completed. Files: %d, Succeeded: %d, Failed: %d\n", len(paths), succeeded, failed)
		if code := batchExitCode(len(paths), failed); code != exitSuccess {
			os.Exit(code)
		}
		return nil
	},
}

// batchExitCode maps the run's outcome to the batch exit code.
func batchExitCode(files, failed int) int {
	switch {
	case files == 0:
		return exitNoFiles
	case failed > 0:
		return exitPartialFailures
	default:
		return exitSuccess
	}
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchLatest, "latest", false, "Import only the workbook whose filename date is closest to today")
	batchCmd.Flags().StringVarP(&batchType, "type", "t", "auto", "Document type: plan|oplog|auto (auto routes via config rules)")
	batchCmd.Flags().StringVar(&batchDBPath, "db", "", "Path to local SQLite database (default from config import.db_path)")
	batchCmd.Flags().StringVar(&batchActor, "actor", "", "Actor recorded in the change log (default from config import.actor)")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "Commit policy: best_effort|all_or_nothing (default from config import.mode)")
	batchCmd.Flags().IntVar(&batchHeaderRow, "header-row", 1, "Zero-based header row index for plan workbooks")
}
