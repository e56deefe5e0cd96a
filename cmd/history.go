package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"planimport/storage"
	"planimport/workbook"
)

var (
	historyDBPath    string
	historyTable     string
	historyLimit     int
	historyImpact    bool
	historyMilestone int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the change log",
	Long: `Print change-log entries, newest first. Every reconciled write is
recorded with its before/after field snapshot, batch id, and actor.

Filter by destination table with --table.

With --impact, print the impact-cycle history of milestones instead,
optionally narrowed to one milestone with --milestone.`,
	Example: `
  # Show the 20 most recent changes
  planimport history --limit 20

  # Show milestone changes only
  planimport history --table sys_project_milestone

  # Show all project changes
  planimport history --table sys_project --limit 0

  # Show every impact-cycle change
  planimport history --impact

  # Show one milestone's impact-cycle history
  planimport history --impact --milestone 12
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.OpenSQLite(historyDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if historyImpact || historyMilestone > 0 {
			changes, err := store.ListImpactChanges(historyMilestone)
			if err != nil {
				return err
			}
			for _, change := range changes {
				printImpactChange(change)
			}
			fmt.Printf("%d impact change(s)\n", len(changes))
			return nil
		}

		records, err := store.ListChangeRecords(historyTable, historyLimit)
		if err != nil {
			return err
		}

		for _, rec := range records {
			printChangeRecord(rec)
		}
		fmt.Printf("%d change record(s)\n", len(records))
		return nil
	},
}

func printImpactChange(change workbook.ImpactChange) {
	fmt.Printf("%s milestone #%d (project #%d) impact cycle: %s -> %s by %s\n",
		change.ModifiedAt, change.MilestoneID, change.ProjectID,
		impactValue(change.Old, change.HadPriorOld),
		impactValue(change.New, change.HadPriorNew),
		change.ModifiedBy)
}

// impactValue renders one side of an impact transition; an absent value is
// shown as (none) so it never reads as an explicit 0.
func impactValue(value int, present bool) string {
	if !present {
		return "(none)"
	}
	return strconv.Itoa(value)
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "./planimport.db", "Path to local SQLite database")
	historyCmd.Flags().StringVar(&historyTable, "table", "", "Filter by destination table name")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum records to show (0 = no limit)")
	historyCmd.Flags().BoolVar(&historyImpact, "impact", false, "Show impact-cycle history instead of the change log")
	historyCmd.Flags().Int64Var(&historyMilestone, "milestone", 0, "Limit impact history to one milestone id")
}
