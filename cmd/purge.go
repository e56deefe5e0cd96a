package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"planimport/storage"
)

var (
	purgeDBPath string
	purgeActor  string
	purgeYes    bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all imported data",
	Long: `Delete every imported record: projects (milestones cascade with them),
process-log entries, department loads, and operator details.

The change log is kept, and one DELETE record is written per removed
project so the purge itself stays traceable. Requires --yes.`,
	Example: `
  # Delete everything from the default database
  planimport purge --yes

  # Delete with an explicit actor in the change log
  planimport purge --yes --actor cleanup-job --db ./planimport.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYes {
			return fmt.Errorf("refusing to purge without --yes")
		}

		store, err := storage.OpenSQLite(purgeDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.Purge(purgeActor)
		if err != nil {
			return err
		}

		total := 0
		for table, n := range counts {
			fmt.Printf("Deleted %d row(s) from %s\n", n, table)
			total += n
		}
		fmt.Printf("Purge completed. Rows deleted: %d\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)

	purgeCmd.Flags().StringVar(&purgeDBPath, "db", "./planimport.db", "Path to local SQLite database")
	purgeCmd.Flags().StringVar(&purgeActor, "actor", "importer", "Actor recorded on the purge change records")
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "Confirm deletion")
}
