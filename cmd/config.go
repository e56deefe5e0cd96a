package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage planimport configuration file values.",
	Long: `Create and display the planimport configuration file.

The configuration stores application-wide values and filename routing rules:
- source.directory
- import.db_path / import.actor / import.mode
- rules[].file_template / document (plan|oplog)`,
	Example: `
  # Create default config in $HOME/.planimport.yaml
  planimport config create

  # Show active config and source file
  planimport config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
