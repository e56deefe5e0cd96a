package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planimport/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "planimport",
	Short: "Import project-plan and process-log spreadsheets into a local SQLite database.",
	Long: `
**********************************************
*              PLAN IMPORT                   *
**********************************************

This CLI reads spreadsheet exports (project milestone plans, process logs),
normalizes their rows, and reconciles them into a local SQLite database:
existing records matched by business key are updated in place, new records
are inserted, and every write lands in a change log.

Supported input formats:
- Excel: .xlsx, .xlsm, .xls
`,
	Example: `
  # Create configuration file
  planimport config create

  # Import one plan workbook
  planimport import -i 项目关键里程碑节点计划2026-01-15.xlsx --type plan

  # Import a process-log workbook
  planimport import -i 流程处理20260115.xlsx --type oplog

  # Import every workbook in a directory
  planimport batch ./exports

  # Import only the workbook dated closest to today
  planimport batch ./exports --latest

  # Export the stored plan
  planimport export --mode plan --output ./plan.csv

  # Show the change log
  planimport history --table sys_project_milestone --limit 20
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.planimport.yaml, then ./.planimport.yaml)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	return cmd.Name() == "import" || cmd.Name() == "batch"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".planimport")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: planimport config create")
	}
}
