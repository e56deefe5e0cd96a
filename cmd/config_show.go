package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planimport/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  planimport config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("source.directory: %s\n", cfg.Source.Directory)
			fmt.Printf("import.db_path: %s\n", cfg.Import.DBPath)
			fmt.Printf("import.actor: %s\n", cfg.Import.Actor)
			fmt.Printf("import.mode: %s\n", cfg.Import.Mode)
			fmt.Printf("rules: %d\n", len(cfg.Rules))
			for i, rule := range cfg.Rules {
				fmt.Printf("rules[%d].name: %s\n", i, rule.Name)
				fmt.Printf("rules[%d].file_template: %s\n", i, rule.FileTemplate)
				fmt.Printf("rules[%d].document: %s\n", i, rule.Document)
			}
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
