package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeySourceDirectory = "source.directory"
	KeyImportDBPath    = "import.db_path"
	KeyImportActor     = "import.actor"
	KeyImportMode      = "import.mode"
	KeyRules           = "rules"
)

type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Import ImportConfig `mapstructure:"import" validate:"required"`
	Rules  []Rule       `mapstructure:"rules"`
}

type SourceConfig struct {
	Directory string `mapstructure:"directory"`
}

type ImportConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
	Actor  string `mapstructure:"actor"`
	Mode   string `mapstructure:"mode" validate:"omitempty,oneof=best_effort all_or_nothing"`
}

// Rule routes matching workbook filenames to a document type.
type Rule struct {
	Name         string `mapstructure:"name"`
	FileTemplate string `mapstructure:"file_template"`
	Document     string `mapstructure:"document"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# planimport configuration
source:
  directory: "."

import:
  db_path: "planimport.db"
  actor: "importer"
  mode: "best_effort"

rules:
  - name: "plan exports"
    file_template: "项目关键里程碑节点计划"
    document: "plan"
  - name: "process logs"
    file_template: "流程处理"
    document: "oplog"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateRules(cfg.Rules); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySourceDirectory, ".")
	v.SetDefault(KeyImportDBPath, "planimport.db")
	v.SetDefault(KeyImportActor, "importer")
	v.SetDefault(KeyImportMode, "best_effort")
	v.SetDefault(KeyRules, []map[string]any{})
}

func validateRules(rules []Rule) error {
	validDocuments := map[string]bool{
		"plan":  true,
		"oplog": true,
	}
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return fmt.Errorf("validation failed: rules[%d].name is required", i)
		}
		key := strings.ToLower(name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate rule name %q", name)
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(rule.FileTemplate) == "" {
			return fmt.Errorf("validation failed: rules[%d].file_template is required", i)
		}
		document := strings.ToLower(strings.TrimSpace(rule.Document))
		if document == "" {
			return fmt.Errorf("validation failed: rules[%d].document is required", i)
		}
		if !validDocuments[document] {
			return fmt.Errorf(
				"validation failed: rules[%d].document %q is not supported (valid: plan, oplog)",
				i,
				rule.Document,
			)
		}
	}
	return nil
}

// DocumentForFile returns the document type routed for a workbook filename,
// matching the first rule whose file_template is a substring of the name.
// Files with no matching rule default to the plan document.
func (c *Config) DocumentForFile(name string) string {
	for _, rule := range c.Rules {
		if strings.Contains(name, rule.FileTemplate) {
			return strings.ToLower(strings.TrimSpace(rule.Document))
		}
	}
	return "plan"
}
