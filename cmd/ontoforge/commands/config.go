package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ontoforge/ontoforge/config"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ontoforge configuration",
	Long: `Display and validate the ontoforge service configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (ONTOFORGE_* prefix)
3. Config file (--config, ./ontoforge.toml, ~/.config/ontoforge/ontoforge.toml)
4. Default values

Examples:
  ontoforge config show                 # Show resolved configuration
  ontoforge config show --format json   # Show configuration in JSON format
  ontoforge config validate             # Validate current configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration",
	Long: `Display the resolved ontoforge configuration from all sources.

Secret values (the webhook encryption key, store password, and GitHub
token) are redacted in the output.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the resolved ontoforge configuration is usable",
	RunE:  runConfigValidate,
}

var (
	configPath   string
	configFormat string
)

func init() {
	ConfigCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to ontoforge.toml (overrides search paths)")
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	redacted := redactSecrets(*cfg)

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# ontoforge configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(redacted)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# ontoforge configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

// redactSecrets replaces credential fields so config output never leaks
// the webhook encryption key or store credentials.
func redactSecrets(cfg config.Config) config.Config {
	if cfg.Security.WebhookEncryptionKey != "" {
		cfg.Security.WebhookEncryptionKey = "[redacted]"
	}
	if cfg.Store.Password != "" {
		cfg.Store.Password = "[redacted]"
	}
	if cfg.GitHub.Token != "" {
		cfg.GitHub.Token = "[redacted]"
	}
	return cfg
}
