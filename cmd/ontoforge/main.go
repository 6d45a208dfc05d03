package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ontoforge/ontoforge/cmd/ontoforge/commands"
	"github.com/ontoforge/ontoforge/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ontoforge",
	Short: "ontoforge - webhook-driven ontology ingestion service",
	Long: `ontoforge ingests ontology documents from source repositories into a
shared semantic store. Repository webhooks trigger a durable pipeline
that fetches, parses, validates and publishes each ontology version
into its own named graph, leaving an auditable event ledger behind.

Available commands:
  serve    - Start the webhook server and ingestion workers
  config   - Inspect the resolved configuration
  secret   - Encrypt or decrypt webhook secrets with the vault key
  version  - Show version information

Examples:
  ontoforge serve                      # Start the service
  ontoforge config show                # Show resolved configuration
  ontoforge secret encrypt 's3cret'    # Encrypt a webhook secret`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() != "show" {
			jsonLogs, _ := cmd.Flags().GetBool("json-logs")
			if err := logger.Initialize(jsonLogs); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.SecretCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
