package config

import "github.com/spf13/viper"

// Default ports and endpoints
const (
	DefaultServerPort = 8477
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.json_logs", false)

	// Database defaults
	v.SetDefault("database.path", "ontoforge.db")

	// Shared store defaults (local GraphDB layout)
	v.SetDefault("store.query_url", "http://localhost:7200/repositories/ontoforge")
	v.SetDefault("store.update_url", "http://localhost:7200/repositories/ontoforge/statements")
	v.SetDefault("store.graph_store_url", "http://localhost:7200/repositories/ontoforge/rdf-graphs/service")
	v.SetDefault("store.timeout_seconds", 30)

	// Source host defaults
	v.SetDefault("github.api_base", "https://api.github.com")
	v.SetDefault("github.raw_base", "https://raw.githubusercontent.com")
	v.SetDefault("github.timeout_seconds", 30)
	v.SetDefault("github.requests_per_second", 5.0)

	// Ingestion worker defaults
	v.SetDefault("ingest.workers", 2)
	v.SetDefault("ingest.poll_interval_seconds", 1)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to
// environment variables so secrets can stay out of the config file.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("github.token", "ONTOFORGE_GITHUB_TOKEN")
	v.BindEnv("store.user", "ONTOFORGE_STORE_USER")
	v.BindEnv("store.password", "ONTOFORGE_STORE_PASSWORD")
	v.BindEnv("security.webhook_encryption_key", "ONTOFORGE_WEBHOOK_ENCRYPTION_KEY")
}
