// Package config holds the ontoforge service configuration, loaded from
// an ontoforge.toml file and ONTOFORGE_* environment overrides.
package config

import "time"

// Config represents the core ontoforge configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig configures the ontoforge HTTP server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	JSONLogs       bool     `mapstructure:"json_logs"`
}

// DatabaseConfig configures the SQLite database backing the job queue
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig configures the shared semantic store (SPARQL endpoint plus
// Graph Store Protocol endpoint, e.g. GraphDB or Fuseki).
type StoreConfig struct {
	QueryURL       string `mapstructure:"query_url"`
	UpdateURL      string `mapstructure:"update_url"`
	GraphStoreURL  string `mapstructure:"graph_store_url"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the store request timeout as a duration.
func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GitHubConfig configures the source host the fetch stage talks to.
type GitHubConfig struct {
	APIBase           string  `mapstructure:"api_base"`
	RawBase           string  `mapstructure:"raw_base"`
	Token             string  `mapstructure:"token"` // optional, required for private repositories
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// Timeout returns the per-request timeout as a duration.
func (c GitHubConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IngestConfig configures the ingestion worker pool.
type IngestConfig struct {
	Workers             int `mapstructure:"workers"`
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
}

// PollInterval returns the queue polling interval as a duration.
func (c IngestConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// SecurityConfig holds the webhook secret encryption key.
// The key is 32 bytes, hex encoded (64 characters). It is loaded once at
// startup and must never be logged.
type SecurityConfig struct {
	WebhookEncryptionKey string `mapstructure:"webhook_encryption_key"`
}
