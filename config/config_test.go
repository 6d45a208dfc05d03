package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge/errors"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// validConfig returns a configuration that passes validation, built
// from defaults plus the required encryption key.
func validConfig(t *testing.T) *Config {
	t.Helper()

	v := viper.New()
	SetDefaults(v)
	v.Set("security.webhook_encryption_key", testEncryptionKey)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "ontoforge.db", cfg.Database.Path)
	assert.Contains(t, cfg.Store.QueryURL, "repositories/ontoforge")
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIBase)
	assert.Equal(t, "https://raw.githubusercontent.com", cfg.GitHub.RawBase)
	assert.Equal(t, 2, cfg.Ingest.Workers)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ontoforge.toml")
	content := `
[server]
port = 9001

[database]
path = "/var/lib/ontoforge/jobs.db"

[store]
query_url = "http://graphdb:7200/repositories/onto"
update_url = "http://graphdb:7200/repositories/onto/statements"
graph_store_url = "http://graphdb:7200/repositories/onto/rdf-graphs/service"

[security]
webhook_encryption_key = "` + testEncryptionKey + `"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "/var/lib/ontoforge/jobs.db", cfg.Database.Path)
	assert.Equal(t, "http://graphdb:7200/repositories/onto", cfg.Store.QueryURL)
	// Unset sections keep their defaults.
	assert.Equal(t, 30, cfg.Store.TimeoutSeconds)
	assert.Equal(t, 5.0, cfg.GitHub.RequestsPerSecond)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestSensitiveEnvBinding(t *testing.T) {
	t.Setenv("ONTOFORGE_WEBHOOK_ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("ONTOFORGE_GITHUB_TOKEN", "ghp_test")
	t.Setenv("ONTOFORGE_STORE_PASSWORD", "store-pass")

	v := viper.New()
	SetDefaults(v)
	BindSensitiveEnvVars(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, testEncryptionKey, cfg.Security.WebhookEncryptionKey)
	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, "store-pass", cfg.Store.Password)
}

func TestValidateRejectsMissingKey(t *testing.T) {
	cfg := validConfig(t)
	cfg.Security.WebhookEncryptionKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestValidateRejectsBadKey(t *testing.T) {
	cases := map[string]string{
		"not hex":   strings.Repeat("zz", 32),
		"too short": "abcd",
		"too long":  testEncryptionKey + "ff",
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.Security.WebhookEncryptionKey = key

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfiguration))
			// Error text must describe the problem without echoing the value.
			assert.NotContains(t, err.Error(), key)
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero port":          func(c *Config) { c.Server.Port = 0 },
		"empty query url":    func(c *Config) { c.Store.QueryURL = "" },
		"empty update url":   func(c *Config) { c.Store.UpdateURL = "" },
		"empty gsp url":      func(c *Config) { c.Store.GraphStoreURL = "" },
		"zero store timeout": func(c *Config) { c.Store.TimeoutSeconds = 0 },
		"empty api base":     func(c *Config) { c.GitHub.APIBase = "" },
		"empty raw base":     func(c *Config) { c.GitHub.RawBase = "" },
		"zero rate limit":    func(c *Config) { c.GitHub.RequestsPerSecond = 0 },
		"negative workers":   func(c *Config) { c.Ingest.Workers = -1 },
		"zero poll interval": func(c *Config) { c.Ingest.PollIntervalSeconds = 0 },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig(t)
			mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfiguration))
		})
	}
}

func TestValidateAllowsZeroWorkers(t *testing.T) {
	cfg := validConfig(t)
	cfg.Ingest.Workers = 0

	require.NoError(t, cfg.Validate())
}

func TestTimeoutsAsDurations(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, cfg.Store.Timeout().Seconds(), float64(cfg.Store.TimeoutSeconds))
	assert.Equal(t, cfg.GitHub.Timeout().Seconds(), float64(cfg.GitHub.TimeoutSeconds))
	assert.Equal(t, cfg.Ingest.PollInterval().Seconds(), float64(cfg.Ingest.PollIntervalSeconds))
}
