package config

import (
	"encoding/hex"

	"github.com/ontoforge/ontoforge/errors"
)

// Validate checks that the configuration is valid. A malformed webhook
// encryption key is fatal at startup; nothing downstream can recover
// from it.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.Mark(errors.Newf("server.port must be positive, got %d", c.Server.Port), errors.ErrConfiguration)
	}

	if c.Store.QueryURL == "" {
		return errors.Mark(errors.New("store.query_url cannot be empty"), errors.ErrConfiguration)
	}
	if c.Store.UpdateURL == "" {
		return errors.Mark(errors.New("store.update_url cannot be empty"), errors.ErrConfiguration)
	}
	if c.Store.GraphStoreURL == "" {
		return errors.Mark(errors.New("store.graph_store_url cannot be empty"), errors.ErrConfiguration)
	}
	if c.Store.TimeoutSeconds <= 0 {
		return errors.Mark(errors.Newf("store.timeout_seconds must be > 0, got %d", c.Store.TimeoutSeconds), errors.ErrConfiguration)
	}

	if c.GitHub.APIBase == "" {
		return errors.Mark(errors.New("github.api_base cannot be empty"), errors.ErrConfiguration)
	}
	if c.GitHub.RawBase == "" {
		return errors.Mark(errors.New("github.raw_base cannot be empty"), errors.ErrConfiguration)
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		return errors.Mark(errors.Newf("github.timeout_seconds must be > 0, got %d", c.GitHub.TimeoutSeconds), errors.ErrConfiguration)
	}
	if c.GitHub.RequestsPerSecond <= 0 {
		return errors.Mark(errors.Newf("github.requests_per_second must be > 0, got %f", c.GitHub.RequestsPerSecond), errors.ErrConfiguration)
	}

	// Workers: 0 = no background workers (webhook deliveries queue up), negative = invalid
	if c.Ingest.Workers < 0 {
		return errors.Mark(errors.Newf("ingest.workers must be >= 0, got %d", c.Ingest.Workers), errors.ErrConfiguration)
	}
	if c.Ingest.PollIntervalSeconds <= 0 {
		return errors.Mark(errors.Newf("ingest.poll_interval_seconds must be > 0, got %d", c.Ingest.PollIntervalSeconds), errors.ErrConfiguration)
	}

	return c.validateEncryptionKey()
}

// validateEncryptionKey checks the webhook encryption key is a 64
// character hex string (32 bytes). The key value itself never appears
// in the error message.
func (c *Config) validateEncryptionKey() error {
	key := c.Security.WebhookEncryptionKey
	if key == "" {
		return errors.Mark(errors.New("security.webhook_encryption_key is required (64 hex characters)"), errors.ErrConfiguration)
	}
	raw, err := hex.DecodeString(key)
	if err != nil {
		return errors.Mark(errors.New("security.webhook_encryption_key must be hex encoded"), errors.ErrConfiguration)
	}
	if len(raw) != 32 {
		return errors.Mark(errors.Newf("security.webhook_encryption_key must decode to 32 bytes, got %d", len(raw)), errors.ErrConfiguration)
	}
	return nil
}
