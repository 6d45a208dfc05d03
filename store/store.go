package store

import (
	"net/http"

	"github.com/knakk/sparql"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/logger"
)

// Store talks to the SPARQL endpoint. Query and update may be distinct
// URLs (GraphDB splits them); graph replacement goes through the graph
// store protocol endpoint.
type Store struct {
	query  *sparql.Repo
	update *sparql.Repo

	graphStoreURL string
	user          string
	password      string
	httpClient    *http.Client
}

// New builds a Store from the endpoint configuration.
func New(cfg config.StoreConfig) (*Store, error) {
	opts := []func(*sparql.Repo) error{sparql.Timeout(cfg.Timeout())}
	if cfg.User != "" {
		opts = append(opts, sparql.DigestAuth(cfg.User, cfg.Password))
	}

	query, err := sparql.NewRepo(cfg.QueryURL, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating query endpoint")
	}
	update, err := sparql.NewRepo(cfg.UpdateURL, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating update endpoint")
	}

	logger.Logger.Infow("store configured",
		"query_url", cfg.QueryURL,
		"update_url", cfg.UpdateURL,
		"graph_store_url", cfg.GraphStoreURL)

	return &Store{
		query:         query,
		update:        update,
		graphStoreURL: cfg.GraphStoreURL,
		user:          cfg.User,
		password:      cfg.Password,
		httpClient:    &http.Client{Timeout: cfg.Timeout()},
	}, nil
}
