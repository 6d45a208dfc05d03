package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/db"
	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/githubapi"
	"github.com/ontoforge/ontoforge/ingest"
	"github.com/ontoforge/ontoforge/logger"
	"github.com/ontoforge/ontoforge/queue"
	"github.com/ontoforge/ontoforge/server"
	"github.com/ontoforge/ontoforge/store"
)

// ServeCmd starts the webhook server and the ingestion worker pool
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the ontoforge webhook server and ingestion workers",
	Long: `Start the HTTP server receiving repository webhooks and the worker
pool executing queued ingestion runs against the semantic store.`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveDBPath     string
	servePort       int
)

func init() {
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to ontoforge.toml (overrides search paths)")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Custom job database path (overrides config)")
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	dbPath := cfg.Database.Path
	if serveDBPath != "" {
		dbPath = serveDBPath
	}

	log := logger.Logger
	printStartupBanner(cfg, dbPath)

	database, err := db.OpenWithMigrations(dbPath, log)
	if err != nil {
		return errors.Wrap(err, "failed to open job database")
	}
	defer database.Close()

	st, err := store.New(cfg.Store)
	if err != nil {
		return errors.Wrap(err, "failed to configure store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q := queue.NewQueue(database)
	pool := queue.NewWorkerPool(ctx, q, queue.WorkerPoolConfig{
		Workers:      cfg.Ingest.Workers,
		PollInterval: cfg.Ingest.PollInterval(),
	}, log)

	gh := githubapi.New(cfg.GitHub)
	pipeline := ingest.NewPipeline(gh, st, log)
	pool.Registry().Register(ingest.NewHandler(pipeline))
	pool.Start()
	defer pool.Stop()

	srv := server.New(cfg, st, q, log)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Infow("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP shutdown incomplete", "error", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading configuration from %s", path)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}
	return cfg, nil
}
