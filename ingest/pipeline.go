// Package ingest runs the fetch, parse, validate, write, index pipeline
// for one accepted webhook delivery.
package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ontoforge/ontoforge/githubapi"
	"github.com/ontoforge/ontoforge/ontology"
	"github.com/ontoforge/ontoforge/store"
	"github.com/ontoforge/ontoforge/vocab"
)

// Pipeline executes ingestion runs against the graph store. Runs for
// the same repository are serialized; the ledger entry for a run always
// ends in exactly one terminal status.
type Pipeline struct {
	github *githubapi.Client
	store  *store.Store
	locks  *repoLock
	logger *zap.SugaredLogger
}

// NewPipeline wires the pipeline to its collaborators.
func NewPipeline(gh *githubapi.Client, st *store.Store, logger *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		github: gh,
		store:  st,
		locks:  newRepoLock(),
		logger: logger.Named("ingest"),
	}
}

// Run is the arguments of one ingestion: the ledger entry it reports
// into and the repository coordinates to ingest.
type Run struct {
	EventID string `json:"event_id"`
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	GitRef  string `json:"git_ref"`
}

// Execute runs the full pipeline for one event. Any stage failure marks
// the ledger entry Failed and is returned to the caller; a failure to
// record the Failed status itself is logged and swallowed so the
// original error is what surfaces.
func (p *Pipeline) Execute(ctx context.Context, run Run) error {
	unlock := p.locks.Lock(run.Owner + "/" + run.Repo)
	defer unlock()

	start := time.Now()
	log := p.logger.With("event_id", run.EventID, "owner", run.Owner, "repo", run.Repo, "ref", run.GitRef)

	metrics, graph, err := p.execute(ctx, run, log)
	if err != nil {
		log.Warnw("Ingestion failed", "duration", time.Since(start), "error", err)
		if ferr := p.store.MarkFailed(ctx, run.EventID, err.Error()); ferr != nil {
			log.Errorw("Failed to record failure status", "error", ferr)
		}
		return err
	}

	if err := p.store.MarkLoaded(ctx, run.EventID, metrics, graph); err != nil {
		log.Errorw("Graph written but status update failed", "graph", graph, "error", err)
		// The entry must still reach a terminal state; Failed is the only
		// one left to try.
		if ferr := p.store.MarkFailed(ctx, run.EventID, err.Error()); ferr != nil {
			log.Errorw("Failed to record failure status", "error", ferr)
		}
		return err
	}

	log.Infow("Ingestion complete",
		"graph", graph,
		"classes", metrics.ClassCount,
		"properties", metrics.PropertyCount,
		"prefixes", len(metrics.Prefixes),
		"duration", time.Since(start))
	return nil
}

func (p *Pipeline) execute(ctx context.Context, run Run, log *zap.SugaredLogger) (ontology.Metrics, string, error) {
	path, data, err := p.fetchDocument(ctx, run.Owner, run.Repo, run.GitRef)
	if err != nil {
		return ontology.Metrics{}, "", err
	}
	log.Debugw("Fetched ontology source", "path", path, "bytes", len(data))

	doc, err := ontology.ParseFile(path, data)
	if err != nil {
		return ontology.Metrics{}, "", err
	}

	if err := ontology.Validate(doc); err != nil {
		return ontology.Metrics{}, "", err
	}

	version := VersionFromRef(run.GitRef)
	graph := vocab.PartitionIRI(run.Owner, run.Repo, version)
	if err := p.store.ReplaceGraph(ctx, graph, doc.NTriples()); err != nil {
		return ontology.Metrics{}, "", err
	}

	return ontology.Summarize(doc), graph, nil
}
