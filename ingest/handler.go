package ingest

import (
	"context"
	"encoding/json"

	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/queue"
)

// HandlerName routes ingestion jobs to the pipeline.
const HandlerName = "ingest.run"

// Handler adapts the pipeline to the job queue.
type Handler struct {
	pipeline *Pipeline
}

// NewHandler wraps a pipeline as a queue handler.
func NewHandler(p *Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// Name implements queue.JobHandler.
func (h *Handler) Name() string { return HandlerName }

// Execute implements queue.JobHandler.
func (h *Handler) Execute(ctx context.Context, job *queue.Job) error {
	var run Run
	if err := json.Unmarshal(job.Payload, &run); err != nil {
		return errors.Wrap(err, "decoding ingestion payload")
	}
	if run.EventID == "" || run.Owner == "" || run.Repo == "" {
		return errors.New("ingestion payload missing event or repository")
	}
	return h.pipeline.Execute(ctx, run)
}

// NewJob builds a queue job for one ingestion run.
func NewJob(run Run) (*queue.Job, error) {
	payload, err := json.Marshal(run)
	if err != nil {
		return nil, errors.Wrap(err, "encoding ingestion payload")
	}
	return queue.NewJob(HandlerName, run.Owner+"/"+run.Repo, payload)
}
