package queue

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ontoforge/ontoforge/db"
	"github.com/ontoforge/ontoforge/errors"
)

// MaxOrphanedJobsToRecover limits how many orphaned jobs are requeued
// on startup to prevent overwhelming the system after a crash
const MaxOrphanedJobsToRecover = 1000

// WorkerPool polls the queue and executes jobs through registered
// handlers. Workers exit cleanly on context cancellation; jobs found in
// running state at startup were orphaned by a crash and get requeued.
type WorkerPool struct {
	queue     *Queue
	registry  *HandlerRegistry
	workers   int
	interval  time.Duration
	parentCtx context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.SugaredLogger
	mu        sync.Mutex
}

// WorkerPoolConfig contains configuration for the worker pool
type WorkerPoolConfig struct {
	Workers      int           `json:"workers"`
	PollInterval time.Duration `json:"poll_interval"`
}

// DefaultWorkerPoolConfig returns sensible defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		Workers:      2,
		PollInterval: time.Second,
	}
}

// NewWorkerPool creates a worker pool over the queue. Callers must
// register handlers before calling Start().
func NewWorkerPool(ctx context.Context, q *Queue, cfg WorkerPoolConfig, logger *zap.SugaredLogger) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	workerCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		queue:     q,
		registry:  NewHandlerRegistry(),
		workers:   cfg.Workers,
		interval:  cfg.PollInterval,
		parentCtx: ctx,
		ctx:       workerCtx,
		cancel:    cancel,
		logger:    logger.Named("workers"),
	}
}

// Registry exposes the pool's handler registry for registration.
func (wp *WorkerPool) Registry() *HandlerRegistry {
	return wp.registry
}

// Start recovers orphaned jobs and begins processing.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	// A pool stopped and restarted needs a fresh context
	select {
	case <-wp.ctx.Done():
		wp.ctx, wp.cancel = context.WithCancel(wp.parentCtx)
	default:
	}
	wp.mu.Unlock()

	if err := wp.recoverOrphanedJobs(); err != nil {
		wp.logger.Warnw("Failed to recover orphaned jobs", "error", err)
	}

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.logger.Infow("Worker pool started", "workers", wp.workers, "poll_interval", wp.interval)
}

// recoverOrphanedJobs requeues jobs stuck in running state from an
// ungraceful shutdown (crash, kill -9, power loss).
func (wp *WorkerPool) recoverOrphanedJobs() error {
	running := JobStatusRunning
	orphaned, err := wp.queue.ListJobs(&running, MaxOrphanedJobsToRecover)
	if err != nil {
		return errors.Wrap(err, "failed to list running jobs")
	}
	if len(orphaned) == 0 {
		return nil
	}

	wp.logger.Infow("Recovering orphaned jobs from previous shutdown", "count", len(orphaned))
	for _, job := range orphaned {
		job.Status = JobStatusQueued
		job.Error = ""
		job.StartedAt = nil
		if err := wp.queue.UpdateJob(job); err != nil {
			wp.logger.Warnw("Failed to requeue orphaned job", "job_id", job.ID, "error", err)
		}
	}
	return nil
}

// Stop cancels workers and waits for in-flight jobs to finish, with a
// timeout so shutdown never blocks indefinitely.
func (wp *WorkerPool) Stop() {
	wp.cancel()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.logger.Infow("Worker pool stopped cleanly")
	case <-time.After(30 * time.Second):
		wp.logger.Warnw("Worker pool stop timed out, jobs may still be finishing")
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	ticker := time.NewTicker(wp.interval)
	defer ticker.Stop()

	errorCount := 0
	backoff := time.Second
	const maxConsecutiveErrors = 5
	const maxBackoff = 30 * time.Second

	for {
		select {
		case <-wp.ctx.Done():
			return
		case <-ticker.C:
			if err := wp.processNextJob(); err != nil {
				select {
				case <-wp.ctx.Done():
					return
				default:
				}
				// Database closed during shutdown - exit silently
				if errors.Is(err, sql.ErrConnDone) || db.IsDatabaseClosed(err) {
					return
				}
				errorCount++
				wp.logger.Errorw("Worker error processing job",
					"worker_id", id,
					"error", err,
					"consecutive_errors", errorCount)
				if errorCount >= maxConsecutiveErrors {
					time.Sleep(backoff)
					backoff = min(backoff*2, maxBackoff)
				}
			} else {
				errorCount = 0
				backoff = time.Second
			}
		}
	}
}

// processNextJob dequeues one job and runs it through its handler.
func (wp *WorkerPool) processNextJob() error {
	select {
	case <-wp.ctx.Done():
		return nil
	default:
	}

	job, err := wp.queue.Dequeue()
	if err != nil {
		return errors.Wrap(err, "failed to dequeue job")
	}
	if job == nil {
		return nil
	}

	handler := wp.registry.Get(job.HandlerName)
	if handler == nil {
		failErr := errors.Newf("no handler registered for %q", job.HandlerName)
		if err := wp.queue.FailJob(job.ID, failErr); err != nil {
			return err
		}
		return failErr
	}

	wp.logger.Infow("Processing job", "job_id", job.ID, "handler", job.HandlerName, "source", job.Source)
	start := time.Now()

	if err := handler.Execute(wp.ctx, job); err != nil {
		wp.logger.Warnw("Job failed",
			"job_id", job.ID,
			"handler", job.HandlerName,
			"duration", time.Since(start),
			"error", err)
		return wp.queue.FailJob(job.ID, err)
	}

	wp.logger.Infow("Job completed",
		"job_id", job.ID,
		"handler", job.HandlerName,
		"duration", time.Since(start))
	return wp.queue.CompleteJob(job.ID)
}
