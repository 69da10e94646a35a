// Package worker defines worker contracts for asynchronous brand
// enrichment.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/teaelo/teaelo/internal/adapters/mq/queue"
	"github.com/teaelo/teaelo/internal/adapters/repository"
	"github.com/teaelo/teaelo/internal/domain/enrich"
	"github.com/teaelo/teaelo/internal/domain/model"
	"github.com/teaelo/teaelo/pkg/logger"
	"github.com/teaelo/teaelo/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Updater applies enrichment results to stored brands.
type Updater interface {
	GetBrand(ctx context.Context, id uuid.UUID) (*model.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, update repository.BrandUpdate) (*model.Brand, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes enrichment jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining jobs before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing enrichment jobs.
type InMemoryWorker struct {
	queue    Queue
	enricher enrich.Enricher
	updater  Updater
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, enricher enrich.Enricher, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		enricher: enricher,
		updater:  updater,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			// Process the job
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing enrichment job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single enrichment job. Fields the brand already
// carries are never overwritten; only gaps are filled.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	meta, err := w.enricher.Enrich(ctx, job.Name, job.RegionHint)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "enrichment_error")
		metrics.RecordErrorByType("enrichment_error", "low")
		w.logger.Error(ctx, "enrichment failed for brand",
			logger.String("brandID", job.BrandID.String()),
			logger.Error(err),
		)
		return fmt.Errorf("failed to enrich brand %s: %w", job.BrandID, err)
	}

	brand, err := w.updater.GetBrand(ctx, job.BrandID)
	if err != nil {
		// The brand may have been deleted between creation and
		// enrichment; that is not a worker failure worth retrying.
		metrics.RecordErrorByComponent("worker", "brand_gone")
		w.logger.Warn(ctx, "brand gone before enrichment applied",
			logger.String("brandID", job.BrandID.String()),
		)
		return nil
	}

	update := fillGaps(brand, meta)
	if update == (repository.BrandUpdate{}) {
		return nil // nothing to fill
	}

	if _, err := w.updater.UpdateBrand(ctx, job.BrandID, update); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "update_error")
		metrics.RecordErrorByType("update_error", "low")
		w.logger.Error(ctx, "applying enrichment failed",
			logger.String("brandID", job.BrandID.String()),
			logger.Error(err),
		)
		return fmt.Errorf("applying enrichment to brand %s: %w", job.BrandID, err)
	}

	return nil
}

// fillGaps builds a field mask covering only metadata the brand lacks.
func fillGaps(brand *model.Brand, meta enrich.Metadata) repository.BrandUpdate {
	var update repository.BrandUpdate
	if brand.Description == "" && meta.Description != "" {
		update.Description = &meta.Description
	}
	if brand.WebsiteURL == "" && meta.WebsiteURL != "" {
		update.WebsiteURL = &meta.WebsiteURL
	}
	if brand.LogoURL == "" && meta.LogoURL != "" {
		update.LogoURL = &meta.LogoURL
	}
	if brand.CountryOfOrigin == "" && meta.CountryOfOrigin != "" {
		update.CountryOfOrigin = &meta.CountryOfOrigin
	}
	if brand.EstablishedYear == 0 && meta.EstablishedYear != 0 {
		update.EstablishedYear = &meta.EstablishedYear
	}
	return update
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	enricher enrich.Enricher
	updater  Updater

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, enricher enrich.Enricher, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
		if n := runtime.NumCPU(); n > workerCount {
			workerCount = n
		}
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		enricher: enricher,
		updater:  updater,
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			enricher,
			updater,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal each worker and wait for it to finish or time out
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		if err := worker.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
