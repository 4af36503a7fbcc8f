// Package worker runs queued retrain jobs one at a time.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/quiniela/internal/adapters/mq/queue"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

// Job abstracts what the worker reads off the queue.
type Job = queue.Job

// Handler executes a retrain job.
type Handler interface {
	HandleJob(ctx context.Context, j Job) error
}

// Queue defines how the worker receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in progress, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker. A single instance serializes jobs, so at
// most one fit runs at a time.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		handler:  handler,
		name:     "trainer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		// shutdown wins over jobs already waiting
		select {
		case <-w.shutdown:
			return
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "job failed", logger.String("job_id", j.ID), logger.Error(err))
			}
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	start := time.Now()
	metrics.RecordJob("running")
	w.logger.Info(ctx, "job started",
		logger.String("job_id", j.ID),
		logger.Duration("waited", start.Sub(j.RequestedAt)),
	)

	if err := w.handler.HandleJob(ctx, j); err != nil {
		metrics.RecordJob("failed")
		metrics.RecordErrorByComponent("worker", "job_failed")
		return fmt.Errorf("job %s: %w", j.ID, err)
	}

	metrics.RecordJob("succeeded")
	w.logger.Info(ctx, "job finished",
		logger.String("job_id", j.ID),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
