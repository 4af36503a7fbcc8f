package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/quiniela/internal/adapters/mq/queue"
	"github.com/okian/quiniela/internal/adapters/mq/worker"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/types"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

const (
	maxRetainedJobs       = 256
	workerShutdownTimeout = 5 * time.Second
)

// Start launches the retrain worker. Jobs run on a context derived from ctx.
func (p *Pipeline) Start(ctx context.Context) error {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()

	if p.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.queue = queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize))
	p.worker = worker.NewInMemoryWorker(p.queue, p,
		worker.WithName("retrain"),
		worker.WithLogger(p.logger),
	)
	go p.worker.Run(runCtx)

	p.started = true
	p.logger.Info(ctx, "pipeline started", logger.Int("queueSize", p.queueSize))
	return nil
}

// Stop closes the job queue and waits briefly for a running job. Jobs still
// waiting in the queue are marked failed with ErrShutdown.
func (p *Pipeline) Stop() {
	p.jobsMu.Lock()
	if !p.started {
		p.jobsMu.Unlock()
		return
	}
	q, w, cancel := p.queue, p.worker, p.cancel
	p.started = false
	p.jobsMu.Unlock()

	ctx := context.Background()
	p.logger.Info(ctx, "stopping pipeline...")

	_ = q.Close()
	shutdownCtx, stop := context.WithTimeout(ctx, workerShutdownTimeout)
	defer stop()
	if err := w.Shutdown(shutdownCtx); err != nil {
		p.logger.Warn(ctx, "abandoning running job", logger.Error(err))
	}
	cancel()

	if n := p.failQueued(ErrShutdown); n > 0 {
		p.logger.Warn(ctx, "queued jobs dropped", logger.Int("jobs", n))
	}
	p.logger.Info(ctx, "pipeline stopped")
}

// EnqueueTraining queues a retrain on the installed corpus.
func (p *Pipeline) EnqueueTraining(ctx context.Context) (types.JobStatus, error) {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()

	if !p.started {
		return types.JobStatus{}, ErrNotStarted
	}

	job := model.TrainJob{ID: uuid.NewString(), RequestedAt: time.Now().UTC()}
	if err := p.queue.Enqueue(ctx, job); err != nil {
		return types.JobStatus{}, fmt.Errorf("enqueue retrain: %w", err)
	}

	st := &types.JobStatus{ID: job.ID, State: types.JobQueued, RequestedAt: job.RequestedAt}
	p.jobs[job.ID] = st
	p.jobOrder = append(p.jobOrder, job.ID)
	p.evictJobs()
	metrics.RecordJob(types.JobQueued)

	return *st, nil
}

// Job returns the status of a retrain job.
func (p *Pipeline) Job(id string) (types.JobStatus, error) {
	p.jobsMu.RLock()
	defer p.jobsMu.RUnlock()

	st, ok := p.jobs[id]
	if !ok {
		return types.JobStatus{}, fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return *st, nil
}

// HandleJob runs a queued retrain. It is called by the worker.
func (p *Pipeline) HandleJob(ctx context.Context, j model.TrainJob) error {
	p.setJob(j.ID, func(st *types.JobStatus) { st.State = types.JobRunning })

	c := p.Corpus()
	if c == nil {
		p.finishJob(j.ID, TrainResult{}, ErrNoCorpus)
		return ErrNoCorpus
	}
	res, err := p.TrainClassifier(ctx, c)
	p.finishJob(j.ID, res, err)
	return err
}

func (p *Pipeline) finishJob(id string, res TrainResult, err error) {
	now := time.Now().UTC()
	p.setJob(id, func(st *types.JobStatus) {
		st.FinishedAt = &now
		if err != nil {
			st.State = types.JobFailed
			st.Error = err.Error()
			return
		}
		st.State = types.JobSucceeded
		st.RunID = res.RunID
		st.Accuracy = res.Accuracy
		st.Samples = res.Samples
	})
}

// failQueued marks every job still queued as failed with err and returns how
// many it marked.
func (p *Pipeline) failQueued(err error) int {
	now := time.Now().UTC()
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()

	n := 0
	for _, id := range p.jobOrder {
		st := p.jobs[id]
		if st.State != types.JobQueued {
			continue
		}
		st.State = types.JobFailed
		st.Error = err.Error()
		st.FinishedAt = &now
		metrics.RecordJob(types.JobFailed)
		n++
	}
	return n
}

func (p *Pipeline) setJob(id string, update func(*types.JobStatus)) {
	p.jobsMu.Lock()
	defer p.jobsMu.Unlock()
	if st, ok := p.jobs[id]; ok {
		update(st)
	}
}

// evictJobs drops the oldest finished jobs past the retention limit.
// Callers hold jobsMu.
func (p *Pipeline) evictJobs() {
	if len(p.jobOrder) <= maxRetainedJobs {
		return
	}
	kept := p.jobOrder[:0]
	excess := len(p.jobOrder) - maxRetainedJobs
	for _, id := range p.jobOrder {
		if excess > 0 && p.jobs[id].Done() {
			delete(p.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	p.jobOrder = kept
}
