package inmemory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
)

// Queue is an in-memory job publisher and consumer backed by a channel.
// A single worker drains it, so at most one statement import runs at a time.
// Failed jobs are recorded and never retried.
type Queue struct {
	jobChan   chan *jobs.StatementImportJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool
	started   bool

	// pending counts published jobs that have not finished processing.
	pending atomic.Int64
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before PublishImportStatement blocks.
func NewQueue(bufferSize int, store jobs.JobStore) *Queue {
	return &Queue{
		jobChan:   make(chan *jobs.StatementImportJob, bufferSize),
		closeChan: make(chan struct{}),
		store:     store,
	}
}

// PublishImportStatement implements the Publisher interface.
func (q *Queue) PublishImportStatement(ctx context.Context, job *jobs.StatementImportJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	q.pending.Add(1)
	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		q.pending.Add(-1)
		return ctx.Err()
	case <-q.closeChan:
		q.pending.Add(-1)
		return fmt.Errorf("queue is closed")
	}
}

// Drain blocks until every published job has finished processing.
func (q *Queue) Drain(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for q.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Start implements the Consumer interface. It starts the single worker.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if q.started {
		return fmt.Errorf("queue already started")
	}
	q.started = true

	q.wg.Add(1)
	go q.worker(ctx, handler)

	return nil
}

// worker processes jobs from the queue.
func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}

			q.processJob(ctx, job, handler)
			q.pending.Add(-1)
		}
	}
}

// processJob executes a single job and records its terminal status.
func (q *Queue) processJob(ctx context.Context, job *jobs.StatementImportJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx)

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}

	err := handler(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err != nil {
		job.Status = jobs.JobStatusFailed
		if job.Error == "" {
			job.Error = err.Error()
		}
		log.Error().Err(err).Str("job_id", job.JobID).Msg("Statement import failed")
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().
			Str("job_id", job.JobID).
			Int("imported", job.Imported).
			Int("dropped", job.Dropped).
			Msg("Statement import completed")
	}

	if q.store != nil {
		_ = q.store.SaveJob(ctx, job)
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for the in-flight job to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
