// ABOUTME: Fetch worker pool that drives ingestion jobs and interprets their failures
// ABOUTME: Retryable errors are requeued after the domain cool-down; terminal errors are dropped

package workers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/core/interfaces"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Job is one feed URL to ingest
type Job struct {
	ID      string
	URL     string
	Attempt int
}

// Outcome is how a job attempt ended
type Outcome int

const (
	// OutcomeStored means the batch reached the sink
	OutcomeStored Outcome = iota
	// OutcomeRequeued means a retryable error scheduled another attempt
	OutcomeRequeued
	// OutcomeDropped means a terminal error, exhausted retries or shutdown
	OutcomeDropped
	// OutcomeFailed means an unclassified error or a sink failure
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeRequeued:
		return "requeued"
	case OutcomeDropped:
		return "dropped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Report describes one finished attempt
type Report struct {
	Job     Job
	Outcome Outcome
	Err     error
	Delay   time.Duration
	Items   int
}

// DelaySource answers how long a requeued job should wait
type DelaySource interface {
	GetRateLimitDelay(ctx context.Context, rawURL string) time.Duration
}

// WorkerConfig holds configuration for the fetch worker pool
type WorkerConfig struct {
	MaxWorkers int
	QueueSize  int

	// RatePerSecond paces fetch starts across the pool; 0 means unlimited
	RatePerSecond float64
	Burst         int

	// MaxAttempts caps how often a retryable job is tried
	MaxAttempts int

	// OnReport, when set, is called after every attempt
	OnReport func(Report)
}

// DefaultWorkerConfig returns the default worker configuration
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxWorkers:    4,
		QueueSize:     256,
		RatePerSecond: 5,
		Burst:         5,
		MaxAttempts:   5,
	}
}

// Stats counts attempt outcomes
type Stats struct {
	Stored   int64
	Requeued int64
	Dropped  int64
	Failed   int64
}

// FetchWorker manages the fetch worker pool
type FetchWorker struct {
	ingester interfaces.Ingester
	sink     interfaces.BatchSink
	delays   DelaySource
	logger   interfaces.Logger
	limiter  *rate.Limiter
	config   WorkerConfig

	jobQueue chan *Job
	ctx      context.Context
	cancel   context.CancelFunc

	wg       sync.WaitGroup // worker goroutines
	requeues sync.WaitGroup // delayed requeue goroutines
	pending  sync.WaitGroup // jobs without a final outcome

	mu      sync.Mutex
	sendMu  sync.RWMutex
	running bool
	stopped bool

	stored, requeued, dropped, failed atomic.Int64
}

// NewFetchWorker creates a new fetch worker pool
func NewFetchWorker(ingester interfaces.Ingester, sink interfaces.BatchSink, delays DelaySource, logger interfaces.Logger, config WorkerConfig) *FetchWorker {
	defaults := DefaultWorkerConfig()
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = defaults.MaxWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &FetchWorker{
		ingester: ingester,
		sink:     sink,
		delays:   delays,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, config.Burst),
		config:   config,
		jobQueue: make(chan *Job, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the worker pool
func (fw *FetchWorker) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.stopped {
		return ErrWorkerStopped
	}
	if fw.running {
		return nil
	}

	for i := 0; i < fw.config.MaxWorkers; i++ {
		fw.wg.Add(1)
		go fw.run(i)
	}

	fw.running = true
	return nil
}

// Stop stops the worker pool. Queued and scheduled jobs are dropped.
// A stopped pool cannot be restarted.
func (fw *FetchWorker) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	fw.stopped = true
	fw.mu.Unlock()

	fw.cancel()
	fw.wg.Wait()
	fw.requeues.Wait()

	fw.sendMu.Lock()
	close(fw.jobQueue)
	fw.sendMu.Unlock()

	for job := range fw.jobQueue {
		fw.finish(Report{Job: *job, Outcome: OutcomeDropped, Err: context.Canceled})
	}
	return nil
}

// Submit queues url for ingestion and returns the job ID
func (fw *FetchWorker) Submit(url string) (string, error) {
	fw.mu.Lock()
	running := fw.running
	fw.mu.Unlock()
	if !running {
		return "", ErrWorkerNotRunning
	}

	job := &Job{ID: uuid.NewString(), URL: url, Attempt: 1}
	fw.pending.Add(1)

	if err := fw.enqueue(job, 5*time.Second); err != nil {
		fw.pending.Done()
		return "", err
	}
	return job.ID, nil
}

// Wait blocks until every submitted job has a final outcome
func (fw *FetchWorker) Wait() {
	fw.pending.Wait()
}

// Stats returns outcome counters
func (fw *FetchWorker) Stats() Stats {
	return Stats{
		Stored:   fw.stored.Load(),
		Requeued: fw.requeued.Load(),
		Dropped:  fw.dropped.Load(),
		Failed:   fw.failed.Load(),
	}
}

func (fw *FetchWorker) enqueue(job *Job, timeout time.Duration) error {
	fw.sendMu.RLock()
	defer fw.sendMu.RUnlock()

	if fw.ctx.Err() != nil {
		return ErrWorkerNotRunning
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case fw.jobQueue <- job:
		return nil
	case <-fw.ctx.Done():
		return ErrWorkerNotRunning
	case <-expired:
		return ErrQueueFull
	}
}

// run is the main loop for each worker
func (fw *FetchWorker) run(id int) {
	defer fw.wg.Done()

	for {
		select {
		case job := <-fw.jobQueue:
			fw.process(id, job)
		case <-fw.ctx.Done():
			return
		}
	}
}

// process runs one attempt and decides the job's fate
func (fw *FetchWorker) process(workerID int, job *Job) {
	if err := fw.limiter.Wait(fw.ctx); err != nil {
		fw.finish(Report{Job: *job, Outcome: OutcomeDropped, Err: err})
		return
	}

	batch, err := fw.ingester.Ingest(fw.ctx, job.URL)
	if err == nil {
		if storeErr := fw.sink.Store(fw.ctx, batch); storeErr != nil {
			fw.log().Error("Failed to store batch", map[string]interface{}{
				"job_id": job.ID,
				"url":    job.URL,
				"error":  storeErr.Error(),
			})
			fw.finish(Report{Job: *job, Outcome: OutcomeFailed, Err: storeErr})
			return
		}
		fw.finish(Report{Job: *job, Outcome: OutcomeStored, Items: batch.ItemCount()})
		return
	}

	fields := map[string]interface{}{
		"job_id":  job.ID,
		"url":     job.URL,
		"attempt": job.Attempt,
		"worker":  workerID,
		"error":   err.Error(),
	}

	switch {
	case errors.IsRetryable(err) && job.Attempt < fw.config.MaxAttempts:
		delay := fw.delays.GetRateLimitDelay(fw.ctx, job.URL)
		fields["delay"] = delay.String()
		fw.log().Info("Requeueing job", fields)
		fw.report(Report{Job: *job, Outcome: OutcomeRequeued, Err: err, Delay: delay})
		fw.requeue(&Job{ID: job.ID, URL: job.URL, Attempt: job.Attempt + 1}, delay)

	case errors.IsRetryable(err), errors.IsTerminal(err):
		fw.log().Warn("Dropping job", fields)
		fw.finish(Report{Job: *job, Outcome: OutcomeDropped, Err: err})

	default:
		fw.log().Error("Job failed", fields)
		fw.finish(Report{Job: *job, Outcome: OutcomeFailed, Err: err})
	}
}

// requeue schedules job after delay; the job stays pending until it finishes
func (fw *FetchWorker) requeue(job *Job, delay time.Duration) {
	fw.requeues.Add(1)
	go func() {
		defer fw.requeues.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			if err := fw.enqueue(job, 0); err != nil {
				fw.finish(Report{Job: *job, Outcome: OutcomeDropped, Err: err})
			}
		case <-fw.ctx.Done():
			fw.finish(Report{Job: *job, Outcome: OutcomeDropped, Err: fw.ctx.Err()})
		}
	}()
}

// finish records a final outcome
func (fw *FetchWorker) finish(r Report) {
	fw.report(r)
	fw.pending.Done()
}

func (fw *FetchWorker) report(r Report) {
	switch r.Outcome {
	case OutcomeStored:
		fw.stored.Add(1)
	case OutcomeRequeued:
		fw.requeued.Add(1)
	case OutcomeDropped:
		fw.dropped.Add(1)
	case OutcomeFailed:
		fw.failed.Add(1)
	}
	if fw.config.OnReport != nil {
		fw.config.OnReport(r)
	}
}

func (fw *FetchWorker) log() interfaces.Logger {
	if fw.logger == nil {
		return nopLogger{}
	}
	return fw.logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "worker pool is not running"}
	ErrWorkerStopped    = &WorkerError{Message: "worker pool has been stopped"}
	ErrQueueFull        = &WorkerError{Message: "job queue is full"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
