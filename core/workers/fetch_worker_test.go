package workers

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestFunc func(ctx context.Context, url string) (*domain.Batch, error)

func (f ingestFunc) Ingest(ctx context.Context, url string) (*domain.Batch, error) {
	return f(ctx, url)
}

type recordingSink struct {
	mu      sync.Mutex
	batches []*domain.Batch
	err     error
}

func (s *recordingSink) Store(_ context.Context, batch *domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *recordingSink) stored() []*domain.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Batch(nil), s.batches...)
}

type fixedDelay time.Duration

func (d fixedDelay) GetRateLimitDelay(context.Context, string) time.Duration {
	return time.Duration(d)
}

type reports struct {
	mu  sync.Mutex
	all []Report
	ch  chan Report
}

func newReports() *reports {
	return &reports{ch: make(chan Report, 64)}
}

func (r *reports) add(rep Report) {
	r.mu.Lock()
	r.all = append(r.all, rep)
	r.mu.Unlock()
	r.ch <- rep
}

func (r *reports) outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, 0, len(r.all))
	for _, rep := range r.all {
		out = append(out, rep.Outcome)
	}
	return out
}

func batchWithItems(url string, n int) *domain.Batch {
	return &domain.Batch{
		URL:      url,
		Format:   domain.FormatRSS,
		Document: &domain.FeedDocument{Items: make([]domain.FeedItem, n)},
	}
}

func newTestWorker(t *testing.T, ing ingestFunc, sink *recordingSink, delay time.Duration, maxAttempts int) (*FetchWorker, *reports) {
	t.Helper()
	rec := newReports()
	cfg := WorkerConfig{
		MaxWorkers:  2,
		QueueSize:   8,
		MaxAttempts: maxAttempts,
		OnReport:    rec.add,
	}
	fw := NewFetchWorker(ing, sink, fixedDelay(delay), nil, cfg)
	require.NoError(t, fw.Start())
	t.Cleanup(func() { _ = fw.Stop() })
	return fw, rec
}

func waitDone(t *testing.T, fw *FetchWorker) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fw.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not finish in time")
	}
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "stored", OutcomeStored.String())
	assert.Equal(t, "requeued", OutcomeRequeued.String())
	assert.Equal(t, "dropped", OutcomeDropped.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestNewFetchWorker_Defaults(t *testing.T) {
	fw := NewFetchWorker(nil, nil, nil, nil, WorkerConfig{})
	defaults := DefaultWorkerConfig()

	assert.Equal(t, defaults.MaxWorkers, fw.config.MaxWorkers)
	assert.Equal(t, defaults.QueueSize, fw.config.QueueSize)
	assert.Equal(t, defaults.MaxAttempts, fw.config.MaxAttempts)
	assert.Equal(t, defaults.QueueSize, cap(fw.jobQueue))
}

func TestFetchWorker_StoresBatch(t *testing.T) {
	sink := &recordingSink{}
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return batchWithItems(url, 3), nil
	}, sink, time.Millisecond, 3)

	id, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "job IDs are UUIDs")

	waitDone(t, fw)

	stored := sink.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, "https://example.com/feed.xml", stored[0].URL)

	rep := <-rec.ch
	assert.Equal(t, OutcomeStored, rep.Outcome)
	assert.Equal(t, id, rep.Job.ID)
	assert.Equal(t, 3, rep.Items)
	assert.Equal(t, Stats{Stored: 1}, fw.Stats())
}

func TestFetchWorker_RequeuesRetryableErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	sink := &recordingSink{}
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, &errors.RateLimitError{URL: url}
		}
		return batchWithItems(url, 1), nil
	}, sink, 10*time.Millisecond, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	waitDone(t, fw)

	assert.Equal(t, []Outcome{OutcomeRequeued, OutcomeStored}, rec.outcomes())
	first := <-rec.ch
	assert.Equal(t, 10*time.Millisecond, first.Delay)
	assert.Equal(t, 1, first.Job.Attempt)
	second := <-rec.ch
	assert.Equal(t, 2, second.Job.Attempt)
	assert.Equal(t, first.Job.ID, second.Job.ID)

	assert.Len(t, sink.stored(), 1)
	assert.Equal(t, Stats{Stored: 1, Requeued: 1}, fw.Stats())
}

func TestFetchWorker_DropsAfterMaxAttempts(t *testing.T) {
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return nil, &errors.RateLimitError{URL: url}
	}, &recordingSink{}, time.Millisecond, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	waitDone(t, fw)

	assert.Equal(t, []Outcome{OutcomeRequeued, OutcomeRequeued, OutcomeDropped}, rec.outcomes())
	assert.Equal(t, Stats{Requeued: 2, Dropped: 1}, fw.Stats())
}

func TestFetchWorker_DropsTerminalErrors(t *testing.T) {
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return nil, errors.WrapError(&errors.GuardedPageError{URL: url, Signature: "cloudflare"}, "fetch")
	}, &recordingSink{}, time.Millisecond, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	waitDone(t, fw)

	rep := <-rec.ch
	assert.Equal(t, OutcomeDropped, rep.Outcome)
	assert.True(t, errors.IsGuarded(rep.Err))
	assert.Equal(t, Stats{Dropped: 1}, fw.Stats())
}

func TestFetchWorker_FailsUnclassifiedErrors(t *testing.T) {
	fw, rec := newTestWorker(t, func(context.Context, string) (*domain.Batch, error) {
		return nil, &errors.ExternalAPIError{StatusCode: 404, Message: "Not Found", API: "example.com"}
	}, &recordingSink{}, time.Millisecond, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	waitDone(t, fw)

	rep := <-rec.ch
	assert.Equal(t, OutcomeFailed, rep.Outcome)
	assert.True(t, errors.IsExternalAPI(rep.Err))
}

func TestFetchWorker_SinkErrorFails(t *testing.T) {
	sinkErr := stderrors.New("disk full")
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return batchWithItems(url, 1), nil
	}, &recordingSink{err: sinkErr}, time.Millisecond, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)
	waitDone(t, fw)

	rep := <-rec.ch
	assert.Equal(t, OutcomeFailed, rep.Outcome)
	assert.ErrorIs(t, rep.Err, sinkErr)
	assert.Equal(t, Stats{Failed: 1}, fw.Stats())
}

func TestFetchWorker_SubmitBeforeStart(t *testing.T) {
	fw := NewFetchWorker(nil, &recordingSink{}, fixedDelay(0), nil, WorkerConfig{})

	_, err := fw.Submit("https://example.com/feed.xml")
	assert.Equal(t, ErrWorkerNotRunning, err)
}

func TestFetchWorker_StartAfterStop(t *testing.T) {
	fw := NewFetchWorker(nil, &recordingSink{}, fixedDelay(0), nil, WorkerConfig{MaxWorkers: 1})
	require.NoError(t, fw.Start())
	require.NoError(t, fw.Start(), "starting twice is a no-op")
	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop(), "stopping twice is a no-op")

	assert.Equal(t, ErrWorkerStopped, fw.Start())
	_, err := fw.Submit("https://example.com/feed.xml")
	assert.Equal(t, ErrWorkerNotRunning, err)
}

func TestFetchWorker_StopDropsScheduledRequeues(t *testing.T) {
	fw, rec := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return nil, &errors.RateLimitError{URL: url, RetryAfter: time.Hour}
	}, &recordingSink{}, time.Hour, 3)

	_, err := fw.Submit("https://example.com/feed.xml")
	require.NoError(t, err)

	select {
	case rep := <-rec.ch:
		require.Equal(t, OutcomeRequeued, rep.Outcome)
		assert.Equal(t, time.Hour, rep.Delay)
	case <-time.After(5 * time.Second):
		t.Fatal("job was not requeued")
	}

	require.NoError(t, fw.Stop())
	waitDone(t, fw)

	rep := <-rec.ch
	assert.Equal(t, OutcomeDropped, rep.Outcome)
	assert.ErrorIs(t, rep.Err, context.Canceled)
	assert.Equal(t, Stats{Requeued: 1, Dropped: 1}, fw.Stats())
}

func TestFetchWorker_ManyJobs(t *testing.T) {
	sink := &recordingSink{}
	fw, _ := newTestWorker(t, func(_ context.Context, url string) (*domain.Batch, error) {
		return batchWithItems(url, 1), nil
	}, sink, time.Millisecond, 3)

	ids := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := fw.Submit("https://example.com/feed.xml")
		require.NoError(t, err)
		ids[id] = true
	}
	waitDone(t, fw)

	assert.Len(t, ids, 20)
	assert.Len(t, sink.stored(), 20)
	assert.Equal(t, int64(20), fw.Stats().Stored)
}
