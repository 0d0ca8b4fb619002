// ABOUTME: Ingestion service fetches feeds through the resilience pipeline and normalizes them
// ABOUTME: Produces sanitized batches for the storage layer independent of any scheduler

package feed

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"digests-ingest/core/domain"
	"digests-ingest/core/errors"
	"digests-ingest/core/fetch"
	"digests-ingest/core/interfaces"
	"digests-ingest/core/ratelimit"
	"digests-ingest/core/sanitize"
	"digests-ingest/pkg/featureflags"
)

// maxConcurrentIngests bounds IngestAll
const maxConcurrentIngests = 10

// Options configures a Service
type Options struct {
	// FallbackSeconds is the cool-down when a rate-limited response has no usable headers
	FallbackSeconds int

	// DefaultDelay is the requeue delay when no cool-down is recorded
	DefaultDelay time.Duration

	// MaxBodyBytes bounds how much of a response is read
	MaxBodyBytes int64

	// ResponseCacheTTL is used when the response cache flag is on
	ResponseCacheTTL time.Duration

	// Guards are the bot-defense signatures; nil uses the defaults
	Guards []fetch.GuardSignature

	// Flags switches optional steps; nil reads FEATURE_* variables
	Flags featureflags.Manager

	// Strict validates JSON Feed and OPML bodies against their versioned schemas
	Strict bool
}

// Service ingests feed URLs
type Service struct {
	deps       interfaces.Dependencies
	pipeline   *fetch.Pipeline
	rateLimits *ratelimit.Store
	decoder    Decoder
	flags      featureflags.Manager
	now        func() time.Time
}

// NewService wires the fetch pipeline from deps and opts.
// Step flags are read once here; summary flags are read per ingest.
func NewService(deps interfaces.Dependencies, opts Options) (*Service, error) {
	if deps.HTTPClient == nil {
		return nil, stderrors.New("feed service requires an HTTP client")
	}
	if deps.Cache == nil {
		return nil, stderrors.New("feed service requires a TTL store")
	}

	flags := opts.Flags
	if flags == nil {
		flags = featureflags.NewEnvManager("")
	}
	guards := opts.Guards
	if guards == nil {
		guards = fetch.DefaultSignatures()
	}
	detector, err := fetch.NewGuardDetector(guards...)
	if err != nil {
		return nil, err
	}
	store := ratelimit.NewStore(deps).WithDefaultDelay(opts.DefaultDelay)

	ctx := context.Background()
	var steps []fetch.Step
	if flags.IsEnabled(ctx, featureflags.RateLimitPreflight) {
		steps = append(steps, fetch.RateLimitPreflight(store))
	}
	if flags.IsEnabled(ctx, featureflags.ResponseCache) && opts.ResponseCacheTTL > 0 {
		steps = append(steps, fetch.ResponseCache(deps.Cache, opts.ResponseCacheTTL, deps.Logger))
	}
	steps = append(steps, fetch.PerformFetch(deps.HTTPClient, opts.MaxBodyBytes))
	if flags.IsEnabled(ctx, featureflags.GuardDetection) {
		steps = append(steps, fetch.GuardDetection(detector, deps.Logger))
	}
	steps = append(steps, fetch.ResponseRateLimit(store, ratelimit.GetRateLimitDuration, opts.FallbackSeconds))

	return &Service{
		deps:       deps,
		pipeline:   fetch.NewPipeline(deps.Logger, steps...),
		rateLimits: store,
		decoder:    Decoder{Strict: opts.Strict},
		flags:      flags,
		now:        time.Now,
	}, nil
}

// RateLimits exposes the cool-down store the pipeline writes to
func (s *Service) RateLimits() *ratelimit.Store {
	return s.rateLimits
}

// Steps lists the pipeline steps in execution order
func (s *Service) Steps() []string {
	return s.pipeline.StepNames()
}

// Ingest fetches feedURL and returns its normalized batch.
// Rate limits come back as retryable errors and guard pages as terminal ones;
// other non-2xx statuses become *errors.ExternalAPIError.
func (s *Service) Ingest(ctx context.Context, feedURL string) (*domain.Batch, error) {
	parsed, err := url.Parse(feedURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &errors.ValidationError{Field: "url", Message: "invalid feed URL: " + feedURL}
	}

	result, err := s.pipeline.Execute(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	if result.StatusCode < 200 || result.StatusCode > 299 {
		return nil, &errors.ExternalAPIError{
			StatusCode: result.StatusCode,
			Message:    http.StatusText(result.StatusCode),
			API:        parsed.Hostname(),
		}
	}

	batch, err := s.decoder.Decode(result.Body)
	if err != nil {
		s.log().Warn("Failed to decode feed", map[string]interface{}{
			"url":   feedURL,
			"error": err.Error(),
		})
		return nil, errors.WrapError(err, "failed to decode "+feedURL)
	}

	batch.URL = feedURL
	batch.FinalURL = result.FinalURL
	batch.FetchedAt = s.now().UTC()
	s.Sanitize(ctx, batch)

	s.log().Info("Ingested feed", map[string]interface{}{
		"url":    feedURL,
		"format": string(batch.Format),
		"items":  batch.ItemCount(),
		"cached": result.Cached,
	})
	return batch, nil
}

// Sanitize cleans item markup in place and fills plain-text summaries when enabled
func (s *Service) Sanitize(ctx context.Context, batch *domain.Batch) {
	if batch == nil || batch.Document == nil {
		return
	}
	summaries := s.flags.IsEnabled(ctx, featureflags.PlainTextSummaries)

	doc := batch.Document
	doc.Channel.Description = sanitize.PlainText(doc.Channel.Description)
	for i := range doc.Items {
		item := &doc.Items[i]
		item.Title = sanitize.PlainText(item.Title)
		item.Description = sanitize.SafeHTML(item.Description)
		item.Content = sanitize.SafeHTML(item.Content)
		if summaries {
			item.Summary = sanitize.PlainText(firstNonEmpty(item.Description, item.Content))
		}
	}
}

type ingestResult struct {
	batch *domain.Batch
	err   error
	url   string
}

// IngestAll ingests urls concurrently and returns the batches that succeeded.
// Failures are logged and skipped; only context cancellation is returned.
func (s *Service) IngestAll(ctx context.Context, urls []string) ([]*domain.Batch, error) {
	if len(urls) == 0 {
		return []*domain.Batch{}, nil
	}

	results := make(chan ingestResult, len(urls))
	semaphore := make(chan struct{}, maxConcurrentIngests)
	var wg sync.WaitGroup

	for _, u := range urls {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results <- ingestResult{url: feedURL, err: ctx.Err()}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			batch, err := s.Ingest(ctx, feedURL)
			results <- ingestResult{batch: batch, err: err, url: feedURL}
		}(u)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	batches := make([]*domain.Batch, 0, len(urls))
	var canceled error
	for r := range results {
		if r.err != nil {
			if stderrors.Is(r.err, context.Canceled) || stderrors.Is(r.err, context.DeadlineExceeded) {
				if canceled == nil {
					canceled = r.err
				}
				continue
			}
			s.log().Error("Failed to ingest feed", map[string]interface{}{
				"url":       r.url,
				"error":     r.err.Error(),
				"retryable": errors.IsRetryable(r.err),
			})
			continue
		}
		batches = append(batches, r.batch)
	}

	return batches, canceled
}

func (s *Service) log() interfaces.Logger {
	if s.deps.Logger == nil {
		return nopLogger{}
	}
	return s.deps.Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}
