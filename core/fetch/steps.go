package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/core/interfaces"
)

// Step names, in their required order
const (
	StepRateLimitPreflight = "rate-limit-preflight"
	StepResponseCache      = "response-cache"
	StepPerformFetch       = "perform-fetch"
	StepGuardDetection     = "guard-detection"
	StepResponseRateLimit  = "response-rate-limit"
)

// DefaultMaxBodyBytes bounds how much of a response body is read
const DefaultMaxBodyBytes = 10 << 20

// CoolDowns is the narrow view of the rate limit store used by the pipeline
type CoolDowns interface {
	CheckRateLimit(ctx context.Context, rawURL string) error
	MarkRateLimited(ctx context.Context, rawURL string, durationSeconds int) error
}

// DurationFunc derives a cool-down in seconds from response headers
type DurationFunc func(headers http.Header, fallbackSeconds int) int

// RateLimitPreflight aborts the attempt while the URL's domain is cooling down
func RateLimitPreflight(store CoolDowns) Step {
	return Step{
		Name: StepRateLimitPreflight,
		Run: func(ctx context.Context, a *Attempt, next Next) error {
			if err := store.CheckRateLimit(ctx, a.URL); err != nil {
				return err
			}
			return next(ctx, a)
		},
	}
}

// PerformFetch reads the response for a.URL through client.
// Transport errors are returned untouched.
func PerformFetch(client interfaces.HTTPClient, maxBodyBytes int64) Step {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return Step{
		Name: StepPerformFetch,
		Run: func(ctx context.Context, a *Attempt, next Next) error {
			if a.Result != nil {
				return next(ctx, a)
			}

			resp, err := client.Get(ctx, a.URL)
			if err != nil {
				return err
			}
			body := resp.Body()
			defer body.Close()

			data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
			if err != nil {
				return errors.WrapError(err, "failed to read response body")
			}

			finalURL := resp.FinalURL()
			if finalURL == "" {
				finalURL = a.URL
			}
			a.Result = &Result{
				StatusCode: resp.StatusCode(),
				Header:     resp.Headers(),
				Body:       data,
				FinalURL:   finalURL,
			}
			return next(ctx, a)
		},
	}
}

// GuardDetection rejects bot-defense pages and URLs with terminal errors
func GuardDetection(detector *GuardDetector, logger interfaces.Logger) Step {
	return Step{
		Name: StepGuardDetection,
		Run: func(ctx context.Context, a *Attempt, next Next) error {
			if err := detector.Check(a); err != nil {
				if logger != nil {
					sig, _ := errors.GuardSignature(err)
					logger.Warn("Guarded response detected", map[string]interface{}{
						"url":       a.URL,
						"signature": sig,
					})
				}
				return err
			}
			return next(ctx, a)
		},
	}
}

// ResponseRateLimit records a cool-down for rate-limited responses and returns
// a retryable *errors.RateLimitError
func ResponseRateLimit(store CoolDowns, duration DurationFunc, fallbackSeconds int) Step {
	return Step{
		Name: StepResponseRateLimit,
		Run: func(ctx context.Context, a *Attempt, next Next) error {
			if a.Result == nil || !IsRateLimitedResponse(a.Result) {
				return next(ctx, a)
			}

			seconds := duration(a.Result.Header, fallbackSeconds)
			if err := store.MarkRateLimited(ctx, a.URL, seconds); err != nil {
				return err
			}
			return &errors.RateLimitError{URL: a.URL, RetryAfter: time.Duration(seconds) * time.Second}
		},
	}
}

// IsRateLimitedResponse reports 429, or 503 carrying Retry-After
func IsRateLimitedResponse(r *Result) bool {
	switch r.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusServiceUnavailable:
		return r.Header.Get("Retry-After") != ""
	}
	return false
}

// ResponseCache serves recent successful results from cache and stores new ones.
// A cache hit fills a.Result so the fetch step delegates without work.
func ResponseCache(cache interfaces.Cache, ttl time.Duration, logger interfaces.Logger) Step {
	return Step{
		Name: StepResponseCache,
		Run: func(ctx context.Context, a *Attempt, next Next) error {
			if a.Result != nil {
				return next(ctx, a)
			}

			key := responseKey(a.URL)
			if data, err := cache.Get(ctx, key); err == nil {
				var cached Result
				if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
					cached.Cached = true
					a.Result = &cached
				}
			}

			if err := next(ctx, a); err != nil {
				return err
			}

			if a.Result == nil || a.Result.Cached || a.Result.StatusCode != http.StatusOK {
				return nil
			}
			data, err := json.Marshal(a.Result)
			if err != nil {
				return nil
			}
			if err := cache.Set(ctx, key, data, ttl); err != nil && logger != nil {
				logger.Warn("Failed to cache response", map[string]interface{}{
					"url":   a.URL,
					"error": err.Error(),
				})
			}
			return nil
		},
	}
}

func responseKey(url string) string {
	return fmt.Sprintf("response:%s", url)
}
