// ABOUTME: Per-domain cool-down ledger kept in a shared TTL store
// ABOUTME: Workers consult it before fetching and record cool-downs after 429s

package ratelimit

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/core/interfaces"
)

const (
	keyPrefix = "ratelimit:"

	// DefaultDelay is the requeue delay when no cool-down is recorded
	DefaultDelay = 30 * time.Second

	// delayPadding is added to a remaining cool-down so a requeued job lands after it
	delayPadding = 5 * time.Second
)

// Store records and answers domain cool-downs.
// The TTL store is the only source of truth; nothing is cached in process.
type Store struct {
	cache        interfaces.Cache
	logger       interfaces.Logger
	defaultDelay time.Duration
}

// NewStore creates a rate limit store backed by deps.Cache
func NewStore(deps interfaces.Dependencies) *Store {
	return &Store{
		cache:        deps.Cache,
		logger:       deps.Logger,
		defaultDelay: DefaultDelay,
	}
}

// WithDefaultDelay overrides the delay returned when no cool-down is active
func (s *Store) WithDefaultDelay(d time.Duration) *Store {
	if d > 0 {
		s.defaultDelay = d
	}
	return s
}

// DomainOf returns the lower-cased hostname that cool-downs are keyed by
func DomainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &errors.ValidationError{Field: "url", Message: err.Error()}
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &errors.ValidationError{Field: "url", Message: "missing host in " + rawURL}
	}
	return host, nil
}

// MarkRateLimited starts a cool-down of durationSeconds for the URL's domain.
// A non-positive duration records nothing.
func (s *Store) MarkRateLimited(ctx context.Context, rawURL string, durationSeconds int) error {
	domain, err := DomainOf(rawURL)
	if err != nil {
		return err
	}
	if durationSeconds <= 0 {
		return nil
	}

	ttl := time.Duration(durationSeconds) * time.Second
	if err := s.cache.Set(ctx, keyPrefix+domain, []byte(strconv.Itoa(durationSeconds)), ttl); err != nil {
		return errors.WrapError(err, "failed to record cool-down for "+domain)
	}

	s.log().Info("Domain rate limited", map[string]interface{}{
		"domain":  domain,
		"seconds": durationSeconds,
	})
	return nil
}

// CheckRateLimit returns a *errors.RateLimitError while the URL's domain is cooling down.
// Store failures are logged and treated as no cool-down.
func (s *Store) CheckRateLimit(ctx context.Context, rawURL string) error {
	domain, err := DomainOf(rawURL)
	if err != nil {
		return err
	}

	ttl, err := s.cache.TTL(ctx, keyPrefix+domain)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.log().Warn("Rate limit lookup failed", map[string]interface{}{
				"domain": domain,
				"error":  err.Error(),
			})
		}
		return nil
	}

	return &errors.RateLimitError{URL: rawURL, RetryAfter: ttl}
}

// GetRateLimitDelay returns how long a requeued job for rawURL should wait:
// the remaining cool-down plus a small margin, or the default delay.
func (s *Store) GetRateLimitDelay(ctx context.Context, rawURL string) time.Duration {
	domain, err := DomainOf(rawURL)
	if err != nil {
		return s.defaultDelay
	}

	ttl, err := s.cache.TTL(ctx, keyPrefix+domain)
	if err != nil || ttl <= 0 {
		return s.defaultDelay
	}
	return ttl.Truncate(time.Second) + delayPadding
}

func (s *Store) log() interfaces.Logger {
	if s.logger == nil {
		return nopLogger{}
	}
	return s.logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{}) {}
func (nopLogger) Warn(string, map[string]interface{}) {}
func (nopLogger) Error(string, map[string]interface{}) {}
