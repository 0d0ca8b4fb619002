// Package core contains the feed ingestion logic.
// It has no knowledge of HTTP servers, databases or schedulers; every external
// dependency is injected through the contracts in core/interfaces.
//
// The core package is organized into several sub-packages:
//
// - domain: Canonical feed, item, JSON Feed and OPML types
// - parsers: RSS-family, JSON Feed and OPML parsers
// - sanitize: Script/style stripping and plain-text rendering
// - fetch: The resilience pipeline and bot-defense detection
// - ratelimit: Per-domain cool-downs kept in a TTL store
// - feed: Format detection and the ingestion service
// - workers: A fetch worker pool that requeues retryable failures
// - errors: Typed errors and their retry classification
// - interfaces: Contracts for the TTL store, HTTP client, logger and sink
//
// # Usage Example
//
//	deps := interfaces.Dependencies{
//	    Cache:      store,      // implements interfaces.Cache
//	    HTTPClient: httpClient, // implements interfaces.HTTPClient
//	    Logger:     logger,     // implements interfaces.Logger
//	}
//
//	service, err := feed.NewService(deps, feed.Options{FallbackSeconds: 60})
//	if err != nil {
//	    return err
//	}
//
//	batch, err := service.Ingest(ctx, "https://example.com/feed.xml")
//	if errors.IsRetryable(err) {
//	    // requeue after service.RateLimits().GetRateLimitDelay(ctx, url)
//	}
package core
