// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package.
//
// - cache/memory: In-process TTL store on go-cache
// - cache/redis: Shared TTL store on Redis
// - cache/sqlite: Durable single-node TTL store
// - http/standard: HTTP client that retries gateway errors
// - logger/structured: logrus logger with optional file rotation
//
// # TTL stores
//
// All stores return *errors.NotFoundError on a miss and report a TTL of zero
// for keys without expiry:
//
//	store := memory.NewMemoryCache()
//	err := store.Set(ctx, "ratelimit:example.com", []byte("1"), 2*time.Minute)
//	ttl, err := store.TTL(ctx, "ratelimit:example.com")
//
// # HTTP Client
//
// 500, 502 and 504 responses are retried. 429 and 503 are returned as-is so
// their Retry-After headers reach the rate-limit step:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second).WithUserAgent("my-bot/1.0")
//	resp, err := client.Get(ctx, "https://example.com/feed.xml")
//	if err != nil {
//	    return err
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger, err := structured.New(structured.Options{Level: "info", Format: "json"})
//	logger.Info("Ingested feed", map[string]interface{}{
//	    "url":   feedURL,
//	    "items": 12,
//	})
package infrastructure
