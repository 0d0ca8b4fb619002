package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/core/interfaces"
	"github.com/stretchr/testify/mock"
)

// mockHTTPClient is a testify mock of interfaces.HTTPClient
type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	args := m.Called(ctx, url)
	resp, _ := args.Get(0).(interfaces.Response)
	return resp, args.Error(1)
}

// mockResponse is a canned interfaces.Response
type mockResponse struct {
	statusCode int
	body       string
	headers    http.Header
	finalURL   string
}

func (r *mockResponse) StatusCode() int { return r.statusCode }
func (r *mockResponse) Body() io.ReadCloser { return io.NopCloser(strings.NewReader(r.body)) }
func (r *mockResponse) Header(k string) string { return r.headers.Get(k) }
func (r *mockResponse) Headers() http.Header { return r.headers }
func (r *mockResponse) FinalURL() string { return r.finalURL }

// mockCoolDowns records calls made by the rate limit steps
type mockCoolDowns struct {
	mock.Mock
}

func (m *mockCoolDowns) CheckRateLimit(ctx context.Context, rawURL string) error {
	return m.Called(ctx, rawURL).Error(0)
}

func (m *mockCoolDowns) MarkRateLimited(ctx context.Context, rawURL string, seconds int) error {
	return m.Called(ctx, rawURL, seconds).Error(0)
}

// memoryCache is a minimal interfaces.Cache
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	return c.ttls[key], nil
}
