package feed

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"digests-ingest/core/errors"
	"digests-ingest/core/interfaces"
)

// mockHTTPClient is a mock implementation of the HTTPClient interface
type mockHTTPClient struct {
	mu      sync.Mutex
	calls   []string
	getFunc func(ctx context.Context, url string) (interfaces.Response, error)
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()
	if m.getFunc != nil {
		return m.getFunc(ctx, url)
	}
	return nil, nil
}

func (m *mockHTTPClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// respond returns a client that always answers with the given status, body and headers
func respond(status int, body string, headers http.Header) *mockHTTPClient {
	return &mockHTTPClient{
		getFunc: func(ctx context.Context, url string) (interfaces.Response, error) {
			return &mockResponse{statusCode: status, body: body, headers: headers}, nil
		},
	}
}

// mockResponse is a mock implementation of the Response interface
type mockResponse struct {
	statusCode int
	body       string
	headers    http.Header
	finalURL   string
}

func (m *mockResponse) StatusCode() int { return m.statusCode }
func (m *mockResponse) Body() io.ReadCloser { return io.NopCloser(strings.NewReader(m.body)) }
func (m *mockResponse) Header(key string) string { return m.headers.Get(key) }
func (m *mockResponse) Headers() http.Header { return m.headers }
func (m *mockResponse) FinalURL() string { return m.finalURL }

// ttlCache is an in-process TTL store
type ttlCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	expires map[string]time.Time
}

func newTTLCache() *ttlCache {
	return &ttlCache{data: map[string][]byte{}, expires: map[string]time.Time{}}
}

func (c *ttlCache) live(key string) bool {
	exp, ok := c.expires[key]
	if !ok {
		_, ok = c.data[key]
		return ok
	}
	return time.Now().Before(exp)
}

func (c *ttlCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(key) {
		return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	return c.data[key], nil
}

func (c *ttlCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	if ttl > 0 {
		c.expires[key] = time.Now().Add(ttl)
	} else {
		delete(c.expires, key)
	}
	return nil
}

func (c *ttlCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.expires, key)
	return nil
}

func (c *ttlCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(key) {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	exp, ok := c.expires[key]
	if !ok {
		return 0, nil
	}
	return time.Until(exp), nil
}

// mockLogger records log messages by level
type mockLogger struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newMockLogger() *mockLogger {
	return &mockLogger{messages: map[string][]string{}}
}

func (m *mockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[level] = append(m.messages[level], msg)
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) { m.record("debug", msg) }
func (m *mockLogger) Info(msg string, fields map[string]interface{}) { m.record("info", msg) }
func (m *mockLogger) Warn(msg string, fields map[string]interface{}) { m.record("warn", msg) }
func (m *mockLogger) Error(msg string, fields map[string]interface{}) { m.record("error", msg) }

func (m *mockLogger) at(level string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages[level]...)
}
