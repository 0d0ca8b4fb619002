package ratelimit

import (
	"context"
	"sync"
	"time"

	"digests-ingest/core/errors"
	"github.com/stretchr/testify/mock"
)

// fakeCache is an in-memory TTL store with a fixed clock
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	values  map[string][]byte
	expires map[string]time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		values:  make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeCache) live(key string) bool {
	exp, ok := c.expires[key]
	return !ok || c.now.Before(exp)
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok || !c.live(key) {
		return nil, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	if ttl > 0 {
		c.expires[key] = c.now.Add(ttl)
	} else {
		delete(c.expires, key)
	}
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	delete(c.expires, key)
	return nil
}

func (c *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok || !c.live(key) {
		return 0, &errors.NotFoundError{Resource: "cache key", ID: key}
	}
	exp, ok := c.expires[key]
	if !ok {
		return 0, nil
	}
	return exp.Sub(c.now), nil
}

// mockCache lets tests script store failures
type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

// recordingLogger keeps warn messages
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, map[string]interface{}) {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}
func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}
