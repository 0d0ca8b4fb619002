package memory

import (
	"context"
	"testing"
	"time"

	"digests-ingest/core/errors"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "ratelimit:example.com", []byte("300"), time.Hour); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := cache.Get(ctx, "ratelimit:example.com")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != "300" {
		t.Errorf("Get returned %s, want 300", got)
	}
}

func TestMemoryCache_Get_MissingKeyIsNotFound(t *testing.T) {
	cache := NewMemoryCache()

	got, err := cache.Get(context.Background(), "missing")
	if !errors.IsNotFound(err) {
		t.Errorf("Get error = %v, want NotFoundError", err)
	}
	if got != nil {
		t.Error("Get should return nil value for a missing key")
	}
}

func TestMemoryCache_Get_ExpiredKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "short"); !errors.IsNotFound(err) {
		t.Errorf("Get error = %v, want NotFoundError for expired key", err)
	}
	if _, err := cache.TTL(ctx, "short"); !errors.IsNotFound(err) {
		t.Errorf("TTL error = %v, want NotFoundError for expired key", err)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	value := []byte("abc")
	_ = cache.Set(ctx, "k", value, time.Hour)
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed with caller slice: %s", got)
	}
	got[1] = 'y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed with returned slice: %s", again)
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "cool", []byte("60"), time.Minute)
	ttl, err := cache.TTL(ctx, "cool")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl <= 59*time.Second || ttl > time.Minute {
		t.Errorf("TTL = %v, want just under 1m", ttl)
	}

	_ = cache.Set(ctx, "forever", []byte("x"), 0)
	ttl, err = cache.TTL(ctx, "forever")
	if err != nil || ttl != 0 {
		t.Errorf("TTL for key without expiry = %v, %v; want 0, nil", ttl, err)
	}

	if _, err := cache.TTL(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("TTL error = %v, want NotFoundError", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), time.Hour)
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Error("Get should fail for a deleted key")
	}
	if err := cache.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of a missing key returned %v", err)
	}
}

func TestMemoryCache_CanceledContext(t *testing.T) {
	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "k", []byte("v"), time.Hour); err == nil {
		t.Error("Set should fail on a canceled context")
	}
	if _, err := cache.TTL(ctx, "k"); err == nil {
		t.Error("TTL should fail on a canceled context")
	}
}

func TestMemoryCache_Cleanup(t *testing.T) {
	cache := NewMemoryCacheWithCleanup(5 * time.Millisecond)
	ctx := context.Background()

	_ = cache.Set(ctx, "key1", []byte("value1"), 10*time.Millisecond)
	_ = cache.Set(ctx, "key2", []byte("value2"), time.Hour)

	time.Sleep(50 * time.Millisecond)

	if n := cache.Len(); n != 1 {
		t.Errorf("Len after cleanup = %d, want 1", n)
	}
}
