package secrets

import (
	"fmt"
	"testing"
	"time"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10})

	cache.Set("key", "value")

	value, ok := cache.Get("key")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if value != "value" {
		t.Errorf("expected 'value', got %q", value)
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10})

	if _, ok := cache.Get("absent"); ok {
		t.Error("expected cache miss")
	}
}

func TestCacheDisabled(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: false})

	cache.Set("key", "value")

	if _, ok := cache.Get("key"); ok {
		t.Error("expected miss from disabled cache")
	}
	if cache.Size() != 0 {
		t.Errorf("expected size 0, got %d", cache.Size())
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: 10 * time.Millisecond, MaxSize: 10})

	cache.Set("key", "value")
	time.Sleep(30 * time.Millisecond)

	if _, ok := cache.Get("key"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 3})

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("key-%d", i), "value")
		// Later entries expire later, so key-0 is the eviction victim.
		time.Sleep(2 * time.Millisecond)
	}

	cache.Set("key-3", "value")

	if cache.Size() != 3 {
		t.Errorf("expected size 3 after eviction, got %d", cache.Size())
	}
	if _, ok := cache.Get("key-0"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := cache.Get("key-3"); !ok {
		t.Error("expected newest entry to be present")
	}
}

func TestCacheClearAndDelete(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10})

	cache.Set("a", "1")
	cache.Set("b", "2")

	cache.Delete("a")
	if _, ok := cache.Get("a"); ok {
		t.Error("expected deleted entry to miss")
	}
	if cache.Size() != 1 {
		t.Errorf("expected size 1, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", cache.Size())
	}
}
