package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// WorkflowKey
	wk := k.WorkflowKey("wf_1")
	if wk != "workflow:wf_1" {
		t.Errorf("WorkflowKey unexpected: %s", wk)
	}

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "TB", RankGap: 90})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "LR", RankGap: 90})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// Same inputs produce the same key
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "TB", RankGap: 90})
	if lk1 != lk3 {
		t.Error("LayoutKey should be deterministic")
	}

	// ValidationKey
	vk1 := k.ValidationKey("hash123")
	vk2 := k.ValidationKey("hash456")
	if vk1 == vk2 {
		t.Error("Different graph hashes should produce different validation keys")
	}

	// ExportKey
	ek1 := k.ExportKey("wf_1", "svg")
	ek2 := k.ExportKey("wf_1", "dot")
	if ek1 == ek2 {
		t.Error("Different formats should produce different export keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	wk := scoped.WorkflowKey("wf_1")
	if wk != "user:123:workflow:wf_1" {
		t.Errorf("ScopedKeyer WorkflowKey unexpected: %s", wk)
	}

	lk := scoped.LayoutKey("hash123", LayoutKeyOpts{})
	if len(lk) < 15 || lk[:9] != "user:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}

	vk := scoped.ValidationKey("hash123")
	if vk != "user:123:validation:hash123" {
		t.Errorf("ScopedKeyer ValidationKey unexpected: %s", vk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.WorkflowKey("wf_1")
	if key != "prefix:workflow:wf_1" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer c.Close()

	// Miss on empty cache
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Empty cache should miss")
	}

	// Set then hit
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Expected cache hit")
	}
	if string(data) != "value" {
		t.Errorf("Unexpected data: %s", data)
	}

	// Returned slice is a copy
	data[0] = 'X'
	data2, _, _ := c.Get(ctx, "key")
	if string(data2) != "value" {
		t.Error("Get should return a copy, not the stored slice")
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Deleted entry should miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be removed on read, Len = %d", c.Len())
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	defer c.Close()

	if err := c.Set(ctx, "a", []byte("1"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("2"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Inserting a third key evicts one of the existing entries
	if err := c.Set(ctx, "c", []byte("3"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if c.Len() > 2 {
		t.Errorf("Cache should stay within max entries, Len = %d", c.Len())
	}

	// Overwriting an existing key never evicts
	if err := c.Set(ctx, "c", []byte("4"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, _ := c.Get(ctx, "c")
	if !hit || string(data) != "4" {
		t.Errorf("Overwritten entry should survive: hit=%v data=%s", hit, data)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss on empty cache
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Empty cache should miss")
	}

	// Set then hit
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Expected cache hit")
	}
	if string(data) != "value" {
		t.Errorf("Unexpected data: %s", data)
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Deleted entry should miss")
	}

	// Deleting a missing entry is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key should be nil: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Error("Zero-TTL entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Corrupt the entry on disk
	path := c.path("key")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("corrupt write error: %v", err)
	}

	// Corrupt entries are treated as misses and removed
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Corrupt entry should be a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Corrupt entry should be removed from disk")
	}

	// Entries land in hash-based subdirectories
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("Cache root should hold only subdirectories, found %s", e.Name())
		}
		if len(e.Name()) != 2 {
			t.Errorf("Subdirectory name should be a 2-char hash prefix, got %s", e.Name())
		}
	}
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "test:")
	defer c.Close()

	// Miss on empty cache
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Empty cache should miss")
	}

	// Set then hit
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Expected cache hit")
	}
	if string(data) != "value" {
		t.Errorf("Unexpected data: %s", data)
	}

	// Keys are stored under the configured prefix
	if !mr.Exists("test:key") {
		t.Error("Entry should be stored under the prefix")
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Deleted entry should miss")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "")
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Advance miniredis past the TTL
	mr.FastForward(2 * time.Minute)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}
}
