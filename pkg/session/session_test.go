package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/voxhive/callflow/pkg/graphio"
)

func sampleDraft(workflowID string) *Draft {
	return NewDraft(workflowID, "Support line", graphio.Definition{
		Nodes: []graphio.Node{
			{ID: "n1", Type: "startNode", Data: graphio.NodeData{Label: "Start"}},
			{ID: "n2", Type: "agentNode", Data: graphio.NodeData{Label: "Greet", AllowInterrupt: true}},
		},
		Edges:    []graphio.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		Viewport: graphio.Viewport{Zoom: 1},
	}, true)
}

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	// Missing draft is nil, nil
	d, err := store.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if d != nil {
		t.Fatal("Get() on empty store should return nil draft")
	}

	// Set then Get round-trips
	want := sampleDraft("wf_1")
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := store.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil after Set")
	}
	if got.WorkflowID != "wf_1" || got.Name != "Support line" || !got.Dirty {
		t.Errorf("draft = %+v", got)
	}
	if len(got.Definition.Nodes) != 2 || len(got.Definition.Edges) != 1 {
		t.Errorf("definition = %+v", got.Definition)
	}

	// Newest write wins
	newer := sampleDraft("wf_1")
	newer.Name = "Renamed"
	if err := store.Set(ctx, newer); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, _ = store.Get(ctx, "wf_1")
	if got.Name != "Renamed" {
		t.Errorf("name = %q, want Renamed (latest draft should win)", got.Name)
	}

	// Delete removes; deleting again is not an error
	if err := store.Delete(ctx, "wf_1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if d, _ := store.Get(ctx, "wf_1"); d != nil {
		t.Error("Get() after Delete should return nil")
	}
	if err := store.Delete(ctx, "wf_1"); err != nil {
		t.Errorf("repeat Delete() error: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeContract(t, store)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	d := sampleDraft("wf_1")
	d.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Error("expired draft should not be recoverable")
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	fresh := sampleDraft("wf_live")
	stale := sampleDraft("wf_stale")
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, fresh)
	store.Set(ctx, stale)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if d, _ := store.Get(ctx, "wf_live"); d == nil {
		t.Error("Cleanup should keep live drafts")
	}
	if _, ok := store.drafts["wf_stale"]; ok {
		t.Error("Cleanup should remove expired drafts")
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer store.Close()
	storeContract(t, store)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, sampleDraft("wf_1")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	// A new store over the same directory sees the draft: this is the
	// crash-recovery path.
	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	got, err := second.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil || got.Name != "Support line" {
		t.Errorf("recovered draft = %+v", got)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	stale := sampleDraft("wf_stale")
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	// Write the expired draft directly; Set is not expected to reject it
	store.Set(ctx, stale)
	store.Set(ctx, sampleDraft("wf_live"))

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "wf_stale.json")); !os.IsNotExist(err) {
		t.Error("Cleanup should remove the expired draft file")
	}
	if _, err := os.Stat(filepath.Join(dir, "wf_live.json")); err != nil {
		t.Errorf("Cleanup should keep the live draft file: %v", err)
	}
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	d := sampleDraft("wf_1")
	d.WorkflowID = "../escape"
	if err := store.Set(ctx, d); err == nil {
		t.Error("Set() should reject path-traversal workflow ids")
	}
	if _, err := store.Get(ctx, "../escape"); err == nil {
		t.Error("Get() should reject path-traversal workflow ids")
	}
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer store.Close()
	storeContract(t, store)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:draft:")
	defer store.Close()

	if err := store.Set(ctx, sampleDraft("wf_1")); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("test:draft:wf_1") {
		t.Fatal("draft should be stored under the prefix")
	}

	// Advance miniredis past the TTL; Redis expires the key natively
	mr.FastForward(DefaultTTL + time.Hour)

	got, err := store.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got != nil {
		t.Error("expired draft should not be recoverable")
	}
}

func TestRedisStoreSkipsAlreadyExpired(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	defer mr.Close()

	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	defer store.Close()

	d := sampleDraft("wf_1")
	d.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, d); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if mr.Exists(defaultRedisPrefix + "wf_1") {
		t.Error("already-expired draft should not be written")
	}
}
