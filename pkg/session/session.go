// Package session persists editor draft snapshots so a crashed or closed
// editor can be recovered.
//
// This package defines the draft storage interface with implementations
// for different backends:
//   - memory: in-memory storage for tests and throwaway sessions
//   - file: file-based storage for the CLI editor
//   - redis: Redis-backed storage for shared or multi-instance setups
//
// # Architecture
//
// The edit session writes a draft after every structural transition. A
// draft carries the workflow definition, the dirty flag, and an expiry;
// stale drafts age out so an abandoned editing session doesn't resurrect
// weeks later. Drafts are keyed by workflow id: one recoverable draft per
// workflow, newest write wins.
//
// # Usage
//
// Create a store:
//
//	// Tests
//	store := session.NewMemoryStore()
//
//	// CLI
//	store, err := session.NewFileStore("") // uses ~/.config/callflow/drafts/
//
//	// Shared
//	store := session.NewRedisStore(client, "")
//
// Persist and recover:
//
//	draft := session.NewDraft("wf_1", name, def, dirty)
//	store.Set(ctx, draft)
//
//	draft, err := store.Get(ctx, "wf_1")
//	if draft == nil {
//	    // nothing to recover
//	}
package session

import (
	"context"
	"time"

	"github.com/voxhive/callflow/pkg/graphio"
)

// DefaultTTL is how long a draft stays recoverable.
const DefaultTTL = 72 * time.Hour

// Draft is one recoverable editor snapshot.
type Draft struct {
	WorkflowID string             `json:"workflow_id"`
	Name       string             `json:"name,omitempty"`
	Definition graphio.Definition `json:"definition"`
	Dirty      bool               `json:"dirty"`
	SavedAt    time.Time          `json:"saved_at"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// IsExpired reports whether the draft has aged out.
func (d *Draft) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// NewDraft creates a draft snapshot expiring after [DefaultTTL].
func NewDraft(workflowID, name string, def graphio.Definition, dirty bool) *Draft {
	now := time.Now()
	return &Draft{
		WorkflowID: workflowID,
		Name:       name,
		Definition: def,
		Dirty:      dirty,
		SavedAt:    now,
		ExpiresAt:  now.Add(DefaultTTL),
	}
}

// Store is the interface for draft storage backends.
type Store interface {
	// Get retrieves the draft for a workflow.
	// Returns nil, nil if no recoverable draft exists (missing or expired).
	Get(ctx context.Context, workflowID string) (*Draft, error)

	// Set stores a draft, replacing any previous draft for the workflow.
	Set(ctx context.Context, draft *Draft) error

	// Delete removes a draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, workflowID string) error

	// Cleanup removes expired drafts (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
