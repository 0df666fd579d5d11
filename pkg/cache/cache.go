// Package cache provides the byte-level cache used by the editor, the
// CLI, and the dev server, with pluggable backends.
//
// [Cache] is the storage interface. [Keyer] builds namespaced keys for
// the artifacts callflow caches: fetched workflow definitions, computed
// layouts, validation results, and rendered exports. Backends:
//
//   - [NewMemoryCache]: in-process map with TTL, for the dev server
//   - [NewFileCache]: directory of JSON entries, for the CLI
//   - [NewRedisCache]: shared cache for multi-instance deployments
//   - [NewNullCache]: disables caching
//
// Keys from different key methods never collide: each carries its own
// prefix. Use [NewScopedKeyer] to add tenant or environment prefixes on
// top.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes and true on a hit. A miss is
	// (nil, false, nil); a non-nil error indicates a backend failure,
	// never a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 or less means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the layout options that affect computed positions.
// Two layouts share a cache entry only when every field matches.
type LayoutKeyOpts struct {
	Direction  string
	NodeWidth  float64
	NodeHeight float64
	RankGap    float64
	NodeGap    float64
	Zigzag     float64
}

// Keyer builds cache keys for callflow's cacheable artifacts.
type Keyer interface {
	// WorkflowKey identifies a fetched workflow definition.
	WorkflowKey(workflowID string) string

	// LayoutKey identifies a computed layout for a graph content hash
	// and the options that produced it.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ValidationKey identifies a validation result for a graph content
	// hash.
	ValidationKey(graphHash string) string

	// ExportKey identifies a rendered export of a workflow.
	ExportKey(workflowID, format string) string
}

// DefaultKeyer is the standard key scheme. Simple identifiers embed
// directly; composite inputs are hashed so option changes always produce
// new keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// WorkflowKey generates a key for a fetched workflow definition.
func (k *DefaultKeyer) WorkflowKey(workflowID string) string {
	return "workflow:" + workflowID
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ValidationKey generates a key for a validation result.
func (k *DefaultKeyer) ValidationKey(graphHash string) string {
	return "validation:" + graphHash
}

// ExportKey generates a key for a rendered export.
func (k *DefaultKeyer) ExportKey(workflowID, format string) string {
	return hashKey("export", workflowID, format)
}
