package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when several users or environments share one cache
// backend and need separate namespaces.
//
// Example usage:
//
//	// User-specific keys for private workflows
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared templates
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// WorkflowKey generates a prefixed key for workflow definition caching.
func (k *ScopedKeyer) WorkflowKey(workflowID string) string {
	return k.prefix + k.inner.WorkflowKey(workflowID)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ValidationKey generates a prefixed key for validation result caching.
func (k *ScopedKeyer) ValidationKey(graphHash string) string {
	return k.prefix + k.inner.ValidationKey(graphHash)
}

// ExportKey generates a prefixed key for rendered export caching.
func (k *ScopedKeyer) ExportKey(workflowID, format string) string {
	return k.prefix + k.inner.ExportKey(workflowID, format)
}
