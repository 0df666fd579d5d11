// Package api implements the client side of the workflow persistence API.
//
// # Overview
//
// The editor core treats persistence as three opaque async calls:
// [Client.GetWorkflow], [Client.SaveWorkflow], and
// [Client.ValidateWorkflow]. This package owns those calls, the wire
// shapes they exchange, retry policy, and response caching. It is used by
// the edit session (save + validate round trips) and by the CLI commands
// that fetch or push workflow definitions.
//
// # Retry Policy
//
// Read operations (get, list, validate) retry transient failures with
// exponential backoff: network errors, 5xx responses, and 429 rate
// limits. Saves are never retried automatically; a failed save is
// reported once and the session keeps its dirty flag set until the user
// retriggers it.
//
// # Caching
//
// Fetched workflows are cached through a [cache.Cache] so repeated CLI
// invocations don't refetch unchanged definitions. A successful save
// invalidates the cached entry for that workflow. Validation responses
// are never cached.
//
// # Error Mapping
//
// HTTP statuses map onto structured errors: 404 becomes
// ErrCodeWorkflowNotFound, 401/403 become auth errors, 429 carries the
// Retry-After delay as an [errors.RateLimitedError], and 5xx wraps as a
// retryable network error.
package api
