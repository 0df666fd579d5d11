// Package httputil provides retry support for HTTP clients.
//
// [Retry] runs a call with exponential backoff for transient failures:
// network errors, 5xx server responses, and 429 rate limits. The caller
// marks an error transient by wrapping it in [RetryableError] inside the
// closure; all other errors abort immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return doRequest()
//	})
//
// [RetryWithBackoff] applies the persistence client defaults: 3 attempts
// starting at 1 second, doubling after each retry.
package httputil
