package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voxhive/callflow/pkg/cache"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/httputil"
	"github.com/voxhive/callflow/pkg/observability"
)

const (
	// DefaultBaseURL points at the local dev server (callflow serve).
	DefaultBaseURL = "http://localhost:8787"

	// DefaultCacheTTL bounds how long a fetched workflow is served from
	// cache before a refetch.
	DefaultCacheTTL = 15 * time.Minute

	httpTimeout = 10 * time.Second
)

// Client talks to the workflow persistence API. It handles auth headers,
// retry on transient failures, structured error mapping, and response
// caching for fetched workflows.
type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
}

// NewClient creates a persistence API client. Pass an empty baseURL for
// the local dev server default and an empty token for unauthenticated
// requests. A nil store disables caching.
func NewClient(baseURL, token string, store cache.Cache, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if store == nil {
		store = cache.NewNullCache()
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		baseURL: baseURL,
		token:   token,
		cache:   store,
		// Keys are scoped by server so a client pointed at staging never
		// serves production responses from a shared cache.
		keyer:    cache.NewScopedKeyer(nil, baseURL+":"),
		cacheTTL: cacheTTL,
	}
}

// GetWorkflow fetches a workflow by id. Cached responses are served until
// they expire; pass refresh to bypass the cache. Transient failures are
// retried with backoff.
func (c *Client) GetWorkflow(ctx context.Context, id string, refresh bool) (*Workflow, error) {
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		return nil, err
	}

	key := c.keyer.WorkflowKey(id)
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			var w Workflow
			if err := json.Unmarshal(data, &w); err == nil {
				observability.Cache().OnCacheHit(ctx, "workflow")
				return &w, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "workflow")
	}

	var w Workflow
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, c.url("workflows", id), nil, &w)
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(w); err == nil {
		if c.cache.Set(ctx, key, data, c.cacheTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "workflow")
		}
	}
	return &w, nil
}

// SaveWorkflow pushes a partial update. It is a single attempt: persistence
// failures are reported once so the caller keeps its dirty state and the
// user decides when to retry. A successful save invalidates the cached
// copy of the workflow.
func (c *Client) SaveWorkflow(ctx context.Context, id string, req SaveRequest) error {
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		return err
	}
	if req.Empty() {
		return nil
	}

	if err := c.doJSON(ctx, http.MethodPut, c.url("workflows", id), req, nil); err != nil {
		return err
	}
	_ = c.cache.Delete(ctx, c.keyer.WorkflowKey(id))
	return nil
}

// ValidateWorkflow asks the server to validate the workflow's current
// persisted state. Results are never cached; every call reflects a fresh
// validator pass. Transient failures are retried with backoff.
func (c *Client) ValidateWorkflow(ctx context.Context, id string) (*ValidationResult, error) {
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		return nil, err
	}

	var res ValidationResult
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.doJSON(ctx, http.MethodPost, c.url("workflows", id, "validate"), nil, &res)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListWorkflows fetches summaries of all workflows.
func (c *Client) ListWorkflows(ctx context.Context) ([]WorkflowSummary, error) {
	var out []WorkflowSummary
	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, c.url("workflows"), nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkflow creates a named empty workflow and returns the server's
// resource, including the assigned id.
func (c *Client) CreateWorkflow(ctx context.Context, name string) (*Workflow, error) {
	body := map[string]string{"name": name}
	var w Workflow
	if err := c.doJSON(ctx, http.MethodPost, c.url("workflows"), body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/api/v1/" + strings.Join(parts, "/")
}

// doJSON performs one HTTP round trip: marshal body, send, map status,
// decode into out (skipped when out is nil). Transport errors and 5xx
// come back wrapped as retryable so read paths can back off and retry.
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, method, host, path, err)
		return &httputil.RetryableError{
			Err: apperrors.Wrap(apperrors.ErrCodeNetwork, err, "%s %s", method, path),
		}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus maps HTTP statuses onto the structured error taxonomy.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK || code == http.StatusCreated || code == http.StatusNoContent:
		return nil
	case code == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeWorkflowNotFound, "workflow not found")
	case code == http.StatusUnauthorized:
		return apperrors.New(apperrors.ErrCodeUnauthorized, "authentication required")
	case code == http.StatusForbidden:
		return apperrors.New(apperrors.ErrCodeForbidden, "access denied")
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{
			Err: &apperrors.RateLimitedError{RetryAfter: retryAfter, Message: "persistence API rate limit"},
		}
	case code >= 500:
		return &httputil.RetryableError{
			Err: apperrors.New(apperrors.ErrCodeNetwork, "server error: status %d", code),
		}
	default:
		return apperrors.New(apperrors.ErrCodeNetwork, "unexpected status %d", code)
	}
}
