package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voxhive/callflow/pkg/cache"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/graphio"
	"github.com/voxhive/callflow/pkg/httputil"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "", nil, 0)
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
	if c.cache == nil {
		t.Error("nil store should fall back to a null cache")
	}
	if c.cacheTTL != DefaultCacheTTL {
		t.Errorf("cacheTTL = %v, want %v", c.cacheTTL, DefaultCacheTTL)
	}

	c2 := NewClient("http://example.com/", "tok", cache.NewMemoryCache(0), time.Minute)
	if c2.baseURL != "http://example.com" {
		t.Errorf("trailing slash not trimmed: %q", c2.baseURL)
	}
}

func TestGetWorkflow(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Workflow{
			ID:   "wf_1",
			Name: "Support line",
			Definition: &graphio.Definition{
				Nodes: []graphio.Node{{ID: "n1", Type: "startNode"}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", cache.NewMemoryCache(0), time.Minute)

	w, err := c.GetWorkflow(context.Background(), "wf_1", false)
	if err != nil {
		t.Fatalf("GetWorkflow() error: %v", err)
	}
	if gotPath != "/api/v1/workflows/wf_1" {
		t.Errorf("path = %q, want /api/v1/workflows/wf_1", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q, want Bearer secret", gotAuth)
	}
	if w.Name != "Support line" {
		t.Errorf("name = %q, want Support line", w.Name)
	}
	if w.Definition == nil || len(w.Definition.Nodes) != 1 {
		t.Error("definition not decoded")
	}
}

func TestGetWorkflowCaches(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(Workflow{ID: "wf_1", Name: "v1"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", cache.NewMemoryCache(0), time.Minute)
	ctx := context.Background()

	if _, err := c.GetWorkflow(ctx, "wf_1", false); err != nil {
		t.Fatalf("first GetWorkflow() error: %v", err)
	}
	if _, err := c.GetWorkflow(ctx, "wf_1", false); err != nil {
		t.Fatalf("second GetWorkflow() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (second get should be cached)", calls)
	}

	// refresh bypasses the cache
	if _, err := c.GetWorkflow(ctx, "wf_1", true); err != nil {
		t.Fatalf("refresh GetWorkflow() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", calls)
	}
}

func TestGetWorkflowRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(Workflow{ID: "wf_1", Name: "Support line"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)

	w, err := c.GetWorkflow(context.Background(), "wf_1", false)
	if err != nil {
		t.Fatalf("GetWorkflow() error after transient failure: %v", err)
	}
	if w.Name != "Support line" {
		t.Errorf("name = %q, want Support line", w.Name)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 (one failure, one retry)", calls)
	}
}

func TestGetWorkflowNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)

	_, err := c.GetWorkflow(context.Background(), "ghost", false)
	if !apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound) {
		t.Errorf("error = %v, want ErrCodeWorkflowNotFound", err)
	}
}

func TestGetWorkflowInvalidID(t *testing.T) {
	c := NewClient("", "", nil, 0)
	_, err := c.GetWorkflow(context.Background(), "../etc/passwd", false)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidWorkflow) {
		t.Errorf("error = %v, want ErrCodeInvalidWorkflow", err)
	}
}

func TestSaveWorkflow(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", cache.NewMemoryCache(0), time.Minute)
	ctx := context.Background()

	name := "Renamed"
	err := c.SaveWorkflow(ctx, "wf_1", SaveRequest{Name: &name})
	if err != nil {
		t.Fatalf("SaveWorkflow() error: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotBody["name"] != "Renamed" {
		t.Errorf("body name = %v, want Renamed", gotBody["name"])
	}
	// Rename-only save must not transmit the definition
	if _, ok := gotBody["definition"]; ok {
		t.Error("nil definition should be omitted from the body")
	}
}

func TestSaveWorkflowInvalidatesCache(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fetches++
			json.NewEncoder(w).Encode(Workflow{ID: "wf_1", Name: "v1"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", cache.NewMemoryCache(0), time.Minute)
	ctx := context.Background()

	if _, err := c.GetWorkflow(ctx, "wf_1", false); err != nil {
		t.Fatal(err)
	}
	name := "v2"
	if err := c.SaveWorkflow(ctx, "wf_1", SaveRequest{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetWorkflow(ctx, "wf_1", false); err != nil {
		t.Fatal(err)
	}
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2 (save should invalidate the cached copy)", fetches)
	}
}

func TestSaveWorkflowEmptyRequest(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)
	if err := c.SaveWorkflow(context.Background(), "wf_1", SaveRequest{}); err != nil {
		t.Fatalf("SaveWorkflow() error: %v", err)
	}
	if calls != 0 {
		t.Errorf("empty save should not hit the server, got %d calls", calls)
	}
}

func TestSaveWorkflowNoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)
	name := "v2"
	err := c.SaveWorkflow(context.Background(), "wf_1", SaveRequest{Name: &name})
	if err == nil {
		t.Fatal("SaveWorkflow() should surface server errors")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (saves are never retried)", calls)
	}
}

func TestValidateWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		json.NewEncoder(w).Encode(ValidationResult{
			IsValid: false,
			Errors: []validate.Error{
				{Kind: validate.KindNode, ID: "n2", Message: "prompt is empty"},
				{Kind: validate.KindWorkflow, Message: "no end node"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)

	res, err := c.ValidateWorkflow(context.Background(), "wf_1")
	if err != nil {
		t.Fatalf("ValidateWorkflow() error: %v", err)
	}
	if res.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %d, want 2", len(res.Errors))
	}
	if res.Errors[0].Kind != validate.KindNode || res.Errors[0].ID != "n2" {
		t.Errorf("first error = %+v", res.Errors[0])
	}
}

func TestListWorkflows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]WorkflowSummary{
			{ID: "wf_1", Name: "Support"},
			{ID: "wf_2", Name: "Sales"},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)

	list, err := c.ListWorkflows(context.Background())
	if err != nil {
		t.Fatalf("ListWorkflows() error: %v", err)
	}
	if len(list) != 2 || list[1].Name != "Sales" {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Workflow{ID: "wf_9", Name: body["name"]})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", nil, 0)

	w, err := c.CreateWorkflow(context.Background(), "New flow")
	if err != nil {
		t.Fatalf("CreateWorkflow() error: %v", err)
	}
	if w.ID != "wf_9" || w.Name != "New flow" {
		t.Errorf("workflow = %+v", w)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		header     http.Header
		wantCode   apperrors.Code
		retryable  bool
		rateLimits bool
	}{
		{name: "200 OK", code: 200},
		{name: "201 Created", code: 201},
		{name: "204 No Content", code: 204},
		{name: "404 Not Found", code: 404, wantCode: apperrors.ErrCodeWorkflowNotFound},
		{name: "401 Unauthorized", code: 401, wantCode: apperrors.ErrCodeUnauthorized},
		{name: "403 Forbidden", code: 403, wantCode: apperrors.ErrCodeForbidden},
		{
			name:       "429 Too Many Requests",
			code:       429,
			header:     http.Header{"Retry-After": []string{"7"}},
			retryable:  true,
			rateLimits: true,
		},
		{name: "500 Internal Server Error", code: 500, retryable: true},
		{name: "503 Service Unavailable", code: 503, retryable: true},
		{name: "400 Bad Request", code: 400, wantCode: apperrors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.code, Header: tt.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}

			err := checkStatus(resp)

			if tt.code < 400 {
				if err != nil {
					t.Fatalf("checkStatus(%d) = %v, want nil", tt.code, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("checkStatus(%d) = nil, want error", tt.code)
			}
			if tt.wantCode != "" && !apperrors.Is(err, tt.wantCode) {
				t.Errorf("error code = %v, want %v", apperrors.GetCode(err), tt.wantCode)
			}

			var retryErr *httputil.RetryableError
			if got := errors.As(err, &retryErr); got != tt.retryable {
				t.Errorf("retryable = %v, want %v", got, tt.retryable)
			}
			if tt.rateLimits {
				var rle *apperrors.RateLimitedError
				if !errors.As(err, &rle) {
					t.Fatalf("error should carry RateLimitedError, got %T", err)
				}
				if rle.RetryAfter != 7 {
					t.Errorf("RetryAfter = %d, want 7", rle.RetryAfter)
				}
			}
		})
	}
}
