package store

import (
	"context"
	"testing"

	"github.com/voxhive/callflow/pkg/api"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/graphio"
)

func sampleWorkflow(id, name string) *api.Workflow {
	return &api.Workflow{
		ID:   id,
		Name: name,
		Definition: &graphio.Definition{
			Nodes: []graphio.Node{
				{ID: "n1", Type: "startNode", Data: graphio.NodeData{Label: "Start"}},
				{ID: "n2", Type: "endNode", Data: graphio.NodeData{Label: "End"}},
			},
			Edges:    []graphio.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
			Viewport: graphio.Viewport{Zoom: 1},
		},
		TemplateVariables: map[string]string{"caller_name": "unknown"},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Save(ctx, sampleWorkflow("wf_1", "Support line")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, "wf_1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != "wf_1" || got.Name != "Support line" {
		t.Errorf("workflow = %+v", got)
	}
	if got.Definition == nil || len(got.Definition.Nodes) != 2 {
		t.Errorf("definition = %+v", got.Definition)
	}
	if got.TemplateVariables["caller_name"] != "unknown" {
		t.Errorf("template variables = %v", got.TemplateVariables)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("Get() on empty store should fail")
	}
	if !apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound) {
		t.Errorf("error code = %v, want WORKFLOW_NOT_FOUND", apperrors.GetCode(err))
	}
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Save(ctx, sampleWorkflow("wf_1", "Old name"))
	s.Save(ctx, sampleWorkflow("wf_1", "New name"))

	got, err := s.Get(ctx, "wf_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New name" {
		t.Errorf("name = %q, want the second save to win", got.Name)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Save(ctx, sampleWorkflow("wf_1", "Support line"))

	first, _ := s.Get(ctx, "wf_1")
	first.Name = "mutated"
	first.Definition.Nodes[0].Data.Label = "mutated"
	first.TemplateVariables["caller_name"] = "mutated"

	second, _ := s.Get(ctx, "wf_1")
	if second.Name != "Support line" {
		t.Error("stored name should be unaffected by caller mutation")
	}
	if second.Definition.Nodes[0].Data.Label != "Start" {
		t.Error("stored definition should be unaffected by caller mutation")
	}
	if second.TemplateVariables["caller_name"] != "unknown" {
		t.Error("stored template variables should be unaffected by caller mutation")
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	s.Save(ctx, sampleWorkflow("wf_b", "Billing"))
	s.Save(ctx, sampleWorkflow("wf_a", "Support"))
	s.Save(ctx, sampleWorkflow("wf_c", "Billing"))

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []api.WorkflowSummary{
		{ID: "wf_b", Name: "Billing"},
		{ID: "wf_c", Name: "Billing"},
		{ID: "wf_a", Name: "Support"},
	}
	if len(got) != len(want) {
		t.Fatalf("List() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMemoryStoreClose(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Save(ctx, sampleWorkflow("wf_1", "Support line"))

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", s.Len())
	}
}
