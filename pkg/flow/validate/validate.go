// Package validate maps validator-reported errors onto call-flow graph
// entities and provides the rule checker that produces them.
//
// Overlay application is never incremental: every pass first clears all
// Invalid/ValidationMessage state and then attaches the reported errors,
// so an error that stops being reported cannot linger. Multiple messages
// for the same entity are appended in report order, joined by ", ", with
// exact duplicates dropped.
package validate

import (
	"strings"

	"github.com/voxhive/callflow/pkg/flow"
)

// Kind says which entity class an error describes.
type Kind string

const (
	// KindNode attaches to the node named by ID.
	KindNode Kind = "node"
	// KindEdge attaches to the edge named by ID.
	KindEdge Kind = "edge"
	// KindWorkflow describes the workflow as a whole and has no ID. These
	// errors are not attached to any entity; they feed a workflow-level
	// error panel.
	KindWorkflow Kind = "workflow"
)

// Error is one validator finding. The zero Field means the error concerns
// the entity as a whole rather than a specific input.
type Error struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Reset clears overlay state on every node and edge. Semantic payload
// fields are untouched.
func Reset(g *flow.Graph) {
	for _, n := range g.Nodes() {
		n.Data.Invalid = false
		n.Data.ValidationMessage = ""
	}
	for _, e := range g.Edges() {
		data := e.Data
		data.Invalid = false
		data.ValidationMessage = ""
		_ = g.SetEdgeData(e.ID, data)
	}
}

// Attach applies a full validation result to the graph: overlay state is
// reset, then node and edge errors are attached to their entities.
// Workflow-level errors (and nothing else) are returned for panel
// display. Errors naming ids not present in the graph are ignored; the
// graph may legitimately have changed since the validator ran.
func Attach(g *flow.Graph, errs []Error) []Error {
	Reset(g)

	var workflow []Error
	seen := make(map[string]map[string]bool)

	appendMessage := func(current, id, msg string) (string, bool) {
		if seen[id] == nil {
			seen[id] = make(map[string]bool)
		}
		if seen[id][msg] {
			return current, false
		}
		seen[id][msg] = true
		if current == "" {
			return msg, true
		}
		return current + ", " + msg, true
	}

	for _, e := range errs {
		switch e.Kind {
		case KindNode:
			n, ok := g.Node(e.ID)
			if !ok {
				continue
			}
			if msg, ok := appendMessage(n.Data.ValidationMessage, "node:"+e.ID, e.Message); ok {
				n.Data.Invalid = true
				n.Data.ValidationMessage = msg
			}
		case KindEdge:
			edge, ok := g.Edge(e.ID)
			if !ok {
				continue
			}
			data := edge.Data
			if msg, ok := appendMessage(data.ValidationMessage, "edge:"+e.ID, e.Message); ok {
				data.Invalid = true
				data.ValidationMessage = msg
				_ = g.SetEdgeData(e.ID, data)
			}
		case KindWorkflow:
			workflow = append(workflow, e)
		}
	}
	return workflow
}

// Join renders a slice of errors as a single human-readable line, used by
// CLI output and log fields.
func Join(errs []Error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		switch {
		case e.ID == "":
			parts[i] = e.Message
		case e.Field != "":
			parts[i] = e.ID + "." + e.Field + ": " + e.Message
		default:
			parts[i] = e.ID + ": " + e.Message
		}
	}
	return strings.Join(parts, "; ")
}
