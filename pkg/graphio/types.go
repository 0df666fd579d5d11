package graphio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/voxhive/callflow/pkg/flow"
)

// Definition is the canonical serialization of a workflow graph. It is
// the shape the persistence API transmits, the stores persist, and file
// export writes.
type Definition struct {
	Nodes    []Node   `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges    []Edge   `json:"edges" yaml:"edges" bson:"edges"`
	Viewport Viewport `json:"viewport" yaml:"viewport" bson:"viewport"`
}

// Document is the export envelope: a named workflow definition.
type Document struct {
	Name       string     `json:"name" yaml:"name" bson:"name"`
	Definition Definition `json:"definition" yaml:"definition" bson:"definition"`
}

// Node is the wire shape of a graph node. Type carries the canonical kind
// string; overlay and presentation fields have no wire representation.
type Node struct {
	ID       string   `json:"id" yaml:"id" bson:"id"`
	Type     string   `json:"type" yaml:"type" bson:"type"`
	Position Position `json:"position" yaml:"position" bson:"position"`
	Data     NodeData `json:"data" yaml:"data" bson:"data"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
}

// NodeData carries the kind-specific payload fields.
type NodeData struct {
	Label          string          `json:"label" yaml:"label" bson:"label"`
	Prompt         string          `json:"prompt,omitempty" yaml:"prompt,omitempty" bson:"prompt,omitempty"`
	AllowInterrupt bool            `json:"allow_interrupt,omitempty" yaml:"allow_interrupt,omitempty" bson:"allow_interrupt,omitempty"`
	Extraction     []ExtractionVar `json:"extraction,omitempty" yaml:"extraction,omitempty" bson:"extraction,omitempty"`
	Webhook        *WebhookConfig  `json:"webhook,omitempty" yaml:"webhook,omitempty" bson:"webhook,omitempty"`
	TriggerPhrase  string          `json:"trigger_phrase,omitempty" yaml:"trigger_phrase,omitempty" bson:"trigger_phrase,omitempty"`
}

// ExtractionVar is a variable the agent captures from the conversation.
type ExtractionVar struct {
	Name        string `json:"name" yaml:"name" bson:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// WebhookConfig is the HTTP call configuration for webhook nodes.
type WebhookConfig struct {
	URL     string            `json:"url" yaml:"url" bson:"url"`
	Method  string            `json:"method,omitempty" yaml:"method,omitempty" bson:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" bson:"headers,omitempty"`
}

// Edge is the wire shape of a transition.
type Edge struct {
	ID     string   `json:"id" yaml:"id" bson:"id"`
	Source string   `json:"source" yaml:"source" bson:"source"`
	Target string   `json:"target" yaml:"target" bson:"target"`
	Data   EdgeData `json:"data" yaml:"data" bson:"data"`
}

// EdgeData carries the transition label and condition. An empty condition
// means the transition is always taken.
type EdgeData struct {
	Label     string `json:"label" yaml:"label" bson:"label"`
	Condition string `json:"condition" yaml:"condition" bson:"condition"`
}

// Viewport is the visible canvas region.
type Viewport struct {
	X    float64 `json:"x" yaml:"x" bson:"x"`
	Y    float64 `json:"y" yaml:"y" bson:"y"`
	Zoom float64 `json:"zoom" yaml:"zoom" bson:"zoom"`
}

// FromGraph converts a graph to its serialization format. Nodes and edges
// are sorted by id for deterministic output. Overlay and presentation
// state are dropped.
func FromGraph(g *flow.Graph) Definition {
	nodes := g.Nodes()
	edges := g.Edges()
	slices.SortFunc(edges, func(a, b flow.Edge) int {
		return strings.Compare(a.ID, b.ID)
	})

	out := Definition{
		Nodes:    make([]Node, len(nodes)),
		Edges:    make([]Edge, len(edges)),
		Viewport: Viewport(g.Viewport()),
	}

	for i, n := range nodes {
		out.Nodes[i] = nodeFromGraph(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Data:   EdgeData{Label: e.Data.Label, Condition: e.Data.Condition},
		}
	}

	return out
}

// ToGraph converts a definition to a graph. Returns an error if a node
// carries an unknown kind string, a node id is duplicated, or an edge
// references a missing node.
func ToGraph(d Definition) (*flow.Graph, error) {
	g := flow.New()

	for _, n := range d.Nodes {
		kind, err := flow.ParseKind(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		node := flow.Node{
			ID:       n.ID,
			Kind:     kind,
			Position: flow.Position(n.Position),
			Data:     dataToGraph(n.Data),
		}
		if err := g.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	for _, e := range d.Edges {
		edge := flow.Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Data:   flow.EdgeData{Label: e.Data.Label, Condition: e.Data.Condition},
		}
		if err := g.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("edge %s (%s->%s): %w", e.ID, e.Source, e.Target, err)
		}
	}

	v := flow.Viewport(d.Viewport)
	if v.Zoom == 0 {
		v.Zoom = 1
	}
	g.SetViewport(v)

	return g, nil
}

func nodeFromGraph(n *flow.Node) Node {
	out := Node{
		ID:       n.ID,
		Type:     n.Kind.String(),
		Position: Position(n.Position),
		Data: NodeData{
			Label:          n.Data.Label,
			Prompt:         n.Data.Prompt,
			AllowInterrupt: n.Data.AllowInterrupt,
			TriggerPhrase:  n.Data.TriggerPhrase,
		},
	}
	if len(n.Data.Extraction) > 0 {
		out.Data.Extraction = make([]ExtractionVar, len(n.Data.Extraction))
		for i, v := range n.Data.Extraction {
			out.Data.Extraction[i] = ExtractionVar(v)
		}
	}
	if !webhookEmpty(n.Data.Webhook) {
		wc := WebhookConfig{
			URL:     n.Data.Webhook.URL,
			Method:  n.Data.Webhook.Method,
			Headers: copyHeaders(n.Data.Webhook.Headers),
		}
		out.Data.Webhook = &wc
	}
	return out
}

func webhookEmpty(w flow.WebhookConfig) bool {
	return w.URL == "" && w.Method == "" && len(w.Headers) == 0
}

// copyHeaders copies the header map so the wire struct never shares
// mutable state with the graph.
func copyHeaders(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func dataToGraph(d NodeData) flow.NodeData {
	out := flow.NodeData{
		Label:          d.Label,
		Prompt:         d.Prompt,
		AllowInterrupt: d.AllowInterrupt,
		TriggerPhrase:  d.TriggerPhrase,
	}
	if len(d.Extraction) > 0 {
		out.Extraction = make([]flow.ExtractionVar, len(d.Extraction))
		for i, v := range d.Extraction {
			out.Extraction[i] = flow.ExtractionVar(v)
		}
	}
	if d.Webhook != nil {
		out.Webhook = flow.WebhookConfig{
			URL:     d.Webhook.URL,
			Method:  d.Webhook.Method,
			Headers: copyHeaders(d.Webhook.Headers),
		}
	}
	return out
}
