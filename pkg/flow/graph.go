package flow

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists. Node IDs must be unique; a duplicate is
	// a programming error, not a recoverable runtime condition.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidEdgeID is returned by [Graph.AddEdge] when the edge ID is
	// empty.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateEdgeID is returned by [Graph.AddEdge] when an edge with
	// the same ID already exists. Parallel edges between the same node
	// pair are allowed, but each carries its own ID.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// node does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// node does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by operations addressing a node ID that
	// is not present in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by operations addressing an edge ID that
	// is not present in the graph.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrDanglingEdge is returned by [Graph.Check] when an edge references
	// a node that doesn't exist. A dangling edge means node deletion
	// skipped the cascade rule and indicates graph corruption.
	ErrDanglingEdge = errors.New("edge references a missing node")
)

// Viewport is the visible canvas region, carried only for export fidelity.
type Viewport struct {
	X    float64
	Y    float64
	Zoom float64
}

// Graph is a directed multigraph representing a call flow. Nodes are
// conversation states; edges are transitions with optional conditions.
// Cycles and self-loops are valid (retry loops are normal call-flow
// constructs), so unlike a dependency DAG no acyclicity is enforced.
//
// The one hard structural invariant is referential integrity: every edge
// endpoint names an existing node. [Graph.RemoveNode] therefore cascades,
// deleting every incident edge, and [Graph.Check] verifies the invariant.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization;
// in an editing session all mutation flows through the history store on
// a single goroutine.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> outgoing edge IDs
	incoming map[string][]string // nodeID -> incoming edge IDs
	viewport Viewport
}

// New creates an empty graph with a default viewport (origin, zoom 1).
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		viewport: Viewport{Zoom: 1},
	}
}

// Viewport returns the current viewport.
func (g *Graph) Viewport() Viewport { return g.viewport }

// SetViewport replaces the viewport. Purely cosmetic; carried for export.
func (g *Graph) SetViewport(v Viewport) { g.viewport = v }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, ErrUnknownKind if the
// kind is outside the closed set, or ErrDuplicateNodeID if a node with
// the same ID already exists.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if !n.Kind.Valid() {
		return ErrUnknownKind
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	node.Data = n.Data.clone()
	g.nodes[node.ID] = &node
	return nil
}

// RemoveNode removes the node and every edge incident to it, in one
// operation. The cascade is the load-bearing rule of this model: removing
// a node without its edges leaves dangling references that the layout
// engine treats as graph corruption.
// Returns ErrUnknownNode if no node with the ID exists.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return ErrUnknownNode
	}
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		if e.Source != id && e.Target != id {
			return false
		}
		// Unindex from the surviving endpoint too.
		g.outgoing[e.Source] = deleteID(g.outgoing[e.Source], e.ID)
		g.incoming[e.Target] = deleteID(g.incoming[e.Target], e.ID)
		return true
	})
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Self-loops (Source == Target) and parallel edges between the same pair
// are allowed; each edge carries its own unique ID.
// Returns ErrInvalidEdgeID or ErrDuplicateEdgeID for bad IDs,
// ErrUnknownSourceNode or ErrUnknownTargetNode for missing endpoints.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrInvalidEdgeID
	}
	if g.hasEdge(e.ID) {
		return ErrDuplicateEdgeID
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.ID)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.ID)
	return nil
}

// RemoveEdge removes the edge with the given ID.
// Returns ErrUnknownEdge if no such edge exists.
func (g *Graph) RemoveEdge(id string) error {
	idx := slices.IndexFunc(g.edges, func(e Edge) bool { return e.ID == id })
	if idx < 0 {
		return ErrUnknownEdge
	}
	e := g.edges[idx]
	g.edges = slices.Delete(g.edges, idx, idx+1)
	g.outgoing[e.Source] = deleteID(g.outgoing[e.Source], e.ID)
	g.incoming[e.Target] = deleteID(g.incoming[e.Target], e.ID)
	return nil
}

// Node returns the node with the given ID and true, or nil and false if
// not found. The returned pointer refers to the actual node in the graph,
// so modifications affect the graph (except ID changes, which would
// corrupt the indices).
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or a zero Edge and
// false if not found.
func (g *Graph) Edge(id string) (Edge, bool) {
	for _, e := range g.edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// SetEdgeData replaces the payload of the edge with the given ID.
// Returns ErrUnknownEdge if no such edge exists.
func (g *Graph) SetEdgeData(id string, data EdgeData) error {
	for i := range g.edges {
		if g.edges[i].ID == id {
			g.edges[i].Data = data
			return nil
		}
	}
	return ErrUnknownEdge
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
// The returned slice contains pointers to the actual node structs, so
// modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.ID, b.ID)
	})
	return nodes
}

// Edges returns a copy of all edges in insertion order.
// Modifications to the returned slice do not affect the graph.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutgoingEdges returns the edges leaving the node, in insertion order.
// Returns nil if the node has no outgoing edges or doesn't exist.
func (g *Graph) OutgoingEdges(id string) []Edge {
	return g.edgesByID(g.outgoing[id])
}

// IncomingEdges returns the edges entering the node, in insertion order.
// Returns nil if the node has no incoming edges or doesn't exist.
func (g *Graph) IncomingEdges(id string) []Edge {
	return g.edgesByID(g.incoming[id])
}

// Children returns the IDs of nodes this node has edges to. Parallel
// edges produce duplicate entries; self-loops include the node itself.
func (g *Graph) Children(id string) []string {
	edges := g.OutgoingEdges(id)
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Target
	}
	return out
}

// Parents returns the IDs of nodes that have edges to this node.
func (g *Graph) Parents(id string) []string {
	edges := g.IncomingEdges(id)
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Source
	}
	return out
}

// NodesOfKind returns all nodes of the given kind, sorted by ID.
func (g *Graph) NodesOfKind(kind Kind) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// StartNode returns the start node and true, or nil and false if the
// graph has none. If validation has not run yet there may be several;
// the one with the smallest ID wins so that callers stay deterministic.
func (g *Graph) StartNode() (*Node, bool) {
	starts := g.NodesOfKind(KindStart)
	if len(starts) == 0 {
		return nil, false
	}
	return starts[0], true
}

// Check verifies referential integrity and returns nil if every edge
// endpoint names an existing node. Returns ErrDanglingEdge otherwise.
// A failure is an internal invariant violation (a skipped delete
// cascade), never a user-facing validation result.
func (g *Graph) Check() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return ErrDanglingEdge
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return ErrDanglingEdge
		}
	}
	return nil
}

// Clone returns a deep copy of the graph. History snapshots and state
// handed to subscribers rely on clones never sharing mutable state with
// the original.
func (g *Graph) Clone() *Graph {
	out := New()
	out.viewport = g.viewport
	for _, n := range g.nodes {
		node := *n
		node.Data = n.Data.clone()
		out.nodes[node.ID] = &node
	}
	out.edges = slices.Clone(g.edges)
	for id, refs := range g.outgoing {
		out.outgoing[id] = slices.Clone(refs)
	}
	for id, refs := range g.incoming {
		out.incoming[id] = slices.Clone(refs)
	}
	return out
}

// Equal reports whether two graphs hold the same nodes, edges, and
// viewport. Used by history tests to assert bit-for-bit restoration.
func (g *Graph) Equal(other *Graph) bool {
	if g.viewport != other.viewport {
		return false
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id, n := range g.nodes {
		o, ok := other.nodes[id]
		if !ok || !nodesEqual(*n, *o) {
			return false
		}
	}
	return slices.Equal(g.edges, other.edges)
}

func nodesEqual(a, b Node) bool {
	if a.ID != b.ID || a.Kind != b.Kind || a.Position != b.Position {
		return false
	}
	da, db := a.Data, b.Data
	if !slices.Equal(da.Extraction, db.Extraction) {
		return false
	}
	if len(da.Webhook.Headers) != len(db.Webhook.Headers) {
		return false
	}
	for k, v := range da.Webhook.Headers {
		if db.Webhook.Headers[k] != v {
			return false
		}
	}
	return da.Label == db.Label &&
		da.Prompt == db.Prompt &&
		da.AllowInterrupt == db.AllowInterrupt &&
		da.Webhook.URL == db.Webhook.URL &&
		da.Webhook.Method == db.Webhook.Method &&
		da.TriggerPhrase == db.TriggerPhrase &&
		da.Invalid == db.Invalid &&
		da.ValidationMessage == db.ValidationMessage &&
		da.SelectedThroughEdge == db.SelectedThroughEdge &&
		da.HoveredThroughEdge == db.HoveredThroughEdge
}

func (g *Graph) hasEdge(id string) bool {
	return slices.ContainsFunc(g.edges, func(e Edge) bool { return e.ID == id })
}

func (g *Graph) edgesByID(ids []string) []Edge {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := g.Edge(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func deleteID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}
