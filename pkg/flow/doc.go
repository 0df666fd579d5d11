// Package flow provides the call-flow graph model used by the workflow
// editor.
//
// # Overview
//
// A call flow is a directed multigraph: nodes are conversation states
// (agent turns, webhook calls, terminals) and edges are transitions with
// free-text conditions. Unlike a dependency DAG, cycles and self-loops
// are first-class - a retry loop is an ordinary call-flow construct - so
// the model enforces no acyclicity.
//
// # Structural Invariants
//
// Two invariants hold at all times:
//
//   - Node and edge ids are unique within a graph. Violations are
//     programming errors and surface as ErrDuplicateNodeID or
//     ErrDuplicateEdgeID at insertion.
//   - Every edge endpoint names an existing node. [Graph.RemoveNode]
//     cascades, deleting every incident edge in the same operation, so a
//     dangling edge can only be produced by corrupting the graph from
//     outside. [Graph.Check] verifies the invariant and returns
//     ErrDanglingEdge on failure.
//
// # Node Kinds
//
// The node kind set is closed: start, agent, end, global, trigger, and
// webhook. [NewNode] fills a kind-appropriate default payload through an
// exhaustive switch, so adding a kind without a default is caught at
// compile review rather than producing a silently empty payload.
//
// # Overlay Fields
//
// NodeData and EdgeData carry Invalid/ValidationMessage overlay fields
// owned by the validation pass and *ThroughEdge presentation flags owned
// by the rendering surface. These fields are never serialized; see the
// graphio package.
//
// # Mutation Discipline
//
// The model offers explicit operations but no change tracking. In an
// editing session every mutation flows through the history store
// (flow/history package) so that each change is undoable. Graph is not
// safe for concurrent use; the session serializes access on a single
// goroutine.
package flow
