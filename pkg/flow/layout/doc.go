// Package layout computes node positions for call-flow graphs using a
// layered (Sugiyama-style) algorithm tolerant of cycles and self-loops.
//
// # Overview
//
// The entry point is [Compute], a pure function from graph topology to a
// position per node. It never mutates the input graph and never touches
// edges. The pipeline has four passes:
//
//  1. Ranking: self-loops are ignored, back edges found by depth-first
//     search are skipped, and the remaining DAG is layered with a
//     longest-path topological pass. The start node is pinned to rank 0
//     and end nodes to the terminal rank, because the generic algorithm
//     has no notion of entry and exit points in a cyclic call flow.
//  2. Ordering: nodes within each rank start in id order, then a bounded
//     barycenter sweep reorders ranks. A candidate order is kept only if
//     it strictly reduces the total crossing count, measured with a
//     Fenwick-tree inversion counter.
//  3. Coordinates: ranks become rows (top to bottom) or columns (left to
//     right), spaced by the configured footprint and centered on the
//     flow axis.
//  4. De-overlap: a rank holding exactly one non-terminal node gets a
//     zigzag offset alternating by rank index, so long linear chains do
//     not collapse into a straight line. Terminal nodes stay centered.
//
// # Determinism
//
// For a fixed input (same node ids, edges, and options) Compute returns
// identical positions on every run. All iteration orders are sorted and
// all tie-breaks fall back to node id.
//
// # Failure Semantics
//
// Compute fails only on graph corruption: a dangling edge (an endpoint
// deleted without the cascade) surfaces as flow.ErrDanglingEdge. That is
// an internal invariant violation for callers to log, never a
// user-facing validation error.
//
// # Edge Geometry
//
// [EdgeGeometry] computes rendering hints consumed by the drawing
// surface: deterministic label slots for parallel edges between the same
// node pair, and arc markers for self-loops.
package layout
