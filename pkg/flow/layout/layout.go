package layout

import (
	"github.com/voxhive/callflow/pkg/flow"
)

// Compute lays out the graph and returns a position for every node,
// keyed by node id. Positions are the top-left corner of each node's
// footprint, matching the editor's canvas coordinates. The graph is
// never mutated; callers decide whether and when to apply the result
// (see [Apply]), typically as a single undoable command.
//
// Compute is deterministic: the same graph and options always produce
// the same positions.
//
// Returns an error wrapping flow.ErrDanglingEdge if the graph fails its
// integrity check, or an invalid-direction error from
// [Options.ValidateAndSetDefaults].
func Compute(g *flow.Graph, opts Options) (map[string]flow.Position, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if g == nil || g.NodeCount() == 0 {
		return map[string]flow.Position{}, nil
	}
	if err := g.Check(); err != nil {
		return nil, err
	}

	adj := buildAdjacency(g)
	ranks := computeRanks(g, adj)
	rows := buildRows(adj.ids, ranks)
	rows = orderRows(adj, rows, opts.Sweeps)
	return coordinates(g, rows, opts), nil
}

// Apply writes positions onto the graph's nodes. Nodes missing from the
// map keep their positions; map entries whose node no longer exists are
// skipped. Edges are never touched.
func Apply(g *flow.Graph, positions map[string]flow.Position) {
	for id, pos := range positions {
		if n, ok := g.Node(id); ok {
			n.Position = pos
		}
	}
}

// coordinates converts ordered rows into concrete positions. Ranks run
// along the main axis spaced by footprint plus RankGap; nodes within a
// rank spread across the cross axis and are centered on zero.
func coordinates(g *flow.Graph, rows [][]string, opts Options) map[string]flow.Position {
	mainSize, crossSize := opts.NodeHeight, opts.NodeWidth
	if opts.Direction == LeftToRight {
		mainSize, crossSize = opts.NodeWidth, opts.NodeHeight
	}

	positions := make(map[string]flow.Position, g.NodeCount())
	for r, row := range rows {
		main := float64(r) * (mainSize + opts.RankGap)
		span := float64(len(row))*crossSize + float64(len(row)-1)*opts.NodeGap
		offset := zigzag(g, rows, r, opts.Zigzag)
		for i, id := range row {
			cross := float64(i)*(crossSize+opts.NodeGap) - span/2 + offset
			if opts.Direction == LeftToRight {
				positions[id] = flow.Position{X: main, Y: cross}
			} else {
				positions[id] = flow.Position{X: cross, Y: main}
			}
		}
	}
	return positions
}

// zigzag returns the cross-axis offset for rank r. Ranks holding exactly
// one non-terminal node alternate left and right of center by rank index
// so a linear chain reads as a path instead of a plumb line. Start, end,
// and global nodes stay centered, anchoring the flow visually.
func zigzag(g *flow.Graph, rows [][]string, r int, amount float64) float64 {
	if len(rows[r]) != 1 || len(rows) < 2 {
		return 0
	}
	n, ok := g.Node(rows[r][0])
	if !ok || n.Kind.Terminal() {
		return 0
	}
	if r%2 == 0 {
		return -amount
	}
	return amount
}
