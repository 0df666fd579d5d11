package layout

import (
	"slices"

	"github.com/voxhive/callflow/pkg/flow"
)

// labelSpacing separates the stacked labels of parallel edges, in canvas
// units perpendicular to the edge.
const labelSpacing = 24.0

// EdgeHint tells the rendering surface how to draw one edge. Hints are
// advisory: they carry no coordinates, only the disambiguation the
// renderer cannot derive locally when several edges join the same pair
// of nodes.
type EdgeHint struct {
	// Slot is the edge's index among the edges joining the same
	// unordered node pair, assigned in id order. Of is the group size.
	Slot int
	Of   int

	// LabelOffset shifts the edge's midpoint label perpendicular to the
	// edge path so parallel labels do not overlap. Offsets are centered
	// around zero; a lone edge gets 0.
	LabelOffset float64

	// Arc marks a self-loop, drawn as an out-and-back arc beside the
	// node rather than a straight segment.
	Arc bool
}

// EdgeGeometry returns a rendering hint for every edge, keyed by edge id.
// Edges joining the same unordered node pair form one slot group, which
// covers true parallels, opposite-direction pairs, and stacked
// self-loops alike. Slots follow the group's sorted edge ids, so hints
// are stable across recomputes regardless of insertion order.
func EdgeGeometry(g *flow.Graph) map[string]EdgeHint {
	groups := make(map[[2]string][]string)
	for _, e := range g.Edges() {
		key := [2]string{e.Source, e.Target}
		if key[1] < key[0] {
			key[0], key[1] = key[1], key[0]
		}
		groups[key] = append(groups[key], e.ID)
	}

	hints := make(map[string]EdgeHint, g.EdgeCount())
	for pair, ids := range groups {
		slices.Sort(ids)
		for i, id := range ids {
			hints[id] = EdgeHint{
				Slot:        i,
				Of:          len(ids),
				LabelOffset: (float64(i) - float64(len(ids)-1)/2) * labelSpacing,
				Arc:         pair[0] == pair[1],
			}
		}
	}
	return hints
}
