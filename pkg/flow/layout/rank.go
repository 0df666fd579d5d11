package layout

import (
	"slices"

	"github.com/voxhive/callflow/pkg/flow"
)

// adjacency is the layout's working view of a graph: node ids in sorted
// order plus forward and reverse neighbor lists with self-loops removed.
// Parallel edges keep their multiplicity so crossing counts weight them
// correctly.
type adjacency struct {
	ids      []string
	children map[string][]string
	parents  map[string][]string
}

func buildAdjacency(g *flow.Graph) adjacency {
	nodes := g.Nodes()
	adj := adjacency{
		ids:      make([]string, 0, len(nodes)),
		children: make(map[string][]string, len(nodes)),
		parents:  make(map[string][]string, len(nodes)),
	}
	for _, n := range nodes {
		adj.ids = append(adj.ids, n.ID)
	}
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			continue
		}
		adj.children[e.Source] = append(adj.children[e.Source], e.Target)
		adj.parents[e.Target] = append(adj.parents[e.Target], e.Source)
	}
	for id := range adj.children {
		slices.Sort(adj.children[id])
	}
	for id := range adj.parents {
		slices.Sort(adj.parents[id])
	}
	return adj
}

// backEdges finds the edges the ranking pass must skip. A depth-first
// walk colors nodes white, gray, and black; an edge into a gray node
// closes a cycle. The walk roots at the start node when one exists so
// ranks follow the call flow's natural direction, then covers remaining
// sources and disconnected nodes in id order.
func backEdges(g *flow.Graph, adj adjacency) map[string]map[string]bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(adj.ids))
	skip := make(map[string]map[string]bool)

	var visit func(string)
	visit = func(id string) {
		color[id] = gray
		for _, child := range adj.children[id] {
			switch color[child] {
			case white:
				visit(child)
			case gray:
				if skip[id] == nil {
					skip[id] = make(map[string]bool)
				}
				skip[id][child] = true
			}
		}
		color[id] = black
	}

	if start, ok := g.StartNode(); ok {
		visit(start.ID)
	}
	for _, id := range adj.ids {
		if color[id] == white && len(adj.parents[id]) == 0 {
			visit(id)
		}
	}
	for _, id := range adj.ids {
		if color[id] == white {
			visit(id)
		}
	}
	return skip
}

// computeRanks layers the graph along the main axis.
//
// The pass uses a longest-path algorithm via topological sort (Kahn's
// algorithm): each node lands at one plus the maximum rank of any parent,
// so sources sit at rank 0 and every forward edge points strictly down
// the rank order.
//
// # Cycles
//
// Call flows are legitimately cyclic, so unlike a dependency layering the
// pass cannot assume a DAG. Back edges found by [backEdges] are skipped
// during both the in-degree count and the traversal, which leaves an
// acyclic subgraph covering every node. Self-loops never influence ranks.
//
// # Pinning
//
// The generic algorithm knows nothing about call-flow entry and exit
// points, so two adjustments follow it: start nodes are pinned to rank 0
// and end nodes to the terminal (maximum) rank. Pinning can leave gaps in
// the rank sequence; ranks are renumbered densely before returning.
func computeRanks(g *flow.Graph, adj adjacency) map[string]int {
	skip := backEdges(g, adj)

	children := make(map[string][]string, len(adj.children))
	inDegree := make(map[string]int, len(adj.ids))
	for id, kids := range adj.children {
		for _, child := range kids {
			if skip[id][child] {
				continue
			}
			children[id] = append(children[id], child)
			inDegree[child]++
		}
	}

	ranks := make(map[string]int, len(adj.ids))
	queue := make([]string, 0, len(adj.ids))
	for _, id := range adj.ids {
		ranks[id] = 0
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range children[curr] {
			if rank := ranks[curr] + 1; rank > ranks[child] {
				ranks[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	for _, n := range g.NodesOfKind(flow.KindStart) {
		ranks[n.ID] = 0
	}
	terminal := 0
	for _, r := range ranks {
		if r > terminal {
			terminal = r
		}
	}
	for _, n := range g.NodesOfKind(flow.KindEnd) {
		ranks[n.ID] = terminal
	}

	return normalizeRanks(ranks)
}

// normalizeRanks renumbers rank values densely so consecutive ranks
// differ by exactly one, preserving relative order.
func normalizeRanks(ranks map[string]int) map[string]int {
	distinct := make([]int, 0, len(ranks))
	seen := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			distinct = append(distinct, r)
		}
	}
	slices.Sort(distinct)

	remap := make(map[int]int, len(distinct))
	for i, r := range distinct {
		remap[r] = i
	}
	for id, r := range ranks {
		ranks[id] = remap[r]
	}
	return ranks
}
