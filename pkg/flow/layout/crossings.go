package layout

import "slices"

// posMap returns a lookup from node id to its index in the row.
func posMap(row []string) map[string]int {
	pos := make(map[string]int, len(row))
	for i, id := range row {
		pos[id] = i
	}
	return pos
}

// countAllCrossings sums the crossings between each pair of consecutive
// rows. Edges spanning more than one rank are not counted; the ordering
// pass only needs a consistent relative measure to compare candidates.
func countAllCrossings(adj adjacency, rows [][]string) int {
	crossings := 0
	for i := 0; i+1 < len(rows); i++ {
		crossings += countLayerCrossings(adj, rows[i], rows[i+1])
	}
	return crossings
}

// countLayerCrossings counts edge crossings between two adjacent rows
// using a Fenwick tree (binary indexed tree) for O(E log V) performance,
// where E is the number of edges between the rows and V is the number of
// nodes in the lower row.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of lower-row
// positions when edges are sorted by upper-row position. Edge direction
// is irrelevant here: a back edge between the rows crosses exactly the
// way a forward edge does, so both neighbor lists contribute.
func countLayerCrossings(adj adjacency, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := posMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, id := range upper {
		for _, child := range adj.children[id] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
		for _, parent := range adj.parents[id] {
			if pos, ok := lowerPos[parent]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	// Sort edges by upper position, then by lower position.
	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using a Fenwick tree.
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// Query: count edges seen so far with lower position <= e.lower.
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = edges seen so far with lower position > e.lower.
		crossings += total - lessOrEqual

		// Update: increment the count at this lower position.
		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
