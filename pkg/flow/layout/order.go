package layout

import (
	"cmp"
	"slices"
)

// buildRows groups node ids by rank. Ids arrive in sorted order, so each
// row starts in id order, seeding the ordering pass deterministically.
func buildRows(ids []string, ranks map[string]int) [][]string {
	max := -1
	for _, r := range ranks {
		if r > max {
			max = r
		}
	}
	rows := make([][]string, max+1)
	for _, id := range ids {
		rows[ranks[id]] = append(rows[ranks[id]], id)
	}
	return rows
}

// orderRows reorders nodes within each rank to reduce edge crossings.
// Each sweep runs a downward barycenter pass (ordering against the rank
// above) followed by an upward pass, then recounts crossings. A sweep's
// result is kept only when it strictly improves on the best ordering seen
// so far; the first non-improving sweep stops the loop. With the sweep
// count bounded and every kept ordering strictly better, the result is
// deterministic for a fixed input.
func orderRows(adj adjacency, rows [][]string, sweeps int) [][]string {
	best := cloneRows(rows)
	if len(rows) < 2 {
		return best
	}

	bestCost := countAllCrossings(adj, best)
	current := cloneRows(rows)
	for pass := 0; pass < sweeps && bestCost > 0; pass++ {
		for r := 1; r < len(current); r++ {
			current[r] = sortByBarycenter(current[r], current[r-1], adj.parents)
		}
		for r := len(current) - 2; r >= 0; r-- {
			current[r] = sortByBarycenter(current[r], current[r+1], adj.children)
		}

		cost := countAllCrossings(adj, current)
		if cost >= bestCost {
			break
		}
		bestCost = cost
		best = cloneRows(current)
	}
	return best
}

// sortByBarycenter reorders row by each node's barycenter: the mean
// position of its neighbors in the fixed adjacent row. Nodes with no
// neighbors there keep their current position as the barycenter. The
// sort is stable, so ties preserve the incoming order.
func sortByBarycenter(row, fixed []string, neighbors map[string][]string) []string {
	pos := posMap(fixed)

	type ranked struct {
		id string
		bc float64
	}
	entries := make([]ranked, len(row))
	for i, id := range row {
		sum, count := 0.0, 0
		for _, nb := range neighbors[id] {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				count++
			}
		}
		bc := float64(i)
		if count > 0 {
			bc = sum / float64(count)
		}
		entries[i] = ranked{id: id, bc: bc}
	}

	slices.SortStableFunc(entries, func(a, b ranked) int {
		return cmp.Compare(a.bc, b.bc)
	})

	out := make([]string, len(row))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

func cloneRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
