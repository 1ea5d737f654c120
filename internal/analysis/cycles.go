package analysis

import (
	"sort"

	"github.com/taskloom/taskloom/internal/graph"
)

// HasCycle reports whether the graph contains any cycle. Self-loops
// count. Uses DFS with white/gray/black coloring.
func HasCycle(g *graph.Graph) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, g.Len())

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, next := range g.Outgoing(id) {
			switch color[next] {
			case gray:
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.NodeIDs() {
		if color[id] == white && dfs(id) {
			return true
		}
	}
	return false
}

// FindCycles enumerates every simple cycle in the graph, for
// diagnostics. Each cycle is returned once, rotated so its smallest id
// comes first, without repeating the closing node. Cycles are sorted by
// their first id.
func FindCycles(g *graph.Graph) [][]string {
	var cycles [][]string
	ids := g.NodeIDs()
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	// For each start node, search only through nodes ranked >= start.
	// Every simple cycle is then found exactly once, anchored at its
	// smallest member.
	for _, start := range ids {
		onPath := map[string]bool{start: true}
		path := []string{start}

		var dfs func(id string)
		dfs = func(id string) {
			for _, next := range g.Outgoing(id) {
				if next == start {
					cycles = append(cycles, append([]string(nil), path...))
					continue
				}
				if rank[next] < rank[start] || onPath[next] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				dfs(next)
				path = path[:len(path)-1]
				delete(onPath, next)
			}
		}
		dfs(start)
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	return cycles
}

// WouldCreateCycle reports whether adding the edge (from -> to) would
// introduce a cycle. That is the case exactly when the edge is a
// self-loop or from is already reachable from to.
func WouldCreateCycle(g *graph.Graph, from, to string) bool {
	if from == to {
		return true
	}
	return reachable(g, to, Forward)[from]
}
