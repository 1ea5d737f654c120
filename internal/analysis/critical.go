package analysis

import (
	"github.com/taskloom/taskloom/internal/graph"
)

// CriticalPath returns the longest path through the DAG by hop count,
// plus its length in edges. A single isolated node has a critical path
// of itself with length zero. Cyclic graphs are rejected with a
// CycleError naming the nodes involved.
func CriticalPath(g *graph.Graph) (path []string, length int, err error) {
	sorted := TopologicalSort(g)
	if sorted.HasCycle {
		return nil, 0, &graph.CycleError{Nodes: sorted.CycleNodes}
	}
	if len(sorted.Order) == 0 {
		return nil, 0, nil
	}

	// Longest-path DP in topological order: dist[n] is the maximum
	// edge count of any path ending at n.
	dist := make(map[string]int, len(sorted.Order))
	prev := make(map[string]string, len(sorted.Order))
	for _, id := range sorted.Order {
		for _, pred := range g.Incoming(id) {
			if d := dist[pred] + 1; d > dist[id] {
				dist[id] = d
				prev[id] = pred
			}
		}
	}

	end := sorted.Order[0]
	for _, id := range sorted.Order {
		if dist[id] > dist[end] {
			end = id
		}
	}

	length = dist[end]
	path = []string{end}
	for cur := end; ; {
		p, ok := prev[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	reverse(path)
	return path, length, nil
}
