// Package analysis provides the pure structural algorithms over the
// graph store: topological ordering, cycle detection and enumeration,
// traversal, path finding, connectivity, and the critical path.
//
// Nothing here mutates the graph. Path lengths count edges, not nodes:
// the distance from a node to itself is zero, and "no path" is reported
// separately from a zero-length path.
package analysis

import (
	"sort"

	"github.com/taskloom/taskloom/internal/graph"
)

// SortResult holds a topological ordering attempt. When HasCycle is
// true, Order covers only the acyclic portion and CycleNodes lists
// every node caught in a cycle.
type SortResult struct {
	Order      []string `json:"order"`
	HasCycle   bool     `json:"has_cycle"`
	CycleNodes []string `json:"cycle_nodes,omitempty"`
}

// TopologicalSort computes a Kahn ordering of the graph. The ready
// queue is kept sorted so the result is stable, but nodes at the same
// in-degree level may legally appear in either relative order; callers
// must not depend on sibling order.
func TopologicalSort(g *graph.Graph) SortResult {
	inDegree := make(map[string]int, g.Len())
	for _, id := range g.NodeIDs() {
		inDegree[id] = len(g.Incoming(id))
	}

	var queue []string
	for _, id := range g.NodeIDs() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, g.Len())
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var newReady []string
		for _, succ := range g.Outgoing(id) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		sort.Strings(newReady)
		queue = append(queue, newReady...)
	}

	result := SortResult{Order: order}
	if len(order) < g.Len() {
		result.HasCycle = true
		sorted := make(map[string]bool, len(order))
		for _, id := range order {
			sorted[id] = true
		}
		for _, id := range g.NodeIDs() {
			if !sorted[id] {
				result.CycleNodes = append(result.CycleNodes, id)
			}
		}
	}
	return result
}
