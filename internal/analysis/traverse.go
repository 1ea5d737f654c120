package analysis

import (
	"fmt"
	"sort"

	"github.com/taskloom/taskloom/internal/graph"
)

// Direction selects which edge index a traversal follows.
type Direction int

// Traversal directions
const (
	// Forward follows outgoing edges.
	Forward Direction = iota
	// Backward follows incoming edges.
	Backward
)

func neighbors(g *graph.Graph, id string, dir Direction) []string {
	if dir == Backward {
		return g.Incoming(id)
	}
	return g.Outgoing(id)
}

// BFS traverses the graph in layer order from start and returns every
// reachable id, start first. Neighbors are visited in sorted order so
// discovery order is deterministic.
func BFS(g *graph.Graph, start string, dir Direction) ([]string, error) {
	if !g.HasNode(start) {
		return nil, &graph.NotFoundError{ID: start}
	}

	visited := map[string]bool{start: true}
	order := []string{start}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range neighbors(g, id, dir) {
			if visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, next)
		}
	}
	return order, nil
}

// DFSFindPath returns the first path found from start to goal using
// depth-first search with backtracking, or ok=false when no path
// exists. A node trivially reaches itself by the zero-length path.
func DFSFindPath(g *graph.Graph, start, goal string, dir Direction) (path []string, ok bool, err error) {
	if !g.HasNode(start) {
		return nil, false, &graph.NotFoundError{ID: start}
	}
	if !g.HasNode(goal) {
		return nil, false, &graph.NotFoundError{ID: goal}
	}
	if start == goal {
		return []string{start}, true, nil
	}

	visited := map[string]bool{start: true}
	current := []string{start}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		for _, next := range neighbors(g, id, dir) {
			if visited[next] {
				continue
			}
			current = append(current, next)
			if next == goal {
				return true
			}
			visited[next] = true
			if dfs(next) {
				return true
			}
			current = current[:len(current)-1]
		}
		return false
	}

	if dfs(start) {
		return current, true, nil
	}
	return nil, false, nil
}

// FindAllPaths enumerates simple paths from start to goal, up to
// maxPaths. The bound guards against combinatorial blowup on dense
// graphs; maxPaths <= 0 is rejected rather than treated as unlimited.
func FindAllPaths(g *graph.Graph, start, goal string, dir Direction, maxPaths int) ([][]string, error) {
	if maxPaths <= 0 {
		return nil, fmt.Errorf("maxPaths must be positive (got %d)", maxPaths)
	}
	if !g.HasNode(start) {
		return nil, &graph.NotFoundError{ID: start}
	}
	if !g.HasNode(goal) {
		return nil, &graph.NotFoundError{ID: goal}
	}

	var paths [][]string
	if start == goal {
		return append(paths, []string{start}), nil
	}

	onPath := map[string]bool{start: true}
	current := []string{start}

	var dfs func(id string)
	dfs = func(id string) {
		if len(paths) >= maxPaths {
			return
		}
		for _, next := range neighbors(g, id, dir) {
			if len(paths) >= maxPaths {
				return
			}
			if next == goal {
				p := append(append([]string(nil), current...), goal)
				paths = append(paths, p)
				continue
			}
			if onPath[next] {
				continue
			}
			onPath[next] = true
			current = append(current, next)
			dfs(next)
			current = current[:len(current)-1]
			delete(onPath, next)
		}
	}
	dfs(start)
	return paths, nil
}

// ShortestPath returns a minimum-hop path from start to goal via BFS,
// with ties broken by discovery order. ok=false means no path exists,
// which is distinct from the zero-length path of start == goal.
func ShortestPath(g *graph.Graph, start, goal string, dir Direction) (path []string, ok bool, err error) {
	if !g.HasNode(start) {
		return nil, false, &graph.NotFoundError{ID: start}
	}
	if !g.HasNode(goal) {
		return nil, false, &graph.NotFoundError{ID: goal}
	}
	if start == goal {
		return []string{start}, true, nil
	}

	parent := map[string]string{start: start}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range neighbors(g, id, dir) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = id
			if next == goal {
				var out []string
				for cur := goal; ; cur = parent[cur] {
					out = append(out, cur)
					if cur == start {
						break
					}
				}
				reverse(out)
				return out, true, nil
			}
			queue = append(queue, next)
		}
	}
	return nil, false, nil
}

// ConnectedComponents groups tasks into weakly connected components,
// treating every edge as undirected. Each component is sorted and the
// component list is sorted by first member.
func ConnectedComponents(g *graph.Graph) [][]string {
	visited := make(map[string]bool, g.Len())
	var components [][]string

	for _, start := range g.NodeIDs() {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			for _, next := range g.Outgoing(id) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
			for _, next := range g.Incoming(id) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// reachable returns the set of ids reachable from start (excluding
// start itself unless it lies on a cycle back to itself).
func reachable(g *graph.Graph, start string, dir Direction) map[string]bool {
	out := make(map[string]bool)
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range neighbors(g, id, dir) {
			if !out[next] {
				out[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}
