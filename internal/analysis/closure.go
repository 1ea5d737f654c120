package analysis

import (
	"sort"

	"github.com/taskloom/taskloom/internal/graph"
)

// Descendants returns the sorted transitive closure over outgoing
// edges, excluding the start node itself (unless it sits on a cycle
// that leads back to it).
func Descendants(g *graph.Graph, id string) ([]string, error) {
	if !g.HasNode(id) {
		return nil, &graph.NotFoundError{ID: id}
	}
	return setToSorted(reachable(g, id, Forward)), nil
}

// Ancestors returns the sorted transitive closure over incoming edges.
func Ancestors(g *graph.Graph, id string) ([]string, error) {
	if !g.HasNode(id) {
		return nil, &graph.NotFoundError{ID: id}
	}
	return setToSorted(reachable(g, id, Backward)), nil
}

// IsValidSubtreeMove reports whether subtreeRoot may be re-parented
// under newParent. The move is invalid exactly when newParent lies
// within the subtree: either it is the root itself (a self-loop) or a
// descendant of it (the new edge would close a cycle).
func IsValidSubtreeMove(g *graph.Graph, subtreeRoot, newParent string) (bool, error) {
	if !g.HasNode(subtreeRoot) {
		return false, &graph.NotFoundError{ID: subtreeRoot}
	}
	if !g.HasNode(newParent) {
		return false, &graph.NotFoundError{ID: newParent}
	}
	if subtreeRoot == newParent {
		return false, nil
	}
	return !reachable(g, subtreeRoot, Forward)[newParent], nil
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
