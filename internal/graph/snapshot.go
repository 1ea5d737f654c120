package graph

import (
	"fmt"

	"github.com/taskloom/taskloom/internal/task"
)

// Snapshot is the structural serialized form of a graph: the node
// table, both edge indices, and project metadata. Forward edges keep
// the per-task insertion order; reverse edges are sorted. Round-trip
// through Snapshot preserves edge sets and node fields exactly.
type Snapshot struct {
	Metadata     Metadata              `json:"metadata"`
	Tasks        map[string]*task.Task `json:"tasks"`
	Edges        map[string][]string   `json:"edges"`
	ReverseEdges map[string][]string   `json:"reverse_edges"`
}

// Snapshot captures the graph's current state.
func (g *Graph) Snapshot() *Snapshot {
	s := &Snapshot{
		Metadata:     g.meta,
		Tasks:        make(map[string]*task.Task, len(g.nodes)),
		Edges:        make(map[string][]string),
		ReverseEdges: make(map[string][]string),
	}
	for id, t := range g.nodes {
		s.Tasks[id] = t.Clone()
		if len(t.Edges) > 0 {
			s.Edges[id] = append([]string(nil), t.Edges...)
		}
	}
	for to, sources := range g.incoming {
		if len(sources) > 0 {
			s.ReverseEdges[to] = sortedKeys(sources)
		}
	}
	return s
}

// FromSnapshot rebuilds a graph from its serialized form. Legacy
// statuses are normalized and omitted fields defaulted, then every edge
// is re-indexed from the node edge lists and checked against the
// snapshot's own indices so a corrupted document fails loudly instead
// of producing a store whose three views disagree. Edge targets absent
// from the node table are tolerated, matching AddNode, so any document
// the store can produce loads back.
func FromSnapshot(s *Snapshot) (*Graph, error) {
	g := &Graph{
		meta:     s.Metadata,
		nodes:    make(map[string]*task.Task, len(s.Tasks)),
		outgoing: make(map[string]map[string]bool),
		incoming: make(map[string]map[string]bool),
	}

	for id, t := range s.Tasks {
		if t == nil {
			return nil, fmt.Errorf("task %s: null entry", id)
		}
		if t.ID == "" {
			t.ID = id
		}
		if t.ID != id {
			return nil, fmt.Errorf("task %s: id field says %s", id, t.ID)
		}
		t.SetDefaults()
		g.nodes[id] = t
	}

	for id, t := range g.nodes {
		for _, to := range t.Edges {
			if g.outgoing[id][to] {
				return nil, fmt.Errorf("task %s: duplicate edge to %s", id, to)
			}
			g.setEdge(id, to)
			if target, ok := g.nodes[to]; ok {
				addID(&target.Blockers, id)
			}
		}
	}

	// Cross-check the document's explicit indices against the rebuilt
	// ones: a disagreement means the file was edited or corrupted.
	for from, targets := range s.Edges {
		for _, to := range targets {
			if !g.outgoing[from][to] {
				return nil, fmt.Errorf("edge index lists %s -> %s but task %s does not", from, to, from)
			}
		}
	}
	for to, sources := range s.ReverseEdges {
		for _, from := range sources {
			if !g.incoming[to][from] {
				return nil, fmt.Errorf("reverse edge index lists %s -> %s but no such edge exists", from, to)
			}
		}
	}

	return g, nil
}
