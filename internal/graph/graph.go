// Package graph implements the adjacency-indexed task store: the node
// table, the forward and reverse edge indices, and the primitive
// mutations that keep all three views consistent.
//
// The store is single-goroutine by contract. Callers that interleave
// load-mutate-save cycles against the same on-disk project must
// coordinate externally (the storage package provides a file lock).
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/taskloom/taskloom/internal/task"
)

// Metadata describes the project that owns the graph.
type Metadata struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormatVersion is written into new project metadata.
const FormatVersion = "2"

// Graph owns every task node plus two edge indices kept in lockstep:
// outgoing (id -> targets) and incoming (id -> sources). For every edge
// (a -> b), b is in outgoing[a], a is in incoming[b], b is in a's Edges
// list, and a is in b's Blockers list. Every mutator preserves all four
// views or fails before touching any of them.
type Graph struct {
	meta     Metadata
	nodes    map[string]*task.Task
	outgoing map[string]map[string]bool
	incoming map[string]map[string]bool
}

// New creates an empty graph for a named project.
func New(name string) *Graph {
	now := time.Now()
	return &Graph{
		meta: Metadata{
			Name:      name,
			Version:   FormatVersion,
			CreatedAt: now,
			UpdatedAt: now,
		},
		nodes:    make(map[string]*task.Task),
		outgoing: make(map[string]map[string]bool),
		incoming: make(map[string]map[string]bool),
	}
}

// Meta returns the project metadata.
func (g *Graph) Meta() Metadata {
	return g.meta
}

// Rename sets the project name.
func (g *Graph) Rename(name string) {
	g.meta.Name = name
	g.touch()
}

func (g *Graph) touch() {
	g.meta.UpdatedAt = time.Now()
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.outgoing {
		n += len(targets)
	}
	return n
}

// HasNode reports whether a task with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the edge (from -> to) exists.
func (g *Graph) HasEdge(from, to string) bool {
	return g.outgoing[from][to]
}

// Node returns the task with the given id. The returned task is owned
// by the graph; mutate it only through its own methods and re-derive
// status afterwards.
func (g *Graph) Node(id string) (*task.Task, error) {
	t, ok := g.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return t, nil
}

// NodeIDs returns all task ids, sorted.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all tasks sorted by id.
func (g *Graph) Nodes() []*task.Task {
	out := make([]*task.Task, 0, len(g.nodes))
	for _, id := range g.NodeIDs() {
		out = append(out, g.nodes[id])
	}
	return out
}

// Outgoing returns the sorted target ids of a task's outgoing edges.
func (g *Graph) Outgoing(id string) []string {
	return sortedKeys(g.outgoing[id])
}

// Incoming returns the sorted source ids of a task's incoming edges.
func (g *Graph) Incoming(id string) []string {
	return sortedKeys(g.incoming[id])
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// AddNode inserts a task, seeding its outgoing edge set from its own
// Edges list and updating every target's incoming set. Targets absent
// from the node table are tolerated so imports can add nodes in any
// order; their blocker mirrors are reconciled when they arrive.
func (g *Graph) AddNode(t *task.Task) error {
	if _, exists := g.nodes[t.ID]; exists {
		return &DuplicateIDError{ID: t.ID}
	}
	if err := t.Validate(); err != nil {
		return err
	}

	g.nodes[t.ID] = t
	for _, to := range t.Edges {
		g.setEdge(t.ID, to)
		if target, ok := g.nodes[to]; ok {
			addID(&target.Blockers, t.ID)
		}
	}

	// Reconcile the blocker mirror for edges that pointed at this id
	// before the node existed.
	for from := range g.incoming[t.ID] {
		addID(&t.Blockers, from)
	}

	g.touch()
	return nil
}

// RemoveNode deletes a task, stripping it from every source's outgoing
// set (and stored edge list) and every target's incoming set (and
// blocker list).
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return &NotFoundError{ID: id}
	}

	for from := range g.incoming[id] {
		delete(g.outgoing[from], id)
		if src, ok := g.nodes[from]; ok {
			removeID(&src.Edges, id)
			src.Touch()
		}
	}
	for to := range g.outgoing[id] {
		delete(g.incoming[to], id)
		if target, ok := g.nodes[to]; ok {
			removeID(&target.Blockers, id)
			target.Touch()
		}
	}

	delete(g.outgoing, id)
	delete(g.incoming, id)
	delete(g.nodes, id)
	g.touch()
	return nil
}

// AddEdge inserts the edge (from -> to) into both indices, appends to
// the source's edge list, and mirrors the source into the target's
// blocker list.
//
// AddEdge does not check for cycles: transient cyclic states are legal
// during import and merge. Callers that require acyclicity must consult
// analysis.WouldCreateCycle before committing the edge.
func (g *Graph) AddEdge(from, to string) error {
	src, ok := g.nodes[from]
	if !ok {
		return &NotFoundError{ID: from}
	}
	target, ok := g.nodes[to]
	if !ok {
		return &NotFoundError{ID: to}
	}
	if g.outgoing[from][to] {
		return &DuplicateEdgeError{From: from, To: to}
	}

	g.setEdge(from, to)
	addID(&src.Edges, to)
	addID(&target.Blockers, from)
	src.Touch()
	target.Touch()
	g.touch()
	return nil
}

// RemoveEdge is the symmetric inverse of AddEdge.
func (g *Graph) RemoveEdge(from, to string) error {
	src, ok := g.nodes[from]
	if !ok {
		return &NotFoundError{ID: from}
	}
	target, ok := g.nodes[to]
	if !ok {
		return &NotFoundError{ID: to}
	}
	if !g.outgoing[from][to] {
		return &EdgeNotFoundError{From: from, To: to}
	}

	delete(g.outgoing[from], to)
	delete(g.incoming[to], from)
	removeID(&src.Edges, to)
	removeID(&target.Blockers, from)
	src.Touch()
	target.Touch()
	g.touch()
	return nil
}

// setEdge records the edge in both index maps without touching node
// field mirrors. Callers maintain those.
func (g *Graph) setEdge(from, to string) {
	if g.outgoing[from] == nil {
		g.outgoing[from] = make(map[string]bool)
	}
	if g.incoming[to] == nil {
		g.incoming[to] = make(map[string]bool)
	}
	g.outgoing[from][to] = true
	g.incoming[to][from] = true
}

// Roots returns the sorted ids of tasks with no incoming edges.
func (g *Graph) Roots() []string {
	var out []string
	for id := range g.nodes {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Orphans returns the sorted ids of tasks with no edges at all.
func (g *Graph) Orphans() []string {
	var out []string
	for id := range g.nodes {
		if len(g.incoming[id]) == 0 && len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Leaves returns the sorted ids of tasks with no outgoing edges.
func (g *Graph) Leaves() []string {
	var out []string
	for id := range g.nodes {
		if len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// BlockerResolved reports whether a blocker id counts as resolved: the
// task is completed, or the id is no longer in the graph.
func (g *Graph) BlockerResolved(id string) bool {
	t, ok := g.nodes[id]
	if !ok {
		return true
	}
	return t.Status.IsTerminal()
}

// RefreshStatus re-derives one task's status from its blockers and
// tracked items.
func (g *Graph) RefreshStatus(id string) error {
	t, ok := g.nodes[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	t.DeriveStatus(g.BlockerResolved)
	return nil
}

// RefreshAllStatuses re-derives every task's status. Derivation depends
// only on blocker completion, which derivation never changes, so a
// single pass in any order suffices.
func (g *Graph) RefreshAllStatuses() {
	for _, t := range g.nodes {
		t.DeriveStatus(g.BlockerResolved)
	}
}

// Validate checks the three-way edge invariant and the blocker mirror.
// A nil result means every edge is present in both indices and in the
// endpoint tasks' own lists.
func (g *Graph) Validate() error {
	for from, targets := range g.outgoing {
		for to := range targets {
			if !g.incoming[to][from] {
				return fmt.Errorf("edge %s -> %s missing from incoming index", from, to)
			}
			src, ok := g.nodes[from]
			if !ok {
				return fmt.Errorf("edge %s -> %s has no source node", from, to)
			}
			if !containsID(src.Edges, to) {
				return fmt.Errorf("edge %s -> %s missing from source edge list", from, to)
			}
			if target, ok := g.nodes[to]; ok && !containsID(target.Blockers, from) {
				return fmt.Errorf("edge %s -> %s missing from target blocker list", from, to)
			}
		}
	}
	for to, sources := range g.incoming {
		for from := range sources {
			if !g.outgoing[from][to] {
				return fmt.Errorf("edge %s -> %s missing from outgoing index", from, to)
			}
		}
	}
	for id, t := range g.nodes {
		if seen := dupID(t.Edges); seen != "" {
			return fmt.Errorf("task %s lists edge target %s twice", id, seen)
		}
		for _, to := range t.Edges {
			if !g.outgoing[id][to] {
				return fmt.Errorf("task %s lists edge %s absent from outgoing index", id, to)
			}
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func dupID(ids []string) string {
	seen := make(map[string]bool, len(ids))
	for _, v := range ids {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}

func addID(ids *[]string, id string) {
	if !containsID(*ids, id) {
		*ids = append(*ids, id)
	}
}

func removeID(ids *[]string, id string) {
	out := (*ids)[:0]
	for _, v := range *ids {
		if v != id {
			out = append(out, v)
		}
	}
	*ids = out
}
