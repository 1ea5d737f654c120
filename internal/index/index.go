// Package index maintains the derived lookup structures over the graph
// store: tasks by status, by priority, an inverted token index over
// title+description+notes, a file-path index, and cached root/orphan
// sets. Everything here is a cache: correctness never depends on it,
// it can always be rebuilt from the graph.
package index

import (
	"sort"
	"strings"
	"unicode"

	"github.com/taskloom/taskloom/internal/graph"
	"github.com/taskloom/taskloom/internal/task"
)

// Manager holds the derived indexes. Build one with New, populate with
// Rebuild after a bulk load, and keep it current with UpdateTask and
// InvalidateStructure as the graph mutates.
type Manager struct {
	byStatus   map[task.Status]map[string]bool
	byPriority map[task.Priority]map[string]bool
	tokens     map[string]map[string]bool
	byFile     map[string]map[string]bool

	roots       map[string]bool
	orphans     map[string]bool
	structStale bool

	searchCache map[string][]string
}

// New returns an empty index manager. Root and orphan sets start stale
// and are computed on first read.
func New() *Manager {
	return &Manager{
		byStatus:    make(map[task.Status]map[string]bool),
		byPriority:  make(map[task.Priority]map[string]bool),
		tokens:      make(map[string]map[string]bool),
		byFile:      make(map[string]map[string]bool),
		structStale: true,
		searchCache: make(map[string][]string),
	}
}

// Rebuild recomputes every index from scratch. Call after a bulk load.
func (m *Manager) Rebuild(g *graph.Graph) {
	m.byStatus = make(map[task.Status]map[string]bool)
	m.byPriority = make(map[task.Priority]map[string]bool)
	m.tokens = make(map[string]map[string]bool)
	m.byFile = make(map[string]map[string]bool)
	m.searchCache = make(map[string][]string)
	for _, t := range g.Nodes() {
		m.add(t)
	}
	m.refreshStructure(g)
}

// UpdateTask removes the old node's contribution from every index and
// inserts the new node's, so a single-field edit costs only the token
// and file sets touched. Pass old == nil for a newly created task, and
// updated == nil for a deleted one.
func (m *Manager) UpdateTask(updated, old *task.Task) {
	if old != nil {
		m.remove(old)
	}
	if updated != nil {
		m.add(updated)
	}
	m.searchCache = make(map[string][]string)
	m.structStale = true
}

// InvalidateStructure marks the root/orphan sets stale after an edge
// mutation that touched no node fields.
func (m *Manager) InvalidateStructure() {
	m.structStale = true
}

func (m *Manager) add(t *task.Task) {
	addTo(m.byStatus, t.Status, t.ID)
	addTo(m.byPriority, t.Priority, t.ID)
	for _, tok := range Tokenize(t.Title + " " + t.Description + " " + t.Notes) {
		addTo(m.tokens, tok, t.ID)
	}
	for _, path := range t.RelatedFiles {
		addTo(m.byFile, path, t.ID)
	}
}

func (m *Manager) remove(t *task.Task) {
	removeFrom(m.byStatus, t.Status, t.ID)
	removeFrom(m.byPriority, t.Priority, t.ID)
	for _, tok := range Tokenize(t.Title + " " + t.Description + " " + t.Notes) {
		removeFrom(m.tokens, tok, t.ID)
	}
	for _, path := range t.RelatedFiles {
		removeFrom(m.byFile, path, t.ID)
	}
}

func (m *Manager) refreshStructure(g *graph.Graph) {
	m.roots = make(map[string]bool)
	m.orphans = make(map[string]bool)
	for _, id := range g.Roots() {
		m.roots[id] = true
	}
	for _, id := range g.Orphans() {
		m.orphans[id] = true
	}
	m.structStale = false
}

// ByStatus returns the sorted ids of tasks with the given status.
func (m *Manager) ByStatus(s task.Status) []string {
	return sortedIDs(m.byStatus[s])
}

// ByPriority returns the sorted ids of tasks with the given priority.
func (m *Manager) ByPriority(p task.Priority) []string {
	return sortedIDs(m.byPriority[p])
}

// ByFile returns the sorted ids of tasks referencing the given path.
func (m *Manager) ByFile(path string) []string {
	return sortedIDs(m.byFile[path])
}

// RootTasks returns the sorted ids of tasks with no incoming edges,
// recomputing the cached set if a structural mutation invalidated it.
func (m *Manager) RootTasks(g *graph.Graph) []string {
	if m.structStale {
		m.refreshStructure(g)
	}
	return sortedIDs(m.roots)
}

// OrphanTasks returns the sorted ids of tasks with no edges at all.
func (m *Manager) OrphanTasks(g *graph.Graph) []string {
	if m.structStale {
		m.refreshStructure(g)
	}
	return sortedIDs(m.orphans)
}

// Search tokenizes the query and returns the union of matches across
// tokens (OR semantics), sorted. Results are cached per query until
// the next index mutation.
func (m *Manager) Search(query string) []string {
	key := strings.ToLower(strings.TrimSpace(query))
	if cached, ok := m.searchCache[key]; ok {
		return cached
	}

	matches := make(map[string]bool)
	for _, tok := range Tokenize(query) {
		for id := range m.tokens[tok] {
			matches[id] = true
		}
	}
	result := sortedIDs(matches)
	m.searchCache[key] = result
	return result
}

// Tokenize lower-cases the text and splits it on word boundaries:
// every run of letters or digits becomes one token.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func addTo[K comparable](idx map[K]map[string]bool, key K, id string) {
	set, ok := idx[key]
	if !ok {
		set = make(map[string]bool)
		idx[key] = set
	}
	set[id] = true
}

func removeFrom[K comparable](idx map[K]map[string]bool, key K, id string) {
	set, ok := idx[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(idx, key)
	}
}

func sortedIDs(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
