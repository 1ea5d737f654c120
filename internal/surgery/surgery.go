// Package surgery implements the composite graph mutations: cut,
// insert-between, move-subtree, merge, and cascade delete. Each
// operation checks every precondition before touching the graph, so a
// failure never leaves a partial edge rewrite behind.
package surgery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/taskloom/taskloom/internal/analysis"
	"github.com/taskloom/taskloom/internal/debug"
	"github.com/taskloom/taskloom/internal/graph"
	"github.com/taskloom/taskloom/internal/task"
)

// Cut removes a node and reconnects every incoming source directly to
// every outgoing target (the full bipartite cross-product), skipping
// reconnections that would duplicate an existing edge or form a
// self-loop. The removal itself prunes the cut id from the affected
// nodes' blocker and edge lists.
func Cut(g *graph.Graph, id string) error {
	if !g.HasNode(id) {
		return &graph.NotFoundError{ID: id}
	}

	sources := g.Incoming(id)
	targets := g.Outgoing(id)

	if err := g.RemoveNode(id); err != nil {
		return err
	}

	for _, from := range sources {
		for _, to := range targets {
			if from == to || g.HasEdge(from, to) {
				continue
			}
			if err := g.AddEdge(from, to); err != nil {
				return fmt.Errorf("reconnecting %s -> %s after cutting %s: %w", from, to, id, err)
			}
		}
	}

	for _, from := range sources {
		g.RefreshStatus(from) //nolint:errcheck // endpoint verified above
	}
	for _, to := range targets {
		g.RefreshStatus(to) //nolint:errcheck
	}
	return nil
}

// InsertBetween places a new node on an existing edge: the edge
// (after -> before) is replaced by after -> newTask -> before. The
// operation fails without mutating when the edge is missing, the new id
// is taken, or the new task does not validate.
func InsertBetween(g *graph.Graph, newTask *task.Task, afterID, beforeID string) error {
	if !g.HasNode(afterID) {
		return &graph.NotFoundError{ID: afterID}
	}
	if !g.HasNode(beforeID) {
		return &graph.NotFoundError{ID: beforeID}
	}
	if !g.HasEdge(afterID, beforeID) {
		return &graph.EdgeNotFoundError{From: afterID, To: beforeID}
	}
	if g.HasNode(newTask.ID) {
		return &graph.DuplicateIDError{ID: newTask.ID}
	}
	if err := newTask.Validate(); err != nil {
		return err
	}

	if err := g.AddNode(newTask); err != nil {
		return err
	}
	if err := g.RemoveEdge(afterID, beforeID); err != nil {
		return err
	}
	if err := g.AddEdge(afterID, newTask.ID); err != nil {
		return err
	}
	if err := g.AddEdge(newTask.ID, beforeID); err != nil {
		return err
	}

	g.RefreshStatus(newTask.ID) //nolint:errcheck
	g.RefreshStatus(beforeID)   //nolint:errcheck
	return nil
}

// MoveSubtree detaches a node from all of its current parents and
// attaches it under exactly one new parent. It fails when the new edge
// already exists or would be a self-loop. Moving a node under its own
// descendant closes a cycle; callers should consult
// analysis.IsValidSubtreeMove first, and MoveSubtree re-checks it.
func MoveSubtree(g *graph.Graph, id, newParentID string) error {
	if !g.HasNode(id) {
		return &graph.NotFoundError{ID: id}
	}
	if !g.HasNode(newParentID) {
		return &graph.NotFoundError{ID: newParentID}
	}
	if id == newParentID {
		return fmt.Errorf("cannot move %s under itself", id)
	}
	if g.HasEdge(newParentID, id) {
		return &graph.DuplicateEdgeError{From: newParentID, To: id}
	}
	if ok, err := analysis.IsValidSubtreeMove(g, id, newParentID); err != nil {
		return err
	} else if !ok {
		return &graph.CycleError{Nodes: []string{id, newParentID}}
	}

	for _, parent := range g.Incoming(id) {
		if err := g.RemoveEdge(parent, id); err != nil {
			return err
		}
	}
	if err := g.AddEdge(newParentID, id); err != nil {
		return err
	}

	g.RefreshStatus(id) //nolint:errcheck
	return nil
}

// MergeResult reports a completed merge: the surviving task and the
// sorted ids of every task whose edges were rewritten.
type MergeResult struct {
	Merged    *task.Task
	Rewired   []string
	DeletedID string
}

// mergeSeparator introduces content carried over from the merged-away
// task.
const mergeSeparator = "--- merged from %s ---"

// Merge folds sourceID into targetID: content fields are concatenated
// or unioned (items de-duplicated by id), every edge touching the
// source is reconnected onto the target, and the source is deleted.
func Merge(g *graph.Graph, sourceID, targetID string) (*MergeResult, error) {
	if sourceID == targetID {
		return nil, fmt.Errorf("cannot merge %s into itself", sourceID)
	}
	source, err := g.Node(sourceID)
	if err != nil {
		return nil, err
	}
	target, err := g.Node(targetID)
	if err != nil {
		return nil, err
	}

	rewired := make(map[string]bool)

	// Reconnect edges first, while the source still exists: incoming
	// sources become sources of the target, outgoing targets become
	// targets of the target. Self-references and duplicates are skipped.
	for _, from := range g.Incoming(sourceID) {
		if from == targetID || g.HasEdge(from, targetID) {
			continue
		}
		if err := g.AddEdge(from, targetID); err != nil {
			return nil, err
		}
		rewired[from] = true
	}
	for _, to := range g.Outgoing(sourceID) {
		if to == targetID || g.HasEdge(targetID, to) {
			continue
		}
		if err := g.AddEdge(targetID, to); err != nil {
			return nil, err
		}
		rewired[to] = true
	}

	mergeContent(target, source)

	if err := g.RemoveNode(sourceID); err != nil {
		return nil, err
	}
	g.RefreshStatus(targetID) //nolint:errcheck

	result := &MergeResult{Merged: target, DeletedID: sourceID}
	for id := range rewired {
		result.Rewired = append(result.Rewired, id)
	}
	sort.Strings(result.Rewired)
	return result, nil
}

// mergeContent folds the source's content fields into the target.
// Structural fields (edges, blockers that mirror edges) are handled by
// the edge rewiring in Merge; this covers everything textual.
func mergeContent(target, source *task.Task) {
	if source.Description != "" {
		sep := fmt.Sprintf(mergeSeparator, source.ID)
		if target.Description == "" {
			target.Description = sep + "\n" + source.Description
		} else {
			target.Description = target.Description + "\n\n" + sep + "\n" + source.Description
		}
	}

	have := make(map[string]bool, len(target.SuccessCriteria))
	for _, c := range target.SuccessCriteria {
		have[c.ID] = true
	}
	for _, c := range source.SuccessCriteria {
		if !have[c.ID] {
			target.SuccessCriteria = append(target.SuccessCriteria, c)
		}
	}

	have = make(map[string]bool, len(target.Deliverables))
	for _, d := range target.Deliverables {
		have[d.ID] = true
	}
	for _, d := range source.Deliverables {
		if !have[d.ID] {
			target.Deliverables = append(target.Deliverables, d)
		}
	}

	have = make(map[string]bool, len(target.FixItems))
	for _, f := range target.FixItems {
		have[f.ID] = true
	}
	for _, f := range source.FixItems {
		if !have[f.ID] {
			target.FixItems = append(target.FixItems, f)
		}
	}

	for _, path := range source.RelatedFiles {
		if !containsString(target.RelatedFiles, path) {
			target.RelatedFiles = append(target.RelatedFiles, path)
		}
	}

	if source.Notes != "" {
		if target.Notes == "" {
			target.Notes = source.Notes
		} else {
			target.Notes = target.Notes + "\n\n" + source.Notes
		}
	}

	// Blocker ids beyond the edge mirror (e.g. imported references),
	// excluding references to either side of the merge.
	for _, b := range source.Blockers {
		if b == target.ID || b == source.ID {
			continue
		}
		if !containsString(target.Blockers, b) {
			target.Blockers = append(target.Blockers, b)
		}
	}
	if source.DependencyRationale != "" {
		parts := []string{}
		if target.DependencyRationale != "" {
			parts = append(parts, target.DependencyRationale)
		}
		parts = append(parts, source.DependencyRationale)
		target.DependencyRationale = strings.Join(parts, "\n")
	}

	target.Verifications = append(target.Verifications, source.Verifications...)
	target.Touch()
}

// CascadeDelete removes a node and its entire descendant set, deleting
// in dependency order: at each step only members with no remaining
// out-edges inside the set are removed, so the edge indices stay
// consistent throughout. A stall means the deletion set contains a
// cycle; the remainder is force-deleted and the anomaly logged.
// Returns the deleted ids in deletion order.
func CascadeDelete(g *graph.Graph, id string) ([]string, error) {
	if !g.HasNode(id) {
		return nil, &graph.NotFoundError{ID: id}
	}

	descendants, err := analysis.Descendants(g, id)
	if err != nil {
		return nil, err
	}
	doomed := make(map[string]bool, len(descendants)+1)
	doomed[id] = true
	for _, d := range descendants {
		doomed[d] = true
	}

	var deleted []string
	for len(doomed) > 0 {
		var leaves []string
		for member := range doomed {
			hasInternalOut := false
			for _, to := range g.Outgoing(member) {
				if doomed[to] {
					hasInternalOut = true
					break
				}
			}
			if !hasInternalOut {
				leaves = append(leaves, member)
			}
		}

		if len(leaves) == 0 {
			// Leaf peeling only stalls when the deletion set holds a
			// cycle, which a valid DAG cannot. Clean up anyway.
			remainder := make([]string, 0, len(doomed))
			for member := range doomed {
				remainder = append(remainder, member)
			}
			sort.Strings(remainder)
			debug.Logf("cascade delete of %s stalled on cyclic remainder %v; force-deleting", id, remainder)
			for _, member := range remainder {
				if err := g.RemoveNode(member); err != nil {
					return deleted, err
				}
				deleted = append(deleted, member)
			}
			break
		}

		sort.Strings(leaves)
		for _, member := range leaves {
			if err := g.RemoveNode(member); err != nil {
				return deleted, err
			}
			deleted = append(deleted, member)
			delete(doomed, member)
		}
	}

	return deleted, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
