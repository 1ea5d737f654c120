package surgery

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/taskloom/taskloom/internal/graph"
	"github.com/taskloom/taskloom/internal/task"
)

func newTask(id string) *task.Task {
	t := &task.Task{
		ID:              id,
		Title:           "Task " + id,
		SuccessCriteria: []task.Criterion{{ID: "c1", Text: "works"}},
		Deliverables:    []task.Deliverable{{ID: "d1", Text: "artifact"}},
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	t.SetDefaults()
	return t
}

func buildGraph(t *testing.T, ids []string, edges [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New("test")
	for _, id := range ids {
		if err := g.AddNode(newTask(id)); err != nil {
			t.Fatalf("AddNode(%s) = %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%s, %s) = %v", e[0], e[1], err)
		}
	}
	return g
}

func TestCut(t *testing.T) {
	// a -> b -> c; cutting b must leave a -> c.
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	if err := Cut(g, "b"); err != nil {
		t.Fatalf("Cut() = %v", err)
	}
	if g.HasNode("b") {
		t.Fatal("cut node still present")
	}
	if !g.HasEdge("a", "c") {
		t.Fatal("bridge edge a -> c missing")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCutBipartite(t *testing.T) {
	// Two sources, two targets: cutting the middle yields 4 bridges.
	g := buildGraph(t, []string{"s1", "s2", "m", "t1", "t2"},
		[][2]string{{"s1", "m"}, {"s2", "m"}, {"m", "t1"}, {"m", "t2"}})

	if err := Cut(g, "m"); err != nil {
		t.Fatalf("Cut() = %v", err)
	}
	for _, from := range []string{"s1", "s2"} {
		for _, to := range []string{"t1", "t2"} {
			if !g.HasEdge(from, to) {
				t.Errorf("missing bridge %s -> %s", from, to)
			}
		}
	}
	if g.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", g.EdgeCount())
	}
}

func TestCutSkipsExistingAndSelf(t *testing.T) {
	// a -> m -> a is a cycle; cutting m would bridge a -> a. The
	// self-loop must be skipped. Pre-existing a -> c must not error.
	g := buildGraph(t, []string{"a", "m", "c"},
		[][2]string{{"a", "m"}, {"m", "a"}, {"m", "c"}, {"a", "c"}})

	if err := Cut(g, "m"); err != nil {
		t.Fatalf("Cut() = %v", err)
	}
	if g.HasEdge("a", "a") {
		t.Error("self-loop bridge created")
	}
	if !g.HasEdge("a", "c") {
		t.Error("existing edge lost")
	}
}

func TestCutMissing(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)
	var nf *graph.NotFoundError
	if err := Cut(g, "zzz"); !errors.As(err, &nf) {
		t.Fatalf("Cut(missing) = %v, want NotFoundError", err)
	}
}

func TestInsertBetween(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	mid := newTask("mid")
	if err := InsertBetween(g, mid, "a", "b"); err != nil {
		t.Fatalf("InsertBetween() = %v", err)
	}
	if g.HasEdge("a", "b") {
		t.Error("original edge survived")
	}
	if !g.HasEdge("a", "mid") || !g.HasEdge("mid", "b") {
		t.Error("chain edges missing")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	// The inserted node is blocked by a; b is blocked by mid.
	m, _ := g.Node("mid")
	if m.Status != task.StatusBlocked {
		t.Errorf("mid.Status = %q, want blocked", m.Status)
	}
}

func TestInsertBetweenPreconditions(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}})

	tests := []struct {
		name   string
		task   *task.Task
		after  string
		before string
	}{
		{"edge missing", newTask("x"), "a", "c"},
		{"after missing", newTask("x"), "zzz", "b"},
		{"duplicate id", newTask("a"), "a", "b"},
		{"invalid task", &task.Task{ID: "x"}, "a", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InsertBetween(g, tt.task, tt.after, tt.before); err == nil {
				t.Fatal("InsertBetween() succeeded, want error")
			}
			// Failed inserts must not leave partial state.
			if tt.task.ID == "x" && g.HasNode("x") {
				t.Error("failed insert left the new node behind")
			}
			if !g.HasEdge("a", "b") {
				t.Error("failed insert removed the original edge")
			}
		})
	}
}

func TestMoveSubtree(t *testing.T) {
	// p1 -> m, p2 -> m, m -> child; move m under np.
	g := buildGraph(t, []string{"p1", "p2", "m", "child", "np"},
		[][2]string{{"p1", "m"}, {"p2", "m"}, {"m", "child"}})

	if err := MoveSubtree(g, "m", "np"); err != nil {
		t.Fatalf("MoveSubtree() = %v", err)
	}
	if g.HasEdge("p1", "m") || g.HasEdge("p2", "m") {
		t.Error("old parent edges survived")
	}
	if !g.HasEdge("np", "m") {
		t.Error("new parent edge missing")
	}
	if !g.HasEdge("m", "child") {
		t.Error("subtree edge lost")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMoveSubtreeRejectsCycle(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	var cerr *graph.CycleError
	if err := MoveSubtree(g, "a", "c"); !errors.As(err, &cerr) {
		t.Fatalf("MoveSubtree into own subtree = %v, want CycleError", err)
	}
	if err := MoveSubtree(g, "a", "a"); err == nil {
		t.Fatal("MoveSubtree onto itself succeeded")
	}
	// Graph untouched after the rejections.
	if !g.HasEdge("a", "b") || !g.HasEdge("b", "c") || g.EdgeCount() != 2 {
		t.Error("rejected move mutated the graph")
	}
}

func TestMerge(t *testing.T) {
	// up -> src -> down; merging src into tgt rewires both edges.
	g := buildGraph(t, []string{"up", "src", "down", "tgt"},
		[][2]string{{"up", "src"}, {"src", "down"}})

	src, _ := g.Node("src")
	src.Description = "source details"
	src.RelatedFiles = []string{"src.go"}

	result, err := Merge(g, "src", "tgt")
	if err != nil {
		t.Fatalf("Merge() = %v", err)
	}
	if g.HasNode("src") {
		t.Fatal("merged-away node still present")
	}
	if !g.HasEdge("up", "tgt") || !g.HasEdge("tgt", "down") {
		t.Error("edges not rewired onto target")
	}
	if want := []string{"down", "up"}; !reflect.DeepEqual(result.Rewired, want) {
		t.Errorf("Rewired = %v, want %v", result.Rewired, want)
	}
	if result.DeletedID != "src" {
		t.Errorf("DeletedID = %q", result.DeletedID)
	}
	if !strings.Contains(result.Merged.Description, "merged from src") {
		t.Errorf("Description = %q, separator missing", result.Merged.Description)
	}
	if !strings.Contains(result.Merged.Description, "source details") {
		t.Error("source description not carried over")
	}
	if !reflect.DeepEqual(result.Merged.RelatedFiles, []string{"src.go"}) {
		t.Errorf("RelatedFiles = %v", result.Merged.RelatedFiles)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMergeSkipsSelfAndDuplicate(t *testing.T) {
	// tgt -> src: rewiring would create tgt -> tgt; must be skipped.
	g := buildGraph(t, []string{"src", "tgt", "down"},
		[][2]string{{"tgt", "src"}, {"src", "down"}, {"tgt", "down"}})

	result, err := Merge(g, "src", "tgt")
	if err != nil {
		t.Fatalf("Merge() = %v", err)
	}
	if g.HasEdge("tgt", "tgt") {
		t.Error("self-edge created")
	}
	// tgt -> down already existed, so nothing was rewired.
	if len(result.Rewired) != 0 {
		t.Errorf("Rewired = %v, want none", result.Rewired)
	}
}

func TestMergeItemUnion(t *testing.T) {
	g := buildGraph(t, []string{"src", "tgt"}, nil)
	src, _ := g.Node("src")
	tgt, _ := g.Node("tgt")
	src.SuccessCriteria = append(src.SuccessCriteria, task.Criterion{ID: "c2", Text: "extra"})
	tgt.SuccessCriteria[0].Done = true

	result, err := Merge(g, "src", "tgt")
	if err != nil {
		t.Fatalf("Merge() = %v", err)
	}
	// c1 collides and keeps the target's copy; c2 is unioned in.
	if len(result.Merged.SuccessCriteria) != 2 {
		t.Fatalf("criteria = %v", result.Merged.SuccessCriteria)
	}
	if !result.Merged.SuccessCriteria[0].Done {
		t.Error("target's checked state lost in collision")
	}
	if result.Merged.SuccessCriteria[1].ID != "c2" {
		t.Errorf("unioned criterion = %v", result.Merged.SuccessCriteria[1])
	}
}

func TestMergeSelf(t *testing.T) {
	g := buildGraph(t, []string{"a"}, nil)
	if _, err := Merge(g, "a", "a"); err == nil {
		t.Fatal("Merge onto itself succeeded")
	}
}

func TestCascadeDelete(t *testing.T) {
	// root -> a -> leaf1, root -> b; "keep" shares a with another parent
	// but still descends from root, so it goes too.
	g := buildGraph(t, []string{"root", "a", "b", "leaf1", "outside"},
		[][2]string{{"root", "a"}, {"root", "b"}, {"a", "leaf1"}, {"outside", "a"}})

	deleted, err := CascadeDelete(g, "root")
	if err != nil {
		t.Fatalf("CascadeDelete() = %v", err)
	}
	if want := []string{"b", "leaf1", "a", "root"}; !reflect.DeepEqual(deleted, want) {
		t.Errorf("deletion order = %v, want %v", deleted, want)
	}
	if g.Len() != 1 || !g.HasNode("outside") {
		t.Errorf("survivors = %v, want [outside]", g.NodeIDs())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCascadeDeleteCyclicRemainder(t *testing.T) {
	// root -> a -> b -> a: the descendant set holds a cycle; cascade
	// must still remove everything.
	g := buildGraph(t, []string{"root", "a", "b"},
		[][2]string{{"root", "a"}, {"a", "b"}, {"b", "a"}})

	deleted, err := CascadeDelete(g, "root")
	if err != nil {
		t.Fatalf("CascadeDelete() = %v", err)
	}
	if len(deleted) != 3 || g.Len() != 0 {
		t.Errorf("deleted = %v, remaining = %v", deleted, g.NodeIDs())
	}
}

func TestCascadeDeleteLeafOnly(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	deleted, err := CascadeDelete(g, "b")
	if err != nil {
		t.Fatalf("CascadeDelete() = %v", err)
	}
	if want := []string{"b"}; !reflect.DeepEqual(deleted, want) {
		t.Errorf("deleted = %v, want %v", deleted, want)
	}
	if !g.HasNode("a") {
		t.Error("parent deleted")
	}
}
