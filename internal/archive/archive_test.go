package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskloom/taskloom/internal/task"
)

func completedTask(id string) *task.Task {
	now := time.Now()
	t := &task.Task{
		ID:              id,
		Title:           "Task " + id,
		SuccessCriteria: []task.Criterion{{ID: "c1", Text: "works", Done: true}},
		Deliverables:    []task.Deliverable{{ID: "d1", Text: "artifact", Done: true}},
		Status:          task.StatusCompleted,
		Priority:        task.PrioritySecond,
		CompletedAt:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return t
}

func TestStoreAndList(t *testing.T) {
	ctx := context.Background()
	arch, err := Open(ctx, filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer arch.Close()

	tasks := []*task.Task{completedTask("a"), completedTask("b")}
	if err := arch.Store(ctx, tasks); err != nil {
		t.Fatalf("Store() = %v", err)
	}

	records, err := arch.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() = %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Status != task.StatusCompleted {
			t.Errorf("record %s status = %q", r.ID, r.Status)
		}
		if r.CompletedAt == nil {
			t.Errorf("record %s missing CompletedAt", r.ID)
		}
		if r.ArchivedAt.IsZero() {
			t.Errorf("record %s missing ArchivedAt", r.ID)
		}
	}
}

func TestStoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	arch, err := Open(ctx, filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer arch.Close()

	tk := completedTask("a")
	if err := arch.Store(ctx, []*task.Task{tk}); err != nil {
		t.Fatalf("first Store() = %v", err)
	}
	tk.Title = "Task a, revised"
	if err := arch.Store(ctx, []*task.Task{tk}); err != nil {
		t.Fatalf("second Store() = %v", err)
	}

	records, err := arch.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List() = %d records, want 1", len(records))
	}
	if records[0].Title != "Task a, revised" {
		t.Errorf("Title = %q, want the replacement", records[0].Title)
	}
}

func TestGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	arch, err := Open(ctx, filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer arch.Close()

	in := completedTask("a")
	in.Notes = "some details worth keeping"
	if err := arch.Store(ctx, []*task.Task{in}); err != nil {
		t.Fatalf("Store() = %v", err)
	}

	out, err := arch.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if out.Title != in.Title || out.Notes != in.Notes || out.Status != in.Status {
		t.Errorf("Get() = %+v", out)
	}
	if len(out.SuccessCriteria) != 1 || !out.SuccessCriteria[0].Done {
		t.Errorf("criteria lost in round trip: %v", out.SuccessCriteria)
	}

	if _, err := arch.Get(ctx, "missing"); err == nil {
		t.Error("Get(missing) = nil error")
	}
}

func TestListLimit(t *testing.T) {
	ctx := context.Background()
	arch, err := Open(ctx, filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer arch.Close()

	var tasks []*task.Task
	for _, id := range []string{"a", "b", "c"} {
		tasks = append(tasks, completedTask(id))
	}
	if err := arch.Store(ctx, tasks); err != nil {
		t.Fatalf("Store() = %v", err)
	}

	records, err := arch.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("List(limit=2) = %d records", len(records))
	}
}
