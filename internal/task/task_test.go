package task

import (
	"strings"
	"testing"
	"time"
)

func validTask(id string) *Task {
	t := &Task{
		ID:    id,
		Title: "Test task " + id,
		SuccessCriteria: []Criterion{
			{ID: "c1", Text: "it works"},
		},
		Deliverables: []Deliverable{
			{ID: "d1", Text: "the thing"},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	t.SetDefaults()
	return t
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Task)
		wantField string
	}{
		{
			name:   "valid task passes",
			mutate: func(tk *Task) {},
		},
		{
			name:      "missing id",
			mutate:    func(tk *Task) { tk.ID = "" },
			wantField: "id",
		},
		{
			name:      "missing title",
			mutate:    func(tk *Task) { tk.Title = "" },
			wantField: "title",
		},
		{
			name:      "title too long",
			mutate:    func(tk *Task) { tk.Title = strings.Repeat("x", MaxTitleLen+1) },
			wantField: "title",
		},
		{
			name:      "unknown status",
			mutate:    func(tk *Task) { tk.Status = "paused" },
			wantField: "status",
		},
		{
			name:      "unknown priority",
			mutate:    func(tk *Task) { tk.Priority = "urgent" },
			wantField: "priority",
		},
		{
			name:      "no criteria",
			mutate:    func(tk *Task) { tk.SuccessCriteria = nil },
			wantField: "success_criteria",
		},
		{
			name: "too many criteria",
			mutate: func(tk *Task) {
				for i := 0; i < MaxCriteria; i++ {
					tk.SuccessCriteria = append(tk.SuccessCriteria, Criterion{ID: string(rune('a' + i)), Text: "x"})
				}
			},
			wantField: "success_criteria",
		},
		{
			name:      "no deliverables",
			mutate:    func(tk *Task) { tk.Deliverables = nil },
			wantField: "deliverables",
		},
		{
			name: "duplicate criterion id",
			mutate: func(tk *Task) {
				tk.SuccessCriteria = append(tk.SuccessCriteria, Criterion{ID: "c1", Text: "again"})
			},
			wantField: "success_criteria",
		},
		{
			name:      "completed without timestamp",
			mutate:    func(tk *Task) { tk.Status = StatusCompleted },
			wantField: "completed_at",
		},
		{
			name: "timestamp without completed",
			mutate: func(tk *Task) {
				now := time.Now()
				tk.CompletedAt = &now
			},
			wantField: "completed_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask("t-1")
			tt.mutate(tk)
			err := tk.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error on field %q", tt.wantField)
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Validate() returned %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Validate() flagged field %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	tests := []struct {
		name       string
		status     Status
		priority   Priority
		wantStatus Status
	}{
		{"empty status becomes ready", "", "", StatusReady},
		{"legacy not_started becomes ready", "not_started", "", StatusReady},
		{"legacy pending becomes ready", "pending", "", StatusReady},
		{"existing status kept", StatusInProgress, PriorityTop, StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := &Task{Status: tt.status, Priority: tt.priority}
			tk.SetDefaults()
			if tk.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", tk.Status, tt.wantStatus)
			}
			if tk.Priority == "" {
				t.Error("Priority not defaulted")
			}
		})
	}
}

func allResolved(string) bool  { return true }
func noneResolved(string) bool { return false }

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Task)
		resolved BlockerResolver
		want     Status
	}{
		{
			name:     "no blockers nothing checked is ready",
			setup:    func(tk *Task) {},
			resolved: allResolved,
			want:     StatusReady,
		},
		{
			name:     "unresolved blocker wins",
			setup:    func(tk *Task) { tk.Blockers = []string{"t-0"} },
			resolved: noneResolved,
			want:     StatusBlocked,
		},
		{
			name: "blocked even when all items done",
			setup: func(tk *Task) {
				tk.Blockers = []string{"t-0"}
				tk.SuccessCriteria[0].Done = true
				tk.Deliverables[0].Done = true
			},
			resolved: noneResolved,
			want:     StatusBlocked,
		},
		{
			name:     "one item checked is in progress",
			setup:    func(tk *Task) { tk.SuccessCriteria[0].Done = true },
			resolved: allResolved,
			want:     StatusInProgress,
		},
		{
			name: "all items done is in review",
			setup: func(tk *Task) {
				tk.SuccessCriteria[0].Done = true
				tk.Deliverables[0].Done = true
			},
			resolved: allResolved,
			want:     StatusInReview,
		},
		{
			name: "open fix item holds task out of review",
			setup: func(tk *Task) {
				tk.SuccessCriteria[0].Done = true
				tk.Deliverables[0].Done = true
				tk.FixItems = []FixItem{{ID: "f1", Text: "redo"}}
			},
			resolved: allResolved,
			want:     StatusInProgress,
		},
		{
			name: "completed stays completed when items still done",
			setup: func(tk *Task) {
				tk.SuccessCriteria[0].Done = true
				tk.Deliverables[0].Done = true
				now := time.Now()
				tk.Status = StatusCompleted
				tk.CompletedAt = &now
			},
			resolved: allResolved,
			want:     StatusCompleted,
		},
		{
			name: "new item reopens completed task",
			setup: func(tk *Task) {
				tk.SuccessCriteria[0].Done = true
				tk.Deliverables[0].Done = true
				now := time.Now()
				tk.Status = StatusCompleted
				tk.CompletedAt = &now
				tk.SuccessCriteria = append(tk.SuccessCriteria, Criterion{ID: "c2", Text: "more"})
			},
			resolved: allResolved,
			want:     StatusInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask("t-1")
			tt.setup(tk)
			tk.DeriveStatus(tt.resolved)
			if tk.Status != tt.want {
				t.Errorf("DeriveStatus() -> %q, want %q", tk.Status, tt.want)
			}
			if tk.Status != StatusCompleted && tk.CompletedAt != nil {
				t.Error("CompletedAt not cleared on demotion")
			}
		})
	}
}

func TestDeriveStatusNeverCompletes(t *testing.T) {
	tk := validTask("t-1")
	tk.SuccessCriteria[0].Done = true
	tk.Deliverables[0].Done = true
	tk.DeriveStatus(allResolved)
	if tk.Status == StatusCompleted {
		t.Fatal("DeriveStatus produced completed; only Approve may")
	}
	if tk.Status != StatusInReview {
		t.Fatalf("Status = %q, want %q", tk.Status, StatusInReview)
	}
}

func TestApprove(t *testing.T) {
	tk := validTask("t-1")
	if err := tk.Approve(); err == nil {
		t.Fatal("Approve() succeeded on a ready task")
	}

	tk.SuccessCriteria[0].Done = true
	tk.Deliverables[0].Done = true
	tk.DeriveStatus(allResolved)
	if err := tk.Approve(); err != nil {
		t.Fatalf("Approve() = %v", err)
	}
	if tk.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", tk.Status, StatusCompleted)
	}
	if tk.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
}

func TestItemOperations(t *testing.T) {
	tk := validTask("t-1")

	if err := tk.SetCriterionDone("c1", true); err != nil {
		t.Fatalf("SetCriterionDone() = %v", err)
	}
	if tk.SuccessCriteria[0].CompletedAt == nil {
		t.Error("criterion CompletedAt not set")
	}
	if err := tk.SetCriterionDone("c1", false); err != nil {
		t.Fatalf("SetCriterionDone(false) = %v", err)
	}
	if tk.SuccessCriteria[0].CompletedAt != nil {
		t.Error("criterion CompletedAt not cleared")
	}
	if err := tk.SetCriterionDone("nope", true); err == nil {
		t.Error("SetCriterionDone accepted unknown id")
	}

	if err := tk.SetDeliverableDone("d1", true, "out/result.txt"); err != nil {
		t.Fatalf("SetDeliverableDone() = %v", err)
	}
	if tk.Deliverables[0].FilePath != "out/result.txt" {
		t.Errorf("FilePath = %q", tk.Deliverables[0].FilePath)
	}

	for i := 0; i < MaxFixItems; i++ {
		if err := tk.AddFixItem(string(rune('a'+i)), "fix"); err != nil {
			t.Fatalf("AddFixItem(%d) = %v", i, err)
		}
	}
	if err := tk.AddFixItem("overflow", "fix"); err == nil {
		t.Error("AddFixItem exceeded the cap")
	}
}

func TestAddVerification(t *testing.T) {
	tk := validTask("t-1")
	if err := tk.AddVerification(Verification{Verifier: "ci", Outcome: "looks_fine"}); err == nil {
		t.Error("AddVerification accepted unknown outcome")
	}
	if err := tk.AddVerification(Verification{Verifier: "ci", Outcome: VerificationAccepted, Timestamp: time.Now()}); err != nil {
		t.Fatalf("AddVerification() = %v", err)
	}
	if len(tk.Verifications) != 1 {
		t.Errorf("Verifications = %d, want 1", len(tk.Verifications))
	}
}

func TestSetDependencyRationale(t *testing.T) {
	tk := validTask("t-1")
	before := time.Now().Add(-time.Hour)
	tk.UpdatedAt = before

	tk.SetDependencyRationale("schema must land first")
	if tk.DependencyRationale != "schema must land first" {
		t.Errorf("DependencyRationale = %q", tk.DependencyRationale)
	}
	if !tk.UpdatedAt.After(before) {
		t.Error("UpdatedAt not refreshed")
	}
}

func TestClone(t *testing.T) {
	tk := validTask("t-1")
	tk.Blockers = []string{"t-0"}
	tk.Edges = []string{"t-2"}

	cp := tk.Clone()
	cp.SuccessCriteria[0].Done = true
	cp.Blockers[0] = "changed"
	cp.Edges = append(cp.Edges, "t-3")

	if tk.SuccessCriteria[0].Done {
		t.Error("Clone shares criteria")
	}
	if tk.Blockers[0] != "t-0" {
		t.Error("Clone shares blockers")
	}
	if len(tk.Edges) != 1 {
		t.Error("Clone shares edges")
	}
}
