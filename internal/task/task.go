// Package task defines the task node stored in the graph: its fields,
// field validation, tracked item lists, and the status state machine.
package task

import (
	"fmt"
	"time"
)

// Field limits enforced by Validate. Criteria and deliverables are
// bounded so per-task validation cost stays bounded too.
const (
	MaxTitleLen     = 500
	MinCriteria     = 1
	MaxCriteria     = 10
	MinDeliverables = 1
	MaxDeliverables = 5
	MaxFixItems     = 10
)

// Task represents a unit of work stored in the graph.
type Task struct {
	// ===== Core Identification =====
	ID string `json:"id"`

	// ===== Content =====
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`

	// ===== Status & Priority =====
	Status   Status   `json:"status,omitempty"`
	Priority Priority `json:"priority,omitempty"`

	// ===== Tracked Items =====
	SuccessCriteria []Criterion   `json:"success_criteria"`
	Deliverables    []Deliverable `json:"deliverables"`
	FixItems        []FixItem     `json:"fix_items,omitempty"`

	// ===== Dependencies =====
	// Blockers mirrors the incoming edge set: every edge (a -> this)
	// lists a here. The graph store maintains the mirror.
	Blockers            []string `json:"blockers,omitempty"`
	DependencyRationale string   `json:"dependency_rationale,omitempty"`

	// ===== Structure =====
	Subtasks     []string `json:"subtasks,omitempty"`
	RelatedFiles []string `json:"related_files,omitempty"`

	// Edges is the ordered list of outgoing edge target ids. It mirrors
	// the forward edge index: edge (this -> b) lists b here.
	Edges []string `json:"edges,omitempty"`

	// ===== Verification =====
	Verifications []Verification `json:"verifications,omitempty"`

	// ===== Timestamps =====
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Criterion is a single success criterion on a task.
type Criterion struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Deliverable is a concrete artifact a task must produce.
type Deliverable struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	FilePath string `json:"file_path,omitempty"`
}

// FixItem is a review-feedback item that must be resolved before a task
// can leave review again.
type FixItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Verification records an external verification of completed work.
type Verification struct {
	Verifier  string    `json:"verifier"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// Verification outcome constants
const (
	VerificationAccepted          = "accepted"
	VerificationRejected          = "rejected"
	VerificationRevisionRequested = "revision_requested"
)

// IsValidOutcome checks if the outcome is a known verification outcome.
func (v *Verification) IsValidOutcome() bool {
	switch v.Outcome {
	case VerificationAccepted, VerificationRejected, VerificationRevisionRequested:
		return true
	}
	return false
}

// ValidationError reports a field constraint violation. It always names
// the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks that the task's fields satisfy their constraints.
func (t *Task) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Reason: "is required"}
	}
	if len(t.Title) == 0 {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if len(t.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be %d characters or less (got %d)", MaxTitleLen, len(t.Title))}
	}
	if !t.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}
	if !t.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", t.Priority)}
	}
	if n := len(t.SuccessCriteria); n < MinCriteria || n > MaxCriteria {
		return &ValidationError{Field: "success_criteria", Reason: fmt.Sprintf("must have between %d and %d entries (got %d)", MinCriteria, MaxCriteria, n)}
	}
	if n := len(t.Deliverables); n < MinDeliverables || n > MaxDeliverables {
		return &ValidationError{Field: "deliverables", Reason: fmt.Sprintf("must have between %d and %d entries (got %d)", MinDeliverables, MaxDeliverables, n)}
	}
	if len(t.FixItems) > MaxFixItems {
		return &ValidationError{Field: "fix_items", Reason: fmt.Sprintf("must have at most %d entries (got %d)", MaxFixItems, len(t.FixItems))}
	}
	seen := make(map[string]bool, len(t.SuccessCriteria))
	for _, c := range t.SuccessCriteria {
		if c.ID == "" {
			return &ValidationError{Field: "success_criteria", Reason: "criterion id is required"}
		}
		if seen[c.ID] {
			return &ValidationError{Field: "success_criteria", Reason: fmt.Sprintf("duplicate criterion id %q", c.ID)}
		}
		seen[c.ID] = true
	}
	seen = make(map[string]bool, len(t.Deliverables))
	for _, d := range t.Deliverables {
		if d.ID == "" {
			return &ValidationError{Field: "deliverables", Reason: "deliverable id is required"}
		}
		if seen[d.ID] {
			return &ValidationError{Field: "deliverables", Reason: fmt.Sprintf("duplicate deliverable id %q", d.ID)}
		}
		seen[d.ID] = true
	}
	if t.Status == StatusCompleted && t.CompletedAt == nil {
		return &ValidationError{Field: "completed_at", Reason: "completed tasks must have a completion timestamp"}
	}
	if t.Status != StatusCompleted && t.CompletedAt != nil {
		return &ValidationError{Field: "completed_at", Reason: "non-completed tasks cannot have a completion timestamp"}
	}
	return nil
}

// SetDefaults applies default values for fields omitted during import.
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = StatusReady
	} else {
		t.Status = t.Status.Normalize()
	}
	if t.Priority == "" {
		t.Priority = PrioritySecond
	}
}

// Touch refreshes the updated timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now()
}

// AllItemsComplete reports whether every success criterion, deliverable,
// and fix item is done.
func (t *Task) AllItemsComplete() bool {
	for _, c := range t.SuccessCriteria {
		if !c.Done {
			return false
		}
	}
	for _, d := range t.Deliverables {
		if !d.Done {
			return false
		}
	}
	for _, f := range t.FixItems {
		if !f.Done {
			return false
		}
	}
	return true
}

// AnyItemChecked reports whether at least one tracked item is done.
func (t *Task) AnyItemChecked() bool {
	for _, c := range t.SuccessCriteria {
		if c.Done {
			return true
		}
	}
	for _, d := range t.Deliverables {
		if d.Done {
			return true
		}
	}
	for _, f := range t.FixItems {
		if f.Done {
			return true
		}
	}
	return false
}

// SetCriterionDone marks a success criterion complete or incomplete and
// maintains its completion timestamp.
func (t *Task) SetCriterionDone(id string, done bool) error {
	for i := range t.SuccessCriteria {
		if t.SuccessCriteria[i].ID != id {
			continue
		}
		t.SuccessCriteria[i].Done = done
		if done {
			now := time.Now()
			t.SuccessCriteria[i].CompletedAt = &now
		} else {
			t.SuccessCriteria[i].CompletedAt = nil
		}
		t.Touch()
		return nil
	}
	return &ValidationError{Field: "success_criteria", Reason: fmt.Sprintf("no criterion with id %q", id)}
}

// SetDeliverableDone marks a deliverable complete or incomplete. An
// optional file path records where the artifact landed.
func (t *Task) SetDeliverableDone(id string, done bool, filePath string) error {
	for i := range t.Deliverables {
		if t.Deliverables[i].ID != id {
			continue
		}
		t.Deliverables[i].Done = done
		if filePath != "" {
			t.Deliverables[i].FilePath = filePath
		}
		t.Touch()
		return nil
	}
	return &ValidationError{Field: "deliverables", Reason: fmt.Sprintf("no deliverable with id %q", id)}
}

// SetFixItemDone marks a fix item complete or incomplete.
func (t *Task) SetFixItemDone(id string, done bool) error {
	for i := range t.FixItems {
		if t.FixItems[i].ID != id {
			continue
		}
		t.FixItems[i].Done = done
		t.Touch()
		return nil
	}
	return &ValidationError{Field: "fix_items", Reason: fmt.Sprintf("no fix item with id %q", id)}
}

// AddCriterion appends a success criterion, enforcing the upper bound.
func (t *Task) AddCriterion(id, text string) error {
	if len(t.SuccessCriteria) >= MaxCriteria {
		return &ValidationError{Field: "success_criteria", Reason: fmt.Sprintf("must have at most %d entries", MaxCriteria)}
	}
	for _, c := range t.SuccessCriteria {
		if c.ID == id {
			return &ValidationError{Field: "success_criteria", Reason: fmt.Sprintf("duplicate criterion id %q", id)}
		}
	}
	t.SuccessCriteria = append(t.SuccessCriteria, Criterion{ID: id, Text: text})
	t.Touch()
	return nil
}

// AddDeliverable appends a deliverable, enforcing the upper bound.
func (t *Task) AddDeliverable(id, text string) error {
	if len(t.Deliverables) >= MaxDeliverables {
		return &ValidationError{Field: "deliverables", Reason: fmt.Sprintf("must have at most %d entries", MaxDeliverables)}
	}
	for _, d := range t.Deliverables {
		if d.ID == id {
			return &ValidationError{Field: "deliverables", Reason: fmt.Sprintf("duplicate deliverable id %q", id)}
		}
	}
	t.Deliverables = append(t.Deliverables, Deliverable{ID: id, Text: text})
	t.Touch()
	return nil
}

// AddFixItem appends a review fix item, enforcing the upper bound.
func (t *Task) AddFixItem(id, text string) error {
	if len(t.FixItems) >= MaxFixItems {
		return &ValidationError{Field: "fix_items", Reason: fmt.Sprintf("must have at most %d entries", MaxFixItems)}
	}
	for _, f := range t.FixItems {
		if f.ID == id {
			return &ValidationError{Field: "fix_items", Reason: fmt.Sprintf("duplicate fix item id %q", id)}
		}
	}
	t.FixItems = append(t.FixItems, FixItem{ID: id, Text: text})
	t.Touch()
	return nil
}

// SetDependencyRationale records why this task's blockers exist.
func (t *Task) SetDependencyRationale(rationale string) {
	t.DependencyRationale = rationale
	t.Touch()
}

// AddVerification appends an external verification record.
func (t *Task) AddVerification(v Verification) error {
	if !v.IsValidOutcome() {
		return &ValidationError{Field: "verifications", Reason: fmt.Sprintf("unknown outcome %q", v.Outcome)}
	}
	t.Verifications = append(t.Verifications, v)
	t.Touch()
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	out := *t
	out.SuccessCriteria = append([]Criterion(nil), t.SuccessCriteria...)
	out.Deliverables = append([]Deliverable(nil), t.Deliverables...)
	out.FixItems = append([]FixItem(nil), t.FixItems...)
	out.Blockers = append([]string(nil), t.Blockers...)
	out.Subtasks = append([]string(nil), t.Subtasks...)
	out.RelatedFiles = append([]string(nil), t.RelatedFiles...)
	out.Edges = append([]string(nil), t.Edges...)
	out.Verifications = append([]Verification(nil), t.Verifications...)
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		out.CompletedAt = &completed
	}
	return &out
}
