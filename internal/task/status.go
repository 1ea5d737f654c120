package task

import (
	"fmt"
	"time"
)

// Status represents the current state of a task.
//
// Transition table (all transitions except approval are derived):
//
//	any state   -> blocked      one or more unresolved blockers
//	blocked     -> in_progress  blockers resolved, some item already checked
//	blocked     -> ready        blockers resolved, nothing checked yet
//	ready       -> in_progress  first item checked
//	*           -> in_review    every criterion, deliverable, fix item done
//	in_review   -> completed    explicit approval only
//	completed   -> in_progress  a new item appears on a completed task
//
// A blocker counts as resolved when its task is completed or when the
// blocker id no longer exists in the graph.
type Status string

// Task status constants
const (
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusBlocked    Status = "blocked"
	StatusCompleted  Status = "completed"
)

// Legacy statuses from the old five-state manually-set model. They are
// normalized to ready once, at import time.
const (
	legacyNotStarted Status = "not_started"
	legacyPending    Status = "pending"
)

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusReady, StatusInProgress, StatusInReview, StatusBlocked, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a terminal "done" state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Normalize maps legacy statuses to their current equivalent.
func (s Status) Normalize() Status {
	switch s {
	case legacyNotStarted, legacyPending:
		return StatusReady
	}
	return s
}

// Priority represents scheduling priority.
type Priority string

// Priority constants
const (
	PriorityTop    Priority = "top"
	PrioritySecond Priority = "second"
	PriorityLater  Priority = "later"
)

// IsValid checks if the priority value is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityTop, PrioritySecond, PriorityLater:
		return true
	}
	return false
}

// BlockerResolver reports whether the blocker with the given id is
// resolved. A blocker missing from the graph counts as resolved.
type BlockerResolver func(id string) bool

// DeriveStatus recomputes the task's status from its blockers and item
// completion state. It never produces completed: the in_review ->
// completed edge belongs to Approve alone. It may leave completed, both
// when a blocker reopens and when a completed task gains a new item.
func (t *Task) DeriveStatus(resolved BlockerResolver) {
	prev := t.Status

	unresolved := false
	for _, b := range t.Blockers {
		if !resolved(b) {
			unresolved = true
			break
		}
	}

	var next Status
	switch {
	case unresolved:
		next = StatusBlocked
	case t.AllItemsComplete():
		if prev == StatusCompleted {
			next = StatusCompleted
		} else {
			next = StatusInReview
		}
	case t.AnyItemChecked():
		next = StatusInProgress
	default:
		next = StatusReady
	}

	if next == prev {
		return
	}
	t.Status = next
	if prev == StatusCompleted {
		t.CompletedAt = nil
	}
	t.Touch()
}

// Approve moves a task from in_review to completed. This is the only
// manually-triggered transition in the state machine.
func (t *Task) Approve() error {
	if t.Status != StatusInReview {
		return fmt.Errorf("cannot approve task %s: status is %q, not %q", t.ID, t.Status, StatusInReview)
	}
	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	return nil
}
