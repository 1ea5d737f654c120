package graph

import "fmt"

// NotFoundError reports a missing task.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

// EdgeNotFoundError reports a missing edge between two existing tasks.
type EdgeNotFoundError struct {
	From, To string
}

func (e *EdgeNotFoundError) Error() string {
	return fmt.Sprintf("no edge %s -> %s", e.From, e.To)
}

// DuplicateIDError reports an attempt to add a task whose id is taken.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("task %s already exists", e.ID)
}

// DuplicateEdgeError reports an attempt to add an edge that exists.
type DuplicateEdgeError struct {
	From, To string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s already exists", e.From, e.To)
}

// CycleError reports an operation that requires an acyclic graph but
// found or would introduce a cycle.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	if len(e.Nodes) == 0 {
		return "graph contains a cycle"
	}
	return fmt.Sprintf("graph contains a cycle involving %v", e.Nodes)
}
