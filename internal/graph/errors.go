package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkflow marks structural problems found before execution.
	ErrInvalidWorkflow = errors.New("invalid workflow")
	ErrNoEntryNode     = errors.New("workflow has no UserQuery entry node")
	ErrNodePanicked    = errors.New("node processor panicked")
)

// MissingNodeError reports a required node kind absent from a workflow.
type MissingNodeError struct {
	Kind Kind
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("invalid workflow: missing required %s node", e.Kind)
}

func (e *MissingNodeError) Unwrap() error { return ErrInvalidWorkflow }

// NodeError is returned when a processor fails outright. Collaborator
// failures never produce one; they are rendered into the node output.
type NodeError struct {
	NodeID string
	Kind   Kind
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
