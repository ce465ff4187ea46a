package graph

import (
	"time"
)

// Record is the data token threaded through a run. Processors return a new
// record that replaces the old one wholesale, so each processor copies
// forward every field it does not mean to change.
type Record struct {
	Query   string
	Context string
	Output  string
	// LLMResponse is set by the LLM node, including its inline error text.
	LLMResponse string
}

// NodeResult is the trace entry for one visited node.
type NodeResult struct {
	NodeID    string    `json:"node_id"`
	Kind      Kind      `json:"kind"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      string    `json:"data"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result is what Execute hands back: the final answer plus the per-node trace.
// Order lists node ids in visitation order.
type Result struct {
	Status      Status                `json:"status"`
	SessionID   string                `json:"session_id"`
	FinalOutput string                `json:"final_output"`
	NodeResults map[string]NodeResult `json:"node_results"`
	Order       []string              `json:"execution_order"`
	Duration    time.Duration         `json:"-"`
	Err         *NodeError            `json:"-"`
}

func (r *Result) record(nr NodeResult) {
	r.NodeResults[nr.NodeID] = nr
	r.Order = append(r.Order, nr.NodeID)
}

// Trace returns the node results in visitation order.
func (r *Result) Trace() []NodeResult {
	out := make([]NodeResult, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.NodeResults[id])
	}
	return out
}
