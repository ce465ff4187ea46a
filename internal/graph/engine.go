package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docflow/internal/log"
	"github.com/Divas-Gupta30/docflow/internal/memory"
	"github.com/Divas-Gupta30/docflow/internal/metrics"
)

const (
	DefaultSessionID = "default"
	NoOutput         = "No output generated"
)

// Engine walks a workflow one node at a time. It holds no per-run state,
// so a single Engine serves concurrent executions.
type Engine struct {
	registry Registry
	memory   *memory.Store
	logger   *zap.Logger
	now      func() time.Time
}

func NewEngine(registry Registry, store *memory.Store) *Engine {
	return &Engine{
		registry: registry,
		memory:   store,
		logger:   log.Component("engine"),
		now:      time.Now,
	}
}

// Execute runs wf against query for sessionID. Structural problems are
// reported before anything is recorded. A processor that fails outright
// stops the walk; the returned Result then has StatusFailed, the trace up to
// that node and a *NodeError, which is also returned as the error.
func (e *Engine) Execute(ctx context.Context, wf *Workflow, query, sessionID string) (*Result, error) {
	if wf == nil {
		return nil, fmt.Errorf("%w: nil workflow", ErrInvalidWorkflow)
	}
	if err := Validate(wf.Nodes, wf.Edges); err != nil {
		return nil, err
	}
	entry, err := EntryNode(wf.Nodes)
	if err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	start := e.now()
	res := &Result{
		Status:      StatusRunning,
		SessionID:   sessionID,
		NodeResults: make(map[string]NodeResult, len(wf.Nodes)),
	}
	logger := e.logger.With(zap.String("sessionID", sessionID))
	logger.Info("running workflow", zap.Int("nodes", len(wf.Nodes)), zap.Int("edges", len(wf.Edges)))

	e.remember(ctx, logger, sessionID, memory.RoleUser, query)

	nodes := wf.index()
	rec := Record{Query: query, Output: query}
	visited := make(map[string]struct{}, len(wf.Nodes))

	for current, ok := entry.ID, true; ok; current, ok = NextNode(wf.Edges, current) {
		if _, seen := visited[current]; seen {
			logger.Debug("node revisited, stopping walk", zap.String("nodeID", current))
			break
		}
		visited[current] = struct{}{}

		node, found := nodes[current]
		if !found {
			logger.Warn("edge targets unknown node, stopping walk", zap.String("nodeID", current))
			break
		}

		proc := e.registry.lookup(node.Kind)
		next, err := e.runNode(ctx, proc, node, rec, sessionID)
		if err != nil {
			nodeErr := &NodeError{NodeID: node.ID, Kind: node.Kind, Err: err}
			logger.Error("node failed", zap.String("nodeID", node.ID), zap.Error(err))
			res.Status = StatusFailed
			res.Err = nodeErr
			res.FinalOutput = finalOutput(rec)
			e.finish(res, start)
			return res, nodeErr
		}
		rec = next

		res.record(NodeResult{
			NodeID:    node.ID,
			Kind:      node.Kind,
			Type:      node.TypeName(),
			Timestamp: e.now().UTC(),
			Data:      proc.Render(rec),
		})
	}

	res.FinalOutput = finalOutput(rec)
	e.remember(ctx, logger, sessionID, memory.RoleAssistant, res.FinalOutput)
	res.Status = StatusCompleted
	e.finish(res, start)
	logger.Info("workflow completed", zap.Strings("order", res.Order), zap.Duration("duration", res.Duration))
	return res, nil
}

// runNode invokes one processor and turns a panic into an error.
func (e *Engine) runNode(ctx context.Context, proc Processor, node Node, rec Record, sessionID string) (out Record, err error) {
	started := e.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNodePanicked, r)
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		kind := node.Kind.String()
		metrics.NodeExecutionsTotal.WithLabelValues(kind, status).Inc()
		metrics.NodeDuration.WithLabelValues(kind).Observe(e.now().Sub(started).Seconds())
	}()

	e.logger.Debug("executing node", zap.String("nodeID", node.ID), zap.String("nodeType", node.TypeName()))
	return proc.Process(ctx, node, rec, sessionID)
}

func (e *Engine) remember(ctx context.Context, logger *zap.Logger, sessionID string, role memory.Role, content string) {
	if e.memory == nil {
		return
	}
	if err := e.memory.AddMessage(ctx, sessionID, role, content); err != nil {
		logger.Warn("could not record conversation message", zap.Error(err))
	}
}

func (e *Engine) finish(res *Result, start time.Time) {
	res.Duration = e.now().Sub(start)
	metrics.WorkflowRunsTotal.WithLabelValues(string(res.Status)).Inc()
	metrics.WorkflowRunDuration.Observe(res.Duration.Seconds())
}

func finalOutput(rec Record) string {
	if rec.Output == "" {
		return NoOutput
	}
	return rec.Output
}
