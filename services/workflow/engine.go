package workflow

import (
	"time"

	"workflow-sandbox/api/services/graph"
	"workflow-sandbox/api/services/nodes"
	"workflow-sandbox/api/services/storage"
)

// Simulation result statuses.
const (
	// StatusOK marks a run that produced a full execution trace.
	StatusOK = "ok"
	// StatusError marks a rejected run; its trace is always empty.
	StatusError = "error"

	errInvalidStructure = "Invalid workflow structure"
)

// ExecutionStep is the simulated outcome of a single node.
type ExecutionStep struct {
	NodeID    string       `json:"nodeId"`
	NodeType  nodes.Type   `json:"nodeType"`
	Status    nodes.Status `json:"status"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// SimulationResult is the response of a simulation run. On a request-level
// failure Status is "error", Error explains why and Execution is empty.
type SimulationResult struct {
	Status    string          `json:"status"`
	Execution []ExecutionStep `json:"execution"`
	Error     string          `json:"error,omitempty"`
}

// Simulator walks a workflow in execution order and reports what each
// node would do. It performs no side effects.
type Simulator struct {
	actions nodes.Actions
	now     func() time.Time
}

// NewSimulator returns a Simulator resolving automated steps against
// actions. now stamps each step; nil means the current UTC time.
func NewSimulator(actions nodes.Actions, now func() time.Time) *Simulator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Simulator{actions: actions, now: now}
}

// Simulate visits every node exactly once. Cyclic or otherwise malformed
// graphs still produce output in declaration order.
func (s *Simulator) Simulate(wf *storage.Workflow) SimulationResult {
	if wf == nil || wf.Nodes == nil {
		return SimulationResult{
			Status:    StatusError,
			Execution: []ExecutionStep{},
			Error:     errInvalidStructure,
		}
	}

	order := graph.ExecutionOrder(wf.Nodes, wf.Edges)
	steps := make([]ExecutionStep, 0, len(order))
	for _, n := range order {
		out := n.Simulate(s.actions)
		steps = append(steps, ExecutionStep{
			NodeID:    n.ID,
			NodeType:  n.Type,
			Status:    out.Status,
			Message:   out.Message,
			Timestamp: s.now(),
		})
	}
	return SimulationResult{Status: StatusOK, Execution: steps}
}
