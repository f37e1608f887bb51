package nodes

import (
	"encoding/json"
	"fmt"
	"strings"

	"workflow-sandbox/api/services/automations"
)

// Type is the declared kind of a workflow step.
type Type string

const (
	TypeStart     Type = "start"
	TypeTask      Type = "task"
	TypeApproval  Type = "approval"
	TypeAutomated Type = "automated"
	TypeEnd       Type = "end"
)

// Position represents a node's canvas coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single step of a workflow in its React Flow shape.
// Data carries exactly the fields of the node's own type.
type Node struct {
	ID       string
	Type     Type
	Position Position
	Data     Data
}

// Edge is a directed connection between two nodes. Handles are editor
// metadata and carry no meaning for validation.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// KeyValue is a free-form pair attached to start and task nodes.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Status is the simulated outcome of a single step.
type Status string

const (
	StatusPending                Status = "pending"
	StatusCompleted              Status = "completed"
	StatusApproved               Status = "approved"
	StatusAwaitingManualApproval Status = "awaiting_manual_approval"
	StatusExecuted               Status = "executed"
	StatusFailed                 Status = "failed"
)

// Outcome is what a node reports when the simulator visits it.
type Outcome struct {
	Status  Status
	Message string
}

// Severity separates blocking problems from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Issue is a finding raised by a node's own structural rules.
type Issue struct {
	Severity Severity
	Message  string
}

func errorf(format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Actions resolves automation action ids. *automations.Catalog satisfies it.
type Actions interface {
	Lookup(id string) (automations.Action, bool)
}

// Data is the closed set of per-type node payloads. Each variant lives in
// its own node_<type>.go file and owns its structural rules and
// simulation policy.
type Data interface {
	// NodeTitle returns the user-facing title, possibly empty.
	NodeTitle() string
	// Issues reports rule violations for the node with the given id.
	Issues(nodeID string) []Issue
	// Simulate derives the step outcome. title is already defaulted.
	Simulate(title string, actions Actions) Outcome

	sealed()
}

// New builds a node whose Type matches the data variant.
func New(id string, pos Position, data Data) Node {
	return Node{ID: id, Type: kindOf(data), Position: pos, Data: data}
}

func kindOf(d Data) Type {
	switch v := d.(type) {
	case StartData:
		return TypeStart
	case TaskData:
		return TypeTask
	case ApprovalData:
		return TypeApproval
	case AutomatedData:
		return TypeAutomated
	case EndData:
		return TypeEnd
	case UnknownData:
		return v.Kind
	default:
		return ""
	}
}

// Payload returns the node's data, substituting the zero variant for its
// declared type when Data is nil.
func (n Node) Payload() Data {
	if n.Data != nil {
		return n.Data
	}
	return zeroData(n.Type)
}

func zeroData(t Type) Data {
	switch t {
	case TypeStart:
		return StartData{}
	case TypeTask:
		return TaskData{}
	case TypeApproval:
		return ApprovalData{}
	case TypeAutomated:
		return AutomatedData{}
	case TypeEnd:
		return EndData{}
	default:
		return UnknownData{Kind: t}
	}
}

// Title returns the node's title, or "" when none is set.
func (n Node) Title() string {
	return n.Payload().NodeTitle()
}

// DisplayName is the title, falling back to the id.
func (n Node) DisplayName() string {
	if t := strings.TrimSpace(n.Title()); t != "" {
		return n.Title()
	}
	return n.ID
}

// Issues runs the node's per-type rules.
func (n Node) Issues() []Issue {
	return n.Payload().Issues(n.ID)
}

// Simulate derives the node's outcome. Messages fall back to "<type>-<id>"
// when the node has no title.
func (n Node) Simulate(actions Actions) Outcome {
	title := n.Title()
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s-%s", n.Type, n.ID)
	}
	return n.Payload().Simulate(title, actions)
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Type     Type            `json:"type"`
	Position Position        `json:"position"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON emits the React Flow node shape.
func (n Node) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(n.Payload())
	if err != nil {
		return nil, fmt.Errorf("node %q: encode data: %w", n.ID, err)
	}
	return json.Marshal(nodeJSON{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     data,
	})
}

// UnmarshalJSON decodes a React Flow node, choosing the data variant from
// the declared type.
func (n *Node) UnmarshalJSON(b []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := decodeData(raw.Type, raw.Data)
	if err != nil {
		return fmt.Errorf("node %q: invalid %s data: %w", raw.ID, raw.Type, err)
	}
	*n = Node{ID: raw.ID, Type: raw.Type, Position: raw.Position, Data: data}
	return nil
}

func decodeData(t Type, b json.RawMessage) (Data, error) {
	switch t {
	case TypeStart:
		return decodeInto[StartData](b)
	case TypeTask:
		return decodeInto[TaskData](b)
	case TypeApproval:
		return decodeInto[ApprovalData](b)
	case TypeAutomated:
		return decodeInto[AutomatedData](b)
	case TypeEnd:
		return decodeInto[EndData](b)
	default:
		return decodeUnknown(t, b)
	}
}

func decodeInto[T Data](b json.RawMessage) (Data, error) {
	var d T
	if isEmptyJSON(b) {
		return d, nil
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	if rc, ok := any(d).(rawCarrier); ok {
		return rc.withRaw(append(json.RawMessage(nil), b...)), nil
	}
	return d, nil
}

func isEmptyJSON(b json.RawMessage) bool {
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
