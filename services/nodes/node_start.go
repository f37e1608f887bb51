package nodes

import (
	"encoding/json"
	"fmt"
)

// StartData is the entry point of a workflow. Optional metadata pairs are
// carried through untouched. Raw is the payload as received, if any.
type StartData struct {
	Title    string     `json:"title"`
	Metadata []KeyValue `json:"metadata,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// NodeTitle returns the start node's title.
func (d StartData) NodeTitle() string { return d.Title }

// Issues is empty: start nodes are only checked for cardinality.
func (d StartData) Issues(string) []Issue { return nil }

// Simulate always completes.
func (d StartData) Simulate(title string, _ Actions) Outcome {
	return Outcome{
		Status:  StatusCompleted,
		Message: fmt.Sprintf("Workflow started: %q", title),
	}
}

// MarshalJSON encodes the typed fields over the received payload.
func (d StartData) MarshalJSON() ([]byte, error) {
	type fields StartData
	return mergeRaw(d.Raw, fields(d))
}

func (d StartData) withRaw(raw json.RawMessage) Data {
	d.Raw = raw
	return d
}

func (StartData) sealed() {}
