package nodes

import (
	"encoding/json"
	"fmt"
)

// EndData terminates a workflow. Message, when set, replaces the default
// completion text. Raw is the payload as received, if any.
type EndData struct {
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
	Summary bool   `json:"summary,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// NodeTitle returns the end node's title.
func (d EndData) NodeTitle() string { return d.Title }

// Issues is empty: end nodes are only checked for cardinality.
func (d EndData) Issues(string) []Issue { return nil }

// Simulate completes with the configured message or a default one.
func (d EndData) Simulate(title string, _ Actions) Outcome {
	if d.Message != "" {
		return Outcome{Status: StatusCompleted, Message: d.Message}
	}
	return Outcome{
		Status:  StatusCompleted,
		Message: fmt.Sprintf("Workflow ended: %q", title),
	}
}

// MarshalJSON encodes the typed fields over the received payload.
func (d EndData) MarshalJSON() ([]byte, error) {
	type fields EndData
	return mergeRaw(d.Raw, fields(d))
}

func (d EndData) withRaw(raw json.RawMessage) Data {
	d.Raw = raw
	return d
}

func (EndData) sealed() {}
