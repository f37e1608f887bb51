package nodes

import (
	"encoding/json"
	"fmt"
)

// UnknownData holds a node whose type this service does not know. The raw
// payload is kept so export stays lossless, and simulation degrades to a
// generic "processed" step instead of failing the run.
type UnknownData struct {
	Kind  Type
	Title string
	Raw   json.RawMessage
}

// NodeTitle returns the title found in the raw payload.
func (d UnknownData) NodeTitle() string { return d.Title }

// Issues is always empty; unknown types are not checked.
func (d UnknownData) Issues(string) []Issue { return nil }

// Simulate reports a generic processed step.
func (d UnknownData) Simulate(title string, _ Actions) Outcome {
	return Outcome{
		Status:  StatusCompleted,
		Message: fmt.Sprintf("Processed node %q", title),
	}
}

// MarshalJSON writes back the original payload when there is one.
func (d UnknownData) MarshalJSON() ([]byte, error) {
	if !isEmptyJSON(d.Raw) {
		return d.Raw, nil
	}
	return json.Marshal(struct {
		Title string `json:"title"`
	}{d.Title})
}

func (UnknownData) sealed() {}

func decodeUnknown(t Type, b json.RawMessage) (Data, error) {
	d := UnknownData{Kind: t}
	if isEmptyJSON(b) {
		return d, nil
	}
	var head struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}
	d.Title = head.Title
	d.Raw = append(json.RawMessage(nil), b...)
	return d, nil
}
