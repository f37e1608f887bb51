package nodes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultTaskTitle is the placeholder the editor gives new task nodes.
const DefaultTaskTitle = "New Task"

// TaskData is a human task, optionally assigned to someone. Raw is the
// payload as received, if any.
type TaskData struct {
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Assignee     string     `json:"assignee,omitempty"`
	DueDate      string     `json:"dueDate,omitempty"`
	CustomFields []KeyValue `json:"customFields,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// NodeTitle returns the task title.
func (d TaskData) NodeTitle() string { return d.Title }

// Issues warns when the title is blank or still the placeholder.
func (d TaskData) Issues(nodeID string) []Issue {
	if strings.TrimSpace(d.Title) == "" || d.Title == DefaultTaskTitle {
		return []Issue{warnf("Task node %q has default/missing title.", nodeID)}
	}
	return nil
}

// Simulate completes the task, naming the assignee when set.
func (d TaskData) Simulate(title string, _ Actions) Outcome {
	msg := fmt.Sprintf("Task %q completed", title)
	if d.Assignee != "" {
		msg = fmt.Sprintf("Task %q assigned to %s - completed", title, d.Assignee)
	}
	return Outcome{Status: StatusCompleted, Message: msg}
}

// MarshalJSON encodes the typed fields over the received payload.
func (d TaskData) MarshalJSON() ([]byte, error) {
	type fields TaskData
	return mergeRaw(d.Raw, fields(d))
}

func (d TaskData) withRaw(raw json.RawMessage) Data {
	d.Raw = raw
	return d
}

func (TaskData) sealed() {}
