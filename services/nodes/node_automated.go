package nodes

import (
	"encoding/json"
	"fmt"
)

// AutomatedData runs an action from the automation catalog. Params are
// passed through for the editor; simulation never executes anything.
// Raw is the payload as received, if any.
type AutomatedData struct {
	Title        string            `json:"title"`
	ActionID     string            `json:"actionId"`
	ActionParams map[string]string `json:"actionParams,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// NodeTitle returns the automated step's title.
func (d AutomatedData) NodeTitle() string { return d.Title }

// Issues warns when no catalog action is selected.
func (d AutomatedData) Issues(nodeID string) []Issue {
	if d.ActionID == "" {
		return []Issue{warnf("Automated node %q has no action selected.", displayOr(d.Title, nodeID))}
	}
	return nil
}

// Simulate names the catalog action when the id resolves, otherwise
// reports a generic execution.
func (d AutomatedData) Simulate(title string, actions Actions) Outcome {
	if actions != nil && d.ActionID != "" {
		if a, ok := actions.Lookup(d.ActionID); ok {
			return Outcome{
				Status:  StatusExecuted,
				Message: fmt.Sprintf("Executed %q for %q", a.Label, title),
			}
		}
	}
	return Outcome{
		Status:  StatusExecuted,
		Message: fmt.Sprintf("Executed automated step %q", title),
	}
}

// MarshalJSON encodes the typed fields over the received payload.
func (d AutomatedData) MarshalJSON() ([]byte, error) {
	type fields AutomatedData
	return mergeRaw(d.Raw, fields(d))
}

func (d AutomatedData) withRaw(raw json.RawMessage) Data {
	d.Raw = raw
	return d
}

func (AutomatedData) sealed() {}
