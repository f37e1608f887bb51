package nodes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ApprovalData gates the workflow on a role's sign-off. A positive
// AutoApproveThreshold lets the simulator approve without a human.
// Raw is the payload as received, if any.
type ApprovalData struct {
	Title                string  `json:"title"`
	ApproverRole         string  `json:"approverRole"`
	AutoApproveThreshold float64 `json:"autoApproveThreshold"`

	Raw json.RawMessage `json:"-"`
}

// NodeTitle returns the approval step's title.
func (d ApprovalData) NodeTitle() string { return d.Title }

// Issues reports a blank approver role as an error: an approval nobody
// can sign is unusable.
func (d ApprovalData) Issues(nodeID string) []Issue {
	if strings.TrimSpace(d.ApproverRole) == "" {
		return []Issue{errorf("Approval node %q is missing approver role.", displayOr(d.Title, nodeID))}
	}
	return nil
}

// Simulate auto-approves above a positive threshold and otherwise waits
// on the approver role.
func (d ApprovalData) Simulate(title string, _ Actions) Outcome {
	if d.AutoApproveThreshold > 0 {
		return Outcome{
			Status: StatusApproved,
			Message: fmt.Sprintf("%q auto-approved (threshold: %s)",
				title, strconv.FormatFloat(d.AutoApproveThreshold, 'f', -1, 64)),
		}
	}

	role := d.ApproverRole
	if strings.TrimSpace(role) == "" {
		role = "approver"
	}
	return Outcome{
		Status:  StatusAwaitingManualApproval,
		Message: fmt.Sprintf("%q requires manual approval from %s", title, role),
	}
}

// MarshalJSON encodes the typed fields over the received payload.
func (d ApprovalData) MarshalJSON() ([]byte, error) {
	type fields ApprovalData
	return mergeRaw(d.Raw, fields(d))
}

func (d ApprovalData) withRaw(raw json.RawMessage) Data {
	d.Raw = raw
	return d
}

func (ApprovalData) sealed() {}

func displayOr(title, id string) string {
	if title != "" {
		return title
	}
	return id
}
