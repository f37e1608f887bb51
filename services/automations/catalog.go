package automations

import (
	"fmt"

	"workflow-sandbox/api/pkg/validation"
)

// ParamType is the value type an automation parameter accepts.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param describes one input an automation action takes.
type Param struct {
	Name     string    `json:"name" yaml:"name" validate:"required"`
	Type     ParamType `json:"type" yaml:"type" validate:"oneof=string number boolean"`
	Required bool      `json:"required,omitempty" yaml:"required"`
}

// Action is an entry in the automation catalog. The simulator only reads
// ID and Label; the rest is presented by the editor's forms.
type Action struct {
	ID          string  `json:"id" yaml:"id" validate:"required"`
	Label       string  `json:"label" yaml:"label" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description"`
	Params      []Param `json:"params" yaml:"params" validate:"dive"`
}

// Catalog is an immutable, ordered set of automation actions.
// It is safe for concurrent use once constructed.
type Catalog struct {
	actions []Action
	byID    map[string]int
}

// NewCatalog validates actions and indexes them by id.
// Duplicate ids are rejected.
func NewCatalog(actions []Action) (*Catalog, error) {
	c := &Catalog{
		actions: make([]Action, 0, len(actions)),
		byID:    make(map[string]int, len(actions)),
	}
	for i, a := range actions {
		if err := validation.Struct(a); err != nil {
			return nil, fmt.Errorf("automation action [%d]: %w", i, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("automation action [%d]: duplicate id %q", i, a.ID)
		}
		if a.Params == nil {
			a.Params = []Param{}
		}
		c.byID[a.ID] = len(c.actions)
		c.actions = append(c.actions, a)
	}
	return c, nil
}

// Lookup returns the action registered under id.
func (c *Catalog) Lookup(id string) (Action, bool) {
	if c == nil {
		return Action{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Action{}, false
	}
	return c.actions[i], true
}

// Actions returns a copy of the catalog in declaration order.
func (c *Catalog) Actions() []Action {
	if c == nil {
		return []Action{}
	}
	out := make([]Action, len(c.actions))
	copy(out, c.actions)
	return out
}

// Len reports the number of actions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.actions)
}

// Default returns the built-in catalog used when no file or database
// source is configured.
func Default() *Catalog {
	c, err := NewCatalog(defaultActions())
	if err != nil {
		panic(fmt.Sprintf("automations: invalid built-in catalog: %v", err))
	}
	return c
}

func defaultActions() []Action {
	return []Action{
		{
			ID:          "send_email",
			Label:       "Send Email",
			Description: "Send an email notification to specified recipients",
			Params: []Param{
				{Name: "to", Type: ParamString, Required: true},
				{Name: "subject", Type: ParamString, Required: true},
				{Name: "body", Type: ParamString},
			},
		},
		{
			ID:          "generate_doc",
			Label:       "Generate Document",
			Description: "Generate a document from a template",
			Params: []Param{
				{Name: "template", Type: ParamString, Required: true},
				{Name: "recipient", Type: ParamString, Required: true},
			},
		},
		{
			ID:          "send_slack",
			Label:       "Send Slack Message",
			Description: "Send a message to a Slack channel",
			Params: []Param{
				{Name: "channel", Type: ParamString, Required: true},
				{Name: "message", Type: ParamString, Required: true},
			},
		},
		{
			ID:          "create_ticket",
			Label:       "Create JIRA Ticket",
			Description: "Create a new JIRA ticket for tracking",
			Params: []Param{
				{Name: "project", Type: ParamString, Required: true},
				{Name: "summary", Type: ParamString, Required: true},
				{Name: "priority", Type: ParamString},
			},
		},
		{
			ID:          "update_hris",
			Label:       "Update HRIS Record",
			Description: "Update employee record in HRIS system",
			Params: []Param{
				{Name: "employeeId", Type: ParamString, Required: true},
				{Name: "field", Type: ParamString, Required: true},
				{Name: "value", Type: ParamString, Required: true},
			},
		},
	}
}
