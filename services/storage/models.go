package storage

import (
	"time"

	"github.com/google/uuid"

	"workflow-sandbox/api/services/nodes"
)

// Workflow is the plain structural export the editor produces and
// consumes. Import followed by export is an identity mapping.
type Workflow struct {
	Nodes []nodes.Node `json:"nodes" validate:"required"`
	Edges []nodes.Edge `json:"edges"`
	Meta  *Meta        `json:"meta,omitempty"`
}

// Meta is optional editor bookkeeping stored alongside the graph.
type Meta struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Name returns the workflow's display name, if the editor set one.
func (w *Workflow) Name() string {
	if w == nil || w.Meta == nil {
		return ""
	}
	return w.Meta.Name
}

// Record is a persisted workflow together with its row bookkeeping.
type Record struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Workflow   Workflow   `json:"workflow" db:"document"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	ModifiedAt time.Time  `json:"modifiedAt" db:"modified_at"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
