package storagemock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/nodes"
	"workflow-sandbox/api/services/storage"
)

// StorageMock lets tests override individual Storage methods. Methods
// without an override return a small valid fixture.
type StorageMock struct {
	GetWorkflowMock     func(ctx context.Context, id uuid.UUID) (*storage.Record, error)
	CreateWorkflowMock  func(ctx context.Context, wf *storage.Workflow) (*storage.Record, error)
	UpdateWorkflowMock  func(ctx context.Context, id uuid.UUID, wf *storage.Workflow) (*storage.Record, error)
	DeleteWorkflowMock  func(ctx context.Context, id uuid.UUID) error
	ListAutomationsMock func(ctx context.Context) ([]automations.Action, error)
}

var _ storage.Storage = (*StorageMock)(nil)

// Fixture is the workflow returned by default: start -> task -> end.
func Fixture() storage.Workflow {
	return storage.Workflow{
		Nodes: []nodes.Node{
			nodes.New("start", nodes.Position{X: -160, Y: 300}, nodes.StartData{Title: "Start"}),
			nodes.New("collect", nodes.Position{X: 40, Y: 300}, nodes.TaskData{Title: "Collect documents", Assignee: "hr-ops"}),
			nodes.New("end", nodes.Position{X: 240, Y: 300}, nodes.EndData{Title: "End", Message: "Onboarding complete"}),
		},
		Edges: []nodes.Edge{
			{ID: "e1", Source: "start", Target: "collect"},
			{ID: "e2", Source: "collect", Target: "end"},
		},
		Meta: &storage.Meta{Name: "Onboarding"},
	}
}

func (m *StorageMock) GetWorkflow(ctx context.Context, id uuid.UUID) (*storage.Record, error) {
	if m != nil && m.GetWorkflowMock != nil {
		return m.GetWorkflowMock(ctx, id)
	}
	now := time.Now().UTC()
	return &storage.Record{
		ID:         id,
		Name:       "Onboarding",
		Workflow:   Fixture(),
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

func (m *StorageMock) CreateWorkflow(ctx context.Context, wf *storage.Workflow) (*storage.Record, error) {
	if m != nil && m.CreateWorkflowMock != nil {
		return m.CreateWorkflowMock(ctx, wf)
	}
	now := time.Now().UTC()
	return &storage.Record{ID: uuid.New(), Name: wf.Name(), Workflow: *wf, CreatedAt: now, ModifiedAt: now}, nil
}

func (m *StorageMock) UpdateWorkflow(ctx context.Context, id uuid.UUID, wf *storage.Workflow) (*storage.Record, error) {
	if m != nil && m.UpdateWorkflowMock != nil {
		return m.UpdateWorkflowMock(ctx, id, wf)
	}
	now := time.Now().UTC()
	return &storage.Record{ID: id, Name: wf.Name(), Workflow: *wf, CreatedAt: now, ModifiedAt: now}, nil
}

func (m *StorageMock) DeleteWorkflow(ctx context.Context, id uuid.UUID) error {
	if m != nil && m.DeleteWorkflowMock != nil {
		return m.DeleteWorkflowMock(ctx, id)
	}
	return nil
}

func (m *StorageMock) ListAutomations(ctx context.Context) ([]automations.Action, error) {
	if m != nil && m.ListAutomationsMock != nil {
		return m.ListAutomationsMock(ctx)
	}
	return automations.Default().Actions(), nil
}
