package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/nodes"
	"workflow-sandbox/api/services/storage"
)

var (
	testWfID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	testNow  = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

const onboardingDoc = `{
  "nodes": [
    {"id":"start","type":"start","position":{"x":-160,"y":300},"data":{"title":"Start"}},
    {"id":"review","type":"approval","position":{"x":100,"y":300},"data":{"title":"Manager review","approverRole":"Manager","autoApproveThreshold":0}},
    {"id":"end","type":"end","position":{"x":400,"y":300},"data":{"title":"End","message":"Done"}}
  ],
  "edges": [
    {"id":"e1","source":"start","target":"review"},
    {"id":"e2","source":"review","target":"end"}
  ],
  "meta": {"name":"Onboarding"}
}`

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func sampleWorkflow() *storage.Workflow {
	return &storage.Workflow{
		Nodes: []nodes.Node{
			nodes.New("start", nodes.Position{}, nodes.StartData{Title: "Start"}),
			nodes.New("end", nodes.Position{X: 200}, nodes.EndData{Title: "End"}),
		},
		Edges: []nodes.Edge{{ID: "e1", Source: "start", Target: "end"}},
		Meta:  &storage.Meta{Name: "Offboarding"},
	}
}

func TestNewInstance_NilPool(t *testing.T) {
	t.Parallel()
	if _, err := storage.NewInstance(nil); err == nil {
		t.Error("expected error for nil pool, got nil")
	}
}

func TestGetWorkflow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		checkRec  func(t *testing.T, rec *storage.Record)
	}{
		{
			name: "success decodes stored export",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT name, document, created_at, modified_at").
					WithArgs(testWfID).
					WillReturnRows(
						pgxmock.NewRows([]string{"name", "document", "created_at", "modified_at"}).
							AddRow("Onboarding", []byte(onboardingDoc), testNow, testNow),
					)
			},
			checkRec: func(t *testing.T, rec *storage.Record) {
				t.Helper()
				if rec.ID != testWfID || rec.Name != "Onboarding" {
					t.Errorf("unexpected header: %s %q", rec.ID, rec.Name)
				}
				if len(rec.Workflow.Nodes) != 3 || len(rec.Workflow.Edges) != 2 {
					t.Fatalf("expected 3 nodes/2 edges, got %d/%d", len(rec.Workflow.Nodes), len(rec.Workflow.Edges))
				}
				want := nodes.ApprovalData{Title: "Manager review", ApproverRole: "Manager"}
				if diff := cmp.Diff(nodes.Data(want), rec.Workflow.Nodes[1].Data, cmpopts.IgnoreFields(nodes.ApprovalData{}, "Raw")); diff != "" {
					t.Errorf("approval data mismatch (-want +got):\n%s", diff)
				}
				if rec.Workflow.Nodes[0].Position != (nodes.Position{X: -160, Y: 300}) {
					t.Errorf("position not preserved: %+v", rec.Workflow.Nodes[0].Position)
				}
			},
		},
		{
			name: "missing workflow returns ErrNotFound",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT name, document").
					WithArgs(testWfID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: storage.ErrNotFound,
		},
		{
			name: "query failure propagates",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT name, document").
					WithArgs(testWfID).
					WillReturnError(errors.New("connection lost"))
			},
			wantErr: errors.New("get workflow: connection lost"),
		},
		{
			name: "corrupt document",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT name, document").
					WithArgs(testWfID).
					WillReturnRows(
						pgxmock.NewRows([]string{"name", "document", "created_at", "modified_at"}).
							AddRow("Broken", []byte(`{"nodes":"nope"}`), testNow, testNow),
					)
			},
			wantErr: errors.New("decode workflow document"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.setupMock(mock)

			store := &storage.PgStorage{DB: mock}
			rec, err := store.GetWorkflow(context.Background(), testWfID)

			if tt.wantErr != nil {
				assertErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.checkRec(t, rec)

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet mock expectations: %v", err)
			}
		})
	}
}

func TestCreateWorkflow(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	wf := sampleWorkflow()

	mock.ExpectQuery("INSERT INTO workflows").
		WithArgs(pgxmock.AnyArg(), "Offboarding", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "modified_at"}).AddRow(testNow, testNow))

	store := &storage.PgStorage{DB: mock}
	rec, err := store.CreateWorkflow(context.Background(), wf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected a generated id")
	}
	if rec.Name != "Offboarding" || !rec.CreatedAt.Equal(testNow) {
		t.Errorf("unexpected record header: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet mock expectations: %v", err)
	}
}

func TestCreateWorkflow_InsertFails(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	mock.ExpectQuery("INSERT INTO workflows").
		WillReturnError(errors.New("disk full"))

	store := &storage.PgStorage{DB: mock}
	_, err := store.CreateWorkflow(context.Background(), sampleWorkflow())
	assertErr(t, err, errors.New("insert workflow: disk full"))
}

func TestUpdateWorkflow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "success",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE workflows").
					WithArgs(testWfID, "Offboarding", pgxmock.AnyArg()).
					WillReturnRows(pgxmock.NewRows([]string{"created_at", "modified_at"}).AddRow(testNow, testNow))
			},
		},
		{
			name: "missing workflow",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE workflows").
					WithArgs(testWfID, "Offboarding", pgxmock.AnyArg()).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.setupMock(mock)

			store := &storage.PgStorage{DB: mock}
			rec, err := store.UpdateWorkflow(context.Background(), testWfID, sampleWorkflow())
			if tt.wantErr != nil {
				assertErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ID != testWfID {
				t.Errorf("id: got %s, want %s", rec.ID, testWfID)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet mock expectations: %v", err)
			}
		})
	}
}

func TestDeleteWorkflow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "soft delete existing workflow",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE workflows").
					WithArgs(pgxmock.AnyArg(), testWfID).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "no rows affected",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE workflows").
					WithArgs(pgxmock.AnyArg(), testWfID).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: storage.ErrNotFound,
		},
		{
			name: "database failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE workflows").
					WithArgs(pgxmock.AnyArg(), testWfID).
					WillReturnError(errors.New("db connection lost"))
			},
			wantErr: errors.New("delete workflow: db connection lost"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock := newMock(t)
			tt.setupMock(mock)

			store := &storage.PgStorage{DB: mock}
			err := store.DeleteWorkflow(context.Background(), testWfID)
			if tt.wantErr != nil {
				assertErr(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet mock expectations: %v", err)
			}
		})
	}
}

func TestListAutomations(t *testing.T) {
	t.Parallel()
	mock := newMock(t)

	desc := "Send an email notification"
	params, _ := json.Marshal([]automations.Param{{Name: "to", Type: automations.ParamString, Required: true}})
	mock.ExpectQuery("SELECT id, label, description, params").
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "label", "description", "params"}).
				AddRow("send_email", "Send Email", &desc, params).
				AddRow("ping", "Ping", nil, nil),
		)

	store := &storage.PgStorage{DB: mock}
	got, err := store.ListAutomations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []automations.Action{
		{ID: "send_email", Label: "Send Email", Description: desc, Params: []automations.Param{{Name: "to", Type: automations.ParamString, Required: true}}},
		{ID: "ping", Label: "Ping"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet mock expectations: %v", err)
	}
}

func TestListAutomations_QueryFails(t *testing.T) {
	t.Parallel()
	mock := newMock(t)
	mock.ExpectQuery("SELECT id, label").WillReturnError(errors.New("relation does not exist"))

	store := &storage.PgStorage{DB: mock}
	_, err := store.ListAutomations(context.Background())
	assertErr(t, err, errors.New("list automations: relation does not exist"))
}

// assertErr matches sentinels with errors.Is and anything else by message prefix.
func assertErr(t *testing.T, got, want error) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if errors.Is(got, want) {
		return
	}
	if len(got.Error()) < len(want.Error()) || got.Error()[:len(want.Error())] != want.Error() {
		t.Errorf("expected error %q, got %q", want, got)
	}
}
