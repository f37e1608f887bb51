package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"workflow-sandbox/api/services/automations"
)

// queryTimeout bounds every storage call independently of the request.
const queryTimeout = 5 * time.Second

// ErrNotFound is returned when a workflow does not exist or was deleted.
var ErrNotFound = errors.New("workflow not found")

// DB abstracts the database operations used by the storage layer.
// Satisfied by *pgxpool.Pool in production and pgxmock in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Storage defines the interface for workflow and catalog data access.
// This abstraction keeps the HTTP layer decoupled from persistence.
type Storage interface {
	GetWorkflow(ctx context.Context, id uuid.UUID) (*Record, error)
	CreateWorkflow(ctx context.Context, wf *Workflow) (*Record, error)
	UpdateWorkflow(ctx context.Context, id uuid.UUID, wf *Workflow) (*Record, error)
	DeleteWorkflow(ctx context.Context, id uuid.UUID) error
	ListAutomations(ctx context.Context) ([]automations.Action, error)
}

// PgStorage implements Storage using PostgreSQL. Workflows are kept as
// their JSON export in a JSONB column so nothing the editor sends is lost.
type PgStorage struct {
	DB DB
}

// NewInstance creates a new PostgreSQL-backed Storage implementation.
func NewInstance(db *pgxpool.Pool) (Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: db connection cannot be nil")
	}
	return &PgStorage{DB: db}, nil
}

// GetWorkflow loads a live (not soft-deleted) workflow by id.
func (r *PgStorage) GetWorkflow(ctx context.Context, id uuid.UUID) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rec := &Record{ID: id}
	var doc []byte
	err := r.DB.QueryRow(ctx, `
        SELECT name, document, created_at, modified_at
        FROM workflows
        WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&rec.Name, &doc, &rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	if err := json.Unmarshal(doc, &rec.Workflow); err != nil {
		return nil, fmt.Errorf("decode workflow document: %w", err)
	}
	return rec, nil
}

// CreateWorkflow stores a new workflow under a freshly generated id.
func (r *PgStorage) CreateWorkflow(ctx context.Context, wf *Workflow) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("encode workflow document: %w", err)
	}

	rec := &Record{ID: uuid.New(), Name: wf.Name(), Workflow: *wf}
	err = r.DB.QueryRow(ctx, `
        INSERT INTO workflows (id, name, document)
        VALUES ($1, $2, $3)
        RETURNING created_at, modified_at`,
		rec.ID, rec.Name, doc).Scan(&rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return rec, nil
}

// UpdateWorkflow replaces the stored export of a live workflow.
func (r *PgStorage) UpdateWorkflow(ctx context.Context, id uuid.UUID, wf *Workflow) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc, err := json.Marshal(wf)
	if err != nil {
		return nil, fmt.Errorf("encode workflow document: %w", err)
	}

	rec := &Record{ID: id, Name: wf.Name(), Workflow: *wf}
	err = r.DB.QueryRow(ctx, `
        UPDATE workflows
        SET name = $2, document = $3, modified_at = now()
        WHERE id = $1 AND deleted_at IS NULL
        RETURNING created_at, modified_at`,
		id, rec.Name, doc).Scan(&rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update workflow: %w", err)
	}
	return rec, nil
}

// DeleteWorkflow soft-deletes a workflow so its id is never reused.
func (r *PgStorage) DeleteWorkflow(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.DB.Exec(ctx, `
        UPDATE workflows
        SET deleted_at = $1
        WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAutomations returns the automation catalog rows in display order.
func (r *PgStorage) ListAutomations(ctx context.Context) ([]automations.Action, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.DB.Query(ctx, `
        SELECT id, label, description, params
        FROM automation_actions
        ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	defer rows.Close()

	var out []automations.Action
	for rows.Next() {
		var (
			a      automations.Action
			desc   *string
			params []byte
		)
		if err := rows.Scan(&a.ID, &a.Label, &desc, &params); err != nil {
			return nil, fmt.Errorf("scan automation: %w", err)
		}
		if desc != nil {
			a.Description = *desc
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &a.Params); err != nil {
				return nil, fmt.Errorf("decode params for automation %q: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	return out, nil
}
