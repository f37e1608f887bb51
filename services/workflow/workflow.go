package workflow

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"workflow-sandbox/api/pkg/validation"
	"workflow-sandbox/api/services/graph"
	"workflow-sandbox/api/services/storage"
)

// maxRequestBody limits the size of request bodies to prevent abuse.
const maxRequestBody = 1 << 20 // 1MB

const errParseWorkflow = "Failed to parse workflow"

// request is the envelope the sandbox endpoints accept.
type request struct {
	Workflow *storage.Workflow `json:"workflow" validate:"required"`
}

// validateResponse adds the resolved execution order to a passing result.
type validateResponse struct {
	ValidationResult
	ExecutionOrder []string `json:"executionOrder,omitempty"`
}

// RunResponse is the sandbox panel's combined validate-then-simulate result.
// Simulation is omitted when validation reported errors.
type RunResponse struct {
	Validation ValidationResult  `json:"validation"`
	Simulation *SimulationResult `json:"simulation,omitempty"`
}

// HandleListAutomations returns the automation catalog.
func (s *Service) HandleListAutomations(w http.ResponseWriter, r *http.Request) {
	actions := s.catalog.Actions()
	slog.Debug("returning automation catalog", "count", len(actions), "requestId", reqID(r))
	writeJSON(w, r, http.StatusOK, actions)
}

// HandleValidate checks a workflow's structure without running it.
func (s *Service) HandleValidate(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	req, err := decodeRequest(w, r)
	if err != nil {
		slog.Warn("invalid validate request", "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_BODY", invalidBodyMessage(err), http.StatusBadRequest)
		return
	}

	wf := req.Workflow
	res := validateResponse{ValidationResult: Validate(wf.Nodes, wf.Edges)}
	if res.OK {
		order := graph.ExecutionOrder(wf.Nodes, wf.Edges)
		res.ExecutionOrder = make([]string, 0, len(order))
		for _, n := range order {
			res.ExecutionOrder = append(res.ExecutionOrder, n.ID)
		}
	}
	slog.Debug("validated workflow", "ok", res.OK, "errors", len(res.Errors), "warnings", len(res.Warnings), "requestId", rid)
	writeJSON(w, r, http.StatusOK, res)
}

// HandleSimulate walks a workflow and reports each step. Request-level
// failures still answer with the simulation shape so the sandbox panel
// can render them.
func (s *Service) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("failed to decode simulate request", "requestId", rid, "error", err)
		writeJSON(w, r, http.StatusBadRequest, SimulationResult{
			Status:    StatusError,
			Execution: []ExecutionStep{},
			Error:     errParseWorkflow,
		})
		return
	}

	res := s.simulator.Simulate(req.Workflow)
	if res.Status != StatusOK {
		slog.Warn("workflow simulation rejected", "requestId", rid, "error", res.Error)
		writeJSON(w, r, http.StatusBadRequest, res)
		return
	}
	slog.Debug("simulated workflow", "steps", len(res.Execution), "requestId", rid)
	writeJSON(w, r, http.StatusOK, res)
}

// HandleRun validates a workflow and simulates it only when no blocking
// errors were found.
func (s *Service) HandleRun(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	req, err := decodeRequest(w, r)
	if err != nil {
		slog.Warn("invalid run request", "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_BODY", invalidBodyMessage(err), http.StatusBadRequest)
		return
	}
	s.run(w, r, req.Workflow)
}

func (s *Service) run(w http.ResponseWriter, r *http.Request, wf *storage.Workflow) {
	resp := RunResponse{Validation: Validate(wf.Nodes, wf.Edges)}
	if !resp.Validation.OK {
		slog.Info("workflow failed validation", "errors", len(resp.Validation.Errors), "requestId", reqID(r))
		writeJSON(w, r, http.StatusUnprocessableEntity, resp)
		return
	}
	sim := s.simulator.Simulate(wf)
	resp.Simulation = &sim
	writeJSON(w, r, http.StatusOK, resp)
}

// HandleCreateWorkflow imports an exported workflow and stores it.
func (s *Service) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	wf, err := decodeWorkflow(w, r)
	if err != nil {
		slog.Warn("invalid workflow import", "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_BODY", invalidBodyMessage(err), http.StatusBadRequest)
		return
	}

	rec, err := s.storage.CreateWorkflow(r.Context(), wf)
	if err != nil {
		slog.Error("failed to create workflow", "requestId", rid, "error", err)
		writeErrorJSON(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}
	slog.Info("workflow imported", "id", rec.ID, "nodes", len(wf.Nodes), "requestId", rid)
	writeJSON(w, r, http.StatusCreated, map[string]any{"id": rec.ID})
}

// HandleGetWorkflow exports a stored workflow exactly as it was imported.
func (s *Service) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	id, ok := workflowID(w, r)
	if !ok {
		return
	}
	slog.Debug("returning workflow definition", "id", id, "requestId", rid)

	rec, ok := s.loadWorkflow(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, rec.Workflow)
}

// HandleUpdateWorkflow replaces a stored workflow's export.
func (s *Service) HandleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	rid := reqID(r)
	id, ok := workflowID(w, r)
	if !ok {
		return
	}

	wf, err := decodeWorkflow(w, r)
	if err != nil {
		slog.Warn("invalid workflow update", "id", id, "requestId", rid, "error", err)
		writeErrorJSON(w, "INVALID_BODY", invalidBodyMessage(err), http.StatusBadRequest)
		return
	}

	rec, err := s.storage.UpdateWorkflow(r.Context(), id, wf)
	if err != nil {
		s.storageError(w, r, id, "failed to update workflow", err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"id": rec.ID, "modifiedAt": rec.ModifiedAt})
}

// HandleDeleteWorkflow soft-deletes a stored workflow.
func (s *Service) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := workflowID(w, r)
	if !ok {
		return
	}
	if err := s.storage.DeleteWorkflow(r.Context(), id); err != nil {
		s.storageError(w, r, id, "failed to delete workflow", err)
		return
	}
	slog.Info("workflow deleted", "id", id, "requestId", reqID(r))
	w.WriteHeader(http.StatusNoContent)
}

// HandleRunWorkflow runs the sandbox against a stored workflow.
func (s *Service) HandleRunWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := workflowID(w, r)
	if !ok {
		return
	}
	rec, ok := s.loadWorkflow(w, r, id)
	if !ok {
		return
	}
	s.run(w, r, &rec.Workflow)
}

func (s *Service) loadWorkflow(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*storage.Record, bool) {
	rec, err := s.storage.GetWorkflow(r.Context(), id)
	if err != nil {
		s.storageError(w, r, id, "failed to get workflow", err)
		return nil, false
	}
	return rec, true
}

func (s *Service) storageError(w http.ResponseWriter, r *http.Request, id uuid.UUID, msg string, err error) {
	rid := reqID(r)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("workflow not found", "id", id, "requestId", rid)
		writeErrorJSON(w, "NOT_FOUND", "workflow not found", http.StatusNotFound)
		return
	}
	slog.Error(msg, "id", id, "requestId", rid, "error", err)
	writeErrorJSON(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
}

// workflowID parses the {id} path variable, answering 400 when it is not
// a UUID.
func workflowID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		slog.Warn("invalid workflow id", "id", raw, "requestId", reqID(r), "error", err)
		writeErrorJSON(w, "INVALID_ID", "invalid workflow id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// decodeRequest reads a size-limited {workflow} envelope and checks its shape.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// decodeWorkflow reads a size-limited bare workflow export.
func decodeWorkflow(w http.ResponseWriter, r *http.Request) (*storage.Workflow, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	var wf storage.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		return nil, err
	}
	if err := validation.Struct(wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// invalidBodyMessage exposes shape problems to the caller but hides
// decoder internals.
func invalidBodyMessage(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "invalid request body"
}

// writeJSON marshals v and writes it with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal response", "requestId", reqID(r), "error", err)
		writeErrorJSON(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		slog.Error("failed to write response", "requestId", reqID(r), "error", err)
	}
}

// writeErrorJSON writes a structured JSON error response with a machine-readable
// code and a human-readable message. The code allows clients to programmatically
// distinguish between error types (e.g. retry on INTERNAL_ERROR, don't retry on NOT_FOUND).
func writeErrorJSON(w http.ResponseWriter, errCode, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"code": errCode, "message": message})
}

// reqID extracts the request ID from context (set by requestIDMiddleware).
func reqID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
