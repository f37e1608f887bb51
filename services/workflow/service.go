package workflow

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/storage"
)

// Service handles HTTP requests for workflow operations.
// The sandbox routes need only the automation catalog; the stored-workflow
// routes are mounted when a Storage backend is supplied.
type Service struct {
	catalog   *automations.Catalog
	storage   storage.Storage
	simulator *Simulator
}

// NewService creates a workflow Service. store may be nil, in which case
// only the stateless sandbox routes are served.
func NewService(catalog *automations.Catalog, store storage.Storage) (*Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("service: automation catalog cannot be nil")
	}
	return &Service{
		catalog:   catalog,
		storage:   store,
		simulator: NewSimulator(catalog, nil),
	}, nil
}

type ctxKey string

const (
	requestIDKey    ctxKey = "requestId"
	requestIDHeader        = "X-Request-ID"
)

// requestIDMiddleware tags each request with an id, reusing the caller's
// X-Request-ID when present, and echoes it back in the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// jsonMiddleware sets the Content-Type header to application/json
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes mounts the sandbox endpoints on parentRouter. The /workflows
// routes are only mounted when the service has storage.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.NewRoute().Subrouter()
	router.StrictSlash(false)
	router.Use(requestIDMiddleware, jsonMiddleware)

	router.HandleFunc("/automations", s.HandleListAutomations).Methods("GET")
	router.HandleFunc("/validate", s.HandleValidate).Methods("POST")
	router.HandleFunc("/simulate", s.HandleSimulate).Methods("POST")
	router.HandleFunc("/run", s.HandleRun).Methods("POST")

	if s.storage == nil {
		return
	}

	wf := router.PathPrefix("/workflows").Subrouter()
	wf.HandleFunc("", s.HandleCreateWorkflow).Methods("POST")
	wf.HandleFunc("/{id}", s.HandleGetWorkflow).Methods("GET")
	wf.HandleFunc("/{id}", s.HandleUpdateWorkflow).Methods("PUT")
	wf.HandleFunc("/{id}", s.HandleDeleteWorkflow).Methods("DELETE")
	wf.HandleFunc("/{id}/run", s.HandleRunWorkflow).Methods("POST")
}
