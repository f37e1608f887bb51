package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"workflow-sandbox/api/pkg/config"
	"workflow-sandbox/api/pkg/db"
	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/storage"
	"workflow-sandbox/api/services/workflow"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	slog.SetDefault(slog.New(logHandler))

	var store storage.Storage
	if cfg.HasDatabase() {
		pool, err := db.Connect(ctx, db.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			slog.Error("Failed to prepare database schema", "error", err)
			os.Exit(1)
		}

		store, err = storage.NewInstance(pool)
		if err != nil {
			slog.Error("Failed to create store instance", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("DATABASE_URL is not set, serving the stateless sandbox only")
	}

	catalog, err := loadCatalog(ctx, cfg, store)
	if err != nil {
		slog.Error("Failed to load automation catalog", "error", err)
		os.Exit(1)
	}

	workflowService, err := workflow.NewService(catalog, store)
	if err != nil {
		slog.Error("Failed to create workflow service", "error", err)
		os.Exit(1)
	}

	// setup router
	mainRouter := mux.NewRouter()
	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()
	workflowService.LoadRoutes(apiRouter)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.CombinedLoggingHandler(os.Stdout, corsHandler)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", srv.Addr, "automations", catalog.Len(), "persistence", store != nil)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
}

// loadCatalog picks the automation catalog: a configured YAML file first,
// then the database table when it has rows, then the built-in set.
func loadCatalog(ctx context.Context, cfg *config.Config, store storage.Storage) (*automations.Catalog, error) {
	if cfg.AutomationsFile != "" {
		slog.Info("Loading automation catalog from file", "path", cfg.AutomationsFile)
		return automations.LoadFile(cfg.AutomationsFile)
	}

	if store != nil {
		actions, err := store.ListAutomations(ctx)
		if err != nil {
			return nil, err
		}
		if len(actions) > 0 {
			slog.Info("Loaded automation catalog from database", "count", len(actions))
			return automations.NewCatalog(actions)
		}
	}

	return automations.Default(), nil
}
