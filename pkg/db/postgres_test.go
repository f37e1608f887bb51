package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig("postgres://localhost/sandbox")
	if cfg.URI != "postgres://localhost/sandbox" {
		t.Errorf("URI: got %q", cfg.URI)
	}
	if cfg.MaxConns != 10 || cfg.MinConns != 2 {
		t.Errorf("conns: got max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.ConnMaxLifetime != 30*time.Minute || cfg.ConnMaxIdleTime != 5*time.Minute {
		t.Errorf("lifetimes: got %v / %v", cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime)
	}
}

func TestConnect_InvalidURI(t *testing.T) {
	t.Parallel()
	_, err := Connect(context.Background(), DefaultConfig("::not a uri::"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse database URI") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSchemaCoversStorageTables(t *testing.T) {
	t.Parallel()
	for _, table := range []string{"workflows", "automation_actions"} {
		if !strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema does not create %s", table)
		}
	}
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "applies schema"},
		{name: "propagates failure", execErr: errors.New("permission denied"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			exp := mock.ExpectExec("CREATE TABLE IF NOT EXISTS workflows")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
			}

			err = EnsureSchema(context.Background(), mock)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet mock expectations: %v", err)
			}
		})
	}
}
