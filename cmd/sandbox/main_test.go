package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/workflow"
)

const cleanExport = `{"nodes":[
  {"id":"s","type":"start","position":{"x":0,"y":0},"data":{"title":"Start"}},
  {"id":"au","type":"automated","position":{"x":1,"y":0},"data":{"title":"Notify","actionId":"send_slack"}},
  {"id":"e","type":"end","position":{"x":2,"y":0},"data":{"title":"Done"}}
],"edges":[{"id":"e1","source":"s","target":"au"},{"id":"e2","source":"au","target":"e"}]}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "no file",
			args:     func(*testing.T) []string { return nil },
			wantCode: 2,
		},
		{
			name:     "unknown flag",
			args:     func(*testing.T) []string { return []string{"--nope", "x.json"} },
			wantCode: 2,
		},
		{
			name:     "missing file",
			args:     func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "absent.json")} },
			wantCode: 2,
		},
		{
			name:     "clean export",
			args:     func(t *testing.T) []string { return []string{writeFile(t, "wf.json", cleanExport)} },
			wantCode: 0,
			wantOut:  `Executed \"Send Slack Message\" for \"Notify\"`,
		},
		{
			name: "envelope with custom catalog",
			args: func(t *testing.T) []string {
				catalog := writeFile(t, "automations.yaml", "version: 1\nactions:\n  - id: send_slack\n    label: Post to Teams\n")
				return []string{"--automations", catalog, writeFile(t, "wf.json", `{"workflow":`+cleanExport+`}`)}
			},
			wantCode: 0,
			wantOut:  "Post to Teams",
		},
		{
			name: "validation errors",
			args: func(t *testing.T) []string {
				return []string{writeFile(t, "wf.json", `{"nodes":[{"id":"t","type":"task","data":{"title":"Review"}}],"edges":[]}`)}
			},
			wantCode: 1,
			wantOut:  "No Start node found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var stdout, stderr bytes.Buffer
			code := run(tt.args(t), &stdout, &stderr)
			if code != tt.wantCode {
				t.Fatalf("exit code: got %d, want %d (stderr %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantOut != "" && !strings.Contains(stdout.String(), tt.wantOut) {
				t.Errorf("stdout %s does not contain %q", stdout.String(), tt.wantOut)
			}
		})
	}
}

func TestRun_Remote(t *testing.T) {
	t.Parallel()
	svc, err := workflow.NewService(automations.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	router := mux.NewRouter()
	svc.LoadRoutes(router.PathPrefix("/api/v1").Subrouter())
	srv := httptest.NewServer(router)
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{"--remote", srv.URL + "/api/v1", writeFile(t, "wf.json", cleanExport)}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code: got %d (stderr %s)", code, stderr.String())
	}

	var rep report
	if err := json.Unmarshal(stdout.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Validation != nil {
		t.Error("remote runs should not report local validation")
	}
	if rep.Simulation == nil || len(rep.Simulation.Execution) != 3 {
		t.Errorf("unexpected simulation %+v", rep.Simulation)
	}
}
