// Command sandbox validates and simulates an exported workflow file,
// either locally or against a running sandbox server.
//
//	sandbox [--automations catalog.yaml] [--remote http://host:8080/api/v1] workflow.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"workflow-sandbox/api/pkg/clients/sandbox"
	"workflow-sandbox/api/services/automations"
	"workflow-sandbox/api/services/storage"
	"workflow-sandbox/api/services/workflow"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type report struct {
	Validation *workflow.ValidationResult `json:"validation,omitempty"`
	Simulation *workflow.SimulationResult `json:"simulation"`
}

// run returns the process exit code: 0 when the workflow simulated cleanly,
// 1 when validation or simulation failed, 2 on usage or input errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("sandbox", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	remote := fs.String("remote", "", "base URL of a sandbox API to simulate against")
	catalogFile := fs.String("automations", "", "YAML automation catalog for local runs")
	timeout := fs.Duration("timeout", 10*time.Second, "remote request timeout")
	verbose := fs.BoolP("verbose", "v", false, "log debug output to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: sandbox [flags] workflow.json")
		fs.PrintDefaults()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	wf, err := readWorkflow(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	var rep report
	if *remote != "" {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		rep.Simulation = sandbox.NewHTTPClient(*remote, nil).Simulate(ctx, wf)
	} else {
		catalog := automations.Default()
		if *catalogFile != "" {
			if catalog, err = automations.LoadFile(*catalogFile); err != nil {
				fmt.Fprintln(stderr, err)
				return 2
			}
		}
		v := workflow.Validate(wf.Nodes, wf.Edges)
		rep.Validation = &v
		sim := workflow.NewSimulator(catalog, nil).Simulate(wf)
		rep.Simulation = &sim
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if (rep.Validation != nil && !rep.Validation.OK) || rep.Simulation.Status != workflow.StatusOK {
		return 1
	}
	return 0
}

// readWorkflow accepts either a bare export or a {"workflow": ...} envelope.
func readWorkflow(path string) (*storage.Workflow, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}

	var env struct {
		Workflow *storage.Workflow `json:"workflow"`
	}
	if err := json.Unmarshal(b, &env); err == nil && env.Workflow != nil {
		return env.Workflow, nil
	}

	var wf storage.Workflow
	if err := json.Unmarshal(b, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow %s: %w", path, err)
	}
	return &wf, nil
}
