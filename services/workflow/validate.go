package workflow

import (
	"fmt"
	"strings"

	"workflow-sandbox/api/services/graph"
	"workflow-sandbox/api/services/nodes"
)

// ValidationResult collects blocking errors and advisory warnings.
// OK is true exactly when Errors is empty.
type ValidationResult struct {
	OK       bool     `json:"ok"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate runs the structural rules over a workflow graph in a fixed
// order. It never fails; problems are reported in the result.
func Validate(ns []nodes.Node, es []nodes.Edge) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}

	if len(ns) == 0 {
		res.Errors = append(res.Errors, "Workflow is empty. Add at least one node to create a workflow.")
		return res
	}

	var starts, ends int
	for _, n := range ns {
		switch n.Type {
		case nodes.TypeStart:
			starts++
		case nodes.TypeEnd:
			ends++
		}
	}
	switch {
	case starts == 0:
		res.Errors = append(res.Errors, "No Start node found. Every workflow must begin with a Start node.")
	case starts > 1:
		res.Warnings = append(res.Warnings, fmt.Sprintf("Multiple Start nodes found (%d). Consider using only one Start node.", starts))
	}
	if ends == 0 {
		res.Warnings = append(res.Warnings, "No End node found. Consider adding an End node to mark workflow completion.")
	}

	if graph.DetectCycle(ns, es) {
		res.Errors = append(res.Errors, "Cycle detected in workflow. Workflows must be acyclic (DAG).")
	}

	byID := make(map[string]nodes.Node, len(ns))
	for _, n := range ns {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}

	if ids := graph.FindDisconnectedNodes(ns, es); len(ids) > 0 {
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, byID[id].DisplayName())
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("Disconnected nodes found: %s. These nodes won't be executed.", strings.Join(names, ", ")))
	}

	adj := graph.BuildAdjacency(ns, es)
	var deadEnds []string
	for _, n := range ns {
		if n.Type != nodes.TypeEnd && len(adj[n.ID]) == 0 {
			deadEnds = append(deadEnds, n.DisplayName())
		}
	}
	if len(deadEnds) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Nodes without outgoing connections: %s", strings.Join(deadEnds, ", ")))
	}

	for _, n := range ns {
		for _, is := range n.Issues() {
			if is.Severity == nodes.SeverityError {
				res.Errors = append(res.Errors, is.Message)
			} else {
				res.Warnings = append(res.Warnings, is.Message)
			}
		}
	}

	for _, e := range es {
		if _, ok := byID[e.Source]; !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Edge %s has invalid source: %s", e.ID, e.Source))
		}
		if _, ok := byID[e.Target]; !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Edge %s has invalid target: %s", e.ID, e.Target))
		}
	}

	seen := make(map[string]int, len(ns))
	for _, n := range ns {
		seen[n.ID]++
		if seen[n.ID] == 2 {
			res.Errors = append(res.Errors, fmt.Sprintf("Duplicate node id %q. Node ids must be unique.", n.ID))
		}
	}

	res.OK = len(res.Errors) == 0
	return res
}
