package workflow_test

import (
	"workflow-sandbox/api/services/nodes"
)

func start(id, title string) nodes.Node {
	return nodes.New(id, nodes.Position{}, nodes.StartData{Title: title})
}

func task(id, title string) nodes.Node {
	return nodes.New(id, nodes.Position{}, nodes.TaskData{Title: title})
}

func approval(id, title, role string, threshold float64) nodes.Node {
	return nodes.New(id, nodes.Position{}, nodes.ApprovalData{Title: title, ApproverRole: role, AutoApproveThreshold: threshold})
}

func automated(id, title, actionID string) nodes.Node {
	return nodes.New(id, nodes.Position{}, nodes.AutomatedData{Title: title, ActionID: actionID})
}

func end(id, title string) nodes.Node {
	return nodes.New(id, nodes.Position{}, nodes.EndData{Title: title})
}

func edge(source, target string) nodes.Edge {
	return nodes.Edge{ID: source + "-" + target, Source: source, Target: target}
}
