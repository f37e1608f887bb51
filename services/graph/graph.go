// Package graph holds the pure structural analyses run over a workflow:
// adjacency, cycle detection, entry/exit discovery, reachability and
// ordering. Every function is total over any finite input and never
// mutates it.
//
// Edges whose endpoints are not both declared nodes ("dangling" edges) are
// recorded by BuildAdjacency and counted for degrees, but DetectCycle and
// TopologicalSort only consider edges between declared nodes, so the two
// always agree: DetectCycle(g) is true exactly when TopologicalSort(g)
// reports no ordering.
package graph

import (
	"workflow-sandbox/api/services/nodes"
)

// BuildAdjacency maps every node id to the targets of its outgoing edges,
// in edge order. Nodes without outgoing edges map to an empty slice; edges
// from unknown ids are recorded under that id.
func BuildAdjacency(ns []nodes.Node, es []nodes.Edge) map[string][]string {
	adj := make(map[string][]string, len(ns))
	for _, n := range ns {
		if _, ok := adj[n.ID]; !ok {
			adj[n.ID] = []string{}
		}
	}
	for _, e := range es {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

const (
	white = iota // unvisited
	gray         // on the current DFS path
	black        // fully explored
)

// DetectCycle reports whether any directed cycle exists, self-loops
// included. It runs an iterative depth-first search from every node in
// input order; an edge back to a gray node closes a cycle.
func DetectCycle(ns []nodes.Node, es []nodes.Edge) bool {
	adj := BuildAdjacency(ns, es)
	known := idSet(ns)
	color := make(map[string]int, len(ns))

	type frame struct {
		id   string
		next int
	}

	for _, root := range ns {
		if color[root.ID] != white {
			continue
		}
		color[root.ID] = gray
		stack := []frame{{id: root.ID}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			targets := adj[top.id]
			if top.next == len(targets) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			v := targets[top.next]
			top.next++

			if !known[v] {
				continue
			}
			switch color[v] {
			case gray:
				return true
			case white:
				color[v] = gray
				stack = append(stack, frame{id: v})
			}
		}
	}
	return false
}

// FindStartNodes returns, in input order, the nodes declared as start or
// with no incoming edges.
func FindStartNodes(ns []nodes.Node, es []nodes.Edge) []nodes.Node {
	in := make(map[string]int, len(ns))
	for _, e := range es {
		in[e.Target]++
	}
	var out []nodes.Node
	for _, n := range ns {
		if n.Type == nodes.TypeStart || in[n.ID] == 0 {
			out = append(out, n)
		}
	}
	return out
}

// FindEndNodes returns, in input order, the nodes declared as end or
// with no outgoing edges.
func FindEndNodes(ns []nodes.Node, es []nodes.Edge) []nodes.Node {
	outDeg := make(map[string]int, len(ns))
	for _, e := range es {
		outDeg[e.Source]++
	}
	var out []nodes.Node
	for _, n := range ns {
		if n.Type == nodes.TypeEnd || outDeg[n.ID] == 0 {
			out = append(out, n)
		}
	}
	return out
}

// FindDisconnectedNodes returns the ids, in input order, of nodes that no
// forward walk from FindStartNodes reaches. With no start nodes at all,
// every node is disconnected.
func FindDisconnectedNodes(ns []nodes.Node, es []nodes.Edge) []string {
	if len(ns) == 0 {
		return nil
	}

	starts := FindStartNodes(ns, es)
	if len(starts) == 0 {
		ids := make([]string, 0, len(ns))
		for _, n := range ns {
			ids = append(ids, n.ID)
		}
		return ids
	}

	adj := BuildAdjacency(ns, es)
	visited := make(map[string]bool, len(ns))
	stack := make([]string, 0, len(starts))
	for _, s := range starts {
		stack = append(stack, s.ID)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		stack = append(stack, adj[id]...)
	}

	var out []string
	for _, n := range ns {
		if !visited[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// TopologicalSort orders the nodes so every edge points forward, using
// Kahn's algorithm with a FIFO queue seeded in input order. ok is false
// when no ordering exists. When ids repeat, the first node with that id
// stands for all of them.
func TopologicalSort(ns []nodes.Node, es []nodes.Edge) (sorted []nodes.Node, ok bool) {
	byID := make(map[string]nodes.Node, len(ns))
	order := make([]string, 0, len(ns))
	for _, n := range ns {
		if _, dup := byID[n.ID]; dup {
			continue
		}
		byID[n.ID] = n
		order = append(order, n.ID)
	}

	in := make(map[string]int, len(order))
	adj := make(map[string][]string, len(order))
	for _, e := range es {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		in[e.Target]++
	}

	queue := make([]string, 0, len(order))
	for _, id := range order {
		if in[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted = make([]nodes.Node, 0, len(order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, byID[id])
		for _, t := range adj[id] {
			in[t]--
			if in[t] == 0 {
				queue = append(queue, t)
			}
		}
	}

	if len(sorted) != len(order) {
		return nil, false
	}
	return sorted, true
}

// ExecutionOrder returns the topological order when one exists and falls
// back to input order otherwise. The fallback is best-effort output for
// diagnosing malformed graphs, not a valid schedule.
func ExecutionOrder(ns []nodes.Node, es []nodes.Edge) []nodes.Node {
	if sorted, ok := TopologicalSort(ns, es); ok {
		return sorted
	}
	out := make([]nodes.Node, len(ns))
	copy(out, ns)
	return out
}

func idSet(ns []nodes.Node) map[string]bool {
	set := make(map[string]bool, len(ns))
	for _, n := range ns {
		set[n.ID] = true
	}
	return set
}
