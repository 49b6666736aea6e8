package transform

import (
	"slices"
	"sort"

	"github.com/matzehuels/spmgraph/pkg/dag"
)

// BreakCycles removes back edges until g is acyclic and returns the removed
// edges. Nodes and children are visited in ID order, sources first, so the
// same graph always loses the same edges.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		children := slices.Clone(g.Children(node))
		sort.Strings(children)
		for _, child := range slices.Compact(children) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, dag.Edge{From: node, To: child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e.From, e.To)
	}
	return backEdges
}
