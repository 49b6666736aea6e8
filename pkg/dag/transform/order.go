package transform

import (
	"slices"

	"github.com/matzehuels/spmgraph/pkg/dag"
)

// BuildOrder groups node IDs into stages such that every node comes after
// the nodes it depends on. Nodes within a stage do not depend on each other
// and may be built in parallel.
//
// g is not modified. Cycles are broken on a copy first; the removed edges
// are returned so callers can report them.
func BuildOrder(g *dag.DAG) ([][]string, []dag.Edge) {
	work := g.Clone()
	removed := BreakCycles(work)
	AssignLayers(work)
	rows := work.Rows()
	slices.Reverse(rows)
	return rows, removed
}
