// Package dag provides the directed graph of workspace projects used for
// rendering, cycle reporting and build ordering.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Nodes must have unique IDs:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "apps/App", Meta: dag.Metadata{"name": "App"}})
//	g.AddNode(dag.Node{ID: "packages/utils"})
//	g.AddEdge(dag.Edge{From: "apps/App", To: "packages/utils"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents] and related
// methods. [DAG.Cycle] reports a dependency cycle; [DAG.Validate] fails on
// one.
//
// # Determinism
//
// [DAG.Nodes], [DAG.Sources], [DAG.Sinks] and [DAG.Rows] return nodes sorted
// by ID, and [DAG.Edges] keeps insertion order, so renderings of the same
// graph are byte-identical.
//
// # Related Packages
//
// The [transform] subpackage breaks cycles and assigns rows, from which a
// build order is derived.
//
// [transform]: github.com/matzehuels/spmgraph/pkg/dag/transform
package dag
