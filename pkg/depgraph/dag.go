package depgraph

import (
	"github.com/matzehuels/spmgraph/pkg/dag"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// ToDAG converts edges into a graph with one node per project. Parallel
// edges collapse into one graph edge whose "count" metadata records how many
// were found and whose "files" metadata lists the source manifests.
func ToDAG(ws *workspace.Workspace, edges []Edge) *dag.DAG {
	g := dag.New(dag.Metadata{"root": ws.Root})
	for _, p := range ws.Projects {
		meta := dag.Metadata{"name": p.Name}
		if p.Manifest != nil {
			if p.Manifest.HasExecutable() {
				meta["type"] = "application"
			} else {
				meta["type"] = "library"
			}
		}
		_ = g.AddNode(dag.Node{ID: p.Root, Meta: meta})
	}

	type pair struct{ from, to string }
	seen := make(map[pair]dag.Metadata)
	for _, e := range edges {
		for _, id := range []string{e.Source, e.Target} {
			if _, ok := g.Node(id); !ok {
				_ = g.AddNode(dag.Node{ID: id})
			}
		}
		k := pair{e.Source, e.Target}
		if meta, ok := seen[k]; ok {
			meta["count"] = meta["count"].(int) + 1
			if files := meta["files"].([]string); files[len(files)-1] != e.SourceFile {
				meta["files"] = append(files, e.SourceFile)
			}
			continue
		}
		meta := dag.Metadata{"count": 1, "files": []string{e.SourceFile}}
		seen[k] = meta
		_ = g.AddEdge(dag.Edge{From: e.Source, To: e.Target, Meta: meta})
	}
	return g
}
