package depgraph

import (
	"context"

	"github.com/matzehuels/spmgraph/pkg/manifest"
)

// ManifestStrategy reads the manifest text and emits an edge for every path
// dependency that resolves to a workspace project.
type ManifestStrategy struct{}

func (ManifestStrategy) Name() string { return "manifest" }

func (ManifestStrategy) Edges(_ context.Context, u Unit) ([]Edge, error) {
	m, err := manifest.ReadFile(u.Workspace.Abs(u.File))
	if err != nil {
		return nil, err
	}
	var edges []Edge
	for _, dep := range m.Dependencies {
		if dep.Path == "" {
			continue
		}
		target, ok := u.Workspace.ResolvePath(u.Dir(), dep.Path)
		if !ok {
			continue
		}
		if e, ok := u.edgeTo(target); ok {
			edges = append(edges, e)
		}
	}
	return edges, nil
}
