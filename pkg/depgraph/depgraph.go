// Package depgraph builds directed edges between the Swift packages of a
// workspace.
//
// Each changed manifest is a [Unit]. A unit is handed to an ordered list of
// [Strategy] values and the first one that succeeds supplies its edges:
//
//   - [DumpStrategy] asks the toolchain for `swift package dump-package`
//     output and reads filesystem dependencies and by-name target
//     references from it.
//   - [ManifestStrategy] reads the manifest text and uses its path
//     dependencies.
//
// Edges are not deduplicated. A package that both declares a path
// dependency on a sibling and names it from a target yields two identical
// edges. Self edges are never emitted.
package depgraph

import (
	"context"
	"path"
	"strings"

	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// Edge is a directed dependency between two projects, identified by root.
type Edge struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	SourceFile string `json:"sourceFile"`
}

// Unit is one manifest to process.
type Unit struct {
	Workspace *workspace.Workspace
	Project   *workspace.Project
	// File is the workspace-relative manifest path.
	File string
}

// Dir returns the workspace-relative directory holding the manifest.
func (u Unit) Dir() string {
	return path.Dir(u.File)
}

// Strategy produces the edges of one unit.
type Strategy interface {
	Name() string
	Edges(ctx context.Context, u Unit) ([]Edge, error)
}

// edgeTo returns the edge from u's project to target, or false when that
// would be a self edge.
func (u Unit) edgeTo(target *workspace.Project) (Edge, bool) {
	if selfReference(u.Project, target) {
		return Edge{}, false
	}
	return Edge{Source: u.Project.Root, Target: target.Root, SourceFile: u.File}, true
}

func selfReference(a, b *workspace.Project) bool {
	return strings.EqualFold(a.Root, b.Root) || (a.Name != "" && strings.EqualFold(a.Name, b.Name))
}
