// Package workspace discovers the Swift packages of a repository and indexes
// them by root and by name.
//
// A project is a directory holding a Package.swift. Its id is its root,
// relative to the workspace root and slash-separated ("." for a package at
// the workspace root). Graph edges and CLI lookups refer to projects by that
// root; names are a convenience index.
package workspace

import (
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
)

// Project is one Swift package in the workspace.
type Project struct {
	Name     string             `json:"name"`
	Root     string             `json:"root"`
	Manifest *manifest.Manifest `json:"manifest,omitempty"`
}

// ManifestFile returns the workspace-relative path of the project manifest.
func (p *Project) ManifestFile() string {
	return path.Join(p.Root, manifest.FileName)
}

// Workspace is the set of known projects under Root.
type Workspace struct {
	Root     string
	Config   Config
	Projects []*Project

	byRoot map[string]*Project
	byName map[string]*Project
}

// New builds a workspace from projects. Projects are sorted by root.
//
// The name index maps both project names and root base names to projects.
// Names take precedence over base names when the two collide.
func New(root string, cfg Config, projects []*Project) *Workspace {
	sorted := append([]*Project(nil), projects...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Root < sorted[j].Root })

	w := &Workspace{
		Root:     root,
		Config:   cfg,
		Projects: sorted,
		byRoot:   make(map[string]*Project, len(sorted)),
		byName:   make(map[string]*Project, 2*len(sorted)),
	}
	for _, p := range sorted {
		w.byRoot[p.Root] = p
		if base := path.Base(p.Root); base != "." && base != "/" {
			w.byName[base] = p
		}
	}
	for _, p := range sorted {
		if p.Name != "" {
			w.byName[p.Name] = p
		}
	}
	return w
}

// ProjectByRoot returns the project rooted at root.
func (w *Workspace) ProjectByRoot(root string) (*Project, bool) {
	p, ok := w.byRoot[cleanRoot(root)]
	return p, ok
}

// ProjectByName returns the project with the given name or root base name.
func (w *Workspace) ProjectByName(name string) (*Project, bool) {
	p, ok := w.byName[name]
	return p, ok
}

// Lookup resolves a CLI reference to a project: a root, a name, or a path to
// a project directory or its Package.swift (absolute or relative to the
// workspace root).
func (w *Workspace) Lookup(ref string) (*Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project reference is empty")
	}
	if p, ok := w.ProjectByRoot(ref); ok {
		return p, nil
	}
	if p, ok := w.ProjectByName(ref); ok {
		return p, nil
	}
	candidate := ref
	if filepath.Base(candidate) == manifest.FileName {
		candidate = filepath.Dir(candidate)
	}
	if filepath.IsAbs(candidate) {
		if rel, ok := w.Rel(candidate); ok {
			candidate = rel
		}
	}
	if p, ok := w.ProjectByRoot(candidate); ok {
		return p, nil
	}
	return nil, errors.New(errors.ErrCodeProjectNotFound, "project %q not found in %s", ref, w.Root)
}

// ResolvePath maps a filesystem dependency path to a project. Relative
// paths are resolved against dir, a workspace-relative directory.
func (w *Workspace) ResolvePath(dir, depPath string) (*Project, bool) {
	abs := depPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(w.Abs(dir), filepath.FromSlash(depPath))
	}
	rel, ok := w.Rel(abs)
	if !ok {
		return nil, false
	}
	return w.ProjectByRoot(rel)
}

// Abs returns the absolute path of a workspace-relative path.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// Rel returns abs relative to the workspace root, slash-separated. It
// reports false for paths outside the workspace.
func (w *Workspace) Rel(abs string) (string, bool) {
	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// Replace swaps in a re-read project, keeping indexes consistent.
func (w *Workspace) Replace(p *Project) {
	projects := make([]*Project, 0, len(w.Projects)+1)
	for _, old := range w.Projects {
		if old.Root != p.Root {
			projects = append(projects, old)
		}
	}
	*w = *New(w.Root, w.Config, append(projects, p))
}

func cleanRoot(root string) string {
	root = path.Clean(filepath.ToSlash(root))
	return strings.TrimPrefix(root, "./")
}
