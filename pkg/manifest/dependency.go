package manifest

import (
	"strings"

	"github.com/matzehuels/spmgraph/pkg/manifest/identity"
)

// NewRemoteDependency returns a URL-addressed dependency named after the
// repository. The version is optional.
func NewRemoteDependency(url, version string) Dependency {
	url = strings.TrimSpace(url)
	return Dependency{Name: identity.CanonicalName(url), URL: url, Version: version}
}

// NewLocalDependency returns a path-addressed dependency named after the
// final path segment.
func NewLocalDependency(path string) Dependency {
	path = strings.TrimSpace(path)
	return Dependency{Name: identity.CanonicalName(path), Path: path}
}

// FindDependency returns the first declared dependency whose name, URL or
// path equals identifier, or whose URL resolves to identifier.
func (m *Manifest) FindDependency(identifier string) (Dependency, bool) {
	for _, d := range m.Dependencies {
		if d.Name == identifier || d.URL != "" && d.URL == identifier || d.Path != "" && d.Path == identifier {
			return d, true
		}
		if d.URL != "" && identity.CanonicalName(d.URL) == identifier {
			return d, true
		}
	}
	return Dependency{}, false
}

// DependencyExists reports whether dep is already declared. Remote
// dependencies compare by URL, local ones by path, anything else by name.
func (m *Manifest) DependencyExists(dep Dependency) bool {
	for _, d := range m.Dependencies {
		switch {
		case d.URL != "" && dep.URL != "":
			if d.URL == dep.URL {
				return true
			}
		case d.Path != "" && dep.Path != "":
			if d.Path == dep.Path {
				return true
			}
		case d.Name == dep.Name:
			return true
		}
	}
	return false
}

// IsDependencyUsed reports whether any target lists name.
func (m *Manifest) IsDependencyUsed(name string) bool {
	return len(m.TargetsUsingDependency(name)) > 0
}

// TargetsUsingDependency returns the names of the targets that list name.
func (m *Manifest) TargetsUsingDependency(name string) []string {
	var out []string
	for _, t := range m.Targets {
		for _, d := range t.Dependencies {
			if d == name {
				out = append(out, t.Name)
				break
			}
		}
	}
	return out
}

// Target returns the target with the given name.
func (m *Manifest) Target(name string) (Target, bool) {
	for _, t := range m.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// HasExecutable reports whether the manifest declares an executable target
// or product.
func (m *Manifest) HasExecutable() bool {
	for _, t := range m.Targets {
		if t.Type == TargetExecutable {
			return true
		}
	}
	for _, p := range m.Products {
		if p.Type == ProductExecutable {
			return true
		}
	}
	return false
}

// HasTestTarget reports whether the manifest declares a test target.
func (m *Manifest) HasTestTarget() bool {
	for _, t := range m.Targets {
		if t.Type == TargetTest {
			return true
		}
	}
	return false
}

// LocalDependencies returns the path-addressed dependencies.
func (m *Manifest) LocalDependencies() []Dependency {
	var out []Dependency
	for _, d := range m.Dependencies {
		if d.Path != "" {
			out = append(out, d)
		}
	}
	return out
}
