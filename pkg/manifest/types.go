package manifest

// DefaultName is used when a manifest declares no package name.
const DefaultName = "unknown-package"

// FileName is the conventional manifest file name.
const FileName = "Package.swift"

// TargetType classifies a build target.
type TargetType string

const (
	TargetLibrary    TargetType = "library"
	TargetExecutable TargetType = "executable"
	TargetTest       TargetType = "test"
)

// ProductType classifies a product.
type ProductType string

const (
	ProductLibrary    ProductType = "library"
	ProductExecutable ProductType = "executable"
)

// Manifest is the structured content of a package manifest. It is derived
// fresh on every read and never edited in place; edits go through the raw
// text (see package edit).
type Manifest struct {
	Name         string            `json:"name"`
	Platforms    map[string]string `json:"platforms,omitempty"`
	Dependencies []Dependency      `json:"dependencies"`
	Targets      []Target          `json:"targets"`
	Products     []Product         `json:"products"`
}

// Dependency is a package-level dependency declaration. Exactly one of URL
// and Path is set.
type Dependency struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Branch  string `json:"branch,omitempty"`
	Commit  string `json:"commit,omitempty"`
}

// IsRemote reports whether d is addressed by URL.
func (d Dependency) IsRemote() bool { return d.URL != "" }

// Target is a build target and the names it depends on.
type Target struct {
	Name         string     `json:"name"`
	Type         TargetType `json:"type"`
	Dependencies []string   `json:"dependencies"`
	Path         string     `json:"path,omitempty"`
}

// Product is a library or executable product and the targets it bundles.
type Product struct {
	Name    string      `json:"name"`
	Type    ProductType `json:"type"`
	Targets []string    `json:"targets"`
}
