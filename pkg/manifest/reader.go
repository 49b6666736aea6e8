package manifest

import (
	"os"
	"strings"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest/scan"
	"github.com/matzehuels/spmgraph/pkg/manifest/syntax"
)

// ReadFile reads and parses the manifest at path. A missing file yields an
// ErrCodeManifestNotFound error and any other read failure ErrCodeIO; a
// readable file always parses.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeManifestNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read manifest %s", path)
	}
	return Read(string(data)), nil
}

// Read parses manifest text. It never fails: fields that cannot be found
// take their zero value, and the name falls back to [DefaultName].
func Read(text string) *Manifest {
	return FromFile(syntax.Parse(text))
}

// FromFile builds a manifest from an already parsed syntax tree.
func FromFile(f *syntax.File) *Manifest {
	m := &Manifest{
		Name:         readName(f),
		Dependencies: []Dependency{},
		Targets:      []Target{},
		Products:     []Product{},
	}
	if arr, ok := f.ArrayField("platforms"); ok {
		m.Platforms = readPlatforms(arr)
	}
	if arr, ok := f.ArrayField("dependencies"); ok {
		for _, c := range arr.Calls("package") {
			if d, ok := DependencyFromCall(c); ok {
				m.Dependencies = append(m.Dependencies, d)
			}
		}
	} else {
		m.Dependencies = append(m.Dependencies, scanDependencies(f.Src)...)
	}
	if arr, ok := f.ArrayField("targets"); ok {
		m.Targets = readTargets(arr)
	}
	if arr, ok := f.ArrayField("products"); ok {
		m.Products = readProducts(arr)
	}
	return m
}

// ParseDeclaration parses a single ".package(...)" declaration.
func ParseDeclaration(decl string) (Dependency, bool) {
	f := syntax.Parse(strings.TrimSpace(decl))
	if len(f.Nodes) == 0 {
		return Dependency{}, false
	}
	c, ok := f.Nodes[0].(*syntax.Call)
	if !ok || !c.IsMember("package") {
		return Dependency{}, false
	}
	return DependencyFromCall(c)
}

// scanDependencies reads the first "dependencies: [...]" block of src
// declaration by declaration. It covers values the tree does not hold as a
// plain array literal, such as `[...] + extra`.
func scanDependencies(src string) []Dependency {
	block, ok := scan.Block(src, "dependencies")
	if !ok {
		return nil
	}
	var deps []Dependency
	for _, decl := range scan.SplitDeclarations(block.Text(src)) {
		if d, ok := ParseDeclaration(decl); ok {
			deps = append(deps, d)
		}
	}
	return deps
}

func readName(f *syntax.File) string {
	isString := func(n syntax.Node) bool {
		_, ok := n.(*syntax.String)
		return ok
	}
	if pkg := f.Package(); pkg != nil {
		if name, ok := pkg.StringArg("name"); ok && name != "" {
			return name
		}
	}
	// Without a usable Package call, take the first name anywhere.
	var name string
	for _, n := range f.Nodes {
		syntax.Walk(n, func(n syntax.Node) bool {
			if name != "" {
				return false
			}
			if a, ok := n.(*syntax.Arg); ok && a.Label == "name" && isString(a.Value) {
				name = a.Value.(*syntax.String).Value
				return false
			}
			return true
		})
	}
	if name == "" {
		return DefaultName
	}
	return name
}

// DependencyFromCall converts a ".package(...)" call. Calls carrying
// neither a url nor a path argument are not dependencies.
func DependencyFromCall(c *syntax.Call) (Dependency, bool) {
	var d Dependency
	if url, ok := c.StringArg("url"); ok && url != "" {
		d = NewRemoteDependency(url, "")
		readRequirement(c, &d)
	} else if path, ok := c.StringArg("path"); ok && path != "" {
		d = NewLocalDependency(path)
	} else {
		return Dependency{}, false
	}
	if name, ok := c.StringArg("name"); ok && name != "" {
		d.Name = name
	}
	return d, true
}

// readRequirement fills the version, branch or commit of a remote
// dependency from the arguments following its url.
func readRequirement(c *syntax.Call, d *Dependency) {
	for _, a := range c.Args {
		switch a.Label {
		case "from", "exact":
			d.Version = stringValue(a.Value)
		case "branch":
			d.Branch = stringValue(a.Value)
		case "revision":
			d.Commit = stringValue(a.Value)
		case "":
			readUnlabeledRequirement(a.Value, d)
		}
	}
}

func readUnlabeledRequirement(n syntax.Node, d *Dependency) {
	switch v := n.(type) {
	case *syntax.Call:
		switch v.Name() {
		case "upToNextMajor", "upToNextMinor":
			d.Version, _ = v.StringArg("from")
		case "exact":
			d.Version = firstString(v)
		case "branch":
			d.Branch = firstString(v)
		case "revision":
			d.Commit = firstString(v)
		}
	case *syntax.Seq:
		var b strings.Builder
		for _, t := range v.Nodes {
			switch t := t.(type) {
			case *syntax.String:
				b.WriteString(t.Value)
			case *syntax.Raw:
				b.WriteString(t.Text)
			default:
				return
			}
		}
		d.Version = b.String()
	case *syntax.String:
		d.Version = v.Value
	}
}

func stringValue(n syntax.Node) string {
	if s, ok := n.(*syntax.String); ok {
		return s.Value
	}
	return ""
}

func firstString(c *syntax.Call) string {
	if len(c.Args) == 0 {
		return ""
	}
	return stringValue(c.Args[0].Value)
}

var targetKinds = map[string]TargetType{
	"target":           TargetLibrary,
	"executableTarget": TargetExecutable,
	"testTarget":       TargetTest,
}

func readTargets(arr *syntax.Array) []Target {
	targets := []Target{}
	for _, e := range arr.Elems {
		c, ok := e.(*syntax.Call)
		if !ok {
			continue
		}
		m, ok := c.Callee.(*syntax.Member)
		if !ok {
			continue
		}
		kind, ok := targetKinds[m.Name]
		if !ok {
			continue
		}
		name, ok := c.StringArg("name")
		if !ok {
			continue
		}
		deps, _ := c.ArrayArg("dependencies")
		t := Target{Name: name, Type: kind, Dependencies: syntax.Strings(deps)}
		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
		t.Path, _ = c.StringArg("path")
		targets = append(targets, t)
	}
	return targets
}

var productKinds = map[string]ProductType{
	"library":    ProductLibrary,
	"executable": ProductExecutable,
}

func readProducts(arr *syntax.Array) []Product {
	products := []Product{}
	for _, e := range arr.Elems {
		c, ok := e.(*syntax.Call)
		if !ok {
			continue
		}
		m, ok := c.Callee.(*syntax.Member)
		if !ok {
			continue
		}
		kind, ok := productKinds[m.Name]
		if !ok {
			continue
		}
		name, ok := c.StringArg("name")
		if !ok {
			continue
		}
		targets, _ := c.ArrayArg("targets")
		p := Product{Name: name, Type: kind, Targets: syntax.Strings(targets)}
		if p.Targets == nil {
			p.Targets = []string{}
		}
		products = append(products, p)
	}
	return products
}

// TargetNames returns the names of all targets, optionally skipping test
// targets.
func (m *Manifest) TargetNames(includeTests bool) []string {
	var out []string
	for _, t := range m.Targets {
		if t.Type == TargetTest && !includeTests {
			continue
		}
		out = append(out, t.Name)
	}
	return out
}
