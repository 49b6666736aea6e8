package edit

import (
	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/manifest/identity"
	"github.com/matzehuels/spmgraph/pkg/manifest/syntax"
)

// RemoveOptions controls a removal.
type RemoveOptions struct {
	// Targets to remove the dependency from. Empty means every target.
	Targets []string
	// KeepDeclaration leaves the package-level declaration in place even
	// when no target uses the dependency any more.
	KeepDeclaration bool
}

// RemoveDependency removes a dependency identified by name, URL or path.
// The identifier resolves to a name by exact URL match, then exact path
// match, and otherwise through [identity.CanonicalName], so
// "https://host/o/foo" finds a declared "https://host/o/foo.git". The name is
// removed from the selected targets; the declaration goes too unless
// KeepDeclaration is set or another target still lists the name.
func RemoveDependency(text, identifier string, opts RemoveOptions) (Result, error) {
	f := syntax.Parse(text)
	depsArr, err := dependenciesArray(f)
	if err != nil {
		return Result{}, err
	}
	all := targetCalls(f)
	selected, err := selectTargets(all, opts.Targets, func(targetCall) bool { return true })
	if err != nil {
		return Result{}, err
	}

	deps := listOf(text, depsArr)
	decls := make([]manifest.Dependency, len(deps.elems))
	parsed := make([]bool, len(deps.elems))
	for i, e := range deps.elems {
		decls[i], parsed[i] = manifest.ParseDeclaration(e.Text)
	}
	name := resolveName(identifier, decls, parsed)

	declared := make([]bool, len(decls))
	anyDeclared := false
	for i, d := range decls {
		if parsed[i] && (d.Name == name || d.URL != "" && d.URL == identifier || d.Path != "" && d.Path == identifier) {
			declared[i] = true
			anyDeclared = true
		}
	}

	isSelected := make(map[*syntax.Call]bool, len(selected))
	for _, t := range selected {
		isSelected[t.call] = true
	}

	lo := newLayout(text)
	res := Result{Name: name}
	var edits []splice
	referenced := false
	for _, t := range all {
		arr, ok := t.call.ArrayArg("dependencies")
		if !ok {
			continue
		}
		l := listOf(text, arr)
		drop := make([]bool, len(l.elems))
		hits := 0
		for i, e := range l.elems {
			if isNameLiteral(e.Text, name) {
				drop[i] = true
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		referenced = true
		if !isSelected[t.call] {
			res.StillUsedBy = append(res.StillUsedBy, t.name)
			continue
		}
		edits = append(edits, lo.removeElements(l, drop)...)
		res.Targets = append(res.Targets, t.name)
	}

	if !anyDeclared && !referenced {
		return Result{}, errors.New(errors.ErrCodeDependencyNotFound, "dependency %q not found", identifier)
	}

	if !opts.KeepDeclaration && len(res.StillUsedBy) == 0 && anyDeclared {
		edits = append(edits, lo.removeElements(deps, declared)...)
		res.DeclarationRemoved = true
	}

	res.Text = apply(text, edits)
	return res, nil
}

func resolveName(identifier string, decls []manifest.Dependency, parsed []bool) string {
	for i, d := range decls {
		if parsed[i] && d.URL != "" && d.URL == identifier {
			return d.Name
		}
	}
	for i, d := range decls {
		if parsed[i] && d.Path != "" && d.Path == identifier {
			return d.Name
		}
	}
	return identity.CanonicalName(identifier)
}

// isNameLiteral reports whether elem is exactly the string literal name.
func isNameLiteral(elem, name string) bool {
	toks := syntax.Lex(elem)
	return len(toks) == 2 && toks[0].Kind == syntax.TokString && toks[0].Value == name
}
