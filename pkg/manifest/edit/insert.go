package edit

import (
	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/manifest/scan"
	"github.com/matzehuels/spmgraph/pkg/manifest/syntax"
)

// InsertOptions selects where an inserted dependency is listed.
type InsertOptions struct {
	// Targets to list the dependency in. Empty means every non-test target.
	Targets []string
	// Product is listed in the targets instead of the dependency name.
	Product string
}

// InsertDependency appends dep's declaration to the package dependencies
// and lists it in the selected targets. Existing declarations are not
// checked, so inserting twice yields two declarations.
func InsertDependency(text string, dep manifest.Dependency, opts InsertOptions) (Result, error) {
	decl, err := Declaration(dep)
	if err != nil {
		return Result{}, err
	}
	if dep.Name == "" {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "dependency has no name")
	}

	f := syntax.Parse(text)
	deps, err := dependenciesArray(f)
	if err != nil {
		return Result{}, err
	}
	targets, err := selectTargets(targetCalls(f), opts.Targets, func(t targetCall) bool { return !t.test })
	if err != nil {
		return Result{}, err
	}

	lo := newLayout(text)
	edits := lo.appendElement(listOf(text, deps), decl, true)

	entry := dep.Name
	if opts.Product != "" {
		entry = opts.Product
	}
	res := Result{Name: dep.Name}
	for _, t := range targets {
		add, err := lo.addToTarget(t, quote(entry))
		if err != nil {
			return Result{}, err
		}
		edits = append(edits, add...)
		res.Targets = append(res.Targets, t.name)
	}

	res.Text = apply(text, edits)
	return res, nil
}

// addToTarget lists elem in the target's dependencies, adding the
// dependencies argument after the name when the target has none. A
// dependencies value that is not an array literal is left alone and
// reported as malformed.
func (lo layout) addToTarget(t targetCall, elem string) ([]splice, error) {
	c := t.call
	if a := c.Arg("dependencies"); a != nil {
		arr, ok := a.Value.(*syntax.Array)
		if !ok {
			return nil, errors.New(errors.ErrCodeMalformedManifest,
				"dependencies of target %q is not an array literal", t.name)
		}
		if !arr.Closed {
			return nil, errors.New(errors.ErrCodeMalformedManifest,
				"dependencies array of target %q is not closed", t.name)
		}
		return lo.appendElement(listOf(lo.src, arr), elem, false), nil
	}
	name := c.Arg("name")
	at := scan.Span{Start: name.Pos.End, End: name.Pos.End}
	if startsLine(lo.src, name.Pos.Start) {
		return []splice{{at, "," + lo.newline + lineIndent(lo.src, name.Pos.Start) + "dependencies: [" + elem + "]"}}, nil
	}
	return []splice{{at, ", dependencies: [" + elem + "]"}}, nil
}
