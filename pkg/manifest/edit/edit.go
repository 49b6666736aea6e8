// Package edit performs minimal-diff edits of package manifest text.
//
// Edits never re-serialize the manifest. The text is parsed into a
// span-annotated syntax tree, the affected array elements are located, and
// only those byte ranges are replaced. Whitespace, comments and unrelated
// declarations are preserved exactly.
//
// [InsertDependency] appends a package declaration and lists the dependency
// in the chosen targets. [RemoveDependency] takes it out of target lists and,
// once no target uses it any more, removes the declaration. Inserting never
// checks for duplicates; removing something that is neither declared nor
// referenced fails with a DEPENDENCY_NOT_FOUND error.
package edit

import (
	"sort"
	"strings"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest/scan"
	"github.com/matzehuels/spmgraph/pkg/manifest/syntax"
)

// Result describes an applied edit.
type Result struct {
	Text               string   // the edited manifest
	Name               string   // canonical dependency name
	Targets            []string // targets whose dependency lists changed
	DeclarationRemoved bool     // a package-level declaration was removed
	StillUsedBy        []string // targets that still list the dependency
}

type splice struct {
	span scan.Span
	text string
}

// apply replaces each splice's span in src. Spans must not overlap.
func apply(src string, edits []splice) string {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].span.Start > edits[j].span.Start
	})
	for _, e := range edits {
		src = src[:e.span.Start] + e.text + src[e.span.End:]
	}
	return src
}

var targetKinds = []string{"target", "executableTarget", "testTarget"}

type targetCall struct {
	name string
	test bool
	call *syntax.Call
}

// targetCalls returns the target declarations of the manifest in source
// order.
func targetCalls(f *syntax.File) []targetCall {
	arr, ok := f.ArrayField("targets")
	if !ok {
		return nil
	}
	var out []targetCall
	for _, e := range arr.Elems {
		c, ok := e.(*syntax.Call)
		if !ok {
			continue
		}
		for _, kind := range targetKinds {
			if !c.IsMember(kind) {
				continue
			}
			if name, ok := c.StringArg("name"); ok {
				out = append(out, targetCall{name: name, test: kind == "testTarget", call: c})
			}
		}
	}
	return out
}

// selectTargets returns the named targets, or every target accepted by
// fallback when names is empty.
func selectTargets(all []targetCall, names []string, fallback func(targetCall) bool) ([]targetCall, error) {
	if len(names) == 0 {
		var out []targetCall
		for _, t := range all {
			if fallback(t) {
				out = append(out, t)
			}
		}
		return out, nil
	}
	var out []targetCall
	seen := make(map[*syntax.Call]bool)
	for _, n := range names {
		found := false
		for _, t := range all {
			if t.name != n {
				continue
			}
			found = true
			if !seen[t.call] {
				seen[t.call] = true
				out = append(out, t)
			}
		}
		if !found {
			return nil, errors.New(errors.ErrCodeTargetNotFound, "target %q not found", n)
		}
	}
	return out, nil
}

// dependenciesArray locates the package-level dependencies array.
func dependenciesArray(f *syntax.File) (*syntax.Array, error) {
	arr, ok := f.ArrayField("dependencies")
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedManifest, "could not find dependencies array in %s", "Package.swift")
	}
	if !arr.Closed {
		return nil, errors.New(errors.ErrCodeMalformedManifest, "dependencies array is not closed")
	}
	return arr, nil
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
