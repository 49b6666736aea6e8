package edit

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
)

// DefaultVersion is the lower bound used when a remote dependency is added
// without a version.
const DefaultVersion = "1.0.0"

// Declaration renders the ".package(...)" declaration for dep. Remote
// dependencies use the branch, commit or version requirement, in that
// order of preference, defaulting to from: "1.0.0".
func Declaration(dep manifest.Dependency) (string, error) {
	switch {
	case dep.URL != "" && dep.Path != "":
		return "", errors.New(errors.ErrCodeInvalidInput, "dependency %q has both url and path", dep.Name)
	case dep.URL != "":
		var req string
		switch {
		case dep.Branch != "":
			req = "branch: " + quote(dep.Branch)
		case dep.Commit != "":
			req = "revision: " + quote(dep.Commit)
		case dep.Version != "":
			req = FormatVersionConstraint(dep.Version)
		default:
			req = "from: " + quote(DefaultVersion)
		}
		return fmt.Sprintf(".package(url: %s, %s)", quote(dep.URL), req), nil
	case dep.Path != "":
		return fmt.Sprintf(".package(path: %s)", quote(dep.Path)), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "dependency %q has neither url nor path", dep.Name)
}

var (
	versionRe  = `\d+(\.\d+)*(-[\w.]+)?`
	plainRe    = regexp.MustCompile(`^` + versionRe + `$`)
	quotedRe   = regexp.MustCompile(`^"` + versionRe + `"$`)
	rangeRe    = regexp.MustCompile(`^"?(` + versionRe + `)?"?\s*(\.\.<|\.\.\.)\s*"?(` + versionRe + `)"?$`)
	labeledRe  = regexp.MustCompile(`^(from|exact):\s*"(` + versionRe + `)"$`)
	branchRe   = regexp.MustCompile(`^branch:\s*"[\w\-/.]+"$`)
	revisionRe = regexp.MustCompile(`^revision:\s*"[a-fA-F0-9]+"$`)
)

// FormatVersionConstraint turns a user supplied version into the argument
// text of a remote declaration. Labeled requirements pass through, bare and
// quoted versions become from: requirements, and ranges get their bounds
// quoted.
func FormatVersionConstraint(version string) string {
	v := strings.TrimSpace(version)
	for _, label := range []string{"from:", "exact:", "branch:", "revision:"} {
		if strings.HasPrefix(v, label) {
			return v
		}
	}
	if strings.HasPrefix(v, ".upTo") || strings.HasPrefix(v, ".exact(") {
		return v
	}
	if m := rangeRe.FindStringSubmatch(v); m != nil && m[1] != "" {
		return quote(m[1]) + m[4] + quote(m[5])
	}
	if quotedRe.MatchString(v) {
		return "from: " + v
	}
	return "from: " + quote(strings.Trim(v, `"`))
}

// ValidateVersionConstraint checks a user supplied version requirement.
// Versions must parse as semantic versions and ranges must be increasing.
func ValidateVersionConstraint(version string) error {
	v := strings.TrimSpace(version)
	switch {
	case v == "":
		return errors.New(errors.ErrCodeInvalidVersion, "empty version")
	case branchRe.MatchString(v), revisionRe.MatchString(v):
		return nil
	case labeledRe.MatchString(v):
		return checkVersion(labeledRe.FindStringSubmatch(v)[2])
	case plainRe.MatchString(v):
		return checkVersion(v)
	case quotedRe.MatchString(v):
		return checkVersion(strings.Trim(v, `"`))
	}
	m := rangeRe.FindStringSubmatch(v)
	if m == nil {
		return errors.New(errors.ErrCodeInvalidVersion, "unrecognized version requirement %q", version)
	}
	if m[1] == "" {
		return errors.New(errors.ErrCodeInvalidVersion, "range %q has no lower bound", version)
	}
	upper, err := semver.NewVersion(m[5])
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, err, "upper bound %q", m[5])
	}
	lower, err := semver.NewVersion(m[1])
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, err, "lower bound %q", m[1])
	}
	if !lower.LessThan(upper) {
		return errors.New(errors.ErrCodeInvalidVersion, "empty range %q", version)
	}
	return nil
}

func checkVersion(raw string) error {
	if _, err := semver.NewVersion(raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, err, "version %q", raw)
	}
	return nil
}

// RelativePath returns the slash-separated path from one project directory
// to another, as written in a path dependency.
func RelativePath(from, to string) string {
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return filepath.ToSlash(to)
	}
	return filepath.ToSlash(rel)
}
