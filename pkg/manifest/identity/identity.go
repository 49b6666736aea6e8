// Package identity canonicalizes dependency references.
//
// A dependency can be referred to by its remote address
// ("https://github.com/apple/swift-nio.git", "git@github.com:apple/swift-nio.git"),
// by a filesystem path ("../swift-nio") or by its bare name ("swift-nio").
// [CanonicalName] maps all three to the same logical name, and is used
// symmetrically when reading manifests, inserting declarations and matching
// removal requests.
package identity

import (
	"path"
	"regexp"
	"strings"
)

// archiveSuffix is stripped from the last segment of remote addresses.
const archiveSuffix = ".git"

// scpLike matches "user@host:" prefixes of scp-style git references.
var scpLike = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:`)

// IsRemote reports whether ref looks like a remote address: it carries a URL
// scheme or uses the scp-like "user@host:owner/repo" form.
func IsRemote(ref string) bool {
	ref = strings.TrimSpace(ref)
	return strings.Contains(ref, "://") || scpLike.MatchString(ref)
}

// IsPath reports whether ref looks like a filesystem path rather than a bare
// name. Remote addresses are never paths.
func IsPath(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsRemote(ref) {
		return false
	}
	return ref == "." || ref == ".." || strings.HasPrefix(ref, "~") ||
		strings.ContainsAny(ref, `/\`)
}

// CanonicalName returns the logical name of a dependency reference.
//
//   - Remote addresses resolve to their final "/" or ":" segment with a
//     trailing ".git" removed.
//   - Filesystem paths resolve to their final path segment.
//   - Bare names are returned unchanged.
//
// CanonicalName is idempotent: CanonicalName(CanonicalName(x)) == CanonicalName(x).
func CanonicalName(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case IsRemote(ref):
		return remoteName(ref)
	case IsPath(ref):
		return pathName(ref)
	default:
		return ref
	}
}

// Matches reports whether ref refers to the dependency called name.
func Matches(ref, name string) bool {
	return ref != "" && CanonicalName(ref) == CanonicalName(name)
}

func remoteName(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.Index(ref, "://"); i >= 0 {
		rest := ref[i+3:]
		if !strings.Contains(rest, "/") {
			// scheme://host with no path: the host is all there is.
			return strings.TrimSuffix(rest, archiveSuffix)
		}
		ref = rest
	}
	if i := strings.LastIndexAny(ref, "/:"); i >= 0 {
		ref = ref[i+1:]
	}
	if name := strings.TrimSuffix(ref, archiveSuffix); name != "" {
		return name
	}
	return ref
}

func pathName(ref string) string {
	p := strings.ReplaceAll(ref, `\`, "/")
	trimmed := strings.TrimRight(p, "/")
	if trimmed == "" {
		return ref
	}
	base := path.Base(trimmed)
	if base == "." || base == ".." {
		return trimmed
	}
	return base
}
