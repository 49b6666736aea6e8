package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a project or dependency name supplied on the
// command line. It rejects names that could be used for path traversal or
// that would break the quoted string they are inserted into.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No quotes or backslashes
//   - No path traversal sequences
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\""} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a local dependency path for insertion into a
// manifest. Unlike repository paths, relative parent traversal is allowed
// since sibling packages are usually referenced as "../Name".
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No quotes or backslashes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.ContainsAny(path, "\"\\") {
		return New(ErrCodeInvalidPath, "path cannot contain quotes or backslashes")
	}

	return nil
}

// scpLikeURL matches "git@host:owner/repo(.git)" references.
var scpLikeURL = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^\s"]+$`)

// ValidateURL validates a remote dependency address.
// It accepts http(s), ssh and git schemes as well as scp-like git references.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if strings.ContainsAny(rawURL, "\"\\ \t\n") {
		return New(ErrCodeInvalidInput, "URL contains invalid characters")
	}

	for _, scheme := range []string{"https://", "http://", "ssh://", "git://", "file://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	if scpLikeURL.MatchString(rawURL) {
		return nil
	}

	return New(ErrCodeInvalidInput, "URL must use http(s), ssh, git or file scheme, or be git@host:owner/repo")
}
