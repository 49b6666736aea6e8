// Package manifest reads Swift package manifests (Package.swift) into a
// structured [Manifest].
//
// # Reading
//
// [Read] is a total function: it never fails. Each field is extracted
// independently and best-effort from a tolerant syntax tree (see
// [syntax.Parse]), so a hand-edited or half-written manifest still yields
// whatever can be recognized:
//
//	m := manifest.Read(text)
//	fmt.Println(m.Name) // "unknown-package" when no name is declared
//
// [ReadFile] adds file access and reports storage failures as coded errors,
// so callers can tell "no such manifest" apart from "manifest parsed to
// defaults".
//
// # Recognized shapes
//
//   - name: the "name:" string of the Package call
//   - platforms: ".macOS(.v13)" style entries, mapped through a fixed legacy
//     version-code table
//   - dependencies: ".package(url: ...)" and ".package(path: ...)"
//   - targets: ".target", ".executableTarget" and ".testTarget" with their
//     quoted-string dependencies
//   - products: ".library" and ".executable" with their target lists
//
// Anything else is ignored. Dependency names are derived with
// [identity.CanonicalName].
//
// Subpackages implement the layers underneath: scan for character-level
// scanning, syntax for the span-annotated syntax tree, identity for
// reference resolution and edit for minimal-diff mutation.
package manifest
