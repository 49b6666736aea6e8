package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/spmgraph/pkg/errors"
)

const complexManifest = `
// swift-tools-version: 5.9
import PackageDescription

let package = Package(
    name: "SwiftNIOHTTP1",
    platforms: [
        .macOS(.v10_15),
        .iOS(.v13),
        .watchOS(.v6),
        .tvOS(.v13)
    ],
    products: [
        .library(name: "NIOHTTP1", targets: ["NIOHTTP1"]),
        .executable(name: "NIOHTTP1Server", targets: ["NIOHTTP1Server"])
    ],
    dependencies: [
        .package(url: "https://github.com/apple/swift-nio.git", from: "2.40.0"),
        .package(path: "../swift-collections")
    ],
    targets: [
        .target(
            name: "NIOHTTP1",
            dependencies: [
                .product(name: "NIO", package: "swift-nio"),
                .product(name: "NIOCore", package: "swift-nio"),
                "Collections"
            ]
        ),
        .executableTarget(
            name: "NIOHTTP1Server",
            dependencies: ["NIOHTTP1"]
        ),
        .testTarget(
            name: "NIOHTTP1Tests",
            dependencies: [
                "NIOHTTP1",
                .product(name: "NIOTestUtils", package: "swift-nio")
            ]
        )
    ]
)
`

func TestReadComplex(t *testing.T) {
	want := &Manifest{
		Name: "SwiftNIOHTTP1",
		Platforms: map[string]string{
			"macOS":   "5",
			"iOS":     "3",
			"watchOS": "6",
			"tvOS":    "3",
		},
		Dependencies: []Dependency{
			{Name: "swift-nio", URL: "https://github.com/apple/swift-nio.git", Version: "2.40.0"},
			{Name: "swift-collections", Path: "../swift-collections"},
		},
		Targets: []Target{
			{Name: "NIOHTTP1", Type: TargetLibrary, Dependencies: []string{"Collections"}},
			{Name: "NIOHTTP1Server", Type: TargetExecutable, Dependencies: []string{"NIOHTTP1"}},
			{Name: "NIOHTTP1Tests", Type: TargetTest, Dependencies: []string{"NIOHTTP1"}},
		},
		Products: []Product{
			{Name: "NIOHTTP1", Type: ProductLibrary, Targets: []string{"NIOHTTP1"}},
			{Name: "NIOHTTP1Server", Type: ProductExecutable, Targets: []string{"NIOHTTP1Server"}},
		},
	}
	if diff := cmp.Diff(want, Read(complexManifest)); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestReadName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "package name",
			src:  `let package = Package(name: "AwesomeLibrary", products: [], dependencies: [], targets: [])`,
			want: "AwesomeLibrary",
		},
		{
			name: "missing name",
			src:  `let package = Package(products: [], dependencies: [], targets: [])`,
			want: DefaultName,
		},
		{
			name: "partial manifest",
			src: `
let package = Package(
    name: "PartialPackage"
    // Missing closing parenthesis and other fields
`,
			want: "PartialPackage",
		},
		{
			name: "name inside a comment is ignored",
			src:  `// name: "Commented"` + "\n" + `let package = Package(name: "Real")`,
			want: "Real",
		},
		{
			name: "no package call",
			src:  `let x = Something(name: "Loose")`,
			want: "Loose",
		},
		{
			name: "garbage",
			src:  "this is not a valid swift package\nrandom text\nincomplete syntax",
			want: DefaultName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Read(tt.src).Name; got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadDependencies(t *testing.T) {
	src := `
let package = Package(
    name: "MyPackage",
    dependencies: [
        .package(url: "https://github.com/apple/swift-log.git", from: "1.0.0"),
        .package(path: "../LocalUtils"),
        .package(url: "https://github.com/vapor/fluent.git", .upToNextMajor(from: "4.0.0")),
        .package(url: "https://github.com/a/minor", .upToNextMinor(from: "1.2.0")),
        .package(url: "git@github.com:a/branchy.git", branch: "main"),
        .package(url: "https://github.com/a/pinned.git", revision: "abc123"),
        .package(url: "https://github.com/a/exact.git", exact: "1.2.3"),
        .package(url: "https://github.com/a/ranged.git", "1.0.0"..<"2.0.0"),
        .package(url: "https://github.com/a/legacy.git", .branch("develop")),
        .package(name: "Custom", url: "https://github.com/a/other.git", from: "1.0.0"),
        .package(path: "../../AnotherLocalPackage/"),
        .package(id: "scope.registry", from: "1.0.0"),
        // .package(path: "../Commented"),
    ],
    targets: []
)
`
	want := []Dependency{
		{Name: "swift-log", URL: "https://github.com/apple/swift-log.git", Version: "1.0.0"},
		{Name: "LocalUtils", Path: "../LocalUtils"},
		{Name: "fluent", URL: "https://github.com/vapor/fluent.git", Version: "4.0.0"},
		{Name: "minor", URL: "https://github.com/a/minor", Version: "1.2.0"},
		{Name: "branchy", URL: "git@github.com:a/branchy.git", Branch: "main"},
		{Name: "pinned", URL: "https://github.com/a/pinned.git", Commit: "abc123"},
		{Name: "exact", URL: "https://github.com/a/exact.git", Version: "1.2.3"},
		{Name: "ranged", URL: "https://github.com/a/ranged.git", Version: "1.0.0..<2.0.0"},
		{Name: "legacy", URL: "https://github.com/a/legacy.git", Branch: "develop"},
		{Name: "Custom", URL: "https://github.com/a/other.git", Version: "1.0.0"},
		{Name: "AnotherLocalPackage", Path: "../../AnotherLocalPackage/"},
	}
	if diff := cmp.Diff(want, Read(src).Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConcatenatedDependencies(t *testing.T) {
	src := `let package = Package(
    name: "App",
    dependencies: [
        .package(path: "../B"),
        .package(url: "https://github.com/o/c.git", from: "1.0.0"),
    ] + extraDependencies,
    targets: [.target(name: "App", dependencies: ["B"])]
)`
	want := []Dependency{
		{Name: "B", Path: "../B"},
		{Name: "c", URL: "https://github.com/o/c.git", Version: "1.0.0"},
	}
	if diff := cmp.Diff(want, Read(src).Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEmptyFields(t *testing.T) {
	m := Read(`let package = Package(name: "MyPackage", platforms: [], products: [], dependencies: [], targets: [])`)
	if m.Platforms != nil {
		t.Errorf("empty platforms should be absent, got %v", m.Platforms)
	}
	if m.Dependencies == nil || len(m.Dependencies) != 0 {
		t.Errorf("Dependencies = %#v, want empty slice", m.Dependencies)
	}
	if m.Targets == nil || len(m.Targets) != 0 {
		t.Errorf("Targets = %#v, want empty slice", m.Targets)
	}
	if m.Products == nil || len(m.Products) != 0 {
		t.Errorf("Products = %#v, want empty slice", m.Products)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Manifest
	}{
		{
			name: "empty",
			src:  "",
			want: &Manifest{Name: DefaultName, Dependencies: []Dependency{}, Targets: []Target{}, Products: []Product{}},
		},
		{
			name: "prose",
			src:  "this is not a valid swift package\nrandom text\nincomplete syntax",
			want: &Manifest{Name: DefaultName, Dependencies: []Dependency{}, Targets: []Target{}, Products: []Product{}},
		},
		{
			name: "truncated mid declaration",
			src:  `let package = Package(name: "P", dependencies: [.package(url: "https://x/y.git", from: "1.0`,
			want: &Manifest{
				Name:         "P",
				Dependencies: []Dependency{{Name: "y", URL: "https://x/y.git", Version: "1.0"}},
				Targets:      []Target{},
				Products:     []Product{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Read(tt.src)); diff != "" {
				t.Errorf("Read mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadPlatforms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[string]string
	}{
		{
			name: "legacy table",
			src:  `Package(name: "P", platforms: [.macOS(.v10_15), .iOS(.v13), .watchOS(.v6), .tvOS(.v13)])`,
			want: map[string]string{"macOS": "5", "iOS": "3", "watchOS": "6", "tvOS": "3"},
		},
		{
			name: "unknown token passes through",
			src:  `Package(name: "P", platforms: [.visionOS(.v1), .iOS("16.0")])`,
			want: map[string]string{"visionOS": "v1", "iOS": "16.0"},
		},
		{
			name: "missing",
			src:  `Package(name: "P")`,
			want: nil,
		},
		{
			name: "empty",
			src:  `Package(name: "P", platforms: [])`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Read(tt.src).Platforms); diff != "" {
				t.Errorf("Platforms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadTargetsWithPath(t *testing.T) {
	m := Read(`Package(name: "P", targets: [.target(name: "Core", path: "Sources/CoreLib"), .binaryTarget(name: "Bin", path: "x.xcframework")])`)
	want := []Target{{Name: "Core", Type: TargetLibrary, Dependencies: []string{}, Path: "Sources/CoreLib"}}
	if diff := cmp.Diff(want, m.Targets); diff != "" {
		t.Errorf("Targets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDeclaration(t *testing.T) {
	tests := []struct {
		decl string
		want Dependency
		ok   bool
	}{
		{`.package(url: "https://github.com/a/b.git", from: "1.0.0")`, Dependency{Name: "b", URL: "https://github.com/a/b.git", Version: "1.0.0"}, true},
		{`  .package(path: "../z")  `, Dependency{Name: "z", Path: "../z"}, true},
		{`.product(name: "X", package: "y")`, Dependency{}, false},
		{`"just a string"`, Dependency{}, false},
		{``, Dependency{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseDeclaration(tt.decl)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseDeclaration(%q) = %+v, %v; want %+v, %v", tt.decl, got, ok, tt.want, tt.ok)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`let package = Package(name: "OnDisk")`), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if m.Name != "OnDisk" {
		t.Errorf("Name = %q", m.Name)
	}

	empty := filepath.Join(dir, "Empty.swift")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = ReadFile(empty)
	if err != nil {
		t.Fatalf("ReadFile(empty): %v", err)
	}
	if m.Name != DefaultName {
		t.Errorf("empty manifest Name = %q", m.Name)
	}

	_, err = ReadFile(filepath.Join(dir, "missing", FileName))
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("missing manifest error = %v, want MANIFEST_NOT_FOUND", err)
	}

	_, err = ReadFile(dir)
	if err == nil || errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("reading a directory should be an IO error, got %v", err)
	}
}
