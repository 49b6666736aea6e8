package depgraph

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeQuerier serves dump-package output keyed by absolute directory.
type fakeQuerier struct {
	mu    sync.Mutex
	out   map[string]string
	calls int
}

func (f *fakeQuerier) DumpPackage(_ context.Context, dir string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out, ok := f.out[dir]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(out), nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const appManifest = `// swift-tools-version:5.9
import PackageDescription

let package = Package(
    name: "app",
    dependencies: [
        .package(url: "https://github.com/apple/swift-log.git", from: "1.5.0"),
        .package(path: "../utils"),
    ],
    targets: [
        .executableTarget(name: "app", dependencies: ["utils"]),
    ]
)
`

const utilsManifest = `let package = Package(
    name: "utils",
    dependencies: [
        .package(path: "../utils"),
    ],
    targets: [.target(name: "utils")]
)
`

// newWorkspace lays out app and utils side by side and returns the
// workspace plus a querier whose dump for app lists a filesystem dependency
// on utils and a by-name reference to it.
func newWorkspace(t *testing.T) (*workspace.Workspace, *fakeQuerier) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "app/Package.swift", appManifest)
	writeFile(t, root, "utils/Package.swift", utilsManifest)
	ws, err := workspace.Discover(context.Background(), root, workspace.Config{}, log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	q := &fakeQuerier{out: map[string]string{
		ws.Abs("app"): `{
  "name": "app",
  "dependencies": [
    {"sourceControl": [{"identity": "swift-log"}]},
    {"fileSystem": [{"identity": "utils", "path": "` + ws.Abs("utils") + `"}]}
  ],
  "targets": [
    {"name": "app", "type": "executable", "dependencies": [
      {"byName": ["utils", null]},
      {"product": ["Logging", "swift-log", null, null]},
      {"byName": ["app", null]},
      {"byName": ["APP", null]}
    ]}
  ]
}`,
		ws.Abs("utils"): `{"name": "utils", "dependencies": [{"fileSystem": [{"path": "` + ws.Abs("utils") + `"}]}], "targets": [{"name": "utils", "dependencies": [{"byName": ["Utils", null]}]}]}`,
	}}
	return ws, q
}

func quiet() *log.Logger { return log.New(io.Discard) }

func TestBuildDuplicateEdges(t *testing.T) {
	ws, q := newWorkspace(t)
	b := NewBuilder([]Strategy{&DumpStrategy{Querier: q}, ManifestStrategy{}}, 2, quiet())

	edges, err := b.Build(context.Background(), ws, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []Edge{
		{Source: "app", Target: "utils", SourceFile: "app/Package.swift"},
		{Source: "app", Target: "utils", SourceFile: "app/Package.swift"},
	}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNeverSelfEdges(t *testing.T) {
	ws, q := newWorkspace(t)
	for _, strategies := range [][]Strategy{
		{&DumpStrategy{Querier: q}},
		{ManifestStrategy{}},
	} {
		edges, err := NewBuilder(strategies, 1, quiet()).Build(context.Background(), ws, nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range edges {
			if strings.EqualFold(e.Source, e.Target) {
				t.Errorf("%s: self edge %+v", strategies[0].Name(), e)
			}
		}
	}
}

func TestBuildFallsBackToManifest(t *testing.T) {
	ws, _ := newWorkspace(t)
	failing := &fakeQuerier{}
	b := NewBuilder([]Strategy{&DumpStrategy{Querier: failing}, ManifestStrategy{}}, 4, quiet())

	edges, err := b.Build(context.Background(), ws, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []Edge{{Source: "app", Target: "utils", SourceFile: "app/Package.swift"}}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if failing.calls != 2 {
		t.Errorf("querier called %d times, want once per manifest", failing.calls)
	}
}

func TestBuildUnparsableDumpFallsBack(t *testing.T) {
	ws, q := newWorkspace(t)
	q.out[ws.Abs("app")] = "warning: something\n{"
	b := NewBuilder([]Strategy{&DumpStrategy{Querier: q}, ManifestStrategy{}}, 1, quiet())
	edges, err := b.Build(context.Background(), ws, map[string][]string{"app": {"app/Package.swift"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 1 {
		t.Errorf("edges = %+v, want the single manifest edge", edges)
	}
}

func TestBuildAllStrategiesFail(t *testing.T) {
	ws, _ := newWorkspace(t)
	if err := os.Remove(ws.Abs("app/Package.swift")); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder([]Strategy{&DumpStrategy{Querier: &fakeQuerier{}}, ManifestStrategy{}}, 1, quiet())
	edges, err := b.Build(context.Background(), ws, map[string][]string{"app": {"app/Package.swift"}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(edges) != 0 {
		t.Errorf("edges = %+v, want none", edges)
	}
}

func TestBuildChangedFilter(t *testing.T) {
	ws, q := newWorkspace(t)
	b := NewBuilder([]Strategy{&DumpStrategy{Querier: q}}, 1, quiet())
	changed := map[string][]string{
		"utils":   {"utils/Sources/utils/utils.swift", "utils/Package.swift"},
		"missing": {"missing/Package.swift"},
	}
	edges, err := b.Build(context.Background(), ws, changed)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Errorf("edges = %+v", edges)
	}
	if q.calls != 1 {
		t.Errorf("querier called %d times, want 1", q.calls)
	}
}

func TestUnitsOrder(t *testing.T) {
	ws := workspace.New("/ws", workspace.Config{}, []*workspace.Project{
		{Name: "b", Root: "b"},
		{Name: "a", Root: "a"},
	})
	units := Units(ws, map[string][]string{
		"b": {"b/Package.swift"},
		"a": {"a/Package.swift", "a/Sub/Package.swift"},
	})
	var files []string
	for _, u := range units {
		files = append(files, u.File)
	}
	if diff := cmp.Diff([]string{"a/Package.swift", "a/Sub/Package.swift", "b/Package.swift"}, files); diff != "" {
		t.Errorf("unit order (-want +got):\n%s", diff)
	}
}

func TestBuildCanceled(t *testing.T) {
	ws, q := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewBuilder([]Strategy{&DumpStrategy{Querier: q}}, 1, quiet()).Build(ctx, ws, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Build = %v, want context.Canceled", err)
	}
}

func TestDumpStrategyCache(t *testing.T) {
	ws, q := newWorkspace(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := &DumpStrategy{Querier: q, Cache: c, Toolchain: "swift-5.10"}
	u := Unit{Workspace: ws, File: "app/Package.swift"}
	u.Project, _ = ws.ProjectByRoot("app")

	first, err := s.Edges(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Edges(context.Background(), u)
	if err != nil {
		t.Fatal(err)
	}
	if q.calls != 1 {
		t.Errorf("querier called %d times, want 1", q.calls)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached edges differ (-first +second):\n%s", diff)
	}

	// Editing the manifest changes the key.
	writeFile(t, ws.Root, "app/Package.swift", appManifest+"// edited\n")
	if _, err := s.Edges(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if q.calls != 2 {
		t.Errorf("querier called %d times after edit, want 2", q.calls)
	}
}

func TestToDAG(t *testing.T) {
	ws, q := newWorkspace(t)
	edges, err := NewBuilder([]Strategy{&DumpStrategy{Querier: q}}, 1, quiet()).Build(context.Background(), ws, nil)
	if err != nil {
		t.Fatal(err)
	}
	g := ToDAG(ws, edges)
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("nodes %d, edges %d", g.NodeCount(), g.EdgeCount())
	}
	e := g.Edges()[0]
	if e.Meta["count"] != 2 {
		t.Errorf("count = %v, want 2", e.Meta["count"])
	}
	if diff := cmp.Diff([]string{"app/Package.swift"}, e.Meta["files"].([]string)); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	app, _ := g.Node("app")
	if app.Meta["type"] != "application" {
		t.Errorf("app type = %v", app.Meta["type"])
	}
}
