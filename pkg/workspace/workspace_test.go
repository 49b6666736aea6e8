package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/spmgraph/pkg/errors"
)

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

func manifestNamed(name string) string {
	return `// swift-tools-version:5.9
import PackageDescription

let package = Package(
    name: "` + name + `",
    targets: [
        .target(name: "` + name + `"),
    ]
)
`
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "apps/App/Package.swift", manifestNamed("App"))
	writeFile(t, root, "packages/utils/Package.swift", manifestNamed("Utils"))
	writeFile(t, root, "packages/unnamed/Package.swift", "let package = Package()\n")
	writeFile(t, root, "packages/utils/.build/checkouts/dep/Package.swift", manifestNamed("Dep"))
	writeFile(t, root, "vendor/Thing/Package.swift", manifestNamed("Thing"))
	writeFile(t, root, "legacy/Old/Package.swift", manifestNamed("Old"))
	writeFile(t, root, ".gitignore", "vendor/\n")
	return root
}

func roots(w *Workspace) []string {
	var out []string
	for _, p := range w.Projects {
		out = append(out, p.Root)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := fixture(t)
	w, err := Discover(context.Background(), root, Config{Exclude: []string{"legacy"}}, quietLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"apps/App", "packages/unnamed", "packages/utils"}
	if diff := cmp.Diff(want, roots(w)); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}

	p, ok := w.ProjectByRoot("packages/unnamed")
	if !ok {
		t.Fatal("packages/unnamed not indexed")
	}
	if p.Name != "unnamed" {
		t.Errorf("unnamed package name = %q, want directory name", p.Name)
	}
	if got := p.ManifestFile(); got != "packages/unnamed/Package.swift" {
		t.Errorf("ManifestFile() = %q", got)
	}
}

func TestDiscoverExplicitProjects(t *testing.T) {
	root := fixture(t)
	w, err := Discover(context.Background(), root, Config{Projects: []string{"./vendor/Thing", "apps/App"}}, quietLogger())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{"apps/App", "vendor/Thing"}, roots(w)); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}

	_, err = Discover(context.Background(), root, Config{Projects: []string{"missing"}}, quietLogger())
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("missing explicit project: got %v, want MANIFEST_NOT_FOUND", err)
	}
}

func TestDiscoverRootPackage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Package.swift", "let package = Package()\n")
	w, err := Discover(context.Background(), root, Config{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Projects) != 1 || w.Projects[0].Root != "." {
		t.Fatalf("projects = %v", roots(w))
	}
	if w.Projects[0].Name != filepath.Base(w.Root) {
		t.Errorf("root package name = %q", w.Projects[0].Name)
	}
}

func TestDiscoverInvalidRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", "x")
	for _, r := range []string{filepath.Join(root, "nope"), filepath.Join(root, "file.txt")} {
		if _, err := Discover(context.Background(), r, Config{}, quietLogger()); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("Discover(%s) = %v, want INVALID_PATH", r, err)
		}
	}
}

func TestDiscoverCanceled(t *testing.T) {
	root := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Discover(ctx, root, Config{}, quietLogger()); err != context.Canceled {
		t.Errorf("Discover with canceled context = %v", err)
	}
}

func TestLookup(t *testing.T) {
	w := New("/ws", Config{}, []*Project{
		{Name: "App", Root: "apps/App"},
		{Name: "Utils", Root: "packages/utils"},
		{Name: "utils", Root: "other/Utils"},
	})
	tests := []struct {
		ref  string
		want string
	}{
		{"apps/App", "apps/App"},
		{"./apps/App", "apps/App"},
		{"App", "apps/App"},
		{"Utils", "packages/utils"},
		{"utils", "other/Utils"},
		{"apps/App/Package.swift", "apps/App"},
		{"/ws/packages/utils", "packages/utils"},
		{"/ws/packages/utils/Package.swift", "packages/utils"},
	}
	for _, tt := range tests {
		p, err := w.Lookup(tt.ref)
		if err != nil {
			t.Errorf("Lookup(%q): %v", tt.ref, err)
			continue
		}
		if p.Root != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.ref, p.Root, tt.want)
		}
	}

	if _, err := w.Lookup("Nope"); !errors.Is(err, errors.ErrCodeProjectNotFound) {
		t.Errorf("Lookup(Nope) = %v, want PROJECT_NOT_FOUND", err)
	}
	if _, err := w.Lookup(" "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Lookup(blank) = %v, want INVALID_INPUT", err)
	}
}

func TestResolvePath(t *testing.T) {
	w := New("/ws", Config{}, []*Project{
		{Name: "App", Root: "apps/App"},
		{Name: "Utils", Root: "packages/utils"},
	})
	tests := []struct {
		path string
		want string
	}{
		{"../../packages/utils", "packages/utils"},
		{"../../packages/utils/", "packages/utils"},
		{"/ws/packages/utils", "packages/utils"},
		{"../../../outside", ""},
		{"../Missing", ""},
	}
	for _, tt := range tests {
		p, ok := w.ResolvePath("apps/App", tt.path)
		got := ""
		if ok {
			got = p.Root
		}
		if got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReplace(t *testing.T) {
	w := New("/ws", Config{}, []*Project{{Name: "App", Root: "apps/App"}})
	w.Replace(&Project{Name: "Renamed", Root: "apps/App"})
	if len(w.Projects) != 1 {
		t.Fatalf("Replace duplicated project: %d", len(w.Projects))
	}
	if _, ok := w.ProjectByName("Renamed"); !ok {
		t.Error("name index not refreshed")
	}
	if _, ok := w.ProjectByName("App"); !ok {
		t.Error("base name index lost")
	}
}
