package swift

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spmgraph/pkg/errors"
)

// fakeSwift writes a shell script standing in for the swift driver.
func fakeSwift(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	p := filepath.Join(t.TempDir(), "swift")
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDumpPackage(t *testing.T) {
	bin := fakeSwift(t, `echo '{"name":"App"}'; echo noise >&2`)
	tc := New(bin, log.New(io.Discard))
	out, err := tc.DumpPackage(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("DumpPackage: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != `{"name":"App"}` {
		t.Errorf("DumpPackage = %q", got)
	}
}

func TestDumpPackageFailure(t *testing.T) {
	bin := fakeSwift(t, "exit 1\n")
	tc := New(bin, log.New(io.Discard))
	if _, err := tc.DumpPackage(context.Background(), t.TempDir()); !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Errorf("got %v, want EXTERNAL_TOOL", err)
	}

	tc = New(filepath.Join(t.TempDir(), "missing"), log.New(io.Discard))
	if _, err := tc.DumpPackage(context.Background(), t.TempDir()); !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Errorf("missing binary: got %v, want EXTERNAL_TOOL", err)
	}
}

func TestRun(t *testing.T) {
	bin := fakeSwift(t, `echo "$@"; pwd`)
	dir := t.TempDir()
	var out bytes.Buffer
	tc := &Toolchain{Binary: bin, Stdout: &out, Stderr: io.Discard, Logger: log.New(io.Discard)}

	if err := tc.Run(context.Background(), dir, "swift build -c release", "--verbose"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", out.String())
	}
	if lines[0] != "build -c release --verbose" {
		t.Errorf("args = %q", lines[0])
	}
	wantDir, _ := filepath.EvalSymlinks(dir)
	if got, _ := filepath.EvalSymlinks(lines[1]); got != wantDir {
		t.Errorf("cwd = %q, want %q", lines[1], dir)
	}
}

func TestRunErrors(t *testing.T) {
	tc := &Toolchain{Stdout: io.Discard, Stderr: io.Discard, Logger: log.New(io.Discard)}
	if err := tc.Run(context.Background(), t.TempDir(), "  "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty command: got %v", err)
	}
	if err := tc.Run(context.Background(), t.TempDir(), "false"); !errors.Is(err, errors.ErrCodeExternalTool) {
		t.Errorf("failing command: got %v", err)
	}
}

func TestVersion(t *testing.T) {
	bin := fakeSwift(t, "echo 'Swift version 5.10 (swift-5.10-RELEASE)'\necho 'Target: x86_64'\n")
	v, err := New(bin, nil).Version(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != "Swift version 5.10 (swift-5.10-RELEASE)" {
		t.Errorf("Version = %q", v)
	}
}
