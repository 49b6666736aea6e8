// Package swift runs the Swift toolchain: build, test and lint commands for a
// project, and the dump-package query the graph builder consumes.
package swift

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spmgraph/pkg/errors"
)

// Toolchain invokes Swift tooling.
type Toolchain struct {
	// Binary is the swift driver, "swift" when empty.
	Binary string
	// Stdout and Stderr receive streamed command output. Nil means os.Stdout
	// and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// New returns a toolchain that uses binary as the swift driver.
func New(binary string, logger *log.Logger) *Toolchain {
	if logger == nil {
		logger = log.Default()
	}
	return &Toolchain{Binary: binary, Logger: logger}
}

func (t *Toolchain) binary() string {
	if t.Binary == "" {
		return "swift"
	}
	return t.Binary
}

func (t *Toolchain) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}

// Run executes a shell-style command line (such as "swift build -c
// release") with extra args appended, in dir. Output is streamed.
func (t *Toolchain) Run(ctx context.Context, dir, command string, args ...string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty command")
	}
	fields = append(fields, args...)
	if fields[0] == "swift" {
		fields[0] = t.binary()
	}
	full := strings.Join(fields, " ")

	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = dir
	cmd.Env = os.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = orDefault(t.Stdout, os.Stdout)
	cmd.Stderr = orDefault(t.Stderr, os.Stderr)

	t.logger().Info("executing", "cmd", full, "dir", dir)
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeExternalTool, err, "command failed: %s", full)
	}
	return nil
}

// DumpPackage runs `swift package dump-package` in dir and returns its
// standard output. Standard error is discarded.
func (t *Toolchain) DumpPackage(ctx context.Context, dir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.binary(), "package", "dump-package")
	cmd.Dir = dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "dump-package in %s", dir)
	}
	return stdout.Bytes(), nil
}

// Version returns the first line of `swift --version`.
func (t *Toolchain) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, t.binary(), "--version").Output()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeExternalTool, err, "%s --version", t.binary())
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}
