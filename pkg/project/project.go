// Package project infers the build-orchestration view of a Swift package:
// its type, tags and the build, test, lint and clean tasks a task runner
// would execute for it.
package project

import (
	"os"
	"path"
	"path/filepath"

	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// Project types.
const (
	TypeApplication = "application"
	TypeLibrary     = "library"
)

// Task names.
const (
	TaskBuild = "build"
	TaskTest  = "test"
	TaskLint  = "lint"
	TaskClean = "clean"
)

// Task is one runnable action. Inputs and outputs use the {projectRoot}
// placeholder.
type Task struct {
	Command   string   `json:"command"`
	Cwd       string   `json:"cwd"`
	Cache     bool     `json:"cache,omitempty"`
	Inputs    []string `json:"inputs,omitempty"`
	Outputs   []string `json:"outputs,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Config is the inferred project configuration. When the directory already
// carries a project.json or package.json only Tasks are populated.
type Config struct {
	Name        string          `json:"name,omitempty"`
	Root        string          `json:"root"`
	ProjectType string          `json:"projectType,omitempty"`
	SourceRoot  string          `json:"sourceRoot,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Tasks       map[string]Task `json:"targets"`
}

// Kind returns TypeApplication when m declares an executable target,
// otherwise TypeLibrary.
func Kind(m *manifest.Manifest) string {
	for _, t := range m.Targets {
		if t.Type == manifest.TargetExecutable {
			return TypeApplication
		}
	}
	return TypeLibrary
}

// Existing reports whether dir already holds a project.json or
// package.json.
func Existing(dir string) bool {
	for _, name := range []string{"project.json", "package.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Infer builds the configuration of p. cfg should have defaults applied.
func Infer(ws *workspace.Workspace, p *workspace.Project) Config {
	dir := ws.Abs(p.Root)
	cfg := ws.Config.WithDefaults()
	tasks := Tasks(dir, p.Root, p.Manifest, cfg)
	if Existing(dir) {
		return Config{Root: p.Root, Tasks: tasks}
	}
	kind := Kind(p.Manifest)
	return Config{
		Name:        p.Name,
		Root:        p.Root,
		ProjectType: kind,
		SourceRoot:  path.Join(p.Root, "Sources"),
		Tags:        []string{"lang:swift", "type:" + kind},
		Tasks:       tasks,
	}
}

// Tasks infers the tasks of the package in dir, whose workspace-relative
// root is root.
//
// build and clean are always present. test is added when enabled and the
// package has a Tests directory or declares a test target. lint is added
// when enabled.
func Tasks(dir, root string, m *manifest.Manifest, cfg workspace.Config) map[string]Task {
	tasks := map[string]Task{
		TaskBuild: {
			Command: cfg.BuildCommand,
			Cwd:     root,
			Cache:   true,
			Inputs: []string{
				"{projectRoot}/Package.swift",
				"{projectRoot}/Sources/**/*",
				"{projectRoot}/Package.resolved",
			},
			Outputs: []string{"{projectRoot}/.build"},
		},
		TaskClean: {
			Command: workspace.DefaultCleanCommand,
			Cwd:     root,
		},
	}
	if cfg.TestsEnabled() && hasTests(dir, m) {
		tasks[TaskTest] = Task{
			Command: cfg.TestCommand,
			Cwd:     root,
			Cache:   true,
			Inputs: []string{
				"{projectRoot}/Package.swift",
				"{projectRoot}/Sources/**/*",
				"{projectRoot}/Tests/**/*",
				"{projectRoot}/Package.resolved",
			},
			Outputs:   []string{"{projectRoot}/.build"},
			DependsOn: []string{"^build"},
		}
	}
	if cfg.LintEnabled() {
		tasks[TaskLint] = Task{
			Command: cfg.LintCommand,
			Cwd:     root,
			Cache:   true,
			Inputs: []string{
				"{projectRoot}/Sources/**/*.swift",
				"{projectRoot}/Tests/**/*.swift",
				"{projectRoot}/.swiftlint.yml",
			},
		}
	}
	return tasks
}

func hasTests(dir string, m *manifest.Manifest) bool {
	if info, err := os.Stat(filepath.Join(dir, "Tests")); err == nil && info.IsDir() {
		return true
	}
	return m.HasTestTarget()
}
