package cli

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/pipeline"
	"github.com/matzehuels/spmgraph/pkg/project"
	"github.com/matzehuels/spmgraph/pkg/swift"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	cwd      string
	withDeps bool
}

// runCommand runs an inferred task of a project.
func (c *CLI) runCommand() *cobra.Command {
	var o runOpts

	cmd := &cobra.Command{
		Use:   "run <project> <build|test|lint|clean> [-- args...]",
		Short: "Run a project task with the Swift toolchain",
		Long: `Run a project task with the Swift toolchain.

Output is streamed. Arguments after -- are appended to the task command.
With --with-deps, the workspace packages the project depends on are built
first, stage by stage.`,
		Example: `  spmgraph run App build -- -c release
  spmgraph run Utils test --with-deps`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.loadWorkspace(ctx)
			if err != nil {
				return err
			}
			p, err := ws.Lookup(args[0])
			if err != nil {
				return err
			}
			taskName, extra := args[1], args[2:]

			task, ok := project.Infer(ws, p).Tasks[taskName]
			if !ok {
				return errors.New(errors.ErrCodeInvalidInput, "project %s has no %s task", p.Name, taskName)
			}

			tc := c.toolchain(ws)
			if o.withDeps && (taskName == project.TaskBuild || slices.Contains(task.DependsOn, "^build")) {
				if err := c.buildDependencies(ctx, tc, ws, p); err != nil {
					return err
				}
			}

			dir := ws.Abs(task.Cwd)
			if o.cwd != "" {
				dir = o.cwd
				if !filepath.IsAbs(dir) {
					dir = ws.Abs(dir)
				}
			}
			prog := newProgress(c.Logger)
			if err := tc.Run(ctx, dir, task.Command, extra...); err != nil {
				printError("%s %s failed", p.Name, taskName)
				return err
			}
			prog.done("task finished", "project", p.Name, "task", taskName)
			return nil
		},
	}

	cmd.Flags().StringVar(&o.cwd, "cwd", "", "run in this directory instead of the project root")
	cmd.Flags().BoolVar(&o.withDeps, "with-deps", false, "build workspace dependencies first")
	return cmd
}

// buildDependencies builds every workspace project p transitively depends
// on, one build stage at a time. Projects within a stage build in parallel.
func (c *CLI) buildDependencies(ctx context.Context, tc *swift.Toolchain, ws *workspace.Workspace, p *workspace.Project) error {
	runner, err := c.newRunner(ctx, ws, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, ws, pipeline.Options{Formats: []string{pipeline.FormatJSON}, Logger: c.Logger})
	if err != nil {
		return err
	}

	needed := map[string]bool{}
	var visit func(id string)
	visit = func(id string) {
		for _, child := range res.Graph.Children(id) {
			if !needed[child] {
				needed[child] = true
				visit(child)
			}
		}
	}
	visit(p.Root)
	delete(needed, p.Root)

	for i, stage := range res.Order {
		var roots []string
		for _, root := range stage {
			if needed[root] {
				roots = append(roots, root)
			}
		}
		if len(roots) == 0 {
			continue
		}
		printInfo("Stage %d: building %s", i+1, strings.Join(roots, ", "))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(ws.Config.Concurrency, 1))
		for _, root := range roots {
			g.Go(func() error {
				return tc.Run(gctx, ws.Abs(root), ws.Config.BuildCommand)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
