package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spmgraph/pkg/pipeline"
	"github.com/matzehuels/spmgraph/pkg/watch"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// graphOpts holds the command-line flags shared by graph and watch.
type graphOpts struct {
	formats    string
	output     string
	strategies string
	noCache    bool
	detailed   bool
	ranked     bool
}

func (o *graphOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&o.strategies, "strategy", "", "edge strategies in order: dump,manifest (default)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the dump-package and render caches")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "label projects with their roots (dot, svg)")
	cmd.Flags().BoolVar(&o.ranked, "ranked", false, "align projects of the same build stage (dot, svg)")
}

func (o *graphOpts) pipelineOptions(c *CLI) (pipeline.Options, error) {
	opts := pipeline.Options{
		Formats:  parseFormats(o.formats),
		Detailed: o.detailed,
		Ranked:   o.ranked,
		NoCache:  o.noCache,
		Logger:   c.Logger,
	}
	if o.strategies != "" {
		opts.Strategies = strings.Split(o.strategies, ",")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// graphCommand builds and renders the workspace dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var o graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the dependency graph between workspace packages",
		Long: `Build the dependency graph between workspace packages.

Each manifest is read with swift package dump-package when a toolchain is
available, falling back to parsing Package.swift directly. Edges are listed
once per declaration; the rendered graph collapses repeats into a count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := o.pipelineOptions(c)
			if err != nil {
				return err
			}
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), ws, o.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			return c.runGraph(cmd.Context(), runner, ws, opts, o.output)
		},
	}

	o.bind(cmd)
	return cmd
}

// runGraph executes the pipeline and writes its artifacts.
func (c *CLI) runGraph(ctx context.Context, runner *pipeline.Runner, ws *workspace.Workspace, opts pipeline.Options, output string) error {
	toStdout := output == "" && len(opts.Formats) == 1

	var spinner *Spinner
	if !toStdout && interactive() {
		spinner = newSpinner(ctx, os.Stderr, fmt.Sprintf("Building graph of %d projects...", len(ws.Projects)))
		spinner.Start()
	}
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, ws, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done("built graph", "projects", res.Stats.ProjectCount, "edges", res.Stats.EdgeCount)

	if toStdout {
		_, err := c.Out.Write(res.Artifacts[opts.Formats[0]])
		return err
	}

	if output == "" {
		output = appName
	}
	printSuccess("Graph built")
	printStats(res.Stats.ProjectCount, res.Stats.EdgeCount, len(res.Order), res.CacheInfo.RenderHit)
	if len(res.Cycle) > 0 {
		printWarning("%s dependency cycle: %s", iconCycle, strings.Join(res.Cycle, " → "))
	}
	for _, format := range opts.Formats {
		path := outputPath(output, format, len(opts.Formats) > 1)
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// orderCommand prints the build stages of the workspace.
func (c *CLI) orderCommand() *cobra.Command {
	var (
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print the build order of workspace packages",
		Long: `Print the build order of workspace packages, grouped into stages.

Packages in a stage depend only on packages in earlier stages. When the
graph has a cycle, one of its edges is set aside and the cycle is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), ws, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(cmd.Context(), ws, pipeline.Options{
				Formats: []string{pipeline.FormatJSON},
				NoCache: noCache,
				Logger:  c.Logger,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(c.Out, res.Order)
			}
			rows := make([][]string, len(res.Order))
			for i, stage := range res.Order {
				rows[i] = []string{fmt.Sprint(i + 1), strings.Join(stage, ", ")}
			}
			fmt.Fprintln(c.Out, renderTable([]string{"Stage", "Projects"}, rows))
			if len(res.Cycle) > 0 {
				printWarning("%s dependency cycle: %s", iconCycle, strings.Join(res.Cycle, " → "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print stages as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the dump-package cache")
	return cmd
}

// watchCommand rebuilds the graph whenever a manifest changes.
func (c *CLI) watchCommand() *cobra.Command {
	var o graphOpts

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the graph whenever a Package.swift changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := o.pipelineOptions(c)
			if err != nil {
				return err
			}
			if o.output == "" {
				o.output = appName
			}
			ws, err := c.loadWorkspace(ctx)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, ws, o.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := c.runGraph(ctx, runner, ws, opts, o.output); err != nil {
				return err
			}

			w, err := watch.New(ws, func(ctx context.Context, changed map[string][]string) {
				c.rebuild(ctx, runner, ws, opts, o.output, changed)
			}, c.Logger)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			printInfo("Watching %d projects, press Ctrl+C to stop", len(ws.Projects))
			select {
			case <-ctx.Done():
			case <-w.Done():
			}
			return nil
		},
	}

	o.bind(cmd)
	return cmd
}

// rebuild re-reads the changed projects, reports their new edges and
// rewrites the graph outputs.
func (c *CLI) rebuild(ctx context.Context, runner *pipeline.Runner, ws *workspace.Workspace, opts pipeline.Options, output string, changed map[string][]string) {
	for root := range changed {
		p, err := workspace.LoadProject(ws.Root, root)
		if err != nil {
			c.Logger.Warn("cannot reload project", "root", root, "err", err)
			delete(changed, root)
			continue
		}
		ws.Replace(p)
	}
	if len(changed) == 0 {
		return
	}

	incremental := opts
	incremental.Changed = changed
	edges, err := runner.Build(ctx, ws, incremental)
	if err != nil {
		c.Logger.Error("rebuild failed", "err", err)
		return
	}
	for _, e := range edges {
		c.Logger.Info("edge", "source", e.Source, "target", e.Target, "file", e.SourceFile)
	}

	if err := c.runGraph(ctx, runner, ws, opts, output); err != nil {
		c.Logger.Error("render failed", "err", err)
	}
}
