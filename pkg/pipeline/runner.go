package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/dag/transform"
	"github.com/matzehuels/spmgraph/pkg/depgraph"
	"github.com/matzehuels/spmgraph/pkg/observability"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Querier depgraph.Querier
	// Toolchain identifies the swift version in dump cache keys.
	Toolchain string
	Logger    *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil querier leaves only the manifest strategy usable.
func NewRunner(c cache.Cache, keyer cache.Keyer, querier depgraph.Querier, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Querier: querier,
		Logger:  logger,
	}
}

// Execute runs the build → order → render pipeline over ws.
func (r *Runner) Execute(ctx context.Context, ws *workspace.Workspace, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{Workspace: ws}

	// Stage 1: Build
	buildStart := time.Now()
	edges, err := r.Build(ctx, ws, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Edges = edges
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.ProjectCount = len(ws.Projects)
	result.Stats.EdgeCount = len(edges)
	result.GraphHash = graphHash(ws, edges, opts)

	r.Logger.Info("built graph",
		"projects", len(ws.Projects),
		"edges", len(edges),
		"duration", result.Stats.BuildTime)

	// Stage 2: Order
	g := depgraph.ToDAG(ws, edges)
	result.Cycle = g.Cycle()
	stages, removed := transform.BuildOrder(g)
	rows := make(map[string]int, g.NodeCount())
	for i, stage := range stages {
		for _, id := range stage {
			rows[id] = len(stages) - 1 - i
		}
	}
	g.SetRows(rows)
	result.Graph = g
	result.Order = stages
	if len(removed) > 0 {
		r.Logger.Warn("dependency cycle", "path", result.Cycle)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build produces the edge list with the configured strategies.
func (r *Runner) Build(ctx context.Context, ws *workspace.Workspace, opts Options) ([]depgraph.Edge, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = ws.Config.Concurrency
	}
	b := depgraph.NewBuilder(r.strategies(opts), concurrency, r.Logger)
	return b.Build(ctx, ws, opts.Changed)
}

func (r *Runner) strategies(opts Options) []depgraph.Strategy {
	var out []depgraph.Strategy
	for _, name := range opts.Strategies {
		switch name {
		case StrategyDump:
			if r.Querier == nil {
				continue
			}
			s := &depgraph.DumpStrategy{Querier: r.Querier, Keyer: r.Keyer, Toolchain: r.Toolchain}
			if !opts.NoCache {
				s.Cache = r.Cache
			}
			out = append(out, s)
		case StrategyManifest:
			out = append(out, depgraph.ManifestStrategy{})
		}
	}
	return out
}

// RenderWithCacheInfo renders every requested format, serving artifacts
// from the cache when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if !opts.NoCache {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(res.GraphHash, opts.artifactFormat(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, res, opts)
	if err != nil {
		return nil, false, err
	}

	if !opts.NoCache {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(res.GraphHash, opts.artifactFormat(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLDump); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// graphHash identifies the rendered content: projects, edges and strategy
// order.
func graphHash(ws *workspace.Workspace, edges []depgraph.Edge, opts Options) string {
	type project struct {
		Name, Root string
	}
	projects := make([]project, len(ws.Projects))
	for i, p := range ws.Projects {
		projects[i] = project{p.Name, p.Root}
	}
	data, _ := json.Marshal(struct {
		Projects []project
		Edges    []depgraph.Edge
	}{projects, edges})
	return cache.NewDefaultKeyer().GraphKey(cache.Hash(data), graphKeyOpts(opts))
}
