package depgraph

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/observability"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// DefaultConcurrency bounds the number of manifests processed at once.
const DefaultConcurrency = 8

// Builder runs strategies over the manifests of a workspace.
//
// A Builder holds no per-pass state and may be shared between goroutines.
type Builder struct {
	Strategies  []Strategy
	Concurrency int
	Logger      *log.Logger
}

// NewBuilder creates a builder trying strategies in order.
func NewBuilder(strategies []Strategy, concurrency int, logger *log.Logger) *Builder {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{Strategies: strategies, Concurrency: concurrency, Logger: logger}
}

// Units lists the manifests to process. changed maps project roots to the
// workspace-relative files that changed; only Package.swift files count.
// A nil map selects the manifest of every project.
//
// Units are ordered by project root, then by file order within a project.
func Units(ws *workspace.Workspace, changed map[string][]string) []Unit {
	var units []Unit
	if changed == nil {
		for _, p := range ws.Projects {
			units = append(units, Unit{Workspace: ws, Project: p, File: p.ManifestFile()})
		}
		return units
	}
	roots := make([]string, 0, len(changed))
	for r := range changed {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	for _, r := range roots {
		p, ok := ws.ProjectByRoot(r)
		if !ok {
			continue
		}
		for _, f := range changed[r] {
			if path.Base(f) != manifest.FileName {
				continue
			}
			units = append(units, Unit{Workspace: ws, Project: p, File: f})
		}
	}
	return units
}

// Build produces the edges for the changed manifests of ws (all manifests
// when changed is nil).
//
// A unit whose strategies all fail contributes no edges; the failure is
// logged at debug level and processing continues. Build only fails when ctx
// is done.
func (b *Builder) Build(ctx context.Context, ws *workspace.Workspace, changed map[string][]string) ([]Edge, error) {
	runID := uuid.NewString()
	logger := b.logger().With("run", runID[:8])
	units := Units(ws, changed)
	start := time.Now()
	observability.Graph().OnBuildStart(ctx, runID, len(units))
	logger.Debug("building graph", "units", len(units), "workers", b.concurrency())

	results := make([][]Edge, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency())
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.unit(gctx, logger, u)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	var edges []Edge
	if err == nil {
		for _, r := range results {
			for _, e := range r {
				if strings.EqualFold(e.Source, e.Target) {
					continue
				}
				edges = append(edges, e)
			}
		}
		logger.Debug("graph built", "edges", len(edges), "duration", time.Since(start))
	}
	observability.Graph().OnBuildComplete(ctx, runID, len(edges), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return edges, nil
}

func (b *Builder) unit(ctx context.Context, logger *log.Logger, u Unit) []Edge {
	var errs []error
	for _, s := range b.Strategies {
		start := time.Now()
		edges, err := s.Edges(ctx, u)
		observability.Graph().OnStrategy(ctx, s.Name(), len(edges), time.Since(start), err)
		if err == nil {
			logger.Debug("edges", "file", u.File, "strategy", s.Name(), "count", len(edges))
			return edges
		}
		logger.Debug(s.Name()+" strategy failed", "file", u.File, "err", err)
		errs = append(errs, err)
	}
	observability.Graph().OnUnitFailed(ctx, u.File)
	logger.Debug("no edges for manifest", "file", u.File, "err", errors.Join(errs...))
	return nil
}

func (b *Builder) concurrency() int {
	if b.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return b.Concurrency
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.Default()
	}
	return b.Logger
}
