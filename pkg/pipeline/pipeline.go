// Package pipeline runs a full graph pass over a workspace: build the edges,
// derive the project graph, order it and render it.
//
// Both the graph and watch commands use it so that caching and rendering
// behave the same for a one-shot run and for a rebuild after a change.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, toolchain, logger)
//	result, err := runner.Execute(ctx, ws, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/dag"
	"github.com/matzehuels/spmgraph/pkg/depgraph"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Strategy names, in their default order.
const (
	StrategyDump     = "dump"
	StrategyManifest = "manifest"
)

// DefaultStrategies is the default strategy order: the toolchain query,
// then the manifest reader.
var DefaultStrategies = []string{StrategyDump, StrategyManifest}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Formats to render. Defaults to json.
	Formats []string `json:"formats,omitempty"`
	// Strategies in the order they are tried per manifest.
	Strategies []string `json:"strategies,omitempty"`
	// Concurrency bounds parallel manifests. Defaults to the workspace
	// configuration.
	Concurrency int `json:"concurrency,omitempty"`
	// Changed restricts the pass to changed files by project root. Nil
	// processes every manifest.
	Changed map[string][]string `json:"changed,omitempty"`
	// Detailed and Ranked are passed to the DOT renderer.
	Detailed bool `json:"detailed,omitempty"`
	Ranked   bool `json:"ranked,omitempty"`
	// NoCache bypasses dump and artifact caches.
	NoCache bool `json:"no_cache,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks formats and strategies and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if len(o.Strategies) == 0 {
		o.Strategies = DefaultStrategies
	}
	if err := ValidateStrategies(o.Strategies); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// artifactFormat qualifies a format with the render options that change its output.
func (o *Options) artifactFormat(format string) string {
	return fmt.Sprintf("%s;detailed=%t;ranked=%t", format, o.Detailed, o.Ranked)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Workspace *workspace.Workspace
	// Edges is the raw, non-deduplicated edge list.
	Edges []depgraph.Edge
	// Graph is the project graph derived from Edges, rows assigned.
	Graph *dag.DAG
	// GraphHash is the content hash of the edge list and project set.
	GraphHash string
	// Cycle is one dependency cycle, or nil.
	Cycle []string
	// Order groups project roots into build stages, dependencies first.
	Order [][]string
	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ProjectCount int
	EdgeCount    int
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategies checks strategy names.
func ValidateStrategies(names []string) error {
	for _, n := range names {
		if n != StrategyDump && n != StrategyManifest {
			return fmt.Errorf("invalid strategy: %q (must be one of: dump, manifest)", n)
		}
	}
	return nil
}

func graphKeyOpts(o Options) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{Strategies: o.Strategies}
}
