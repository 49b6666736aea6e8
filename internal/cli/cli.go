// Package cli implements the spmgraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spmgraph/pkg/buildinfo"
	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/observability/prom"
	"github.com/matzehuels/spmgraph/pkg/pipeline"
	"github.com/matzehuels/spmgraph/pkg/swift"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spmgraph"

	cacheBackendFile  = "file"
	cacheBackendRedis = "redis"
	cacheBackendNone  = "none"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command results; status lines go to stdout via the
	// print helpers.
	Out io.Writer

	workspaceDir string
	metricsFile  string
	registry     *prometheus.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "spmgraph manages Swift packages in a multi-package workspace",
		Long: `spmgraph discovers Swift packages in a workspace, reads and edits their
Package.swift manifests, and builds the dependency graph between them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.metricsFile != "" {
				c.registry = prometheus.NewRegistry()
				prom.New(c.registry).Install()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.workspaceDir, "workspace", "w", ".", "workspace root directory")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Register all subcommands
	root.AddCommand(c.projectsCommand())
	root.AddCommand(c.readCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.inferCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) writeMetrics() error {
	if c.metricsFile == "" || c.registry == nil {
		return nil
	}
	if err := prom.WriteFile(c.registry, c.metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "file", c.metricsFile)
	return nil
}

// =============================================================================
// Workspace & Runner Factory
// =============================================================================

// loadWorkspace reads the workspace configuration and discovers projects.
func (c *CLI) loadWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	cfg, path, err := workspace.LoadConfig(c.workspaceDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "file", path)
	}
	ws, err := workspace.Discover(ctx, c.workspaceDir, cfg.WithDefaults(), c.Logger)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("discovered workspace", "root", ws.Root, "projects", len(ws.Projects))
	return ws, nil
}

// toolchain returns the swift driver configured for ws.
func (c *CLI) toolchain(ws *workspace.Workspace) *swift.Toolchain {
	return swift.New(ws.Config.SwiftBinary, c.Logger)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, ws *workspace.Workspace, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ws.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	tc := c.toolchain(ws)
	r := pipeline.NewRunner(cc, nil, tc, c.Logger)
	if v, err := tc.Version(ctx); err == nil {
		r.Toolchain = v
	} else {
		c.Logger.Debug("swift toolchain unavailable", "err", err)
	}
	return r, nil
}

// newCache opens the configured cache backend.
func newCache(cfg workspace.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case cacheBackendNone:
		return cache.NewNullCache(), nil
	case cacheBackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
		return cache.NewRedisCache(cfg.RedisURL, appName+":")
	case "", cacheBackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", cfg.Backend)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spmgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}

// outputPath returns the file for one format. A single format is written
// to output as given; several formats share output's base name.
func outputPath(output, format string, multiple bool) string {
	if !multiple {
		return output
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}
