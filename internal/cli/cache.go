package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dump-package and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCacheDir returns the directory of the file cache configured for the
// workspace, or false when another backend is selected.
func (c *CLI) fileCacheDir() (string, bool, error) {
	cfg, _, err := workspace.LoadConfig(c.workspaceDir)
	if err != nil {
		return "", false, err
	}
	cfg = cfg.WithDefaults()
	if cfg.Cache.Backend != cacheBackendFile {
		return cfg.Cache.Backend, false, nil
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, true, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", false, fmt.Errorf("get cache dir: %w", err)
	}
	return dir, true, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			if !ok {
				printWarning("Cache backend is %q; only the file cache can be cleared", dir)
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, ok, err := c.fileCacheDir()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("cache backend %q has no directory", dir)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}
