package depgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/spmgraph/pkg/cache"
	"github.com/matzehuels/spmgraph/pkg/observability"
)

// Querier returns the structured description of the package in dir.
type Querier interface {
	DumpPackage(ctx context.Context, dir string) ([]byte, error)
}

// DumpStrategy derives edges from dump-package output.
//
// When Cache is set, parsed output is cached under the hash of the manifest
// content and Toolchain, so an unchanged manifest is not re-queried.
type DumpStrategy struct {
	Querier   Querier
	Cache     cache.Cache
	Keyer     cache.Keyer
	Toolchain string
}

func (*DumpStrategy) Name() string { return "dump" }

// packageDump is the subset of dump-package output the graph needs. Remote
// dependencies (scm, sourceControl) are outside the workspace and ignored.
type packageDump struct {
	Name         string           `json:"name"`
	Dependencies []dumpDependency `json:"dependencies"`
	Targets      []dumpTarget     `json:"targets"`
}

type dumpDependency struct {
	FileSystem []struct {
		Path string `json:"path"`
	} `json:"fileSystem"`
}

type dumpTarget struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Dependencies []struct {
		// ByName is [name, condition].
		ByName []any `json:"byName"`
	} `json:"dependencies"`
}

func (s *DumpStrategy) Edges(ctx context.Context, u Unit) ([]Edge, error) {
	dir := u.Workspace.Abs(u.Dir())
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("package directory %s missing", dir)
	}
	d, err := s.dump(ctx, u, dir)
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for _, dep := range d.Dependencies {
		for _, fs := range dep.FileSystem {
			if fs.Path == "" {
				continue
			}
			target, ok := u.Workspace.ResolvePath(u.Dir(), fs.Path)
			if !ok {
				continue
			}
			if e, ok := u.edgeTo(target); ok {
				edges = append(edges, e)
			}
		}
	}
	for _, t := range d.Targets {
		for _, dep := range t.Dependencies {
			if len(dep.ByName) == 0 {
				continue
			}
			name, ok := dep.ByName[0].(string)
			if !ok || name == "" {
				continue
			}
			target, ok := u.Workspace.ProjectByName(name)
			if !ok {
				continue
			}
			if e, ok := u.edgeTo(target); ok {
				edges = append(edges, e)
			}
		}
	}
	return edges, nil
}

func (s *DumpStrategy) dump(ctx context.Context, u Unit, dir string) (*packageDump, error) {
	key := ""
	if s.Cache != nil {
		src, err := os.ReadFile(u.Workspace.Abs(u.File))
		if err != nil {
			return nil, err
		}
		keyer := s.Keyer
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		key = keyer.DumpKey(cache.Hash(src), s.Toolchain)
		if data, hit, err := s.Cache.Get(ctx, key); err == nil && hit {
			var d packageDump
			if err := json.Unmarshal(data, &d); err == nil {
				observability.Cache().OnCacheHit(ctx, "dump")
				return &d, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dump")
	}

	data, err := s.Querier.DumpPackage(ctx, dir)
	if err != nil {
		return nil, err
	}
	var d packageDump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dump-package output: %w", err)
	}
	if key != "" {
		if err := s.Cache.Set(ctx, key, data, cache.TTLDump); err == nil {
			observability.Cache().OnCacheSet(ctx, "dump", len(data))
		}
	}
	return &d, nil
}
