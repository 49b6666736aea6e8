package workspace

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
)

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".build":       true,
	".swiftpm":     true,
	"node_modules": true,
	"DerivedData":  true,
}

// Discover finds every project under root.
//
// When cfg.Projects is set only those roots are loaded. Otherwise the tree
// is walked, honoring the root .gitignore and cfg.Exclude. A manifest that
// cannot be read is logged and skipped.
func Discover(ctx context.Context, root string, cfg Config, logger *log.Logger) (*Workspace, error) {
	if logger == nil {
		logger = log.Default()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "workspace root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "workspace root %s is not a directory", root)
	}

	var roots []string
	if len(cfg.Projects) > 0 {
		for _, r := range cfg.Projects {
			roots = append(roots, cleanRoot(r))
		}
	} else {
		roots, err = walk(ctx, abs, newMatcher(abs, cfg.Exclude))
		if err != nil {
			return nil, err
		}
	}

	projects := make([]*Project, 0, len(roots))
	for _, r := range roots {
		p, err := LoadProject(abs, r)
		if err != nil {
			if len(cfg.Projects) > 0 {
				return nil, err
			}
			logger.Warn("skipping package", "root", r, "err", err)
			continue
		}
		logger.Debug("discovered project", "name", p.Name, "root", p.Root)
		projects = append(projects, p)
	}
	return New(abs, cfg, projects), nil
}

// LoadProject reads the manifest of the project at rel under root.
//
// The project is named after its manifest, or after its directory when the
// manifest declares no name.
func LoadProject(root, rel string) (*Project, error) {
	rel = cleanRoot(rel)
	m, err := manifest.ReadFile(filepath.Join(root, filepath.FromSlash(rel), manifest.FileName))
	if err != nil {
		return nil, err
	}
	name := m.Name
	if name == manifest.DefaultName {
		name = path.Base(rel)
		if rel == "." {
			name = filepath.Base(root)
		}
	}
	return &Project{Name: name, Root: rel, Manifest: m}, nil
}

func walk(ctx context.Context, root string, m *matcher) ([]string, error) {
	var roots []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (skipDirs[d.Name()] || m.ignored(rel, true)) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == manifest.FileName && !m.ignored(rel, false) {
			roots = append(roots, path.Dir(rel))
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "walk %s", root)
	}
	return roots, nil
}

type matcher struct {
	gitignore *ignore.GitIgnore
	exclude   *ignore.GitIgnore
}

func newMatcher(root string, exclude []string) *matcher {
	m := &matcher{}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		m.gitignore = gi
	}
	if len(exclude) > 0 {
		m.exclude = ignore.CompileIgnoreLines(exclude...)
	}
	return m
}

func (m *matcher) ignored(rel string, dir bool) bool {
	if dir {
		rel += "/"
	}
	if m.gitignore != nil && m.gitignore.MatchesPath(rel) {
		return true
	}
	return m.exclude != nil && m.exclude.MatchesPath(rel)
}
