package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spmgraph/pkg/errors"
	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/manifest/edit"
	"github.com/matzehuels/spmgraph/pkg/manifest/identity"
	"github.com/matzehuels/spmgraph/pkg/observability"
	"github.com/matzehuels/spmgraph/pkg/workspace"
)

// addOpts holds the command-line flags for the add command.
type addOpts struct {
	url      string
	version  string
	branch   string
	revision string
	local    string
	targets  []string
	product  string
	dryRun   bool
}

// addCommand adds a dependency to a project manifest.
func (c *CLI) addCommand() *cobra.Command {
	var o addOpts

	cmd := &cobra.Command{
		Use:   "add [project]",
		Short: "Add a remote or local dependency to a package",
		Long: `Add a remote or local dependency to a package.

The declaration is appended to the package dependencies and the dependency
is listed in the given targets, or in every non-test target when no
--target is passed. A local dependency names another workspace project.`,
		Example: `  spmgraph add App --url https://github.com/apple/swift-log.git --version 1.5.0 --product Logging
  spmgraph add App --local Utils --target App`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (o.url == "") == (o.local == "") {
				return errors.New(errors.ErrCodeInvalidInput, "exactly one of --url and --local is required")
			}
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolveProject(ws, args)
			if err != nil {
				return err
			}
			dep, err := o.dependency(ws, p)
			if err != nil {
				return err
			}
			if p.Manifest.DependencyExists(dep) {
				printWarning("%s already depends on %s", p.Name, dep.Name)
				return nil
			}

			err = c.editManifest(cmd.Context(), "add", ws, p, o.dryRun, func(text string) (edit.Result, error) {
				return edit.InsertDependency(text, dep, edit.InsertOptions{Targets: o.targets, Product: o.product})
			}, func(res edit.Result) {
				printSuccess("Added %s to %s", StyleHighlight.Render(res.Name), StyleHighlight.Render(p.Name))
				if len(res.Targets) > 0 {
					printDetail("Targets: %s", strings.Join(res.Targets, ", "))
				}
				if dep.IsRemote() {
					printNextStep("Resolve it with", "swift package resolve")
				}
			})
			return err
		},
	}

	cmd.Flags().StringVar(&o.url, "url", "", "remote package URL")
	cmd.Flags().StringVar(&o.version, "version", "", `version requirement (e.g. 1.2.0, exact: "1.2.0", "1.0.0"..<"2.0.0")`)
	cmd.Flags().StringVar(&o.branch, "branch", "", "track a branch instead of a version")
	cmd.Flags().StringVar(&o.revision, "revision", "", "pin a commit instead of a version")
	cmd.Flags().StringVar(&o.local, "local", "", "workspace project to depend on")
	cmd.Flags().StringSliceVarP(&o.targets, "target", "t", nil, "target to list the dependency in (repeatable)")
	cmd.Flags().StringVar(&o.product, "product", "", "product name to list in targets instead of the package name")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print the edited manifest instead of writing it")
	cmd.MarkFlagsMutuallyExclusive("version", "branch", "revision")
	cmd.MarkFlagsMutuallyExclusive("url", "local")
	return cmd
}

// dependency builds the dependency to insert into p.
func (o *addOpts) dependency(ws *workspace.Workspace, p *workspace.Project) (manifest.Dependency, error) {
	if o.local != "" {
		target, err := ws.Lookup(o.local)
		if err != nil {
			return manifest.Dependency{}, err
		}
		if target.Root == p.Root {
			return manifest.Dependency{}, errors.New(errors.ErrCodeInvalidInput, "%s cannot depend on itself", p.Name)
		}
		dep := manifest.NewLocalDependency(edit.RelativePath(p.Root, target.Root))
		dep.Name = target.Name
		return dep, nil
	}

	if err := errors.ValidateURL(o.url); err != nil {
		return manifest.Dependency{}, err
	}
	if o.version != "" {
		if err := edit.ValidateVersionConstraint(o.version); err != nil {
			return manifest.Dependency{}, err
		}
	}
	dep := manifest.NewRemoteDependency(o.url, o.version)
	dep.Name = identity.CanonicalName(o.url)
	dep.Branch = o.branch
	dep.Commit = o.revision
	return dep, nil
}

// removeCommand removes a dependency from a project manifest.
func (c *CLI) removeCommand() *cobra.Command {
	var (
		opts   edit.RemoveOptions
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "remove [project] <dependency>",
		Short: "Remove a dependency from a package",
		Long: `Remove a dependency, given by name, URL or path, from a package.

The dependency is removed from the given targets, or from every target when
no --target is passed. The package-level declaration is removed as well once
no target lists it, unless --keep-declaration is set.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			identifier := args[len(args)-1]
			p, err := resolveProject(ws, args[:len(args)-1])
			if err != nil {
				return err
			}

			return c.editManifest(cmd.Context(), "remove", ws, p, dryRun, func(text string) (edit.Result, error) {
				return edit.RemoveDependency(text, identifier, opts)
			}, func(res edit.Result) {
				printSuccess("Removed %s from %s", StyleHighlight.Render(res.Name), StyleHighlight.Render(p.Name))
				if len(res.Targets) > 0 {
					printDetail("Targets: %s", strings.Join(res.Targets, ", "))
				}
				switch {
				case res.DeclarationRemoved:
					printDetail("Package declaration removed")
				case len(res.StillUsedBy) > 0:
					printDetail("Declaration kept, still used by: %s", strings.Join(res.StillUsedBy, ", "))
				}
			})
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Targets, "target", "t", nil, "target to remove the dependency from (repeatable)")
	cmd.Flags().BoolVar(&opts.KeepDeclaration, "keep-declaration", false, "keep the package-level declaration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the edited manifest instead of writing it")
	return cmd
}

// editManifest applies fn to the manifest text of p and writes the result
// back, or prints it when dryRun is set. The edit outcome is reported to
// the edit hooks.
func (c *CLI) editManifest(ctx context.Context, op string, ws *workspace.Workspace, p *workspace.Project, dryRun bool, fn func(string) (edit.Result, error), report func(edit.Result)) (err error) {
	defer func() { observability.Edit().OnEdit(ctx, op, p.Root, err) }()

	path := ws.Abs(p.ManifestFile())
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifestNotFound, err, "manifest of %s", p.Name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}

	res, err := fn(string(data))
	if err != nil {
		return err
	}
	if dryRun {
		_, err = fmt.Fprint(c.Out, res.Text)
		return err
	}
	if err := os.WriteFile(path, []byte(res.Text), info.Mode().Perm()); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	c.Logger.Debug("wrote manifest", "file", path, "op", op)
	report(res)
	return nil
}
