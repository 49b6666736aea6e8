package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spmgraph/pkg/manifest"
	"github.com/matzehuels/spmgraph/pkg/project"
)

// projectsCommand lists the discovered projects.
func (c *CLI) projectsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the Swift packages in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]project.Config, len(ws.Projects))
				for i, p := range ws.Projects {
					out[i] = project.Infer(ws, p)
				}
				return writeJSON(c.Out, out)
			}

			if len(ws.Projects) == 0 {
				printWarning("No Package.swift found under %s", ws.Root)
				return nil
			}
			rows := make([][]string, len(ws.Projects))
			for i, p := range ws.Projects {
				rows[i] = []string{
					p.Name,
					p.Root,
					project.Kind(p.Manifest),
					strconv.Itoa(len(p.Manifest.LocalDependencies())),
					strconv.Itoa(len(p.Manifest.Dependencies) - len(p.Manifest.LocalDependencies())),
				}
			}
			fmt.Fprintln(c.Out, renderTable([]string{"Name", "Root", "Type", "Local", "Remote"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print inferred project configurations as JSON")
	return cmd
}

// readCommand prints a parsed manifest.
func (c *CLI) readCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "read [Package.swift|project]",
		Short: "Print the parsed manifest as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if m, err := manifest.ReadFile(args[0]); err == nil {
					return writeJSON(c.Out, m)
				}
			}
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolveProject(ws, args)
			if err != nil {
				return err
			}
			return writeJSON(c.Out, p.Manifest)
		},
	}
}

// inferCommand prints the inferred configuration of a project.
func (c *CLI) inferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "infer [project]",
		Short: "Print the inferred project configuration and tasks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.loadWorkspace(cmd.Context())
			if err != nil {
				return err
			}
			p, err := resolveProject(ws, args)
			if err != nil {
				return err
			}
			return writeJSON(c.Out, project.Infer(ws, p))
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
