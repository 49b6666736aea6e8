package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/spmgraph/pkg/dag"
	"github.com/matzehuels/spmgraph/pkg/depgraph"
	"github.com/matzehuels/spmgraph/pkg/render/nodelink"
)

// Document is the JSON rendering of a pipeline result.
type Document struct {
	Projects []DocumentProject `json:"projects"`
	Edges    []depgraph.Edge   `json:"edges"`
	Order    [][]string        `json:"order"`
	Cycle    []string          `json:"cycle,omitempty"`
}

// DocumentProject is one project entry of a [Document].
type DocumentProject struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(document(res), "", "  ")
			data = append(data, '\n')
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(res.Graph, nodelink.Options{
					Detailed:  opts.Detailed,
					Ranked:    opts.Ranked,
					Highlight: cycleEdges(res.Cycle),
				})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func document(res *Result) Document {
	doc := Document{
		Projects: make([]DocumentProject, 0, len(res.Workspace.Projects)),
		Edges:    res.Edges,
		Order:    res.Order,
		Cycle:    res.Cycle,
	}
	if doc.Edges == nil {
		doc.Edges = []depgraph.Edge{}
	}
	if doc.Order == nil {
		doc.Order = [][]string{}
	}
	for _, p := range res.Workspace.Projects {
		doc.Projects = append(doc.Projects, DocumentProject{Name: p.Name, Root: p.Root})
	}
	return doc
}

func cycleEdges(cycle []string) []dag.Edge {
	var edges []dag.Edge
	for i := 0; i+1 < len(cycle); i++ {
		edges = append(edges, dag.Edge{From: cycle[i], To: cycle[i+1]})
	}
	return edges
}
