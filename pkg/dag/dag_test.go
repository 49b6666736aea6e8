package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: %v", err)
	}
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: %v", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: %v", err)
	}
}

func TestParallelEdges(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "app"})
	_ = g.AddNode(Node{ID: "utils"})
	_ = g.AddEdge(Edge{From: "app", To: "utils"})
	_ = g.AddEdge(Edge{From: "app", To: "utils"})
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount = %d, want 2", g.EdgeCount())
	}
	g.RemoveEdge("app", "utils")
	if g.EdgeCount() != 0 || g.OutDegree("app") != 0 || g.InDegree("utils") != 0 {
		t.Errorf("RemoveEdge left %d edges", g.EdgeCount())
	}
}

func TestNodesSorted(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		_ = g.AddNode(Node{ID: id})
	}
	var got []string
	for _, n := range g.Nodes() {
		got = append(got, n.ID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("Nodes order (-want +got):\n%s", diff)
	}
}

func TestRows(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "b", Row: 1})
	_ = g.AddNode(Node{ID: "a", Row: 1})
	_ = g.AddNode(Node{ID: "top", Row: 0})
	g.SetRows(map[string]int{"top": 0, "missing": 3})
	want := [][]string{{"top"}, {"a", "b"}}
	if diff := cmp.Diff(want, g.Rows()); diff != "" {
		t.Errorf("Rows (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	g := New(Metadata{"k": "v"})
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	c := g.Clone()
	c.RemoveEdge("a", "b")
	if g.EdgeCount() != 1 {
		t.Error("Clone shares edge storage with the original")
	}
	if c.NodeCount() != 2 || c.Meta()["k"] != "v" {
		t.Error("Clone lost nodes or metadata")
	}
}

func TestCycleSelfLoop(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddEdge(Edge{From: "a", To: "a"})
	if diff := cmp.Diff([]string{"a", "a"}, g.Cycle()); diff != "" {
		t.Errorf("Cycle (-want +got):\n%s", diff)
	}
}

func TestSourcesSinks(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"cli", "app", "shared"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "app", To: "shared"})
	_ = g.AddEdge(Edge{From: "cli", To: "shared"})
	if len(g.Sources()) != 2 || g.Sources()[0].ID != "app" {
		t.Errorf("Sources = %v", g.Sources())
	}
	if len(g.Sinks()) != 1 || g.Sinks()[0].ID != "shared" {
		t.Errorf("Sinks = %v", g.Sinks())
	}
}
