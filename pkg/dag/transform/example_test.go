package transform_test

import (
	"fmt"

	"github.com/matzehuels/spmgraph/pkg/dag"
	"github.com/matzehuels/spmgraph/pkg/dag/transform"
)

func ExampleAssignLayers() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "app"})
	_ = g.AddNode(dag.Node{ID: "lib"})
	_ = g.AddNode(dag.Node{ID: "core"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "lib"})
	_ = g.AddEdge(dag.Edge{From: "lib", To: "core"})

	transform.AssignLayers(g)

	app, _ := g.Node("app")
	lib, _ := g.Node("lib")
	core, _ := g.Node("core")

	fmt.Println("app row:", app.Row)
	fmt.Println("lib row:", lib.Row)
	fmt.Println("core row:", core.Row)
	// Output:
	// app row: 0
	// lib row: 1
	// core row: 2
}

func ExampleBreakCycles() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "A"})
	_ = g.AddNode(dag.Node{ID: "B"})
	_ = g.AddNode(dag.Node{ID: "C"})
	_ = g.AddEdge(dag.Edge{From: "A", To: "B"})
	_ = g.AddEdge(dag.Edge{From: "B", To: "C"})
	_ = g.AddEdge(dag.Edge{From: "C", To: "A"})

	fmt.Println("Edges before:", g.EdgeCount())
	removed := transform.BreakCycles(g)
	fmt.Println("Removed:", removed[0].From, "->", removed[0].To)
	fmt.Println("Edges after:", g.EdgeCount())
	// Output:
	// Edges before: 3
	// Removed: C -> A
	// Edges after: 2
}

func ExampleBuildOrder() {
	g := dag.New(nil)
	for _, id := range []string{"app", "cli", "net", "utils"} {
		_ = g.AddNode(dag.Node{ID: id})
	}
	_ = g.AddEdge(dag.Edge{From: "app", To: "net"})
	_ = g.AddEdge(dag.Edge{From: "app", To: "utils"})
	_ = g.AddEdge(dag.Edge{From: "net", To: "utils"})
	_ = g.AddEdge(dag.Edge{From: "cli", To: "utils"})

	stages, _ := transform.BuildOrder(g)
	for i, s := range stages {
		fmt.Println(i+1, s)
	}
	// Output:
	// 1 [utils]
	// 2 [net]
	// 3 [app cli]
}
