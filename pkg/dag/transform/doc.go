// Package transform provides graph transformations over a project graph.
//
// [BreakCycles] removes back edges so that the graph becomes acyclic.
// SwiftPM rejects cyclic package dependencies, so a cycle in a workspace is
// a configuration error worth reporting; breaking it lets rendering and
// ordering proceed anyway.
//
// [AssignLayers] places every project one row below its lowest dependent
// (longest path from the sources).
//
// [BuildOrder] combines both into build stages: dependencies first, each
// stage free of internal edges.
package transform
