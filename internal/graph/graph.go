// Package graph builds a dag over the fetched dependency edges so that
// suspicious shapes (cycles, self-requirements) can be reported and so the
// graph can be rendered for humans.
package graph

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/pyr-sh/dag"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
)

// DepGraph is the package dependency graph of one configure run.
type DepGraph struct {
	Graph *dag.AcyclicGraph
}

// New builds the dag from the direct dependency index. Every package gets
// a vertex, every requirement an edge from the requiring package. Edges
// leaving base packages are skipped, the structural twin of closure
// expansion treating them as endpoints.
func New(direct closure.DirectIndex, base mapset.Set) *DepGraph {
	graph := &dag.AcyclicGraph{}
	names := make([]string, 0, len(direct))
	for name := range direct {
		names = append(names, name)
	}
	// Insertion order shows up in dot output, so keep it stable.
	sort.Strings(names)
	for _, name := range names {
		graph.Add(name)
		if base.Contains(name) {
			continue
		}
		for _, dep := range direct[name] {
			graph.Add(dep)
			graph.Connect(dag.BasicEdge(name, dep))
		}
	}
	return &DepGraph{Graph: graph}
}

// Validate checks the graph for cycles and self-referential edges. We use
// Cycles instead of the dag library's Validate because a pip environment
// has many entrypoints and Validate mandates a single root. Callers treat
// a non-nil result as a warning; closure expansion tolerates both shapes.
func (g *DepGraph) Validate() error {
	cycles := g.Graph.Cycles()
	if len(cycles) > 0 {
		cycleLines := make([]string, len(cycles))
		for i, cycle := range cycles {
			vertices := make([]string, len(cycle))
			for j, vertex := range cycle {
				vertices[j] = vertex.(string)
			}
			cycleLines[i] = "\t" + strings.Join(vertices, ",")
		}
		return fmt.Errorf("cyclic dependency detected:\n%s", strings.Join(cycleLines, "\n"))
	}

	for _, e := range g.Graph.Edges() {
		if e.Source() == e.Target() {
			return fmt.Errorf("%s depends on itself", e.Source())
		}
	}
	return nil
}
