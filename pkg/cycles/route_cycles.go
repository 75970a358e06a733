// Package cycles reports route tags whose links loop back on themselves.
//
// Route searches never revisit an application, so a cycle does not break
// them, but it usually points at a catalog mistake or a retry loop worth
// knowing about.
package cycles

import (
	"github.com/preedep/appinterfaceviewer/pkg/graph"
	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// RouteCycle is a strongly connected group of applications within one route
type RouteCycle struct {
	Tag          string   `json:"tag"`
	Applications []string `json:"applications"`
}

// FindRouteCycles finds the cycles formed by the links carrying tag.
// An application linked to itself is reported as a cycle of one.
func FindRouteCycles(g *model.Graph, tag string) []RouteCycle {
	view := graph.NewTagView(g, tag)

	tarjan := NewTarjanSCC(view.Graph())
	sccs := tarjan.FindSCCs()

	cycles := make([]RouteCycle, 0, len(sccs)+len(view.SelfLoops()))
	for _, scc := range sccs {
		apps := make([]string, 0, len(scc))
		for _, nodeID := range scc {
			apps = append(apps, g.Name(model.AppID(nodeID)))
		}
		cycles = append(cycles, RouteCycle{Tag: tag, Applications: apps})
	}

	for _, id := range view.SelfLoops() {
		cycles = append(cycles, RouteCycle{Tag: tag, Applications: []string{g.Name(id)}})
	}

	return cycles
}

// FindAllRouteCycles runs FindRouteCycles for every route tag, in tag order
func FindAllRouteCycles(g *model.Graph) []RouteCycle {
	cycles := make([]RouteCycle, 0)
	for _, tag := range g.RouteTags() {
		cycles = append(cycles, FindRouteCycles(g, tag)...)
	}
	return cycles
}
