// Package graph projects the application graph onto a single route tag.
package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// TagView is the simple directed graph formed by the links that carry one
// route tag. Parallel links collapse into a single edge and gonum node IDs
// are the application handles.
type TagView struct {
	tag       string
	source    *model.Graph
	graph     *simple.DirectedGraph
	links     int
	selfLoops []model.AppID
}

// NewTagView builds the projection of g onto tag. Only applications touched
// by a tag-matching link become nodes.
func NewTagView(g *model.Graph, tag string) *TagView {
	tv := &TagView{
		tag:    tag,
		source: g,
		graph:  simple.NewDirectedGraph(),
	}
	if tag == "" {
		return tv
	}

	for _, edge := range g.Edges() {
		if !edge.Link.Tags().Has(tag) {
			continue
		}
		tv.links++
		tv.addApplication(edge.From)
		tv.addApplication(edge.To)

		// gonum's simple graphs reject self edges
		if edge.From == edge.To {
			if !slices.Contains(tv.selfLoops, edge.From) {
				tv.selfLoops = append(tv.selfLoops, edge.From)
			}
			continue
		}

		from, to := int64(edge.From), int64(edge.To)
		if !tv.graph.HasEdgeFromTo(from, to) {
			tv.graph.SetEdge(tv.graph.NewEdge(tv.graph.Node(from), tv.graph.Node(to)))
		}
	}
	slices.Sort(tv.selfLoops)

	return tv
}

func (tv *TagView) addApplication(id model.AppID) {
	if tv.graph.Node(int64(id)) == nil {
		tv.graph.AddNode(simple.Node(int64(id)))
	}
}

// Tag returns the route tag of the view
func (tv *TagView) Tag() string {
	return tv.tag
}

// Source returns the graph the view was projected from
func (tv *TagView) Source() *model.Graph {
	return tv.source
}

// Graph returns the underlying directed graph
func (tv *TagView) Graph() *simple.DirectedGraph {
	return tv.graph
}

// Links returns the number of tag-matching links, parallel links included
func (tv *TagView) Links() int {
	return tv.links
}

// SelfLoops returns the applications with a tag-matching link to themselves
func (tv *TagView) SelfLoops() []model.AppID {
	return tv.selfLoops
}

// Applications returns the applications of the view in handle order
func (tv *TagView) Applications() []model.AppID {
	var apps []model.AppID
	nodes := tv.graph.Nodes()
	for nodes.Next() {
		apps = append(apps, model.AppID(nodes.Node().ID()))
	}
	slices.Sort(apps)
	return apps
}

// Successors returns the applications directly reachable from id over the
// tag, in handle order
func (tv *TagView) Successors(id model.AppID) []model.AppID {
	if tv.graph.Node(int64(id)) == nil {
		return nil
	}

	var next []model.AppID
	iter := tv.graph.From(int64(id))
	for iter.Next() {
		next = append(next, model.AppID(iter.Node().ID()))
	}
	slices.Sort(next)
	return next
}

// Entries returns the applications no tag-matching link points into.
// These are the natural starting points of the route.
func (tv *TagView) Entries() []model.AppID {
	var entries []model.AppID
	for _, id := range tv.Applications() {
		if tv.graph.To(int64(id)).Len() == 0 {
			entries = append(entries, id)
		}
	}
	return entries
}

// Exits returns the applications without a tag-matching outgoing link
func (tv *TagView) Exits() []model.AppID {
	var exits []model.AppID
	for _, id := range tv.Applications() {
		if tv.graph.From(int64(id)).Len() == 0 && !slices.Contains(tv.selfLoops, id) {
			exits = append(exits, id)
		}
	}
	return exits
}

// Summary describes one route tag of a graph
type Summary struct {
	Tag          string   `json:"tag"`
	Applications int      `json:"applications"`
	Links        int      `json:"links"`
	Entries      []string `json:"entries"`
	Exits        []string `json:"exits"`
}

// Summarize builds the view of the tag and describes it
func Summarize(g *model.Graph, tag string) Summary {
	tv := NewTagView(g, tag)
	return Summary{
		Tag:          tag,
		Applications: len(tv.Applications()),
		Links:        tv.links,
		Entries:      names(g, tv.Entries()),
		Exits:        names(g, tv.Exits()),
	}
}

// Tags summarizes every route tag of g, sorted by tag
func Tags(g *model.Graph) []Summary {
	tags := g.RouteTags()
	summaries := make([]Summary, 0, len(tags))
	for _, tag := range tags {
		summaries = append(summaries, Summarize(g, tag))
	}
	return summaries
}

func names(g *model.Graph, ids []model.AppID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Name(id))
	}
	return out
}
