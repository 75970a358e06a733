package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownNode is returned when an application handle or key is not part of the graph
var ErrUnknownNode = errors.New("unknown application")

// ErrDuplicateApplication is returned when two applications share a catalog key
var ErrDuplicateApplication = errors.New("duplicate application")

// AppID is a stable index into the graph's application arena
type AppID int

// NoApp marks an absent application in optional positions (start, goal)
const NoApp AppID = -1

// EdgeID is a stable index into the graph's link arena
type EdgeID int

// Application is a node of the graph. It never changes once added.
type Application struct {
	ID       AppID  `json:"id"`
	Key      string `json:"key"`  // Catalog identity (app_id); defaults to Name
	Name     string `json:"name"` // Display name used in diagrams
	Category string `json:"category,omitempty"`
	Level    int    `json:"level,omitempty"`
}

// Edge connects exactly one source application to one target application
type Edge struct {
	ID   EdgeID
	From AppID
	To   AppID
	Link Link
}

// Hop is one step of a path: an edge together with its endpoints
type Hop struct {
	From AppID
	To   AppID
	Edge EdgeID
	Link Link
}

// Path is an ordered walk where hop i ends where hop i+1 starts
type Path []Hop

// Applications returns the applications visited by the path, in order
func (p Path) Applications() []AppID {
	if len(p) == 0 {
		return nil
	}
	apps := make([]AppID, 0, len(p)+1)
	apps = append(apps, p[0].From)
	for _, hop := range p {
		apps = append(apps, hop.To)
	}
	return apps
}

// Clone returns a copy that does not share the backing array
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Graph is a directed multigraph of applications and communication links.
// It is built once by a Builder and is read-only afterwards, so a single
// Graph can be shared by any number of concurrent searches.
type Graph struct {
	apps  []Application
	edges []Edge
	out   [][]EdgeID
	keys  map[string]AppID
}

// Len returns the number of applications
func (g *Graph) Len() int {
	return len(g.apps)
}

// EdgeCount returns the number of links
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Has reports whether id addresses an application of this graph
func (g *Graph) Has(id AppID) bool {
	return id >= 0 && int(id) < len(g.apps)
}

// Application returns the application with the given handle
func (g *Graph) Application(id AppID) (Application, bool) {
	if !g.Has(id) {
		return Application{}, false
	}
	return g.apps[id], true
}

// Name returns the display name of an application, or "" if unknown
func (g *Graph) Name(id AppID) string {
	if !g.Has(id) {
		return ""
	}
	return g.apps[id].Name
}

// Applications returns all applications in arena order
func (g *Graph) Applications() []Application {
	apps := make([]Application, len(g.apps))
	copy(apps, g.apps)
	return apps
}

// Edge returns the link with the given handle
func (g *Graph) Edge(id EdgeID) Edge {
	return g.edges[id]
}

// Edges returns all links in insertion order
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Outgoing returns the handles of the links leaving id, in insertion order.
// The returned slice is shared with the graph and must not be modified.
func (g *Graph) Outgoing(id AppID) []EdgeID {
	if !g.Has(id) {
		return nil
	}
	return g.out[id]
}

// Lookup resolves a catalog key, falling back to a display name match
func (g *Graph) Lookup(key string) (AppID, error) {
	if id, ok := g.keys[key]; ok {
		return id, nil
	}
	for _, app := range g.apps {
		if app.Name == key {
			return app.ID, nil
		}
	}
	return NoApp, fmt.Errorf("%w: %q", ErrUnknownNode, key)
}

// RouteTags returns every route tag used by any link, sorted
func (g *Graph) RouteTags() []string {
	seen := make(map[string]bool)
	for _, edge := range g.edges {
		for name := range edge.Link.Tags() {
			seen[name] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for name := range seen {
		tags = append(tags, name)
	}
	sort.Strings(tags)
	return tags
}

// Builder assembles a Graph. It must not be used after Graph is called.
type Builder struct {
	g *Graph
}

// NewBuilder creates a builder for an empty graph
func NewBuilder() *Builder {
	return &Builder{
		g: &Graph{
			apps:  make([]Application, 0),
			edges: make([]Edge, 0),
			out:   make([][]EdgeID, 0),
			keys:  make(map[string]AppID),
		},
	}
}

// AddApplication adds an application known only by name
func (b *Builder) AddApplication(name string) AppID {
	id, err := b.Add(Application{Key: name, Name: name})
	if err != nil {
		// Duplicate names are allowed; the first one keeps the key
		id = b.add(Application{Name: name})
	}
	return id
}

// Add adds a catalog application. The ID field is assigned by the builder.
func (b *Builder) Add(app Application) (AppID, error) {
	if app.Key == "" {
		app.Key = app.Name
	}
	if _, exists := b.g.keys[app.Key]; exists {
		return NoApp, fmt.Errorf("%w: %q", ErrDuplicateApplication, app.Key)
	}
	id := b.add(app)
	b.g.keys[app.Key] = id
	return id, nil
}

func (b *Builder) add(app Application) AppID {
	id := AppID(len(b.g.apps))
	app.ID = id
	b.g.apps = append(b.g.apps, app)
	b.g.out = append(b.g.out, nil)
	return id
}

// Connect adds a link from one application to another.
// Both endpoints must already be part of the graph.
func (b *Builder) Connect(from, to AppID, link Link) (EdgeID, error) {
	if !b.g.Has(from) {
		return -1, fmt.Errorf("%w: source %d", ErrUnknownNode, from)
	}
	if !b.g.Has(to) {
		return -1, fmt.Errorf("%w: target %d", ErrUnknownNode, to)
	}
	if link == nil {
		return -1, errors.New("link must not be nil")
	}
	id := EdgeID(len(b.g.edges))
	b.g.edges = append(b.g.edges, Edge{ID: id, From: from, To: to, Link: link})
	b.g.out[from] = append(b.g.out[from], id)
	return id, nil
}

// Graph returns the assembled, read-only graph
func (b *Builder) Graph() *Graph {
	g := b.g
	b.g = nil
	return g
}
