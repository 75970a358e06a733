// Package routes discovers tagged routes between applications.
//
// A route is a simple path whose links all carry the same route tag. The
// search is an exhaustive depth-first enumeration with backtracking, so its
// cost grows with the number of simple paths; Options bound it.
package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preedep/appinterfaceviewer/pkg/logging"
	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// contextCheckInterval is how many node expansions pass between deadline checks
const contextCheckInterval = 256

// Options bounds a search. Zero values mean unlimited.
type Options struct {
	// MaxExpansions caps the number of nodes expanded by one query,
	// summed over all roots.
	MaxExpansions int
}

// Finder runs route searches against one immutable graph. It holds no
// per-search state and is safe for concurrent use.
type Finder struct {
	graph *model.Graph
	opts  Options
	log   *slog.Logger
}

// NewFinder creates a finder for the graph
func NewFinder(g *model.Graph, opts Options) *Finder {
	return &Finder{
		graph: g,
		opts:  opts,
		log:   logging.New("routes"),
	}
}

// Graph returns the graph the finder searches
func (f *Finder) Graph() *model.Graph {
	return f.graph
}

// budget is shared by every root of one query
type budget struct {
	ctx        context.Context
	max        int
	expansions int
}

func (b *budget) spend() error {
	b.expansions++
	if b.max > 0 && b.expansions > b.max {
		return fmt.Errorf("%w: expanded more than %d nodes", ErrSearchBudgetExceeded, b.max)
	}
	if b.expansions%contextCheckInterval == 0 {
		if err := b.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSearchBudgetExceeded, err)
		}
	}
	return nil
}

// search is the mutable state of one depth-first search rooted at a single
// node: the current path, the visited set and the collected results. It
// must never be shared between concurrent searches.
type search struct {
	graph   *model.Graph
	goal    model.AppID // model.NoApp when the search has no goal
	tag     string      // "" means no tag: no edge is ever followed
	path    model.Path
	visited []bool
	results []model.Path
	budget  *budget
	log     *slog.Logger
	trace   bool
	err     error
}

func (f *Finder) newSearch(goal model.AppID, tag string, b *budget) *search {
	return &search{
		graph:   f.graph,
		goal:    goal,
		tag:     tag,
		path:    make(model.Path, 0, 8),
		visited: make([]bool, f.graph.Len()),
		budget:  b,
		log:     f.log,
		trace:   logging.Enabled(logging.LevelTrace),
	}
}

// find expands current. When a goal is set, a path is recorded only on
// reaching it. Without a goal, a path is recorded at every dead end: a node
// with no unvisited tag-matching outgoing link, reached by at least one hop.
func (s *search) find(current model.AppID) {
	if s.trace {
		s.log.Log(context.Background(), logging.LevelTrace, "visiting node", "app", s.graph.Name(current))
	}

	if s.goal != model.NoApp && current == s.goal {
		s.record()
		return
	}

	if err := s.budget.spend(); err != nil {
		s.err = err
		return
	}

	s.visited[current] = true

	followed := false
	for _, id := range s.graph.Outgoing(current) {
		edge := s.graph.Edge(id)

		if s.visited[edge.To] {
			if s.trace {
				s.log.Log(context.Background(), logging.LevelTrace, "node already visited, skipping",
					"app", s.graph.Name(edge.To))
			}
			continue
		}

		// No tag, no traversal
		if s.tag == "" || !edge.Link.Tags().Has(s.tag) {
			if s.trace {
				s.log.Log(context.Background(), logging.LevelTrace, "edge does not match route",
					"from", s.graph.Name(current), "to", s.graph.Name(edge.To), "via", edge.Link.Kind())
			}
			continue
		}

		followed = true
		s.path = append(s.path, model.Hop{From: current, To: edge.To, Edge: edge.ID, Link: edge.Link})
		s.find(edge.To)
		s.path = s.path[:len(s.path)-1]

		if s.err != nil {
			break
		}
	}

	s.visited[current] = false

	if s.err == nil && s.goal == model.NoApp && !followed && len(s.path) > 0 {
		s.record()
	}
}

func (s *search) record() {
	s.results = append(s.results, s.path.Clone())
	if s.trace {
		s.log.Log(context.Background(), logging.LevelTrace, "found valid route", "hops", len(s.path))
	}
}

// FindRoutes returns every simple path from start whose links all carry tag.
// With a goal (not model.NoApp) only paths ending at the goal are returned,
// and start == goal yields a single empty path. Without a goal, every
// maximal path is returned. An empty tag follows no links at all.
func (f *Finder) FindRoutes(ctx context.Context, start, goal model.AppID, tag string) ([]model.Path, error) {
	return f.findRoutes(ctx, start, goal, tag, &budget{ctx: ctx, max: f.opts.MaxExpansions})
}

func (f *Finder) findRoutes(ctx context.Context, start, goal model.AppID, tag string, b *budget) ([]model.Path, error) {
	if !f.graph.Has(start) {
		return nil, fmt.Errorf("%w: start %d", ErrUnknownNode, start)
	}
	if goal != model.NoApp && !f.graph.Has(goal) {
		return nil, fmt.Errorf("%w: goal %d", ErrUnknownNode, goal)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchBudgetExceeded, err)
	}

	s := f.newSearch(goal, tag, b)
	s.find(start)
	if s.err != nil {
		return nil, s.err
	}

	if s.results == nil {
		s.results = make([]model.Path, 0)
	}
	return s.results, nil
}
