package routes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// Mode describes which bounds a query supplies
type Mode string

const (
	ModeBetween  Mode = "between"  // start and goal
	ModeFrom     Mode = "from"     // start only
	ModeTo       Mode = "to"       // goal only
	ModeAnywhere Mode = "anywhere" // tag only
)

// Query asks for the routes carrying Tag, optionally bounded by Start and Goal.
// Absent bounds are model.NoApp.
type Query struct {
	Start model.AppID
	Goal  model.AppID
	Tag   string
}

// NewQuery creates an unbounded query for a route tag
func NewQuery(tag string) Query {
	return Query{Start: model.NoApp, Goal: model.NoApp, Tag: tag}
}

// Mode reports how the query is bounded
func (q Query) Mode() Mode {
	switch {
	case q.Start != model.NoApp && q.Goal != model.NoApp:
		return ModeBetween
	case q.Start != model.NoApp:
		return ModeFrom
	case q.Goal != model.NoApp:
		return ModeTo
	}
	return ModeAnywhere
}

// Validate checks the query against a graph before any traversal
func (q Query) Validate(g *model.Graph) error {
	if q.Start == model.NoApp && q.Goal == model.NoApp && q.Tag == "" {
		return ErrInvalidQuery
	}
	if q.Start != model.NoApp && !g.Has(q.Start) {
		return fmt.Errorf("%w: start %d", ErrUnknownNode, q.Start)
	}
	if q.Goal != model.NoApp && !g.Has(q.Goal) {
		return fmt.Errorf("%w: goal %d", ErrUnknownNode, q.Goal)
	}
	return nil
}

// ResolveQuery builds a query from catalog keys or application names.
// Blank start or goal means absent.
func ResolveQuery(g *model.Graph, start, goal, tag string) (Query, error) {
	q := NewQuery(strings.TrimSpace(tag))

	if start = strings.TrimSpace(start); start != "" {
		id, err := g.Lookup(start)
		if err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
		q.Start = id
	}
	if goal = strings.TrimSpace(goal); goal != "" {
		id, err := g.Lookup(goal)
		if err != nil {
			return q, fmt.Errorf("goal: %w", err)
		}
		q.Goal = id
	}

	if q.Start == model.NoApp && q.Goal == model.NoApp && q.Tag == "" {
		return q, ErrInvalidQuery
	}
	return q, nil
}

// Result holds the paths found by one query
type Result struct {
	Query      Query
	Mode       Mode
	Paths      []model.Path
	Expansions int
	Duration   time.Duration
}

// Hops returns the total number of hops over all paths
func (r *Result) Hops() int {
	n := 0
	for _, p := range r.Paths {
		n += len(p)
	}
	return n
}

// Run validates and executes a query:
//   - start and goal: paths from start that end at goal
//   - start only: maximal paths from start
//   - goal only: paths ending at goal, from every other application
//   - neither: maximal paths from every application
func (f *Finder) Run(ctx context.Context, q Query) (*Result, error) {
	if err := q.Validate(f.graph); err != nil {
		return nil, err
	}

	started := time.Now()
	b := &budget{ctx: ctx, max: f.opts.MaxExpansions}
	mode := q.Mode()

	var (
		paths []model.Path
		err   error
	)
	switch mode {
	case ModeBetween, ModeFrom:
		paths, err = f.findRoutes(ctx, q.Start, q.Goal, q.Tag, b)
	default:
		paths, err = f.collect(ctx, q.Goal, q.Tag, b)
	}
	if err != nil {
		f.log.Warn("route query failed", "mode", mode, "tag", q.Tag, "expansions", b.expansions, "error", err)
		return nil, err
	}

	res := &Result{
		Query:      q,
		Mode:       mode,
		Paths:      paths,
		Expansions: b.expansions,
		Duration:   time.Since(started),
	}
	f.log.Info("route query complete",
		"mode", mode,
		"tag", q.Tag,
		"paths", len(paths),
		"expansions", b.expansions,
		"durationMs", res.Duration.Milliseconds(),
	)
	return res, nil
}
