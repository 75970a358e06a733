package routes

import (
	"context"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// FindRoutesFromAnywhere runs a goal-less search from every application as
// root, each with a fresh path and visited set, and concatenates the results
// in root order. Applications without a tag-matching outgoing link
// contribute nothing.
func (f *Finder) FindRoutesFromAnywhere(ctx context.Context, tag string) ([]model.Path, error) {
	return f.collect(ctx, model.NoApp, tag, &budget{ctx: ctx, max: f.opts.MaxExpansions})
}

// collect searches from every root except the goal itself
func (f *Finder) collect(ctx context.Context, goal model.AppID, tag string, b *budget) ([]model.Path, error) {
	all := make([]model.Path, 0)

	for _, app := range f.graph.Applications() {
		if app.ID == goal {
			continue
		}

		paths, err := f.findRoutes(ctx, app.ID, goal, tag, b)
		if err != nil {
			return nil, err
		}
		all = append(all, paths...)
	}

	f.log.Debug("collected routes", "tag", tag, "roots", f.graph.Len(), "paths", len(all))
	return all, nil
}
