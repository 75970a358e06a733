package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/preedep/appinterfaceviewer/pkg/logging"
	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// Source represents a catalog backend.
// Implementations read the catalog records and build the read-only graph.
type Source interface {
	// Name returns a short description of the source (e.g., "file:catalog.yaml").
	Name() string

	// Load reads the catalog and returns a freshly built graph.
	// It should respect the context for cancellation.
	Load(ctx context.Context) (*model.Graph, error)
}

// Load reads a graph from the source and logs its size
func Load(ctx context.Context, src Source) (*model.Graph, error) {
	log := logging.New("catalog")
	started := time.Now()

	g, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	log.Info("catalog loaded",
		"source", src.Name(),
		"applications", g.Len(),
		"links", g.EdgeCount(),
		"routes", len(g.RouteTags()),
		"durationMs", time.Since(started).Milliseconds(),
	)
	return g, nil
}
