package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/preedep/appinterfaceviewer/pkg/cycles"
	"github.com/preedep/appinterfaceviewer/pkg/graph"
	"github.com/preedep/appinterfaceviewer/pkg/pubsub"
	"github.com/preedep/appinterfaceviewer/pkg/render"
	"github.com/preedep/appinterfaceviewer/pkg/routes"
)

var errBadRequest = errors.New("bad request")

var validate = validator.New(validator.WithRequiredStructEnabled())

// routeRequest holds the query parameters of the route endpoints
type routeRequest struct {
	Tag   string `validate:"max=100"`
	Start string `validate:"max=255"`
	Goal  string `validate:"max=255"`
}

func parseRouteRequest(r *http.Request) (routeRequest, error) {
	q := r.URL.Query()
	req := routeRequest{
		Tag:   q.Get("tag"),
		Start: q.Get("start"),
		Goal:  q.Get("goal"),
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return req, fmt.Errorf("%w: %s must be at most %s characters", errBadRequest, verrs[0].Field(), verrs[0].Param())
		}
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return req, nil
}

// routeResponse is the body of /api/routes
type routeResponse struct {
	Mode       routes.Mode        `json:"mode"`
	Tag        string             `json:"tag"`
	Routes     []render.RouteView `json:"routes"`
	Expansions int                `json:"expansions"`
	DurationMs float64            `json:"durationMs"`
}

type statusResponse struct {
	Loaded       bool      `json:"loaded"`
	Source       string    `json:"source,omitempty"`
	Version      int       `json:"version"`
	LoadedAt     time.Time `json:"loadedAt,omitzero"`
	Applications int       `json:"applications"`
	Links        int       `json:"links"`
	RouteTags    []string  `json:"routeTags"`
}

func (s *Server) handleSubscribeCatalog(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*") // CORS support

	// Create subscription
	sub, err := s.publisher.Subscribe(r.Context(), pubsub.TopicCatalogStatus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	// Stream events
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			s.log.Debug("error writing SSE event", "error", err)
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		writeJSON(w, http.StatusOK, statusResponse{RouteTags: []string{}})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Loaded:       true,
		Source:       snap.source,
		Version:      snap.version,
		LoadedAt:     snap.loadedAt,
		Applications: snap.graph.Len(),
		Links:        snap.graph.EdgeCount(),
		RouteTags:    snap.graph.RouteTags(),
	})
}

func (s *Server) handleApplications(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		writeError(w, errNoCatalog)
		return
	}
	writeJSON(w, http.StatusOK, snap.graph.Applications())
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		writeError(w, errNoCatalog)
		return
	}
	writeJSON(w, http.StatusOK, graph.Tags(snap.graph))
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	snap := s.current.Load()
	if snap == nil {
		writeError(w, errNoCatalog)
		return
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		writeJSON(w, http.StatusOK, cycles.FindRouteCycles(snap.graph, tag))
		return
	}
	writeJSON(w, http.StatusOK, cycles.FindAllRouteCycles(snap.graph))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	snap, res, err := s.runQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{
		Mode:       res.Mode,
		Tag:        res.Query.Tag,
		Routes:     render.Routes(snap.graph, res.Paths),
		Expansions: res.Expansions,
		DurationMs: float64(res.Duration.Microseconds()) / 1000,
	})
}

func (s *Server) handleMermaid(w http.ResponseWriter, r *http.Request) {
	snap, res, err := s.runQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, render.Mermaid(snap.graph, res.Paths))
}

// runQuery resolves the request against the current snapshot and runs it,
// recording the outcome in the route metrics
func (s *Server) runQuery(r *http.Request) (*snapshot, *routes.Result, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, nil, errNoCatalog
	}

	req, err := parseRouteRequest(r)
	if err != nil {
		return nil, nil, err
	}

	q, err := routes.ResolveQuery(snap.graph, req.Start, req.Goal, req.Tag)
	if err != nil {
		return nil, nil, err
	}

	ctx := r.Context()
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := snap.finder.Run(ctx, q)
	if err != nil {
		s.metrics.RecordRouteQuery(string(q.Mode()), queryStatus(err), time.Since(started), 0, 0)
		return nil, nil, err
	}
	s.metrics.RecordRouteQuery(string(res.Mode), "success", res.Duration, len(res.Paths), res.Expansions)
	return snap, res, nil
}

func queryStatus(err error) string {
	if errors.Is(err, routes.ErrSearchBudgetExceeded) {
		return "budget_exceeded"
	}
	return "error"
}
