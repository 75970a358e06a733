// Package web serves route queries, diagrams and catalog status over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/preedep/appinterfaceviewer/pkg/catalog"
	"github.com/preedep/appinterfaceviewer/pkg/logging"
	"github.com/preedep/appinterfaceviewer/pkg/metrics"
	"github.com/preedep/appinterfaceviewer/pkg/model"
	"github.com/preedep/appinterfaceviewer/pkg/pubsub"
	"github.com/preedep/appinterfaceviewer/pkg/routes"
)

// Options configures the server
type Options struct {
	// Static is the directory served under /statics/; empty disables it
	Static string
	// Search bounds every route query
	Search routes.Options
	// Timeout caps the duration of one route query; zero means none
	Timeout time.Duration
}

// snapshot is one immutable catalog generation. Queries load it once and
// never observe a reload half way.
type snapshot struct {
	graph    *model.Graph
	finder   *routes.Finder
	source   string
	version  int
	loadedAt time.Time
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	metrics   *metrics.Registry
	opts      Options
	current   atomic.Pointer[snapshot]
	versions  atomic.Int64
	log       *slog.Logger
}

// NewServer creates a new web server. A nil registry gets a private one.
func NewServer(opts Options, reg *metrics.Registry) *Server {
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	ssePublisher := pubsub.NewSSEPublisher()

	// catalog_status: buffer last 10 events, replay only last event to new subscribers
	ssePublisher.ConfigureTopic(pubsub.TopicCatalogStatus, pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false, // Only send current state
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
		metrics:   reg,
		opts:      opts,
		log:       logging.New("web"),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Publisher returns the catalog status publisher
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetGraph atomically replaces the served catalog and announces it
func (s *Server) SetGraph(g *model.Graph, source string) {
	snap := &snapshot{
		graph:    g,
		finder:   routes.NewFinder(g, s.opts.Search),
		source:   source,
		version:  int(s.versions.Add(1)),
		loadedAt: time.Now(),
	}
	s.current.Store(snap)
	s.metrics.RecordCatalogLoad(g.Len(), g.EdgeCount(), nil)

	status := pubsub.CatalogStatus{
		State:        pubsub.EventReady,
		Message:      fmt.Sprintf("Catalog loaded: %d applications, %d links", g.Len(), g.EdgeCount()),
		Source:       source,
		Applications: g.Len(),
		Links:        g.EdgeCount(),
		RouteTags:    g.RouteTags(),
		Version:      snap.version,
	}
	if err := pubsub.PublishCatalogStatus(s.publisher, status); err != nil {
		s.log.Warn("failed to publish catalog status", "error", err)
	}
}

// Reload loads the catalog from src and swaps it in. On failure the
// previous catalog stays in service and a failed status is published.
func (s *Server) Reload(ctx context.Context, src catalog.Source) error {
	_ = pubsub.PublishCatalogStatus(s.publisher, pubsub.CatalogStatus{
		State:   pubsub.EventLoading,
		Message: "Loading catalog",
		Source:  src.Name(),
	})

	g, err := catalog.Load(ctx, src)
	if err != nil {
		s.metrics.RecordCatalogLoad(0, 0, err)
		s.log.Error("catalog reload failed", "source", src.Name(), "error", err)

		status := pubsub.CatalogStatus{
			State:   pubsub.EventFailed,
			Message: err.Error(),
			Source:  src.Name(),
		}
		if snap := s.current.Load(); snap != nil {
			status.Applications = snap.graph.Len()
			status.Links = snap.graph.EdgeCount()
			status.Version = snap.version
		}
		_ = pubsub.PublishCatalogStatus(s.publisher, status)
		return err
	}

	s.SetGraph(g, src.Name())
	return nil
}

func (s *Server) setupRoutes() {
	s.router.Use(mux.MiddlewareFunc(logging.Middleware(s.metrics.ObserveRequest(routeTemplate))))

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/catalog", s.handleSubscribeCatalog).Methods("GET")

	// API routes - more specific routes must come first
	s.router.HandleFunc("/api/applications", s.handleApplications).Methods("GET")
	s.router.HandleFunc("/api/tags", s.handleTags).Methods("GET")
	s.router.HandleFunc("/api/routes/mermaid", s.handleMermaid).Methods("GET")
	s.router.HandleFunc("/api/routes", s.handleRoutes).Methods("GET")
	s.router.HandleFunc("/api/cycles", s.handleCycles).Methods("GET")
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")

	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	// Serve static files
	if s.opts.Static != "" {
		s.router.PathPrefix("/statics/").Handler(
			http.StripPrefix("/statics/", http.FileServer(http.Dir(s.opts.Static))))
	}
}

// routeTemplate labels metrics by route pattern, never by raw URL
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Start serves on port until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down web server")
	// Close subscriptions first so SSE handlers return
	s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}
