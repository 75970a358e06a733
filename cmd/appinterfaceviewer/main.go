package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/preedep/appinterfaceviewer/pkg/catalog"
	"github.com/preedep/appinterfaceviewer/pkg/config"
	"github.com/preedep/appinterfaceviewer/pkg/logging"
	"github.com/preedep/appinterfaceviewer/pkg/metrics"
	"github.com/preedep/appinterfaceviewer/pkg/output"
	"github.com/preedep/appinterfaceviewer/pkg/routes"
	"github.com/preedep/appinterfaceviewer/pkg/watcher"
	"github.com/preedep/appinterfaceviewer/pkg/web"
)

func main() {
	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.Setup(os.Stderr, level, cfg.JSONLogs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to open catalog", "error", err)
	}
	defer closeSource()

	if cfg.WebMode {
		err = serve(ctx, cfg, src)
	} else {
		err = query(ctx, cfg, src, os.Stdout, os.Stderr)
	}
	if err != nil {
		closeSource()
		logging.Fatal("appinterfaceviewer failed", "error", err)
	}
}

// openSource picks the database when a DSN is configured, the catalog file otherwise
func openSource(ctx context.Context, cfg *config.Config) (catalog.Source, func(), error) {
	if cfg.DSN == "" {
		return catalog.NewFileSource(cfg.Catalog), func() {}, nil
	}

	pool, err := catalog.OpenPool(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewPostgresSource(pool), pool.Close, nil
}

// query runs one route query and prints the result
func query(ctx context.Context, cfg *config.Config, src catalog.Source, stdout, stderr io.Writer) error {
	g, err := catalog.Load(ctx, src)
	if err != nil {
		return err
	}

	q, err := routes.ResolveQuery(g, cfg.Start, cfg.Goal, cfg.Tag)
	if err != nil {
		return err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	res, err := routes.NewFinder(g, routes.Options{MaxExpansions: cfg.MaxExpansions}).Run(ctx, q)
	if err != nil {
		return err
	}

	output.PrintRouteReport(stderr, g, res)

	switch cfg.Format {
	case config.FormatJSON:
		return output.WriteJSON(stdout, g, res)
	default:
		return output.WriteMermaid(stdout, g, res)
	}
}

// serve runs the web server, and the catalog watcher when enabled, until ctx is done
func serve(ctx context.Context, cfg *config.Config, src catalog.Source) error {
	server := web.NewServer(web.Options{
		Static:  cfg.Static,
		Search:  routes.Options{MaxExpansions: cfg.MaxExpansions},
		Timeout: cfg.Timeout,
	}, metrics.NewRegistry())

	// A broken catalog at startup is reported over /api/status; the server
	// still comes up so a watched file can be fixed in place.
	if err := server.Reload(ctx, src); err != nil {
		logging.Warn("initial catalog load failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx, cfg.Port)
	})

	if fileSrc, ok := src.(*catalog.FileSource); ok && cfg.Watch {
		g.Go(func() error {
			logging.Info("watching catalog for changes", "path", fileSrc.Path())
			return watcher.Watch(ctx, fileSrc.Path(), 500*time.Millisecond, 5*time.Second,
				func(ctx context.Context, event watcher.ChangeEvent) {
					if event.Type == watcher.ChangeTypeRemoved {
						logging.Warn("catalog file removed, keeping current catalog", "paths", event.Paths)
						return
					}
					_ = server.Reload(ctx, src)
				})
		})
	} else if cfg.Watch {
		logging.Warn("--watch only applies to catalog files, ignoring")
	}

	return g.Wait()
}
