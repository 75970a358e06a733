// Package output writes route query results for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/preedep/appinterfaceviewer/pkg/model"
	"github.com/preedep/appinterfaceviewer/pkg/render"
	"github.com/preedep/appinterfaceviewer/pkg/routes"
)

// WriteMermaid writes the route diagram followed by a newline
func WriteMermaid(w io.Writer, g *model.Graph, res *routes.Result) error {
	_, err := fmt.Fprintln(w, render.Mermaid(g, res.Paths))
	return err
}

// WriteJSON writes the routes as an indented JSON array
func WriteJSON(w io.Writer, g *model.Graph, res *routes.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(render.Routes(g, res.Paths))
}

// PrintRouteReport prints a nicely formatted summary of a route query with colors
func PrintRouteReport(w io.Writer, g *model.Graph, res *routes.Result) {
	// Color definitions
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintln(w, "Application Interface Viewer - Route Report")
	bold.Fprintln(w, "===========================================")

	q := res.Query
	tag := q.Tag
	if tag == "" {
		tag = "(none)"
	}
	fmt.Fprintf(w, "Route tag: %s\n", tag)
	if q.Start != model.NoApp {
		fmt.Fprintf(w, "Start: %s\n", g.Name(q.Start))
	}
	if q.Goal != model.NoApp {
		fmt.Fprintf(w, "Goal: %s\n", g.Name(q.Goal))
	}
	fmt.Fprintf(w, "Mode: %s\n", res.Mode)
	fmt.Fprintln(w)

	if len(res.Paths) == 0 {
		yellow.Fprintln(w, "No routes found")
		if q.Tag == "" {
			cyan.Fprintln(w, "  Hint: links are only followed for a route tag, pass --tag")
		}
		return
	}

	for i, path := range res.Paths {
		cyan.Fprintf(w, "  #%d ", i+1)
		apps := path.Applications()
		for j, app := range apps {
			if j > 0 {
				fmt.Fprint(w, " -> ")
			}
			fmt.Fprint(w, g.Name(app))
		}
		fmt.Fprintf(w, " (%d hops)\n", len(path))
	}
	fmt.Fprintln(w)

	green.Fprintf(w, "Summary: %d route(s), %d hop(s), %d application(s) expanded in %s\n",
		len(res.Paths), res.Hops(), res.Expansions, res.Duration.Round(time.Microsecond))
}
