// Package render turns discovered routes into diagrams and JSON views.
package render

import (
	"strings"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

const (
	mermaidHeader = "```mermaid\ngraph TD\n"
	mermaidFooter = "```"
)

// Detail returns the edge label for a link, e.g.
// "REST API - Method: GET - Endpoint: /api/data"
func Detail(link model.Link) string {
	return link.Kind().DisplayName() + " - " + link.Details()
}

// Mermaid renders paths as a fenced mermaid flowchart with one line per hop,
// in path order then hop order. Hops shared by several paths are repeated.
// The closing fence has no trailing newline.
func Mermaid(g *model.Graph, paths []model.Path) string {
	var sb strings.Builder
	sb.WriteString(mermaidHeader)

	for _, path := range paths {
		for _, hop := range path {
			sb.WriteString("    ")
			sb.WriteString(g.Name(hop.From))
			sb.WriteString(" -->|")
			sb.WriteString(Detail(hop.Link))
			sb.WriteString("| ")
			sb.WriteString(g.Name(hop.To))
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(mermaidFooter)
	return sb.String()
}
