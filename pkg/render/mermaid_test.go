package render

import (
	"strings"
	"testing"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

// buildPaymentRoute builds AppA -> AppB -> AppC -> AppD and the single
// path that walks it
func buildPaymentRoute(t *testing.T) (*model.Graph, model.Path) {
	t.Helper()
	b := model.NewBuilder()
	a := b.AddApplication("AppA")
	bb := b.AddApplication("AppB")
	c := b.AddApplication("AppC")
	d := b.AddApplication("AppD")

	tags := model.NewRouteTags("payment_route")
	links := []struct {
		from, to model.AppID
		link     model.Link
	}{
		{a, bb, model.REST{Method: "GET", Endpoint: "/api/data", RouteTags: tags}},
		{bb, c, model.Kafka{Topic: "topic1", RouteTags: tags}},
		{c, d, model.Kafka{Topic: "topic2", RouteTags: tags}},
	}

	var path model.Path
	for _, l := range links {
		id, err := b.Connect(l.from, l.to, l.link)
		if err != nil {
			t.Fatalf("Connect() unexpected error: %v", err)
		}
		path = append(path, model.Hop{From: l.from, To: l.to, Edge: id, Link: l.link})
	}
	return b.Graph(), path
}

func TestMermaidPaymentRoute(t *testing.T) {
	g, path := buildPaymentRoute(t)

	got := Mermaid(g, []model.Path{path})
	want := "```mermaid\n" +
		"graph TD\n" +
		"    AppA -->|REST API - Method: GET - Endpoint: /api/data| AppB\n" +
		"    AppB -->|Kafka - Topic: topic1| AppC\n" +
		"    AppC -->|Kafka - Topic: topic2| AppD\n" +
		"```"

	if got != want {
		t.Errorf("Mermaid() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMermaidEmpty(t *testing.T) {
	g, _ := buildPaymentRoute(t)

	if got := Mermaid(g, nil); got != "```mermaid\ngraph TD\n```" {
		t.Errorf("Expected header and footer only, got %q", got)
	}
}

func TestMermaidRepeatsSharedHops(t *testing.T) {
	g, path := buildPaymentRoute(t)

	got := Mermaid(g, []model.Path{path, path[1:], {}})
	lines := strings.Split(got, "\n")

	// header(2) + 3 + 2 hops + footer
	if len(lines) != 8 {
		t.Fatalf("Expected 8 lines, got %d:\n%s", len(lines), got)
	}
	if lines[5] != "    AppB -->|Kafka - Topic: topic1| AppC" {
		t.Errorf("Expected the second path to repeat the Kafka hop, got %q", lines[5])
	}
	if strings.Count(got, "AppB -->|Kafka - Topic: topic1| AppC") != 2 {
		t.Errorf("Expected the shared hop to be rendered twice")
	}
	if lines[7] != "```" {
		t.Errorf("Expected closing fence, got %q", lines[7])
	}
}

func TestDetailPerKind(t *testing.T) {
	tests := []struct {
		link model.Link
		want string
	}{
		{model.REST{Method: "POST", Endpoint: "/pay"}, "REST API - Method: POST - Endpoint: /pay"},
		{model.MQ{QueueName: "ledger.in"}, "MQ - Queue: ledger.in"},
		{model.Kafka{Topic: "orders"}, "Kafka - Topic: orders"},
		{model.GRPC{ServiceName: "billing.Billing"}, "gRPC - Service: billing.Billing"},
		{model.FileTransfer{FilePath: "/out/eod.csv"}, "File Transfer - File: /out/eod.csv"},
		{model.SOAP{WSDLURL: "http://core/ws?wsdl"}, "SOAP - WSDL: http://core/ws?wsdl"},
	}

	for _, tt := range tests {
		if got := Detail(tt.link); got != tt.want {
			t.Errorf("Detail(%T) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestRoutesView(t *testing.T) {
	g, path := buildPaymentRoute(t)

	views := Routes(g, []model.Path{path})
	if len(views) != 1 {
		t.Fatalf("Expected 1 route, got %d", len(views))
	}

	v := views[0]
	if strings.Join(v.Applications, ",") != "AppA,AppB,AppC,AppD" {
		t.Errorf("Unexpected applications %v", v.Applications)
	}
	if len(v.Hops) != 3 {
		t.Fatalf("Expected 3 hops, got %d", len(v.Hops))
	}

	first := v.Hops[0].Link
	if first.Type != "RESTAPI" || first.Method != "GET" || first.Endpoint != "/api/data" {
		t.Errorf("Unexpected REST link view %+v", first)
	}
	if len(first.RouteTags) != 1 || first.RouteTags[0] != "payment_route" {
		t.Errorf("Unexpected route tags %v", first.RouteTags)
	}
	if v.Hops[1].Link.Topic != "topic1" || v.Hops[1].Link.Method != "" {
		t.Errorf("Unexpected Kafka link view %+v", v.Hops[1].Link)
	}

	if empty := Routes(g, nil); empty == nil || len(empty) != 0 {
		t.Errorf("Expected an empty, non-nil list, got %v", empty)
	}
}
