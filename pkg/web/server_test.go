package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preedep/appinterfaceviewer/pkg/metrics"
	"github.com/preedep/appinterfaceviewer/pkg/model"
	"github.com/preedep/appinterfaceviewer/pkg/routes"
)

func paymentGraph(t *testing.T) *model.Graph {
	t.Helper()
	b := model.NewBuilder()
	a := b.AddApplication("AppA")
	bb := b.AddApplication("AppB")
	c := b.AddApplication("AppC")
	d := b.AddApplication("AppD")

	tags := model.NewRouteTags("payment_route")
	for _, l := range []struct {
		from, to model.AppID
		link     model.Link
	}{
		{a, bb, model.REST{Method: "GET", Endpoint: "/api/data", RouteTags: tags}},
		{bb, c, model.Kafka{Topic: "topic1", RouteTags: tags}},
		{c, d, model.Kafka{Topic: "topic2", RouteTags: tags}},
		{d, c, model.MQ{QueueName: "replies", RouteTags: model.NewRouteTags("retry_route")}},
		{c, d, model.MQ{QueueName: "requests", RouteTags: model.NewRouteTags("retry_route")}},
	} {
		_, err := b.Connect(l.from, l.to, l.link)
		require.NoError(t, err)
	}
	return b.Graph()
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s := NewServer(opts, metrics.NewRegistry())
	s.SetGraph(paymentGraph(t), "test")
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRoutesEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s.Handler(), "/api/routes?tag=payment_route&start=AppA&goal=AppD")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		Mode   string `json:"mode"`
		Tag    string `json:"tag"`
		Routes []struct {
			Applications []string `json:"applications"`
			Hops         []struct {
				From string `json:"from"`
				To   string `json:"to"`
			} `json:"hops"`
		} `json:"routes"`
		Expansions int `json:"expansions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "between", body.Mode)
	assert.Equal(t, "payment_route", body.Tag)
	require.Len(t, body.Routes, 1)
	assert.Equal(t, []string{"AppA", "AppB", "AppC", "AppD"}, body.Routes[0].Applications)
	assert.Len(t, body.Routes[0].Hops, 3)
	assert.Positive(t, body.Expansions)
}

func TestRoutesEndpointNoMatchesIsEmptyList(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s.Handler(), "/api/routes?tag=unknown_route&start=AppA")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"routes":[]`)
}

func TestMermaidEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s.Handler(), "/api/routes/mermaid?tag=payment_route&start=AppA&goal=AppD")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	expected := "```mermaid\ngraph TD\n" +
		"    AppA -->|REST API - Method: GET - Endpoint: /api/data| AppB\n" +
		"    AppB -->|Kafka - Topic: topic1| AppC\n" +
		"    AppC -->|Kafka - Topic: topic2| AppD\n" +
		"```"
	assert.Equal(t, expected, rec.Body.String())
}

func TestRouteErrors(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		target string
		status int
	}{
		{"no bounds and no tag", Options{}, "/api/routes", http.StatusBadRequest},
		{"unknown start", Options{}, "/api/routes?tag=payment_route&start=Nope", http.StatusNotFound},
		{"unknown goal", Options{}, "/api/routes/mermaid?tag=payment_route&goal=Nope", http.StatusNotFound},
		{"tag too long", Options{}, "/api/routes?tag=" + strings.Repeat("x", 101), http.StatusBadRequest},
		{
			"budget exceeded",
			Options{Search: routes.Options{MaxExpansions: 1}},
			"/api/routes?tag=payment_route&start=AppA&goal=AppD",
			http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.opts)
			rec := get(t, s.Handler(), tt.target)
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestEndpointsBeforeCatalogLoaded(t *testing.T) {
	s := NewServer(Options{}, nil)

	for _, target := range []string{"/api/applications", "/api/tags", "/api/cycles", "/api/routes?tag=x"} {
		rec := get(t, s.Handler(), target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}

	rec := get(t, s.Handler(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loaded":false`)
}

func TestApplicationsAndTags(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s.Handler(), "/api/applications")
	require.Equal(t, http.StatusOK, rec.Code)
	var apps []model.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	assert.Len(t, apps, 4)
	assert.Equal(t, "AppA", apps[0].Name)

	rec = get(t, s.Handler(), "/api/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []struct {
		Tag   string `json:"tag"`
		Links int    `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "payment_route", tags[0].Tag)
	assert.Equal(t, 3, tags[0].Links)
	assert.Equal(t, "retry_route", tags[1].Tag)
}

func TestCyclesEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	rec := get(t, s.Handler(), "/api/cycles?tag=retry_route")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []struct {
		Tag          string   `json:"tag"`
		Applications []string `json:"applications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.ElementsMatch(t, []string{"AppC", "AppD"}, found[0].Applications)

	rec = get(t, s.Handler(), "/api/cycles?tag=payment_route")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

type stubSource struct {
	graph *model.Graph
	err   error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Load(ctx context.Context) (*model.Graph, error) {
	return s.graph, s.err
}

func TestReloadKeepsPreviousCatalogOnFailure(t *testing.T) {
	s := newTestServer(t, Options{})

	err := s.Reload(context.Background(), stubSource{err: errors.New("connection refused")})
	require.Error(t, err)

	rec := get(t, s.Handler(), "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"test"`)
	assert.Contains(t, rec.Body.String(), `"version":1`)

	b := model.NewBuilder()
	b.AddApplication("Solo")
	require.NoError(t, s.Reload(context.Background(), stubSource{graph: b.Graph()}))

	rec = get(t, s.Handler(), "/api/status")
	assert.Contains(t, rec.Body.String(), `"source":"stub"`)
	assert.Contains(t, rec.Body.String(), `"version":2`)
	assert.Contains(t, rec.Body.String(), `"applications":1`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	get(t, s.Handler(), "/api/routes?tag=payment_route&start=AppA")
	rec := get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `appviewer_route_queries_total{mode="from",status="success"} 1`)
	assert.Contains(t, body, `appviewer_http_requests_total{method="GET",path="/api/routes",status="200"} 1`)
	assert.Contains(t, body, "appviewer_catalog_applications 4")
}

func TestSubscribeCatalogReplaysCurrentState(t *testing.T) {
	s := newTestServer(t, Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/subscribe/catalog", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	line, err := readDataLine(bufio.NewReader(resp.Body))
	require.NoError(t, err)

	var event struct {
		Topic string `json:"topic"`
		Type  string `json:"type"`
		Data  struct {
			State        string `json:"state"`
			Applications int    `json:"applications"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &event))
	assert.Equal(t, "catalog_status", event.Topic)
	assert.Equal(t, "ready", event.Type)
	assert.Equal(t, 4, event.Data.Applications)
}

// readDataLine returns the payload of the first SSE data line
func readDataLine(r *bufio.Reader) (string, error) {
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			return strings.TrimSpace(payload), nil
		}
	}
}
