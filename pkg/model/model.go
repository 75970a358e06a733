package model

import (
	"sort"
	"strings"
)

// Kind identifies how two applications communicate
type Kind string

const (
	KindREST         Kind = "RESTAPI"
	KindMQ           Kind = "MQ"
	KindKafka        Kind = "Kafka"
	KindGRPC         Kind = "gRPC"
	KindFileTransfer Kind = "File Transfer"
	KindSOAP         Kind = "SOAP"
)

// Kinds lists every communication kind in declaration order
var Kinds = []Kind{KindREST, KindMQ, KindKafka, KindGRPC, KindFileTransfer, KindSOAP}

// DisplayName returns the human label used in diagrams.
// Only the REST label differs from its raw form.
func (k Kind) DisplayName() string {
	if k == KindREST {
		return "REST API"
	}
	return string(k)
}

// RouteTags is the set of business routes a link participates in
type RouteTags map[string]struct{}

// NewRouteTags builds a tag set, ignoring blank names
func NewRouteTags(names ...string) RouteTags {
	tags := make(RouteTags, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tags[name] = struct{}{}
	}
	return tags
}

// Has reports whether the set contains the route tag
func (t RouteTags) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Names returns the tags in sorted order
func (t RouteTags) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Link is a communication method between two applications. The set of
// implementations is closed: every kind lives in this package and must
// provide its own detail text, so the renderer cannot miss a kind.
type Link interface {
	Kind() Kind
	Tags() RouteTags
	// Details returns the kind specific part of a diagram label,
	// e.g. "Topic: orders" for Kafka.
	Details() string

	link()
}

// REST is a synchronous HTTP call
type REST struct {
	Method    string
	Endpoint  string
	RouteTags RouteTags
}

func (l REST) Kind() Kind      { return KindREST }
func (l REST) Tags() RouteTags { return l.RouteTags }
func (l REST) Details() string { return "Method: " + l.Method + " - Endpoint: " + l.Endpoint }
func (REST) link()             {}

// MQ is a message queue hand-off
type MQ struct {
	QueueName string
	RouteTags RouteTags
}

func (l MQ) Kind() Kind      { return KindMQ }
func (l MQ) Tags() RouteTags { return l.RouteTags }
func (l MQ) Details() string { return "Queue: " + l.QueueName }
func (MQ) link()             {}

// Kafka is a topic the source produces to and the target consumes from
type Kafka struct {
	Topic     string
	RouteTags RouteTags
}

func (l Kafka) Kind() Kind      { return KindKafka }
func (l Kafka) Tags() RouteTags { return l.RouteTags }
func (l Kafka) Details() string { return "Topic: " + l.Topic }
func (Kafka) link()             {}

// GRPC is a call to a gRPC service
type GRPC struct {
	ServiceName string
	RouteTags   RouteTags
}

func (l GRPC) Kind() Kind      { return KindGRPC }
func (l GRPC) Tags() RouteTags { return l.RouteTags }
func (l GRPC) Details() string { return "Service: " + l.ServiceName }
func (GRPC) link()             {}

// FileTransfer is a batch file exchange
type FileTransfer struct {
	FilePath  string
	RouteTags RouteTags
}

func (l FileTransfer) Kind() Kind      { return KindFileTransfer }
func (l FileTransfer) Tags() RouteTags { return l.RouteTags }
func (l FileTransfer) Details() string { return "File: " + l.FilePath }
func (FileTransfer) link()             {}

// SOAP is a call against a WSDL described service
type SOAP struct {
	WSDLURL   string
	RouteTags RouteTags
}

func (l SOAP) Kind() Kind      { return KindSOAP }
func (l SOAP) Tags() RouteTags { return l.RouteTags }
func (l SOAP) Details() string { return "WSDL: " + l.WSDLURL }
func (SOAP) link()             {}
