package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/preedep/appinterfaceviewer/pkg/model"
)

var (
	// ErrInvalidCatalog is returned when catalog records fail validation
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnknownMethod is returned for a communication method name that does
	// not map to a link kind
	ErrUnknownMethod = errors.New("unknown communication method")
)

// validate is a singleton validator instance
var validate = validator.New()

// ParseMethod maps a communication method name to a link kind.
// Matching ignores case, spaces, dashes and underscores, so "REST API",
// "restapi" and "File_Transfer" are all accepted.
func ParseMethod(name string) (model.Kind, error) {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))

	switch normalized {
	case "rest", "restapi":
		return model.KindREST, nil
	case "mq", "messagequeue":
		return model.KindMQ, nil
	case "kafka":
		return model.KindKafka, nil
	case "grpc":
		return model.KindGRPC, nil
	case "filetransfer":
		return model.KindFileTransfer, nil
	case "soap":
		return model.KindSOAP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// NewLink builds the link for a connection
func NewLink(conn Connection) (model.Link, error) {
	kind, err := ParseMethod(conn.MethodType.Name)
	if err != nil {
		return nil, err
	}

	info := conn.MethodInfo
	tags := model.NewRouteTags(conn.RouteNames...)

	require := func(field, value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s connection requires %s", ErrInvalidCatalog, kind.DisplayName(), field)
		}
		return nil
	}

	switch kind {
	case model.KindREST:
		if err := errors.Join(require("rest_api_http_method", info.RESTMethod), require("rest_api_http_uri", info.RESTEndpoint)); err != nil {
			return nil, err
		}
		return model.REST{Method: strings.ToUpper(info.RESTMethod), Endpoint: info.RESTEndpoint, RouteTags: tags}, nil
	case model.KindMQ:
		if err := require("mq_queue", info.MQQueue); err != nil {
			return nil, err
		}
		return model.MQ{QueueName: info.MQQueue, RouteTags: tags}, nil
	case model.KindKafka:
		if err := require("kafka_topic", info.KafkaTopic); err != nil {
			return nil, err
		}
		return model.Kafka{Topic: info.KafkaTopic, RouteTags: tags}, nil
	case model.KindGRPC:
		if err := require("grpc_service", info.GRPCService); err != nil {
			return nil, err
		}
		return model.GRPC{ServiceName: info.GRPCService, RouteTags: tags}, nil
	case model.KindFileTransfer:
		if err := require("file_path", info.FilePath); err != nil {
			return nil, err
		}
		return model.FileTransfer{FilePath: info.FilePath, RouteTags: tags}, nil
	default:
		if err := require("wsdl_url", info.WSDLURL); err != nil {
			return nil, err
		}
		return model.SOAP{WSDLURL: info.WSDLURL, RouteTags: tags}, nil
	}
}

// Validate checks the catalog records using their struct tags
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Namespace()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", e.Namespace(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", e.Namespace(), e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(msgs, "; "))
}

// Build validates the catalog and assembles the read-only route graph.
// Applications keep catalog order, then applications first seen in a
// connection follow in connection order. Links keep connection order.
func Build(c *Catalog) (*model.Graph, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	b := model.NewBuilder()
	ids := make(map[string]model.AppID, len(c.Applications))

	add := func(info AppInfo) error {
		name := info.Name
		if name == "" {
			name = info.AppID
		}
		id, err := b.Add(model.Application{
			Key:      info.AppID,
			Name:     name,
			Category: info.Category.Name,
			Level:    int(info.Level),
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		ids[info.AppID] = id
		return nil
	}

	for _, app := range c.Applications {
		if err := add(app); err != nil {
			return nil, err
		}
	}

	resolve := func(info AppInfo) (model.AppID, error) {
		if id, ok := ids[info.AppID]; ok {
			return id, nil
		}
		if info.Name == "" {
			return model.NoApp, fmt.Errorf("%w: %q", model.ErrUnknownNode, info.AppID)
		}
		if err := add(info); err != nil {
			return model.NoApp, err
		}
		return ids[info.AppID], nil
	}

	for i, conn := range c.Connections {
		from, err := resolve(conn.Start)
		if err != nil {
			return nil, fmt.Errorf("connection %d: app_start: %w", i, err)
		}
		to, err := resolve(conn.End)
		if err != nil {
			return nil, fmt.Errorf("connection %d: app_end: %w", i, err)
		}
		link, err := NewLink(conn)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		if _, err := b.Connect(from, to, link); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}

	return b.Graph(), nil
}
