// Package pubsub pushes catalog state changes to browser clients.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned when publishing to or subscribing on a closed publisher
var ErrClosed = errors.New("publisher is closed")

// Topics and event types published by the server
const (
	TopicCatalogStatus = "catalog_status"

	EventLoading = "loading"
	EventReady   = "ready"
	EventFailed  = "failed"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "catalog_status")
	Type    string          `json:"type"`    // Event type (e.g., "loading", "ready", "failed")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// CatalogStatus describes the catalog snapshot currently served
type CatalogStatus struct {
	State        string   `json:"state"`   // loading, ready, failed
	Message      string   `json:"message"` // Human-readable status message
	Source       string   `json:"source"`
	Applications int      `json:"applications"`
	Links        int      `json:"links"`
	RouteTags    []string `json:"route_tags"`
	Version      int      `json:"version"` // Incremented on every successful load
}

// PublishCatalogStatus publishes status on the catalog topic, using its
// State as event type
func PublishCatalogStatus(p Publisher, status CatalogStatus) error {
	return p.Publish(TopicCatalogStatus, status.State, status)
}
