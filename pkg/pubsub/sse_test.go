package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func publishStatuses(t *testing.T, pub *SSEPublisher, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		status := CatalogStatus{State: EventReady, Source: "file:catalog.yaml", Applications: i, Version: i}
		if err := PublishCatalogStatus(pub, status); err != nil {
			t.Fatalf("Failed to publish status %d: %v", i, err)
		}
	}
}

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Configure topic with buffer size 3, replay all
	pub.ConfigureTopic(TopicCatalogStatus, TopicConfig{
		BufferSize: 3,
		ReplayAll:  true,
	})

	publishStatuses(t, pub, 5)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicCatalogStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive last 3 events (3, 4, 5)
	for received := 1; received <= 3; received++ {
		select {
		case event := <-sub.Events():
			if want := received + 2; event.Version != want {
				t.Errorf("Expected version %d, got %d", want, event.Version)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", received)
		}
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic(TopicCatalogStatus, TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	publishStatuses(t, pub, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicCatalogStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive only the current state
	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
		var status CatalogStatus
		if err := json.Unmarshal(event.Data, &status); err != nil {
			t.Fatalf("Failed to decode status: %v", err)
		}
		if status.Applications != 3 || event.Type != EventReady {
			t.Errorf("Unexpected replayed status %+v (%s)", status, event.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	publishStatuses(t, pub, 3)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub, err := pub.Subscribe(ctx, TopicCatalogStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Nothing was buffered, so nothing is replayed
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}

	// A new event reaches the live subscriber
	if err := PublishCatalogStatus(pub, CatalogStatus{State: EventFailed, Message: "broken yaml"}); err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 || event.Type != EventFailed {
			t.Errorf("Expected failed event version 4, got %s version %d", event.Type, event.Version)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestClosedPublisher(t *testing.T) {
	pub := NewSSEPublisher()
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}

	if _, err := pub.Subscribe(context.Background(), TopicCatalogStatus); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on subscribe, got %v", err)
	}
	if err := PublishCatalogStatus(pub, CatalogStatus{State: EventReady}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on publish, got %v", err)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicCatalogStatus, Type: EventLoading, Data: json.RawMessage(`{"state":"loading"}`), Version: 1}

	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE() unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "data: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("Unexpected SSE frame %q", out)
	}
	if !strings.Contains(out, `"topic":"catalog_status"`) {
		t.Errorf("Expected topic in frame, got %q", out)
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	pub := NewSSEPublisher()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := pub.Subscribe(ctx, TopicCatalogStatus)
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("Expected no events on a cancelled subscription")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for the subscription to close")
	}

	// Closing again, and closing the publisher afterwards, must not panic
	if err := sub.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
}
