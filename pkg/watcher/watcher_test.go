package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte("applications: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan ChangeEvent, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 50*time.Millisecond, time.Second, func(_ context.Context, event ChangeEvent) {
			reloads <- event
		})
	}()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("applications: []\nconnections: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-reloads:
		if event.Type != ChangeTypeModified {
			t.Errorf("Expected modification, got %s", event.Type)
		}
		for _, p := range event.Paths {
			if filepath.Base(p) != "catalog.yaml" {
				t.Errorf("Unexpected path in change event: %s", p)
			}
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "catalog.yaml")

	err := Watch(context.Background(), path, time.Millisecond, time.Millisecond, func(context.Context, ChangeEvent) {})
	if err == nil {
		t.Fatal("Expected an error for a missing directory")
	}
}
