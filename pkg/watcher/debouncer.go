package watcher

import (
	"context"
	"time"

	"github.com/preedep/appinterfaceviewer/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive reloads
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run merges events until the input has been quiet for quietPeriod, or
// maxWait has passed since the first pending event. A removal followed by a
// write collapses into a modification: the file is back.
func (d *Debouncer) run(ctx context.Context) {
	var (
		quiet      = stoppedTimer()
		deadline   = stoppedTimer()
		pending    *ChangeEvent
		eventCount int
	)
	defer close(d.output)

	flush := func() {
		quiet.Stop()
		deadline.Stop()
		if pending == nil {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)
		pending.Timestamp = time.Now()
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}

		pending = nil
		eventCount = 0
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			if pending == nil {
				pending = &ChangeEvent{Type: event.Type}
				deadline.Reset(d.maxWait)
			}
			pending.Type = event.Type
			pending.Paths = append(pending.Paths, event.Paths...)
			eventCount++

			quiet.Reset(d.quietPeriod)

		case <-quiet.C:
			flush()

		case <-deadline.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}
