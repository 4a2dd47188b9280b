package workers

import (
	"contact-lab/contract"
	"contact-lab/domain/event"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// EventFanout delivers contact list events to registered sinks.
//
// Delivery is synchronous and follows registration order. A sink that fails
// or panics is logged and skipped; the remaining sinks still receive the event.
// Sinks may add or remove sinks while being called; the change applies to
// the next event.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	mu    sync.RWMutex
	log   *slog.Logger
	sinks []contract.EventSink
}

func NewEventFanout(log *slog.Logger) *EventFanout {
	return &EventFanout{log: log}
}

// Add registers a sink once. It returns false if it was already registered.
func (f *EventFanout) Add(sink contract.EventSink) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slices.Contains(f.sinks, sink) {
		return false
	}
	f.sinks = append(f.sinks, sink)
	return true
}

func (f *EventFanout) Remove(sink contract.EventSink) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := slices.Index(f.sinks, sink)
	if idx < 0 {
		return false
	}
	f.sinks = slices.Delete(f.sinks, idx, idx+1)
	return true
}

func (f *EventFanout) Sinks() []contract.EventSink {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.sinks)
}

// Fanout One sink after the other for each event
func (f *EventFanout) Fanout(ctx context.Context, evt event.ListEvent) {
	for _, sink := range f.Sinks() {
		if err := f.consume(ctx, sink, evt); err != nil {
			f.log.Error("Sink failed to consume event",
				"sink", fmt.Sprintf("%T", sink), "event", evt.Kind(), "error", err)
		}
	}
}

func (f *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.ListEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return sink.Consume(ctx, evt)
}
