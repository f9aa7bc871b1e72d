package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/fuel-station-management/pkg/logger"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent is embedded by every fuel station event.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// Publisher is the side of the bus that services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventBus fans events out to in-process subscribers. Publish never blocks on handlers;
// Wait drains them on shutdown.
type EventBus struct {
	handlers map[string][]Handler
	logger   *slog.Logger
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

// subscribers returns a copy so handlers may Subscribe while an event is in flight.
func (eb *EventBus) subscribers(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	hs := eb.handlers[eventType]
	if len(hs) == 0 {
		return nil
	}
	return append([]Handler(nil), hs...)
}

func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.subscribers(event.EventType())
	if handlers == nil {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil
	}

	lg := eb.eventLogger(event)
	lg.Info("publishing event", "handlers_count", len(handlers))

	// handlers outlive the request that published the event
	ctx = logger.Into(context.WithoutCancel(ctx), lg)
	for _, handler := range handlers {
		eb.inflight.Add(1)
		go func(h Handler) {
			defer eb.inflight.Done()
			if err := eb.invoke(ctx, h, event); err != nil {
				lg.Error("event handler failed", "error", err)
			}
		}(handler)
	}

	return nil
}

// PublishSync runs handlers in subscription order and stops at the first failure.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	handlers := eb.subscribers(event.EventType())
	if handlers == nil {
		eb.logger.Debug("no handlers for event type", "event_type", event.EventType())
		return nil
	}

	lg := eb.eventLogger(event)
	lg.Info("publishing event synchronously", "handlers_count", len(handlers))

	ctx = logger.Into(ctx, lg)
	for _, handler := range handlers {
		if err := eb.invoke(ctx, handler, event); err != nil {
			lg.Error("event handler failed", "error", err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}

	return nil
}

// invoke turns a handler panic into an error so one subscriber cannot take the process down.
func (eb *EventBus) invoke(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, event)
}

func (eb *EventBus) eventLogger(event Event) *slog.Logger {
	return eb.logger.With("event_type", event.EventType(), "event_id", event.EventID())
}

// Wait blocks until every asynchronously published event has been handled.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}
