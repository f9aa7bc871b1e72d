package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/fuel-station-management/internal/core/events"
)

// Subscribe wires the notifying events of bus to the dispatcher. Handler errors are reported to the bus,
// which logs them; the operation that raised the event has already committed.
func Subscribe(bus *events.EventBus, composer *Composer, dispatcher *Dispatcher, logger *slog.Logger) {
	handle := func(ctx context.Context, event events.Event) error {
		messages, err := composer.Compose(ctx, event)
		if err != nil {
			return err
		}

		var errs []error
		for _, msg := range messages {
			if err := dispatcher.Enqueue(msg); err != nil {
				errs = append(errs, err)
				continue
			}
			logger.Debug("notification queued", "message_id", msg.ID, "event_id", event.EventID(), "kind", msg.Kind)
		}
		return errors.Join(errs...)
	}

	for _, eventType := range []string{
		events.EventTypeUserCreated,
		events.EventTypePasswordResetRequested,
		events.EventTypeInventoryLow,
		events.EventTypeInventoryRestored,
	} {
		bus.Subscribe(eventType, handle)
	}
}
