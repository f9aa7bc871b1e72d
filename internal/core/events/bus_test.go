package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	It("delivers asynchronously published events to every subscriber", func() {
		var calls atomic.Int32
		handler := func(ctx context.Context, e events.Event) error {
			calls.Add(1)
			return nil
		}
		bus.Subscribe(events.EventTypeInventoryLow, handler)
		bus.Subscribe(events.EventTypeInventoryLow, handler)

		evt := events.NewInventoryAlertEvent(events.EventTypeInventoryLow, 1, 2, 3, "diesel", 40, 50, "low")
		Expect(bus.Publish(context.Background(), evt)).To(Succeed())
		bus.Wait()

		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("keeps handlers running after the publishing context is cancelled", func() {
		var sawCancel atomic.Bool
		bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) error {
			sawCancel.Store(ctx.Err() != nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewUserCreatedEvent(1, "m", "M", "m@example.com", "manager"))).To(Succeed())
		bus.Wait()

		Expect(sawCancel.Load()).To(BeFalse())
	})

	It("surfaces handler failures only on synchronous publish", func() {
		bus.Subscribe(events.EventTypeTransactionPosted, func(ctx context.Context, e events.Event) error {
			return errors.New("boom")
		})
		evt := events.NewTransactionPostedEvent(1, 1, "diesel", 10, 100, "cash")

		Expect(bus.Publish(context.Background(), evt)).To(Succeed())
		bus.Wait()
		Expect(bus.PublishSync(context.Background(), evt)).To(MatchError(ContainSubstring("boom")))
	})

	It("recovers a panicking handler and hands subscribers an event-scoped logger", func() {
		var scoped atomic.Bool
		bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) error {
			panic("handler bug")
		})
		bus.Subscribe(events.EventTypeUserCreated, func(ctx context.Context, e events.Event) error {
			_, ok := logger.Lookup(ctx)
			scoped.Store(ok)
			return nil
		})
		evt := events.NewUserCreatedEvent(2, "k", "K", "k@example.com", "manager")

		Expect(bus.Publish(context.Background(), evt)).To(Succeed())
		bus.Wait()
		Expect(scoped.Load()).To(BeTrue())
		Expect(bus.PublishSync(context.Background(), evt)).To(MatchError(ContainSubstring("handler panicked")))
	})

	It("never serialises the raw reset token", func() {
		evt := events.NewPasswordResetRequestedEvent(1, "a@example.com", "A", "secret-token", time.Now().Add(time.Hour))
		Expect(evt.Payload()).NotTo(HaveKey("token"))
		Expect(evt.Token).To(Equal("secret-token"))
	})
})
