package app

import (
	"context"
	"log"

	"github.com/aronareadev/rentcar-admin-sub001/internal/domain"
)

// EventPublisher receives reservation events after the change has been committed.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, ev domain.ReservationEvent) error
}

// PublisherFunc adapts a function to EventPublisher.
type PublisherFunc func(ctx context.Context, ev domain.ReservationEvent) error

func (f PublisherFunc) PublishReservationEvent(ctx context.Context, ev domain.ReservationEvent) error {
	return f(ctx, ev)
}

// FanOut delivers every event to each publisher and returns the first error.
// A failing publisher does not stop the others.
func FanOut(pubs ...EventPublisher) EventPublisher {
	return PublisherFunc(func(ctx context.Context, ev domain.ReservationEvent) error {
		var first error
		for _, p := range pubs {
			if p == nil {
				continue
			}
			if err := p.PublishReservationEvent(ctx, ev); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

type noopPublisher struct{}

func (noopPublisher) PublishReservationEvent(context.Context, domain.ReservationEvent) error {
	return nil
}

// notifier publishes best-effort: the change is already committed, so a
// delivery failure is logged and swallowed.
type notifier struct {
	pub    EventPublisher
	logger *log.Logger
}

func (n notifier) notify(ctx context.Context, ev domain.ReservationEvent) {
	if err := n.pub.PublishReservationEvent(ctx, ev); err != nil {
		n.logger.Printf("WARN: publish reservation event type=%s reservation=%s: %v", ev.Type, ev.ReservationID, err)
	}
}

func newNotifier() notifier {
	return notifier{pub: noopPublisher{}, logger: log.Default()}
}
