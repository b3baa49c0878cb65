// Package events is the in-process bus the console modules talk through:
// a closed call refreshes the queue and an expired session returns the
// user to login, with neither side importing the other.
package events

import (
	"context"
	"time"
)

// Event is anything published on the bus.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the publish time. Embed it in concrete events.
type BaseEvent struct {
	Timestamp time.Time
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Publisher is the side of the bus services emit on.
type Publisher interface {
	// Publish hands the event to every subscriber without waiting.
	Publish(ctx context.Context, event Event)
	// PublishSync runs every subscriber and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
}

// Subscriber is the side of the bus reactions register on. eventName
// matches Event.EventName.
type Subscriber interface {
	Subscribe(eventName string, handler Handler)
}

// Bus is the full bus. Wait blocks until handlers started by Publish have
// returned, so a one-shot command can observe their effects before exiting.
type Bus interface {
	Publisher
	Subscriber
	Wait()
}
