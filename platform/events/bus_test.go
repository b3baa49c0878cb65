package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"telecrm/platform/logger"
)

type pinged struct{ BaseEvent }

func (pinged) EventName() string { return "test.pinged" }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())

	var order []int
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		order = append(order, 1)
		return nil
	}))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		order = append(order, 2)
		return errors.New("second failed")
	}))

	err := bus.PublishSync(context.Background(), pinged{NewBaseEvent()})
	if err == nil || err.Error() != "second failed" {
		t.Fatalf("PublishSync() error = %v, want second failed", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
}

func TestPublishIsAsyncAndWaitable(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())

	var calls atomic.Int32
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error {
		calls.Add(1)
		return nil
	}))

	bus.Publish(context.Background(), pinged{NewBaseEvent()})
	bus.Publish(context.Background(), pinged{NewBaseEvent()})
	bus.Wait()

	if got := calls.Load(); got != 2 {
		t.Fatalf("handler calls = %d, want 2", got)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.Nop())
	if err := bus.PublishSync(context.Background(), pinged{NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
