package events

import (
	platformevents "telecrm/platform/events"
	"telecrm/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the bus the console and the one-shot commands share.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
