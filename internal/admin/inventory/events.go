package inventory

import (
	"time"

	"github.com/asaskevich/EventBus"
)

// TopicChanged is published after every successful relist.
const TopicChanged = "inventory:changed"

// EventKind names what caused a relist.
type EventKind string

const (
	EventLoaded  EventKind = "loaded"
	EventRefresh EventKind = "refreshed"
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventStock   EventKind = "stock_adjusted"
	EventDeleted EventKind = "deleted"
)

// Event describes a catalog change observed by the controller.
type Event struct {
	ID          string
	Kind        EventKind
	BusinessKey string
	Stats       Stats
	OccurredAt  time.Time
}

// Subscribe registers fn for change events. The returned function removes it.
func (c *Controller) Subscribe(fn func(Event)) (func(), error) {
	if err := c.bus.Subscribe(TopicChanged, fn); err != nil {
		return nil, err
	}
	return func() {
		_ = c.bus.Unsubscribe(TopicChanged, fn)
	}, nil
}

func (c *Controller) publish(kind EventKind, key string, stats Stats) {
	c.bus.Publish(TopicChanged, Event{
		ID:          c.newID(),
		Kind:        kind,
		BusinessKey: key,
		Stats:       stats,
		OccurredAt:  c.clock().UTC(),
	})
}

func newBus() EventBus.Bus {
	return EventBus.New()
}
