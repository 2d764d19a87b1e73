package events

import (
	"sync"
	"time"
)

// EventType represents the kind of container lifecycle event.
type EventType string

const (
	EventContainerStarted EventType = "container.started"
	EventContainerStopped EventType = "container.stopped"
	EventContainerFrozen  EventType = "container.frozen"
	EventContainerThawed  EventType = "container.thawed"
	EventContainerRemoved EventType = "container.removed"
	EventContainerFailed  EventType = "container.failed"
)

// Event represents a single container lifecycle event.
type Event struct {
	Type        EventType
	Timestamp   time.Time
	ContainerID string
	PID         int
	Message     string
	Metadata    map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker fans out published events to every subscriber, optionally
// filtered to the event types each subscriber asked for. burrow's
// event vocabulary is the fixed six container-lifecycle types above,
// not an open-ended cluster event stream, so filtering happens here
// rather than leaving every consumer to switch on Type itself.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]map[EventType]bool // nil value means "all types"
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]map[EventType]bool),
		eventCh:     make(chan *Event, 100),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns its channel. With
// no arguments the subscriber receives every event; passing one or
// more EventTypes restricts delivery to only those, e.g. a future
// `burrow events --type stopped` could subscribe to just
// EventContainerStopped instead of filtering client-side.
func (b *Broker) Subscribe(types ...EventType) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50)
	var filter map[EventType]bool
	if len(types) > 0 {
		filter = make(map[EventType]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}
	b.subscribers[sub] = filter
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish stamps event's Timestamp if unset and hands it to the
// distribution loop, dropping it if the broker has already stopped.
func (b *Broker) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

// broadcast delivers event to every subscriber whose filter accepts
// its type, never blocking on a slow or dead subscriber: a full
// buffer drops the event for that subscriber rather than stalling
// every other subscriber and the publisher behind it.
func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub, filter := range b.subscribers {
		if filter != nil && !filter[event.Type] {
			continue
		}
		select {
		case sub <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers, filtered
// or not.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
