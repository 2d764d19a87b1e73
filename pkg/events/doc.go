/*
Package events provides an in-memory event broker for container
lifecycle notifications.

Every Event carries one of the six EventType constants declared here;
Subscribe with no arguments receives all of them, or pass specific
EventTypes to only receive those. Publish never blocks on a slow
subscriber -- a full subscriber buffer just drops the event rather than
stalling the lifecycle manager.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe(events.EventContainerStopped)
	defer broker.Unsubscribe(sub)

	broker.Publish(&events.Event{
		Type:        events.EventContainerStarted,
		ContainerID: rec.ID,
		PID:         rec.PID,
	})
*/
package events
