package events

import "io"

// SubscriptionOpt represents a subscriber option.
type SubscriptionOpt = func(interface{}) error

// Subscription represents a subscription to one or multiple event types.
type Subscription interface {
	io.Closer

	// Out returns the channel from which to consume events.
	Out() <-chan interface{}
}

// Bus is a type-based event delivery system. The notification engine
// publishes every state change through it and the dashboard, the activity
// log and the websocket hub consume from it.
type Bus interface {
	// Subscribe creates a new Subscription.
	//
	// eventType can be either a pointer to a single event type, or a slice of pointers to
	// subscribe to multiple event types at once, under a single subscription (and channel).
	//
	// Failing to drain the channel will block the publisher.
	//
	//  sub, err := bus.Subscribe([]interface{}{new(events.NotificationReceived), new(events.CountChanged)})
	//  defer sub.Close()
	//  for e := range sub.Out() {
	//    switch evt := e.(type) {
	//    case *events.NotificationReceived:
	//      [...]
	//    case *events.CountChanged:
	//      [...]
	//    }
	//  }
	Subscribe(eventType interface{}, opts ...SubscriptionOpt) (Subscription, error)

	// Emit emits an event onto the bus. Events must be pointers to one of the
	// types in this package. If any channel subscribed to the type is full,
	// calls to Emit will block.
	Emit(evt interface{})
}
