package outbox

import "context"

// Event is a fact about an order or product, named "<aggregate>.<verb>".
type Event interface {
	EventName() string
}

// Keyed events expose the id of the order or product they describe, which
// downstream consumers use for ordering and deduplication.
type Keyed interface {
	Event
	AggregateID() string
}

// AggregateID returns the aggregate id of e, or "" when e is not Keyed.
func AggregateID(e Event) string {
	if k, ok := e.(Keyed); ok {
		return k.AggregateID()
	}
	return ""
}

type Handler func(ctx context.Context, e Event) error

// Publisher is best effort: use cases log a failed publish and keep the
// already committed transition.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
