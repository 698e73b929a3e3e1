package session

// subscriberBuffer is how many events a slow subscriber may lag before it
// is dropped from the stream
const subscriberBuffer = 64

// Subscriber receives a session's event stream. Events arrives in seq order
// and is closed when the subscriber is dropped, either explicitly or because
// it fell too far behind. A dropped client resubscribes and starts over from
// a fresh snapshot.
type Subscriber struct {
	// Seat controls hole-card visibility in state updates. Negative for
	// an observer.
	Seat   int
	events chan Event
}

func newSubscriber(seat int) *Subscriber {
	return &Subscriber{Seat: seat, events: make(chan Event, subscriberBuffer)}
}

// Events is the subscriber's ordered event stream
func (s *Subscriber) Events() <-chan Event { return s.events }
