package sim

// VTime is a simulated timestamp, in the unit of second.
type VTime float64

// An Event is something that will happen in the simulated future.
type Event interface {
	// Time returns the time at which the event should happen.
	Time() VTime

	// Handler returns the handler that should handle the event.
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary events
	// are handled after all the same-time primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID        string
	time      VTime
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTime, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	return e
}

// Time returns the time at which the event will happen.
func (e EventBase) Time() VTime {
	return e.time
}

// Handler returns the handler that handles the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for events.
//
// An event is always constrained to one handler: it can only be scheduled
// by that handler and can only directly modify that handler's state. The
// only exception is the kick-starting of a simulation, where the driver
// schedules the initial event of each component.
type Handler interface {
	Handle(e Event) error
}
