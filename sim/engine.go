package sim

// TimeTeller can be used to get the current simulated time.
type TimeTeller interface {
	CurrentTime() VTime
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is called after the simulation ends.
type SimulationEndHandler interface {
	Handle(now VTime)
}

// An Engine is the unit that keeps a discrete-event simulation running.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes all the events until the simulation finishes.
	Run() error

	// Pause pauses the simulation until Continue is called.
	Pause()

	// Continue resumes a paused simulation.
	Continue()

	// RegisterSimulationEndHandler registers a handler to be called after
	// the simulation ends.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished is called after the simulation ends, invoking all the
	// registered simulation-end handlers.
	Finished()
}
