package sim

// A Simulation holds the engine and the components that participate in one
// simulation run.
type Simulation struct {
	engine        Engine
	components    []Component
	compNameIndex map[string]int
}

// NewSimulation creates a new simulation that runs on the given engine.
func NewSimulation(engine Engine) *Simulation {
	return &Simulation{
		engine:        engine,
		compNameIndex: make(map[string]int),
	}
}

// Engine returns the engine that drives the simulation.
func (s *Simulation) Engine() Engine {
	return s.engine
}

// RegisterComponent registers a component with the simulation. Component
// names must be unique within a simulation.
func (s *Simulation) RegisterComponent(c Component) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// Components returns all the registered components.
func (s *Simulation) Components() []Component {
	return s.components
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) Component {
	index, ok := s.compNameIndex[name]
	if !ok {
		return nil
	}

	return s.components[index]
}
