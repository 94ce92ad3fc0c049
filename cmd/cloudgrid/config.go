package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cloudgridlab/cloudgrid/compute"
	"github.com/cloudgridlab/cloudgrid/sim"
	"github.com/cloudgridlab/cloudgrid/vnet"
)

// TopologyConfig describes one simulation: an edge switch and the hosts
// behind it, each with its resident workloads and their tasks.
type TopologyConfig struct {
	Switch SwitchConfig `yaml:"switch"`
	Hosts  []HostConfig `yaml:"hosts"`
}

// SwitchConfig describes the edge switch.
type SwitchConfig struct {
	Latency float64 `yaml:"latency"`
}

// HostConfig describes one host and its residents.
type HostConfig struct {
	Name             string           `yaml:"name"`
	BoundaryCapacity int              `yaml:"boundary_capacity"`
	Workloads        []WorkloadConfig `yaml:"workloads"`
}

// WorkloadConfig describes one workload and its task stages.
type WorkloadConfig struct {
	ID        string        `yaml:"id"`
	Bandwidth float64       `yaml:"bandwidth"`
	Capacity  float64       `yaml:"capacity"`
	Stages    []StageConfig `yaml:"stages"`
}

// StageConfig describes one task stage. Kind is one of "work", "send",
// and "recv".
type StageConfig struct {
	Kind  string  `yaml:"kind"`
	Units float64 `yaml:"units"`
	Peer  string  `yaml:"peer"`
}

// LoadTopologyConfig reads and parses a topology file.
func LoadTopologyConfig(path string) (*TopologyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read topology file: %w", err)
	}

	return ParseTopologyConfig(data)
}

// ParseTopologyConfig parses a YAML topology description.
func ParseTopologyConfig(data []byte) (*TopologyConfig, error) {
	var cfg TopologyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse topology: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *TopologyConfig) validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("topology declares no hosts")
	}

	if c.Switch.Latency < 0 {
		return fmt.Errorf("switch latency must not be negative, got %f",
			c.Switch.Latency)
	}

	seen := make(map[string]bool)

	for _, h := range c.Hosts {
		if h.Name == "" {
			return fmt.Errorf("host without a name")
		}

		for _, w := range h.Workloads {
			if w.ID == "" {
				return fmt.Errorf("host %s: workload without an id", h.Name)
			}

			if seen[w.ID] {
				return fmt.Errorf("workload %s declared more than once", w.ID)
			}
			seen[w.ID] = true

			for i, s := range w.Stages {
				if err := validateStage(w.ID, i, s); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func validateStage(workloadID string, index int, s StageConfig) error {
	switch s.Kind {
	case "work":
		if s.Units <= 0 {
			return fmt.Errorf(
				"workload %s stage %d: work stage needs positive units",
				workloadID, index)
		}
	case "send":
		if s.Peer == "" {
			return fmt.Errorf(
				"workload %s stage %d: send stage needs a peer",
				workloadID, index)
		}

		if s.Units <= 0 {
			return fmt.Errorf(
				"workload %s stage %d: send stage needs positive units",
				workloadID, index)
		}
	case "recv":
		if s.Peer == "" {
			return fmt.Errorf(
				"workload %s stage %d: recv stage needs a peer",
				workloadID, index)
		}
	default:
		return fmt.Errorf("workload %s stage %d: unknown stage kind %q",
			workloadID, index, s.Kind)
	}

	return nil
}

// A builtTopology holds everything constructed from a TopologyConfig.
type builtTopology struct {
	simulation *sim.Simulation
	engine     sim.Engine
	model      *compute.StagedModel
	counter    *vnet.TrafficCounter
	sw         *vnet.Switch
	hosts      []*vnet.Host
}

// build constructs the simulation the config describes.
func (c *TopologyConfig) build() (*builtTopology, error) {
	engine := sim.NewSerialEngine()
	simulation := sim.NewSimulation(engine)
	model := compute.NewStagedModel()
	counter := &vnet.TrafficCounter{}

	sw := vnet.MakeSwitchBuilder().
		WithEngine(engine).
		WithLatency(sim.VTime(c.Switch.Latency)).
		Build("Switch")
	simulation.RegisterComponent(sw)

	t := &builtTopology{
		simulation: simulation,
		engine:     engine,
		model:      model,
		counter:    counter,
		sw:         sw,
	}

	for _, hc := range c.Hosts {
		builder := vnet.MakeHostBuilder().
			WithEngine(engine).
			WithProcessingModel(model).
			WithSwitch(sw).
			WithTrafficCounter(counter)

		if hc.BoundaryCapacity > 0 {
			builder = builder.WithBoundaryCapacity(hc.BoundaryCapacity)
		}

		for _, wc := range hc.Workloads {
			w, err := vnet.NewWorkload(wc.ID, wc.Bandwidth, wc.Capacity)
			if err != nil {
				return nil, err
			}

			builder = builder.WithResidents(w)

			if len(wc.Stages) > 0 {
				model.Assign(wc.ID, buildStages(wc.Stages))
			}
		}

		host := builder.Build(hc.Name)
		simulation.RegisterComponent(host)
		t.hosts = append(t.hosts, host)
	}

	return t, nil
}

func buildStages(configs []StageConfig) []compute.Stage {
	stages := make([]compute.Stage, 0, len(configs))

	for _, s := range configs {
		switch s.Kind {
		case "work":
			stages = append(stages, compute.Work(s.Units))
		case "send":
			stages = append(stages, compute.Send(s.Peer, s.Units))
		case "recv":
			stages = append(stages, compute.Recv(s.Peer))
		}
	}

	return stages
}
