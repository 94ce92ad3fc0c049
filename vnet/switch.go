package vnet

import (
	"log"

	"github.com/cloudgridlab/cloudgrid/sim"
)

// A Switch is the edge network element that hosts forward their non-local
// traffic to. It resolves the destination host of each envelope through
// its directory and forwards with its configured latency. Only the single
// hop between hosts and this switch is modeled.
type Switch struct {
	*sim.ComponentBase

	engine    sim.Engine
	directory *Directory
	latency   sim.VTime
}

// Directory returns the workload directory the switch routes with.
func (s *Switch) Directory() *Directory {
	return s.directory
}

func (s *Switch) attachHost(h *Host) {
	s.directory.AttachHost(h)
}

// Handle processes packet events arriving at the switch.
func (s *Switch) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case *PacketUpEvent:
		s.packetArrived(evt)
	case *PacketDownEvent:
		evt.Dest.DeliverFromNetwork(evt.Envelope)
	default:
		log.Panicf("switch %s cannot handle event %T", s.Name(), e)
	}

	return nil
}

func (s *Switch) packetArrived(evt *PacketUpEvent) {
	now := evt.Time()
	envelope := evt.Envelope
	envelope.ArriveTime = now

	dest := s.directory.Resolve(envelope.Payload.Dst)
	if dest == nil {
		log.Panicf("switch %s: no host for workload %s",
			s.Name(), envelope.Payload.Dst)
	}

	s.engine.Schedule(MakePacketDownEvent(now+s.latency, s, envelope, dest))
}

// A SwitchBuilder builds edge switches.
type SwitchBuilder struct {
	engine  sim.Engine
	latency sim.VTime
}

// MakeSwitchBuilder creates a SwitchBuilder.
func MakeSwitchBuilder() SwitchBuilder {
	return SwitchBuilder{}
}

// WithEngine sets the engine that drives the switch.
func (b SwitchBuilder) WithEngine(engine sim.Engine) SwitchBuilder {
	b.engine = engine
	return b
}

// WithLatency sets the downlink forwarding latency of the switch.
func (b SwitchBuilder) WithLatency(latency sim.VTime) SwitchBuilder {
	b.latency = latency
	return b
}

// Build creates the switch.
func (b SwitchBuilder) Build(name string) *Switch {
	return &Switch{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		directory:     NewDirectory(),
		latency:       b.latency,
	}
}
