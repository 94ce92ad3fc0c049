package vnet

import "github.com/cloudgridlab/cloudgrid/sim"

// A HostUpdateEvent triggers one dispatch tick on a host.
type HostUpdateEvent struct {
	*sim.EventBase
}

// MakeHostUpdateEvent creates a HostUpdateEvent for the given host.
func MakeHostUpdateEvent(t sim.VTime, host *Host) *HostUpdateEvent {
	return &HostUpdateEvent{
		EventBase: sim.NewEventBase(t, host),
	}
}

// A PacketUpEvent carries a routing envelope up the network hierarchy,
// from a host to its upstream switch. The event time is the moment the
// envelope arrives at the switch, transmission delay included.
type PacketUpEvent struct {
	*sim.EventBase

	Envelope *RoutingEnvelope
}

// MakePacketUpEvent creates a PacketUpEvent that delivers the envelope to
// the switch at time t.
func MakePacketUpEvent(
	t sim.VTime,
	sw *Switch,
	envelope *RoutingEnvelope,
) *PacketUpEvent {
	return &PacketUpEvent{
		EventBase: sim.NewEventBase(t, sw),
		Envelope:  envelope,
	}
}

// A PacketDownEvent carries a routing envelope down from the switch to the
// destination host.
type PacketDownEvent struct {
	*sim.EventBase

	Envelope *RoutingEnvelope
	Dest     *Host
}

// MakePacketDownEvent creates a PacketDownEvent that hands the envelope to
// the destination host at time t.
func MakePacketDownEvent(
	t sim.VTime,
	sw *Switch,
	envelope *RoutingEnvelope,
	dest *Host,
) *PacketDownEvent {
	return &PacketDownEvent{
		EventBase: sim.NewEventBase(t, sw),
		Envelope:  envelope,
		Dest:      dest,
	}
}
