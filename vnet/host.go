package vnet

import (
	"log"

	"github.com/cloudgridlab/cloudgrid/sim"
)

// A Host holds an ordered collection of resident workloads. Networking is
// a capability: hosts built with an upstream switch get a packet
// dispatcher, hosts without one only run their processing model.
type Host struct {
	*sim.ComponentBase

	engine sim.Engine
	model  ProcessingModel

	residents     []*Workload
	residentIndex map[string]*Workload

	arrived  sim.Buffer
	dispatch *Dispatcher

	updateScheduled bool
}

// Residents returns the workloads currently hosted, in residence order.
func (h *Host) Residents() []*Workload {
	return h.residents
}

// Resident returns the resident workload with the given ID, or nil if the
// workload does not reside on this host.
func (h *Host) Resident(id string) *Workload {
	return h.residentIndex[id]
}

// Dispatcher returns the host's packet dispatch engine, or nil for a host
// without the networking capability.
func (h *Host) Dispatcher() *Dispatcher {
	return h.dispatch
}

// Handle processes the events scheduled for this host.
func (h *Host) Handle(e sim.Event) error {
	switch e.(type) {
	case *HostUpdateEvent:
		h.updateScheduled = false
		h.Advance(e.Time())
	default:
		log.Panicf("host %s cannot handle event %T", h.Name(), e)
	}

	return nil
}

// Advance runs one tick on the host at the given time and schedules the
// follow-up update at the next event time the processing model reports.
func (h *Host) Advance(now sim.VTime) sim.VTime {
	var next sim.VTime
	if h.dispatch != nil {
		next = h.dispatch.Advance(now)
	} else {
		next = h.model.UpdateProcessing(now, h)
	}

	if next > now && next < NoNextEvent {
		h.scheduleUpdate(next)
	}

	return next
}

// DeliverFromNetwork buffers an envelope that completed transit at the
// host boundary. The payload inside becomes visible to residents at the
// start of the next tick, after it has been time-stamped by the inbound
// flush.
func (h *Host) DeliverFromNetwork(envelope *RoutingEnvelope) {
	h.arrived.Push(envelope)
	h.scheduleUpdate(h.engine.CurrentTime())
}

// KickStart schedules the host's first update.
func (h *Host) KickStart(t sim.VTime) {
	h.scheduleUpdate(t)
}

func (h *Host) scheduleUpdate(t sim.VTime) {
	if h.updateScheduled {
		return
	}

	h.updateScheduled = true
	h.engine.Schedule(MakeHostUpdateEvent(t, h))
}

// A HostBuilder builds hosts.
type HostBuilder struct {
	engine           sim.Engine
	model            ProcessingModel
	sw               *Switch
	counter          *TrafficCounter
	residents        []*Workload
	boundaryCapacity int
}

// MakeHostBuilder creates a HostBuilder.
func MakeHostBuilder() HostBuilder {
	return HostBuilder{
		boundaryCapacity: 1024,
	}
}

// WithEngine sets the engine that drives the host.
func (b HostBuilder) WithEngine(engine sim.Engine) HostBuilder {
	b.engine = engine
	return b
}

// WithProcessingModel sets the model that advances resident computation.
func (b HostBuilder) WithProcessingModel(model ProcessingModel) HostBuilder {
	b.model = model
	return b
}

// WithSwitch attaches the upstream edge switch, enabling the networking
// capability.
func (b HostBuilder) WithSwitch(sw *Switch) HostBuilder {
	b.sw = sw
	return b
}

// WithTrafficCounter sets the global counter incremented on remote
// routing.
func (b HostBuilder) WithTrafficCounter(counter *TrafficCounter) HostBuilder {
	b.counter = counter
	return b
}

// WithResidents sets the workloads hosted, in residence order.
func (b HostBuilder) WithResidents(residents ...*Workload) HostBuilder {
	b.residents = append(b.residents, residents...)
	return b
}

// WithBoundaryCapacity sets the capacity of the buffer that holds
// envelopes arriving from the network before the next tick flushes them.
func (b HostBuilder) WithBoundaryCapacity(capacity int) HostBuilder {
	b.boundaryCapacity = capacity
	return b
}

// Build creates the host.
func (b HostBuilder) Build(name string) *Host {
	h := &Host{
		ComponentBase: sim.NewComponentBase(name),
		engine:        b.engine,
		model:         b.model,
		residentIndex: make(map[string]*Workload),
		arrived:       sim.NewBuffer(name+".ArrivedBuf", b.boundaryCapacity),
	}

	for _, w := range b.residents {
		if _, ok := h.residentIndex[w.ID()]; ok {
			log.Panicf("host %s: duplicate resident %s", name, w.ID())
		}

		h.residents = append(h.residents, w)
		h.residentIndex[w.ID()] = w
	}

	if b.sw != nil {
		counter := b.counter
		if counter == nil {
			counter = &TrafficCounter{}
		}

		h.dispatch = newDispatcher(h, b.engine, b.sw, counter)
		b.sw.attachHost(h)
	}

	return h
}
