package vnet

import (
	"log"

	"github.com/cloudgridlab/cloudgrid/sim"
)

// HookPosLocalDeliver marks a payload deposited directly into a
// co-resident workload's inbox.
var HookPosLocalDeliver = &sim.HookPos{Name: "Packet Local Deliver"}

// HookPosRemoteDispatch marks an envelope handed to the upstream switch.
var HookPosRemoteDispatch = &sim.HookPos{Name: "Packet Remote Dispatch"}

// HookPosInboundFlush marks a payload flushed from the host boundary into
// a resident's inbox.
var HookPosInboundFlush = &sim.HookPos{Name: "Packet Inbound Flush"}

// RemoteDispatchDetail is attached to HookPosRemoteDispatch invocations.
type RemoteDispatchDetail struct {
	Envelope *RoutingEnvelope
	Delay    sim.VTime
}

// delayScale reconciles payload size units with bandwidth units so that
// the quotient is a simulated-time delay.
const delayScale = 1000

// The Dispatcher is a host's packet dispatch engine. Once per tick it
// flushes envelopes buffered at the host boundary, runs the processing
// model, drains every resident's outbox, and re-runs the processing model
// if any payload was delivered locally.
type Dispatcher struct {
	sim.HookableBase

	host    *Host
	engine  sim.Engine
	sw      *Switch
	counter *TrafficCounter

	localDeliveries []string
}

func newDispatcher(
	host *Host,
	engine sim.Engine,
	sw *Switch,
	counter *TrafficCounter,
) *Dispatcher {
	return &Dispatcher{
		host:    host,
		engine:  engine,
		sw:      sw,
		counter: counter,
	}
}

// Counter returns the global traffic counter this dispatcher increments.
func (d *Dispatcher) Counter() *TrafficCounter {
	return d.counter
}

// LocalDeliveries returns the IDs of the workloads that received a local
// delivery during the latest tick, in delivery order.
func (d *Dispatcher) LocalDeliveries() []string {
	return d.localDeliveries
}

// Advance runs one tick: inbound flush, processing update, outbound
// drain/route, and the conditional re-trigger. It returns the next event
// time reported by the processing model.
func (d *Dispatcher) Advance(now sim.VTime) sim.VTime {
	d.receivePackets(now)

	next := d.host.model.UpdateProcessing(now, d.host)

	resumeNext := d.sendPackets(now)
	if resumeNext < next {
		next = resumeNext
	}

	return next
}

// receivePackets flushes every envelope buffered at the host boundary
// into the inbox of its destination resident, stamping the payload with
// the current time. It runs before any processing update so that
// residents only ever observe time-stamped data.
func (d *Dispatcher) receivePackets(now sim.VTime) {
	for {
		item := d.host.arrived.Pop()
		if item == nil {
			return
		}

		envelope := item.(*RoutingEnvelope)
		pkt := envelope.Payload
		pkt.RecvTime = now

		dest := d.host.residentIndex[pkt.Dst]
		if dest == nil {
			log.Panicf("host %s: payload for %s arrived, but %s is not resident",
				d.host.Name(), pkt.Dst, pkt.Dst)
		}

		dest.DeliverInbound(pkt)

		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Pos:    HookPosInboundFlush,
			Item:   pkt,
		})
	}
}

// sendPackets drains every resident's outbox in residence order, routing
// each payload either to a co-resident workload or to the upstream
// switch. A pass that delivered locally re-runs the processing model for
// every resident. A re-run can enqueue fresh payloads, so drain passes
// repeat until one completes without a local delivery; otherwise a send
// that directly follows an unblocked recv would sit in the outbox with
// no future event left to route it. Returns the earliest future event
// time the re-runs reported.
func (d *Dispatcher) sendPackets(now sim.VTime) sim.VTime {
	d.localDeliveries = nil
	next := NoNextEvent

	for {
		delivered := len(d.localDeliveries)
		d.drainOutboxes(now)

		if len(d.localDeliveries) == delivered {
			return next
		}

		for _, w := range d.host.residents {
			t := d.host.model.ResumeWorkload(now, w, w.Capacity())
			if t < next {
				next = t
			}
		}
	}
}

func (d *Dispatcher) drainOutboxes(now sim.VTime) {
	for _, sender := range d.host.residents {
		// The bandwidth share for every remote payload this sender routes
		// in this pass is computed against the full count, not the count
		// remaining when the payload happens to be reached.
		totalPkts := sender.OutboundCount()
		if totalPkts == 0 {
			continue
		}

		dsts := append([]string(nil), sender.OutboundDestinations()...)
		for _, dst := range dsts {
			for _, pkt := range sender.OutboundTo(dst) {
				envelope := &RoutingEnvelope{
					OriginHost: d.host.Name(),
					Payload:    pkt,
				}

				if dest := d.host.residentIndex[pkt.Dst]; dest != nil {
					d.deliverLocally(now, envelope, dest)
				} else {
					d.dispatchRemotely(now, envelope, sender, totalPkts)
				}
			}

			sender.ClearOutboundTo(dst)
		}
	}
}

// deliverLocally deposits the payload straight into a co-resident
// workload's inbox. No delay, no switch, no counter increment.
func (d *Dispatcher) deliverLocally(
	now sim.VTime,
	envelope *RoutingEnvelope,
	dest *Workload,
) {
	envelope.DispatchTime = envelope.ArriveTime
	envelope.Payload.RecvTime = now

	dest.DeliverInbound(envelope.Payload)

	d.localDeliveries = append(d.localDeliveries, dest.ID())

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosLocalDeliver,
		Item:   envelope.Payload,
		Detail: envelope,
	})
}

// dispatchRemotely hands the envelope to the upstream switch with a delay
// that models the sender's bandwidth shared equally among every payload
// it is routing in this pass.
func (d *Dispatcher) dispatchRemotely(
	now sim.VTime,
	envelope *RoutingEnvelope,
	sender *Workload,
	totalPkts int,
) {
	pkt := envelope.Payload

	if d.sw.directory.Resolve(pkt.Dst) == nil {
		log.Panicf(
			"host %s: workload %s is neither resident nor known to the network",
			d.host.Name(), pkt.Dst)
	}

	availableBWPerPacket := sender.Bandwidth() / float64(totalPkts)
	delay := sim.VTime(delayScale * pkt.SizeUnits / availableBWPerPacket)

	envelope.DispatchTime = now
	d.counter.Add(pkt.SizeUnits)

	d.engine.Schedule(MakePacketUpEvent(now+delay, d.sw, envelope))

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    HookPosRemoteDispatch,
		Item:   pkt,
		Detail: RemoteDispatchDetail{Envelope: envelope, Delay: delay},
	})
}
