// Package vnet models packet delivery between virtualized workloads in a
// simulated datacenter: payloads exchanged by workloads on the same host
// are delivered with zero network delay, while payloads to workloads on
// other hosts are handed to the upstream edge switch with a computed
// transmission delay.
package vnet

import (
	"log"

	"github.com/cloudgridlab/cloudgrid/sim"
)

// A Payload is a unit of data that one workload sends to another. It is
// owned by whichever queue currently holds it; ownership transfers from
// the sender's outbox to the receiver's inbox at routing time.
type Payload struct {
	ID  string
	Src string
	Dst string

	// SizeUnits is the amount of data carried. It is immutable once the
	// payload is created.
	SizeUnits float64

	SendTime sim.VTime

	// RecvTime is set exactly once, when the payload is deposited into the
	// destination inbox.
	RecvTime sim.VTime
}

// NewPayload creates a payload from src to dst. The size must be positive.
func NewPayload(src, dst string, sizeUnits float64) *Payload {
	if sizeUnits <= 0 {
		log.Panicf("payload size must be positive, got %f", sizeUnits)
	}

	return &Payload{
		ID:        sim.GetIDGenerator().Generate(),
		Src:       src,
		Dst:       dst,
		SizeUnits: sizeUnits,
	}
}

// A RoutingEnvelope wraps a payload with the routing metadata that is only
// needed while the payload is in transit. The dispatcher creates one when
// pulling a payload off an outbox and discards it once the payload is
// deposited locally; for remote routing, the envelope travels to the
// switch.
type RoutingEnvelope struct {
	OriginHost   string
	DispatchTime sim.VTime
	ArriveTime   sim.VTime
	Payload      *Payload
}
