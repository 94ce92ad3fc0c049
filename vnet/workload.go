package vnet

import "fmt"

// A Workload is a virtualized unit of execution hosted on a host. It owns
// one outbox and one inbox, both keyed by peer workload ID.
type Workload struct {
	id        string
	bandwidth float64
	capacity  float64

	outbox     map[string][]*Payload
	outboxDsts []string

	inbox     map[string][]*Payload
	inboxSrcs []string
}

// NewWorkload creates a workload. The bandwidth is the workload's
// allocated network rate and must be positive; a non-positive rate is a
// configuration error and is rejected here rather than surfacing as a
// division by zero at routing time.
func NewWorkload(id string, bandwidth, capacity float64) (*Workload, error) {
	if bandwidth <= 0 {
		return nil, fmt.Errorf(
			"workload %s: bandwidth must be positive, got %f", id, bandwidth)
	}

	if capacity < 0 {
		return nil, fmt.Errorf(
			"workload %s: capacity must not be negative, got %f", id, capacity)
	}

	return &Workload{
		id:        id,
		bandwidth: bandwidth,
		capacity:  capacity,
		outbox:    make(map[string][]*Payload),
		inbox:     make(map[string][]*Payload),
	}, nil
}

// ID returns the workload identifier.
func (w *Workload) ID() string {
	return w.id
}

// Bandwidth returns the workload's allocated network rate.
func (w *Workload) Bandwidth() float64 {
	return w.bandwidth
}

// Capacity returns the workload's allocated processing capacity.
func (w *Workload) Capacity() float64 {
	return w.capacity
}

// SetCapacity updates the workload's allocated processing capacity.
func (w *Workload) SetCapacity(capacity float64) {
	w.capacity = capacity
}

// EnqueueOutbound appends a payload to the outbox queue for the payload's
// destination.
func (w *Workload) EnqueueOutbound(p *Payload) {
	if _, ok := w.outbox[p.Dst]; !ok {
		w.outboxDsts = append(w.outboxDsts, p.Dst)
	}

	w.outbox[p.Dst] = append(w.outbox[p.Dst], p)
}

// OutboundDestinations returns the outbox destinations in first-use order.
// Iteration order is stable so that drains are deterministic.
func (w *Workload) OutboundDestinations() []string {
	return w.outboxDsts
}

// OutboundTo returns the queued payloads for one destination.
func (w *Workload) OutboundTo(dst string) []*Payload {
	return w.outbox[dst]
}

// ClearOutboundTo removes the outbox queue for one destination. The
// destination drops out of OutboundDestinations until a payload for it is
// enqueued again.
func (w *Workload) ClearOutboundTo(dst string) {
	delete(w.outbox, dst)

	for i, d := range w.outboxDsts {
		if d == dst {
			w.outboxDsts = append(w.outboxDsts[:i], w.outboxDsts[i+1:]...)
			break
		}
	}
}

// OutboundCount returns the total number of payloads queued across all of
// this workload's outbox destinations.
func (w *Workload) OutboundCount() int {
	count := 0
	for _, pkts := range w.outbox {
		count += len(pkts)
	}

	return count
}

// DeliverInbound appends a payload to the inbox queue keyed by the
// payload's source workload.
func (w *Workload) DeliverInbound(p *Payload) {
	if _, ok := w.inbox[p.Src]; !ok {
		w.inboxSrcs = append(w.inboxSrcs, p.Src)
	}

	w.inbox[p.Src] = append(w.inbox[p.Src], p)
}

// InboundFrom returns the queued payloads received from one source.
func (w *Workload) InboundFrom(src string) []*Payload {
	return w.inbox[src]
}

// ConsumeInbound removes and returns the oldest payload received from the
// given source, or nil if none is queued.
func (w *Workload) ConsumeInbound(src string) *Payload {
	pkts := w.inbox[src]
	if len(pkts) == 0 {
		return nil
	}

	p := pkts[0]
	w.inbox[src] = pkts[1:]

	return p
}

// InboundCount returns the total number of payloads queued across all of
// this workload's inbox sources.
func (w *Workload) InboundCount() int {
	count := 0
	for _, pkts := range w.inbox {
		count += len(pkts)
	}

	return count
}
