package vnet

import (
	"math"
	"sync/atomic"
)

// A TrafficCounter accumulates the data volume that has left any host for
// a remote destination. It is monotonically non-decreasing and is only
// incremented on remote routing. Updates are atomic so that hosts may be
// advanced by a parallel engine.
type TrafficCounter struct {
	bits uint64
}

// Add accumulates the given number of size units.
func (c *TrafficCounter) Add(units float64) {
	for {
		old := atomic.LoadUint64(&c.bits)
		updated := math.Float64bits(math.Float64frombits(old) + units)

		if atomic.CompareAndSwapUint64(&c.bits, old, updated) {
			return
		}
	}
}

// Total returns the cumulative volume transferred so far.
func (c *TrafficCounter) Total() float64 {
	return math.Float64frombits(atomic.LoadUint64(&c.bits))
}
