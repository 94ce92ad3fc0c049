package vnet

import (
	"math"

	"github.com/cloudgridlab/cloudgrid/sim"
)

// NoNextEvent is returned by a processing model when no resident needs a
// future update.
var NoNextEvent = sim.VTime(math.MaxFloat64)

// A ProcessingModel advances the computation of the workloads hosted on a
// host. It is invoked by the dispatch engine once per tick, and again for
// individual workloads when locally delivered data may have unblocked
// them.
type ProcessingModel interface {
	// UpdateProcessing advances all the residents of the host and returns
	// the time of the earliest future event the model needs, or
	// NoNextEvent.
	UpdateProcessing(now sim.VTime, host *Host) sim.VTime

	// ResumeWorkload re-advances a single workload with its allocated
	// processing capacity and returns the time of the earliest future
	// event the workload now needs, or NoNextEvent.
	ResumeWorkload(now sim.VTime, w *Workload, capacity float64) sim.VTime
}
