// Package compute provides a staged processing model for workloads. A
// task is a sequence of stages: work stages consume processing capacity
// over simulated time, send stages enqueue a payload to a peer, and recv
// stages block until a payload from a peer can be consumed from the
// inbox.
package compute

import (
	"log"

	"github.com/cloudgridlab/cloudgrid/sim"
	"github.com/cloudgridlab/cloudgrid/vnet"
)

// StageKind enumerates the kinds of task stages.
type StageKind int

const (
	// StageWork consumes processing capacity over time.
	StageWork StageKind = iota

	// StageSend enqueues a payload to a peer workload's outbox.
	StageSend

	// StageRecv blocks until a payload from a peer is consumed.
	StageRecv
)

// A Stage is one step of a task.
type Stage struct {
	Kind StageKind

	// Units is the amount of work for a work stage, or the payload size
	// for a send stage.
	Units float64

	// Peer is the counterpart workload for send and recv stages.
	Peer string
}

// Work creates a work stage.
func Work(units float64) Stage {
	return Stage{Kind: StageWork, Units: units}
}

// Send creates a send stage.
func Send(peer string, sizeUnits float64) Stage {
	return Stage{Kind: StageSend, Peer: peer, Units: sizeUnits}
}

// Recv creates a recv stage.
func Recv(peer string) Stage {
	return Stage{Kind: StageRecv, Peer: peer}
}

type taskState struct {
	stages     []Stage
	current    int
	progress   float64
	started    bool
	lastUpdate sim.VTime
	finishTime sim.VTime
	done       bool
}

// A StagedModel advances staged tasks, one per workload. It implements
// vnet.ProcessingModel.
type StagedModel struct {
	tasks map[string]*taskState
}

// NewStagedModel creates a StagedModel with no tasks assigned.
func NewStagedModel() *StagedModel {
	return &StagedModel{
		tasks: make(map[string]*taskState),
	}
}

// Assign gives a workload its task. Each workload runs at most one task.
func (m *StagedModel) Assign(workloadID string, stages []Stage) {
	if _, ok := m.tasks[workloadID]; ok {
		log.Panicf("workload %s already has a task", workloadID)
	}

	m.tasks[workloadID] = &taskState{stages: stages}
}

// Done reports whether the task of the given workload has run all its
// stages.
func (m *StagedModel) Done(workloadID string) bool {
	ts := m.tasks[workloadID]
	return ts != nil && ts.done
}

// FinishTime returns the time at which the given workload's task
// completed its final stage. The result is only meaningful once Done
// reports true.
func (m *StagedModel) FinishTime(workloadID string) sim.VTime {
	ts := m.tasks[workloadID]
	if ts == nil {
		return 0
	}

	return ts.finishTime
}

// AllDone reports whether every assigned task has completed.
func (m *StagedModel) AllDone() bool {
	for _, ts := range m.tasks {
		if !ts.done {
			return false
		}
	}

	return true
}

// UpdateProcessing advances every resident of the host and returns the
// earliest time a work stage will complete, or vnet.NoNextEvent.
func (m *StagedModel) UpdateProcessing(
	now sim.VTime,
	host *vnet.Host,
) sim.VTime {
	next := vnet.NoNextEvent

	for _, w := range host.Residents() {
		t := m.advance(now, w, w.Capacity())
		if t < next {
			next = t
		}
	}

	return next
}

// ResumeWorkload re-advances one workload, typically because a local
// delivery may have unblocked a recv stage. It returns the completion
// time of the work stage now in progress, or vnet.NoNextEvent.
func (m *StagedModel) ResumeWorkload(
	now sim.VTime,
	w *vnet.Workload,
	capacity float64,
) sim.VTime {
	return m.advance(now, w, capacity)
}

// advance runs the workload's task as far as it can go at the current
// time and returns the completion time of the work stage in progress, or
// vnet.NoNextEvent if the task is done or blocked.
func (m *StagedModel) advance(
	now sim.VTime,
	w *vnet.Workload,
	capacity float64,
) sim.VTime {
	ts := m.tasks[w.ID()]
	if ts == nil || ts.done {
		return vnet.NoNextEvent
	}

	if !ts.started {
		ts.started = true
		ts.lastUpdate = now
	}

	defer func() { ts.lastUpdate = now }()

	for ts.current < len(ts.stages) {
		stage := ts.stages[ts.current]

		switch stage.Kind {
		case StageWork:
			elapsed := now - ts.lastUpdate
			ts.progress += capacity * float64(elapsed)
			ts.lastUpdate = now

			if ts.progress < stage.Units {
				if capacity <= 0 {
					return vnet.NoNextEvent
				}

				remaining := stage.Units - ts.progress
				return now + sim.VTime(remaining/capacity)
			}

			ts.progress = 0
			ts.current++

		case StageSend:
			pkt := vnet.NewPayload(w.ID(), stage.Peer, stage.Units)
			pkt.SendTime = now
			w.EnqueueOutbound(pkt)
			ts.current++
			ts.lastUpdate = now

		case StageRecv:
			if w.ConsumeInbound(stage.Peer) == nil {
				// Blocked until the dispatcher delivers and re-triggers.
				return vnet.NoNextEvent
			}

			ts.current++
			ts.lastUpdate = now
		}
	}

	ts.done = true
	ts.finishTime = now

	return vnet.NoNextEvent
}
