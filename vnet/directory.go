package vnet

import "sync"

// A Directory resolves a workload ID to the host it currently resides on.
// The switch consults it when forwarding remote traffic downward.
type Directory struct {
	mu    sync.RWMutex
	hosts map[string]*Host
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		hosts: make(map[string]*Host),
	}
}

// AttachHost registers all the residents of a host.
func (d *Directory) AttachHost(h *Host) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, w := range h.Residents() {
		d.hosts[w.ID()] = h
	}
}

// Resolve returns the host that hosts the given workload, or nil if the
// workload is unknown.
func (d *Directory) Resolve(workloadID string) *Host {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.hosts[workloadID]
}
