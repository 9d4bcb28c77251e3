// Package altregistry shadows the audio backend's object graph:
// devices, contexts, sources, and buffers, with the hash/playlist
// linkage the state-change detector needs, and the label tables the
// trace/label entry points populate.
package altregistry

import "github.com/altrace-project/altrace/altfile"

// Registry owns the process-wide device list and the label tables.
// It is a constructed value, not a package-level global, so tests can
// build as many independent registries as they like.
type Registry struct {
	// NullDevice absorbs calls made against the NULL device handle,
	// matching invariant 1. It is kept outside the device list
	// (Devices never returns it) and is never a "real" device.
	NullDevice *Device
	devices    []*Device // newest first; head is devices[0] if non-empty

	Labels Labels
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		NullDevice: &Device{IsNull: true},
		Labels:     newLabels(),
	}
}

// AddDevice inserts a newly-opened device at the head of the device
// list, mirroring the C recorder's intrusive-list insertion order.
func (r *Registry) AddDevice(d *Device) {
	r.devices = append([]*Device{d}, r.devices...)
}

// RemoveDevice unlinks a closed device.
func (r *Registry) RemoveDevice(d *Device) {
	for i, cur := range r.devices {
		if cur == d {
			r.devices = append(r.devices[:i], r.devices[i+1:]...)
			return
		}
	}
}

// Devices returns the live device list, head first.
func (r *Registry) Devices() []*Device { return r.devices }

// Labels holds the four nullable label tables the trace/label entry
// points populate and clear. Keys are the opaque wire pointer tokens
// for device/context, and the bucket "name" (uint32) for source and
// buffer, mirroring how alTraceSourceLabel/alTraceBufferLabel key off
// the AL object name rather than a host pointer.
type Labels struct {
	Device  map[altfile.PtrToken]string
	Context map[altfile.PtrToken]string
	Source  map[uint32]string
	Buffer  map[uint32]string
}

func newLabels() Labels {
	return Labels{
		Device:  make(map[altfile.PtrToken]string),
		Context: make(map[altfile.PtrToken]string),
		Source:  make(map[uint32]string),
		Buffer:  make(map[uint32]string),
	}
}
