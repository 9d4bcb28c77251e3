package altregistry

import "github.com/altrace-project/altrace/altfile"

// Device shadows an ALCdevice. A device owns zero or more contexts
// and, for capture devices, its own polled state instead of a context
// list.
type Device struct {
	Handle altfile.PtrToken
	IsNull bool

	IsCapture        bool
	HasDisconnectExt bool

	Connected      bool  // polled when HasDisconnectExt
	CaptureSamples int32 // polled when IsCapture

	// ErrorLatch holds the first ALC error observed since the last
	// alcGetError call on this device (invariant 6).
	ErrorLatch int32

	ExtraExtensions []string // synthetic AL_EXT_trace_info-style additions

	contexts []*Context
}

// AddContext links a newly-created context under this device,
// enforcing invariant 2 (a context belongs to exactly one device).
func (d *Device) AddContext(c *Context) {
	c.Device = d
	d.contexts = append(d.contexts, c)
}

// RemoveContext unlinks a destroyed context.
func (d *Device) RemoveContext(c *Context) {
	for i, cur := range d.contexts {
		if cur == c {
			d.contexts = append(d.contexts[:i], d.contexts[i+1:]...)
			return
		}
	}
}

// Contexts returns the contexts owned by this device.
func (d *Device) Contexts() []*Context { return d.contexts }
