package altregistry

import "github.com/altrace-project/altrace/altfile"

// Context shadows an ALCcontext: distance model/doppler/listener
// state, the source arena, and the buffer arena (buffers are shared
// per-device in the real API, but the recorder only ever needs them
// scoped to the context that is current when they're touched, so one
// arena per context is sufficient here).
type Context struct {
	Handle altfile.PtrToken
	Device *Device

	// ErrorLatch holds the first AL error observed since the last
	// alGetError call while this context was current (invariant 6).
	ErrorLatch int32

	// Context-global and listener state, set by Recorder.AlDistanceModel
	// / AlDopplerFactor / AlDopplerVelocity / AlSpeedOfSound /
	// AlListenerSetFloat and diffed against the value each of those
	// calls carries, not polled.
	DistanceModel       int32
	DopplerFactor       float32
	DopplerVelocity     float32
	SpeedOfSound        float32
	ListenerPosition    [3]float32
	ListenerVelocity    [3]float32
	ListenerOrientation [6]float32
	ListenerGain        float32

	// CheckedStaticState gates the one-time vendor/renderer/version/
	// extensions query on first alcMakeContextCurrent.
	CheckedStaticState bool
	Vendor, Renderer, Version, Extensions string

	Sources *SourceArena
	Buffers *BufferArena
}

// NewContext returns a Context with initialized arenas.
func NewContext(handle altfile.PtrToken) *Context {
	return &Context{
		Handle:  handle,
		Sources: NewSourceArena(),
		Buffers: NewBufferArena(),
	}
}
