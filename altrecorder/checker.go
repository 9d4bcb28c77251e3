package altrecorder

import (
	"github.com/altrace-project/altrace/altfile"
	"github.com/altrace-project/altrace/altregistry"
)

// runCheckers is step 8 of spec.md §4.4, run at the tail of every
// wrapped call: first the error-latch check, then one polling pass
// over every live device (spec.md §4.5).
func (r *Recorder) runCheckers() {
	r.checkErrors()
	r.pollDevices()
}

// checkErrors re-queries the real error state for the global AL latch
// and every device's ALC latch, emitting a *-ErrorTriggered event and
// latching the first non-zero code seen since the last explicit
// retrieval (invariant 6). This mirrors running alGetError/alcGetError
// after every call the way altrace_record.c's CHECK_ERROR helper does.
func (r *Recorder) checkErrors() {
	if code := r.backend.AlGetError(); code != 0 {
		r.enc.Tag(altfile.TagALErrorTriggered)
		r.enc.Int32(code)
	}
	for _, d := range r.reg.Devices() {
		if d.IsNull {
			continue
		}
		code := r.backend.AlcGetError(d.Handle)
		if code != 0 && d.ErrorLatch == 0 {
			d.ErrorLatch = code
			r.enc.Tag(altfile.TagALCErrorTriggered)
			r.enc.Ptr(d.Handle)
			r.enc.Int32(code)
		}
	}
}

// pollDevices implements the per-device branch of spec.md §4.5:
// disconnect-capable devices re-check Connected; then capture devices
// re-check their sample count, and every other device polls every
// playing source of every context.
func (r *Recorder) pollDevices() {
	for _, d := range r.reg.Devices() {
		if d.IsNull {
			continue
		}
		if d.HasDisconnectExt {
			r.pollConnected(d)
		}
		if d.IsCapture {
			r.pollCaptureSamples(d)
		} else {
			for _, c := range d.Contexts() {
				for _, s := range c.Sources.Playlist() {
					r.pollSource(c, s)
				}
			}
		}
	}
}

func (r *Recorder) pollConnected(d *altregistry.Device) {
	connected := r.backend.Connected(d.Handle)
	if connected == d.Connected {
		return
	}
	d.Connected = connected
	r.enc.Tag(altfile.TagDeviceStateChangedBool)
	r.enc.Ptr(d.Handle)
	r.enc.Int32(paramConnected)
	r.enc.Bool(connected)
}

func (r *Recorder) pollCaptureSamples(d *altregistry.Device) {
	n := r.backend.CaptureSamples(d.Handle)
	if n == d.CaptureSamples {
		return
	}
	d.CaptureSamples = n
	r.enc.Tag(altfile.TagDeviceStateChangedInt)
	r.enc.Ptr(d.Handle)
	r.enc.Int32(paramCaptureSamples)
	r.enc.Int32(n)
}

// checkContextStaticState fetches vendor/renderer/version/extensions
// exactly once per context (gated by CheckedStaticState) and emits the
// four static-state-string events, per spec.md §4.5.
func (r *Recorder) checkContextStaticState(c *altregistry.Context) {
	if c.CheckedStaticState {
		return
	}
	c.CheckedStaticState = true
	vendor, renderer, version, extensions := r.backend.ContextStaticState(c.Handle)
	c.Vendor, c.Renderer, c.Version, c.Extensions = vendor, renderer, version, extensions

	emit := func(param int32, value string) {
		r.enc.Tag(altfile.TagContextStateChangedString)
		r.enc.Ptr(c.Handle)
		r.enc.Int32(param)
		r.enc.String(value, true)
	}
	emit(paramVendor, vendor)
	emit(paramRenderer, renderer)
	emit(paramVersion, version)
	emit(paramExtensions, extensions+" AL_EXT_trace_info")
}

// pollSource re-queries every tracked property of a playing source and
// emits one typed event per property that differs from the shadow
// record, then unlinks it from the playlist the instant it's observed
// non-PLAYING — satisfying "Playlist soundness" (spec.md §8): a source
// generates at most one state-changed event per property per pass, and
// is absent from the next pass once it stops.
func (r *Recorder) pollSource(c *altregistry.Context, s *altregistry.Source) {
	snap := r.backend.QuerySource(s.Name)

	if state := altregistry.SourceState(snap.State); state != s.State {
		s.State = state
		r.enc.Tag(altfile.TagSourceStateChangedEnum)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(paramSourceState)
		r.enc.Int32(int32(state))
	}

	emitFloat := func(param int32, cur *float32, next float32) {
		if *cur == next {
			return
		}
		*cur = next
		r.enc.Tag(altfile.TagSourceStateChangedFloat)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(param)
		r.enc.Float32(next)
	}
	emitFloat(paramGain, &s.Gain, snap.Gain)
	emitFloat(paramPitch, &s.Pitch, snap.Pitch)
	emitFloat(paramMinGain, &s.MinGain, snap.MinGain)
	emitFloat(paramMaxGain, &s.MaxGain, snap.MaxGain)
	emitFloat(paramMaxDistance, &s.MaxDistance, snap.MaxDistance)
	emitFloat(paramRolloffFactor, &s.RolloffFactor, snap.RolloffFactor)
	emitFloat(paramReferenceDistance, &s.ReferenceDistance, snap.ReferenceDistance)
	emitFloat(paramConeOuterGain, &s.ConeOuterGain, snap.ConeOuterGain)
	emitFloat(paramConeInnerAngle, &s.ConeInnerAngle, snap.ConeInnerAngle)
	emitFloat(paramConeOuterAngle, &s.ConeOuterAngle, snap.ConeOuterAngle)

	emitFloat3 := func(param int32, cur *[3]float32, next [3]float32) {
		if *cur == next {
			return
		}
		*cur = next
		r.enc.Tag(altfile.TagSourceStateChangedFloat3)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(param)
		r.enc.Float32(next[0])
		r.enc.Float32(next[1])
		r.enc.Float32(next[2])
	}
	emitFloat3(paramPosition, &s.Position, snap.Position)
	emitFloat3(paramVelocity, &s.Velocity, snap.Velocity)
	emitFloat3(paramDirection, &s.Direction, snap.Direction)

	emitBool := func(param int32, cur *bool, next bool) {
		if *cur == next {
			return
		}
		*cur = next
		r.enc.Tag(altfile.TagSourceStateChangedBool)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(param)
		r.enc.Bool(next)
	}
	emitBool(paramSourceRelative, &s.SourceRelative, snap.SourceRelative)
	emitBool(paramLooping, &s.Looping, snap.Looping)

	emitUint := func(param int32, cur *uint32, next uint32) {
		if *cur == next {
			return
		}
		*cur = next
		r.enc.Tag(altfile.TagSourceStateChangedUint)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(param)
		r.enc.Uint32(next)
	}
	emitUint(paramBuffer, &s.Buffer, snap.Buffer)

	emitInt32 := func(param int32, cur *int32, next int32) {
		if *cur == next {
			return
		}
		*cur = next
		r.enc.Tag(altfile.TagSourceStateChangedInt)
		r.enc.Ptr(s.Handle)
		r.enc.Int32(param)
		r.enc.Int32(next)
	}
	emitInt32(paramBuffersQueued, &s.BuffersQueued, snap.BuffersQueued)
	emitInt32(paramBuffersProcessed, &s.BuffersProcessed, snap.BuffersProcessed)

	if s.State != altregistry.SourcePlaying {
		c.Sources.LeavePlaylist(s)
	}
}

// Param enums the state-change detector and trace-only entry points
// use for synthetic events, matching al.h/alc.h.
const (
	paramConnected        = 0x313
	paramCaptureSamples   = 0x312
	paramSourceState      = 0x1010
	paramVendor           = 0xB001
	paramVersion          = 0xB002
	paramRenderer         = 0xB003
	paramExtensions       = 0xB004
	paramPosition         = 0x1004
	paramVelocity         = 0x1006
	paramDirection        = 0x1005
	paramBuffersQueued    = 0x1015
	paramBuffersProcessed = 0x1016
)

