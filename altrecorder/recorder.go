package altrecorder

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/altrace-project/altrace/altfile"
	"github.com/altrace-project/altrace/altregistry"
	"github.com/altrace-project/altrace/altstack"
)

// Recorder wraps a Backend and serializes every call onto an
// altfile.Encoder, matching the nine-step template of spec.md §4.4:
// lock, collect stack, emit caller-info, serialize args, invoke the
// backend, serialize results, update the registry, run the checkers,
// unlock. Recorder is a constructed value — never a package-level
// global — so tests can build as many independent recorders as they
// like against an in-memory buffer, per spec.md §9.
type Recorder struct {
	// mu is the process-wide API mutex of spec.md §5: held for the
	// full duration of every wrapped call, including the inner Backend
	// invocation, so the on-disk event order always matches completion
	// order.
	mu sync.Mutex

	backend Backend
	enc     *altfile.Encoder
	reg     *altregistry.Registry
	stack   *altstack.Collector
	start   time.Time
	scope   int
	closed  bool

	// closer is flushed/closed by Close; nil when w wasn't also a
	// Closer (e.g. the in-memory buffers unit tests use).
	closer io.Closer
}

// New returns a Recorder that wraps backend and writes its trace to w,
// writing the header immediately.
func New(backend Backend, w io.Writer) *Recorder {
	r := &Recorder{
		backend: backend,
		enc:     altfile.NewEncoder(w),
		reg:     altregistry.New(),
		stack:   altstack.NewCollector(),
		start:   time.Now(),
	}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	r.enc.Header()
	r.checkFatal()
	return r
}

// checkFatal aborts the process if the encoder has latched a write
// error. A short write means the trace is no longer self-consistent
// (spec.md §7 "Recorder-fatal"); there is no partial-trace recovery.
func (r *Recorder) checkFatal() {
	if err := r.enc.Err(); err != nil {
		log.Fatal("altrecorder: short write, trace is corrupt", "err", err)
	}
}

// Close writes the EOS marker and closes the underlying writer, if it
// is a Closer. clean should be false when called from a signal handler
// or panic-recovery path instead of a normal shutdown.
func (r *Recorder) Close(clean bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	ts := r.timestamp()
	r.enc.Tag(altfile.TagEOS)
	r.enc.Bool(clean)
	r.enc.Uint32(ts)
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *Recorder) timestamp() uint32 {
	return uint32(time.Since(r.start).Milliseconds())
}

// threadID returns the OS thread id of the calling goroutine. Go has no
// notion of a stable "current thread" across a goroutine's lifetime the
// way a native caller does, but gettid() is still meaningful here: a
// wrapped call runs to completion without the runtime migrating the
// goroutine off its thread while it holds r.mu and is inside a
// (possibly cgo) Backend call, which is the only property the trace
// format actually needs from a "thread id".
func (r *Recorder) threadID() uint64 {
	return uint64(unix.Gettid())
}

// beginCall captures the call stack, flushes any newly-interned symbols
// as a NewCallstackSymbols event, and writes the tag plus caller-info
// prefix. skip additionally skips frames between the entry-point
// wrapper and this method.
func (r *Recorder) beginCall(tag altfile.Tag, skip int) {
	frames, fresh := r.stack.Capture(skip + 1)
	if len(fresh) > 0 {
		batch := make([]altfile.NewCallstackSymbols, len(fresh))
		for i, s := range fresh {
			batch[i] = altfile.NewCallstackSymbols{Addr: s.Addr, Symbol: s.Symbol}
		}
		r.enc.WriteNewCallstackSymbols(batch)
	}
	r.enc.Tag(tag)
	r.enc.WriteCallerInfo(altfile.CallerInfoWire{
		TimestampMS: r.timestamp(),
		RawThreadID: r.threadID(),
		Frames:      frames,
	})
}

// ---- ALC device/context lifecycle ----

// AlcOpenDevice wraps alcOpenDevice: opens a device, shadows it in the
// registry, and returns its handle.
func (r *Recorder) AlcOpenDevice(name string) altfile.PtrToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcOpenDevice, 1)
	r.enc.String(name, name != "")

	handle := r.backend.AlcOpenDevice(name)
	r.enc.Ptr(handle)

	d := &altregistry.Device{
		Handle:           handle,
		HasDisconnectExt: r.backend.HasDisconnectExt(handle),
	}
	if d.HasDisconnectExt {
		// Seed the shadow value from the real state so the first
		// polling pass doesn't report a spurious transition.
		d.Connected = r.backend.Connected(handle)
	}
	r.reg.AddDevice(d)

	r.runCheckers()
	r.checkFatal()
	return handle
}

// AlcCloseDevice wraps alcCloseDevice. The shadow record is freed only
// on success, per spec.md's lifecycle rule (a failed close leaves the
// device, and any latched error, observable).
func (r *Recorder) AlcCloseDevice(handle altfile.PtrToken) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCloseDevice, 1)
	r.enc.Ptr(handle)

	ok := r.backend.AlcCloseDevice(handle)
	r.enc.Bool(ok)

	if ok {
		if d := r.findDevice(handle); d != nil {
			r.reg.RemoveDevice(d)
			delete(r.reg.Labels.Device, handle)
		}
	}
	r.runCheckers()
	r.checkFatal()
	return ok
}

// AlcCreateContext wraps alcCreateContext, linking the new context
// under its device (invariant 2).
func (r *Recorder) AlcCreateContext(device altfile.PtrToken) altfile.PtrToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCreateContext, 1)
	r.enc.Ptr(device)

	handle := r.backend.AlcCreateContext(device)
	r.enc.Ptr(handle)

	d := r.deviceOrNull(device)
	ctx := altregistry.NewContext(handle)
	d.AddContext(ctx)

	r.runCheckers()
	r.checkFatal()
	return handle
}

// AlcMakeContextCurrent wraps alcMakeContextCurrent. On the first time
// a given context becomes current it queries and emits the four static
// context-state strings (spec.md §4.5, "fetched once per context").
func (r *Recorder) AlcMakeContextCurrent(ctx altfile.PtrToken) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcMakeContextCurrent, 1)
	r.enc.Ptr(ctx)

	ok := r.backend.AlcMakeContextCurrent(ctx)
	r.enc.Bool(ok)

	if ok {
		if c := r.findContext(ctx); c != nil {
			r.checkContextStaticState(c)
		}
	}
	r.runCheckers()
	r.checkFatal()
	return ok
}

// AlcDestroyContext wraps alcDestroyContext, unlinking the context from
// its device.
func (r *Recorder) AlcDestroyContext(ctx altfile.PtrToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcDestroyContext, 1)
	r.enc.Ptr(ctx)

	r.backend.AlcDestroyContext(ctx)

	if c := r.findContext(ctx); c != nil {
		c.Device.RemoveContext(c)
		delete(r.reg.Labels.Context, ctx)
	}
	r.runCheckers()
	r.checkFatal()
}

// AlcGetError wraps alcGetError. Two consecutive calls with no
// intervening activity return NO_ERROR on the second, satisfying the
// "error idempotence" property: the latch is cleared as part of the
// call itself, same as the real API.
func (r *Recorder) AlcGetError(device altfile.PtrToken) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcGetError, 1)
	r.enc.Ptr(device)

	code := r.backend.AlcGetError(device)
	r.enc.Int32(code)

	if d := r.findDevice(device); d != nil {
		d.ErrorLatch = 0
	}
	r.checkFatal()
	return code
}

// ---- Capture devices ----

func (r *Recorder) AlcCaptureOpenDevice(name string, freq, format, bufferSize int32) altfile.PtrToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCaptureOpenDevice, 1)
	r.enc.String(name, name != "")
	r.enc.Int32(freq)
	r.enc.Int32(format)
	r.enc.Int32(bufferSize)

	handle := r.backend.AlcCaptureOpenDevice(name, freq, format, bufferSize)
	r.enc.Ptr(handle)

	d := &altregistry.Device{Handle: handle, IsCapture: true}
	r.reg.AddDevice(d)

	r.runCheckers()
	r.checkFatal()
	return handle
}

func (r *Recorder) AlcCaptureCloseDevice(handle altfile.PtrToken) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCaptureCloseDevice, 1)
	r.enc.Ptr(handle)

	ok := r.backend.AlcCaptureCloseDevice(handle)
	r.enc.Bool(ok)

	if ok {
		if d := r.findDevice(handle); d != nil {
			r.reg.RemoveDevice(d)
		}
	}
	r.runCheckers()
	r.checkFatal()
	return ok
}

func (r *Recorder) AlcCaptureStart(handle altfile.PtrToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCaptureStart, 1)
	r.enc.Ptr(handle)
	r.backend.AlcCaptureStart(handle)
	r.runCheckers()
	r.checkFatal()
}

func (r *Recorder) AlcCaptureStop(handle altfile.PtrToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcCaptureStop, 1)
	r.enc.Ptr(handle)
	r.backend.AlcCaptureStop(handle)
	r.runCheckers()
	r.checkFatal()
}

// ---- AL global error ----

func (r *Recorder) AlGetError() int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlGetError, 1)

	code := r.backend.AlGetError()
	r.enc.Int32(code)

	// The global latch belongs to whichever context is current; since
	// Recorder has no direct "current context" concept of its own
	// (Backend owns that), clearing is left to the backend's own
	// alGetError semantics, matching the real API where the trace tool
	// never itself tracks "current" beyond what alcGetCurrentContext
	// would report.
	r.checkFatal()
	return code
}

// ---- Buffers ----

func (r *Recorder) AlGenBuffers(ctx altfile.PtrToken, n int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlGenBuffers, 1)
	r.enc.Int32(int32(n))

	names := r.backend.AlGenBuffers(n)
	r.enc.Uint32(uint32(len(names)))
	for _, nm := range names {
		r.enc.Uint32(nm)
	}

	if c := r.findContext(ctx); c != nil {
		for _, nm := range names {
			c.Buffers.Alloc(nm, altfile.PtrToken(nm))
		}
	}
	r.runCheckers()
	r.checkFatal()
	return names
}

func (r *Recorder) AlDeleteBuffers(ctx altfile.PtrToken, names []uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlDeleteBuffers, 1)
	r.enc.Uint32(uint32(len(names)))
	for _, nm := range names {
		r.enc.Uint32(nm)
	}

	ok := r.backend.AlDeleteBuffers(names)
	r.enc.Bool(ok)

	if ok {
		if c := r.findContext(ctx); c != nil {
			for _, nm := range names {
				if b := c.Buffers.Lookup(nm); b != nil {
					c.Buffers.Free(b)
				}
				delete(r.reg.Labels.Buffer, nm)
			}
		}
	}
	r.runCheckers()
	r.checkFatal()
	return ok
}

func (r *Recorder) AlBufferData(ctx altfile.PtrToken, buffer uint32, format, size, freq int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlBufferData, 1)
	r.enc.Uint32(buffer)
	r.enc.Int32(format)
	r.enc.Int32(size)
	r.enc.Int32(freq)

	r.backend.AlBufferData(buffer, format, size, freq)

	if c := r.findContext(ctx); c != nil {
		if b := c.Buffers.Lookup(buffer); b != nil {
			channels, bits := decodeALFormat(format)
			r.applyBufferIntParam(b, paramChannels, channels)
			r.applyBufferIntParam(b, paramBits, bits)
			r.applyBufferIntParam(b, paramFrequency, freq)
			r.applyBufferIntParam(b, paramSize, size)
		}
	}
	r.runCheckers()
	r.checkFatal()
}

// applyBufferIntParam diffs one of a buffer's derived properties
// (channels/bits/frequency/size, all computed from alBufferData's own
// arguments) against the shadow record, updating it and emitting
// BufferStateChangedInt if it moved. Unlike source properties, buffer
// properties never change behind the recorder's back, so — like the
// listener and context-global state below — this runs from the call
// itself rather than from a poll.
func (r *Recorder) applyBufferIntParam(b *altregistry.Buffer, param, value int32) {
	var cur *int32
	switch param {
	case paramChannels:
		cur = &b.Channels
	case paramBits:
		cur = &b.Bits
	case paramFrequency:
		cur = &b.Frequency
	case paramSize:
		cur = &b.Size
	default:
		return
	}
	if *cur == value {
		return
	}
	*cur = value
	r.enc.Tag(altfile.TagBufferStateChangedInt)
	r.enc.Ptr(b.Handle)
	r.enc.Int32(param)
	r.enc.Int32(value)
}

// Buffer property param enums, matching al.h.
const (
	paramFrequency = 0x2001
	paramBits      = 0x2002
	paramChannels  = 0x2003
	paramSize      = 0x2004
)

// decodeALFormat splits an AL_FORMAT_* enum into channel count and bit
// depth; it only needs to recognize the handful of formats the stock
// audio API defines.
func decodeALFormat(format int32) (channels, bits int32) {
	const (
		formatMono8    = 0x1100
		formatMono16   = 0x1101
		formatStereo8  = 0x1102
		formatStereo16 = 0x1103
	)
	switch format {
	case formatMono8:
		return 1, 8
	case formatMono16:
		return 1, 16
	case formatStereo8:
		return 2, 8
	case formatStereo16:
		return 2, 16
	default:
		return 0, 0
	}
}

// ---- Sources ----

func (r *Recorder) AlGenSources(ctx altfile.PtrToken, n int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlGenSources, 1)
	r.enc.Int32(int32(n))

	names := r.backend.AlGenSources(n)
	r.enc.Uint32(uint32(len(names)))
	for _, nm := range names {
		r.enc.Uint32(nm)
	}

	if c := r.findContext(ctx); c != nil {
		for _, nm := range names {
			c.Sources.Alloc(nm, altfile.PtrToken(nm))
		}
	}
	r.runCheckers()
	r.checkFatal()
	return names
}

func (r *Recorder) AlDeleteSources(ctx altfile.PtrToken, names []uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlDeleteSources, 1)
	r.enc.Uint32(uint32(len(names)))
	for _, nm := range names {
		r.enc.Uint32(nm)
	}

	ok := r.backend.AlDeleteSources(names)
	r.enc.Bool(ok)

	if ok {
		if c := r.findContext(ctx); c != nil {
			for _, nm := range names {
				if s := c.Sources.Lookup(nm); s != nil {
					c.Sources.Free(s)
				}
				delete(r.reg.Labels.Source, nm)
			}
		}
	}
	r.runCheckers()
	r.checkFatal()
	return ok
}

func (r *Recorder) AlSourceSetInt(ctx altfile.PtrToken, source uint32, param, value int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlSourceSetInt, 1)
	r.enc.Uint32(source)
	r.enc.Int32(param)
	r.enc.Int32(value)

	r.backend.AlSourceSetInt(source, param, value)
	r.applySourceIntParam(ctx, source, param, value)
	r.runCheckers()
	r.checkFatal()
}

func (r *Recorder) AlSourceSetFloat(ctx altfile.PtrToken, source uint32, param int32, value float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlSourceSetFloat, 1)
	r.enc.Uint32(source)
	r.enc.Int32(param)
	r.enc.Float32(value)

	r.backend.AlSourceSetFloat(source, param, value)
	r.applySourceFloatParam(ctx, source, param, value)
	r.runCheckers()
	r.checkFatal()
}

func (r *Recorder) alSourceTransport(ctx altfile.PtrToken, tag altfile.Tag, source uint32, call func(uint32)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(tag, 2)
	r.enc.Uint32(source)

	call(source)

	// Unconditionally (re-)link this source into the playlist so the
	// checker pass below visits it regardless of which way its state
	// is about to move; pollSource is what actually detects the
	// transition, emits it, and decides whether the source stays
	// linked.
	if c := r.findContext(ctx); c != nil {
		if s := c.Sources.Lookup(source); s != nil {
			c.Sources.EnterPlaylist(s)
		}
	}
	r.runCheckers()
	r.checkFatal()
}

// AlSourcePlay wraps alSourcePlay, adding the source to its context's
// playlist once the backend reports it PLAYING (only playlist members
// are polled — spec.md §4.5).
func (r *Recorder) AlSourcePlay(ctx altfile.PtrToken, source uint32) {
	r.alSourceTransport(ctx, altfile.TagAlSourcePlay, source, r.backend.AlSourcePlay)
}

func (r *Recorder) AlSourcePause(ctx altfile.PtrToken, source uint32) {
	r.alSourceTransport(ctx, altfile.TagAlSourcePause, source, r.backend.AlSourcePause)
}

func (r *Recorder) AlSourceStop(ctx altfile.PtrToken, source uint32) {
	r.alSourceTransport(ctx, altfile.TagAlSourceStop, source, r.backend.AlSourceStop)
}

func (r *Recorder) AlSourceRewind(ctx altfile.PtrToken, source uint32) {
	r.alSourceTransport(ctx, altfile.TagAlSourceRewind, source, r.backend.AlSourceRewind)
}

func (r *Recorder) applySourceIntParam(ctx altfile.PtrToken, source uint32, param, value int32) {
	c := r.findContext(ctx)
	if c == nil {
		return
	}
	s := c.Sources.Lookup(source)
	if s == nil {
		return
	}
	switch param {
	case paramBuffer:
		s.Buffer = uint32(value)
	case paramSourceRelative:
		s.SourceRelative = value != 0
	case paramLooping:
		s.Looping = value != 0
	case paramSourceType:
		s.SourceType = value
	}
}

func (r *Recorder) applySourceFloatParam(ctx altfile.PtrToken, source uint32, param int32, value float32) {
	c := r.findContext(ctx)
	if c == nil {
		return
	}
	s := c.Sources.Lookup(source)
	if s == nil {
		return
	}
	switch param {
	case paramGain:
		s.Gain = value
	case paramPitch:
		s.Pitch = value
	case paramMinGain:
		s.MinGain = value
	case paramMaxGain:
		s.MaxGain = value
	case paramMaxDistance:
		s.MaxDistance = value
	case paramRolloffFactor:
		s.RolloffFactor = value
	case paramReferenceDistance:
		s.ReferenceDistance = value
	case paramConeOuterGain:
		s.ConeOuterGain = value
	case paramConeInnerAngle:
		s.ConeInnerAngle = value
	case paramConeOuterAngle:
		s.ConeOuterAngle = value
	}
}

// Source-property param enums this reimplementation recognizes.
// Values match OpenAL-soft's al.h exactly so a captured real trace and
// a fake-backend trace agree on the wire.
const (
	paramSourceRelative    = 0x202
	paramConeInnerAngle    = 0x1001
	paramConeOuterAngle    = 0x1002
	paramPitch             = 0x1003
	paramGain              = 0x100A
	paramMinGain           = 0x100D
	paramMaxGain           = 0x100E
	paramMaxDistance       = 0x1023
	paramRolloffFactor     = 0x1021
	paramConeOuterGain     = 0x1022
	paramReferenceDistance = 0x1020
	paramBuffer            = 0x1009
	paramSourceType        = 0x1027
	paramLooping           = 0x1007
)

// ---- Context-global and listener state ----

// AlDistanceModel wraps alDistanceModel. Like alSourcei's param, ctx is
// a recorder-only lookup key: the real call takes no context argument.
func (r *Recorder) AlDistanceModel(ctx altfile.PtrToken, model int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlDistanceModel, 1)
	r.enc.Int32(model)

	r.backend.AlDistanceModel(ctx, model)

	if c := r.findContext(ctx); c != nil && c.DistanceModel != model {
		c.DistanceModel = model
		r.enc.Tag(altfile.TagContextStateChangedEnum)
		r.enc.Ptr(c.Handle)
		r.enc.Int32(paramDistanceModel)
		r.enc.Int32(model)
	}
	r.runCheckers()
	r.checkFatal()
}

// alContextFloatParam is the shared body of AlDopplerFactor/
// AlDopplerVelocity/AlSpeedOfSound: invoke the backend, then diff value
// against whichever Context field the field callback selects and emit
// ContextStateChangedFloat if it moved. field runs under r.mu, same as
// every other shadow-state mutation.
func (r *Recorder) alContextFloatParam(ctx altfile.PtrToken, tag altfile.Tag, param int32, value float32, call func(altfile.PtrToken, float32), field func(*altregistry.Context) *float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(tag, 2)
	r.enc.Float32(value)

	call(ctx, value)

	if c := r.findContext(ctx); c != nil {
		if cur := field(c); *cur != value {
			*cur = value
			r.enc.Tag(altfile.TagContextStateChangedFloat)
			r.enc.Ptr(c.Handle)
			r.enc.Int32(param)
			r.enc.Float32(value)
		}
	}
	r.runCheckers()
	r.checkFatal()
}

// AlDopplerFactor wraps alDopplerFactor.
func (r *Recorder) AlDopplerFactor(ctx altfile.PtrToken, value float32) {
	r.alContextFloatParam(ctx, altfile.TagAlDopplerFactor, paramDopplerFactor, value, r.backend.AlDopplerFactor,
		func(c *altregistry.Context) *float32 { return &c.DopplerFactor })
}

// AlDopplerVelocity wraps alDopplerVelocity.
func (r *Recorder) AlDopplerVelocity(ctx altfile.PtrToken, value float32) {
	r.alContextFloatParam(ctx, altfile.TagAlDopplerVelocity, paramDopplerVelocity, value, r.backend.AlDopplerVelocity,
		func(c *altregistry.Context) *float32 { return &c.DopplerVelocity })
}

// AlSpeedOfSound wraps alSpeedOfSound.
func (r *Recorder) AlSpeedOfSound(ctx altfile.PtrToken, value float32) {
	r.alContextFloatParam(ctx, altfile.TagAlSpeedOfSound, paramSpeedOfSound, value, r.backend.AlSpeedOfSound,
		func(c *altregistry.Context) *float32 { return &c.SpeedOfSound })
}

// AlListenerSetFloat wraps alListenerf/alListener3f/alListenerfv: values
// has length 1 for AL_GAIN, 3 for AL_POSITION/AL_VELOCITY, or 6 for
// AL_ORIENTATION.
func (r *Recorder) AlListenerSetFloat(ctx altfile.PtrToken, param int32, values []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlListenerSetFloat, 1)
	r.enc.Int32(param)
	r.enc.Uint32(uint32(len(values)))
	for _, v := range values {
		r.enc.Float32(v)
	}

	r.backend.AlListenerSetFloat(ctx, param, values)

	if c := r.findContext(ctx); c != nil {
		r.applyListenerParam(c, param, values)
	}
	r.runCheckers()
	r.checkFatal()
}

// applyListenerParam diffs an alListener* call's values against the
// shadow record and, if they differ, updates it and emits
// ListenerStateChangedFloatV — mirroring pollSource's emitFloat3, but
// driven by the call's own argument instead of a poll, since the
// listener has no property that changes behind the recorder's back.
func (r *Recorder) applyListenerParam(c *altregistry.Context, param int32, values []float32) {
	switch param {
	case paramGain:
		if len(values) != 1 || c.ListenerGain == values[0] {
			return
		}
		c.ListenerGain = values[0]
	case paramPosition:
		if len(values) != 3 {
			return
		}
		var v [3]float32
		copy(v[:], values)
		if c.ListenerPosition == v {
			return
		}
		c.ListenerPosition = v
	case paramVelocity:
		if len(values) != 3 {
			return
		}
		var v [3]float32
		copy(v[:], values)
		if c.ListenerVelocity == v {
			return
		}
		c.ListenerVelocity = v
	case paramOrientation:
		if len(values) != 6 {
			return
		}
		var v [6]float32
		copy(v[:], values)
		if c.ListenerOrientation == v {
			return
		}
		c.ListenerOrientation = v
	default:
		return
	}
	r.enc.Tag(altfile.TagListenerStateChangedFloatV)
	r.enc.Ptr(c.Handle)
	r.enc.Int32(param)
	r.enc.Uint32(uint32(len(values)))
	for _, v := range values {
		r.enc.Float32(v)
	}
}

// Context-global and listener param enums, matching al.h/alc.h.
const (
	paramDistanceModel   = 0xD000
	paramDopplerFactor   = 0xC000
	paramDopplerVelocity = 0xC001
	paramSpeedOfSound    = 0xC003
	paramOrientation     = 0x100F
)

// ---- Source getters and buffer queueing ----

// AlGetSourceInt wraps alGetSourcei.
func (r *Recorder) AlGetSourceInt(source uint32, param int32) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlGetSourceInt, 1)
	r.enc.Uint32(source)
	r.enc.Int32(param)

	value := r.backend.AlGetSourceInt(source, param)
	r.enc.Int32(value)

	r.runCheckers()
	r.checkFatal()
	return value
}

// AlGetSourceFloat wraps alGetSourcef.
func (r *Recorder) AlGetSourceFloat(source uint32, param int32) float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlGetSourceFloat, 1)
	r.enc.Uint32(source)
	r.enc.Int32(param)

	value := r.backend.AlGetSourceFloat(source, param)
	r.enc.Float32(value)

	r.runCheckers()
	r.checkFatal()
	return value
}

// AlSourceQueueBuffers wraps alSourceQueueBuffers, growing the shadow
// record's queued count immediately; pollSource's BuffersQueued/
// BuffersProcessed diff still catches whatever the mixer does with the
// queue afterward.
func (r *Recorder) AlSourceQueueBuffers(ctx altfile.PtrToken, source uint32, buffers []uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlSourceQueueBuffers, 1)
	r.enc.Uint32(source)
	r.enc.Uint32(uint32(len(buffers)))
	for _, b := range buffers {
		r.enc.Uint32(b)
	}

	r.backend.AlSourceQueueBuffers(source, buffers)

	if c := r.findContext(ctx); c != nil {
		if s := c.Sources.Lookup(source); s != nil {
			s.BuffersQueued += int32(len(buffers))
		}
	}
	r.runCheckers()
	r.checkFatal()
}

// AlSourceUnqueueBuffers wraps alSourceUnqueueBuffers, returning the
// buffer names the backend actually removed (which may be fewer than
// n) and shrinking the shadow record's queued/processed counts by that
// many.
func (r *Recorder) AlSourceUnqueueBuffers(ctx altfile.PtrToken, source uint32, n int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlSourceUnqueueBuffers, 1)
	r.enc.Uint32(source)
	r.enc.Int32(int32(n))

	names := r.backend.AlSourceUnqueueBuffers(source, n)
	r.enc.Uint32(uint32(len(names)))
	for _, nm := range names {
		r.enc.Uint32(nm)
	}

	if c := r.findContext(ctx); c != nil {
		if s := c.Sources.Lookup(source); s != nil {
			s.BuffersQueued -= int32(len(names))
			if s.BuffersQueued < 0 {
				s.BuffersQueued = 0
			}
			if s.BuffersProcessed > int32(len(names)) {
				s.BuffersProcessed -= int32(len(names))
			} else {
				s.BuffersProcessed = 0
			}
		}
	}
	r.runCheckers()
	r.checkFatal()
	return names
}

// ---- Trace-only entry points ----

// AlTracePushScope increments the trace-scope nesting counter carried
// on every subsequent caller-info, until the matching pop.
func (r *Recorder) AlTracePushScope(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlTracePushScope, 1)
	r.enc.String(message, message != "")
	r.scope++
	r.checkFatal()
}

func (r *Recorder) AlTracePopScope() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlTracePopScope, 1)
	if r.scope > 0 {
		r.scope--
	}
	r.checkFatal()
}

func (r *Recorder) AlTraceMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlTraceMessage, 1)
	r.enc.String(message, message != "")
	r.checkFatal()
}

func (r *Recorder) AlTraceBufferLabel(buffer uint32, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlTraceBufferLabel, 1)
	r.enc.Uint32(buffer)
	r.enc.String(label, label != "")
	r.reg.Labels.Buffer[buffer] = label
	r.checkFatal()
}

func (r *Recorder) AlTraceSourceLabel(source uint32, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlTraceSourceLabel, 1)
	r.enc.Uint32(source)
	r.enc.String(label, label != "")
	r.reg.Labels.Source[source] = label
	r.checkFatal()
}

func (r *Recorder) AlcTraceDeviceLabel(device altfile.PtrToken, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcTraceDeviceLabel, 1)
	r.enc.Ptr(device)
	r.enc.String(label, label != "")
	r.reg.Labels.Device[device] = label
	r.checkFatal()
}

func (r *Recorder) AlcTraceContextLabel(ctx altfile.PtrToken, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beginCall(altfile.TagAlcTraceContextLabel, 1)
	r.enc.Ptr(ctx)
	r.enc.String(label, label != "")
	r.reg.Labels.Context[ctx] = label
	r.checkFatal()
}

// ---- registry lookups ----

func (r *Recorder) findDevice(handle altfile.PtrToken) *altregistry.Device {
	for _, d := range r.reg.Devices() {
		if d.Handle == handle {
			return d
		}
	}
	return nil
}

func (r *Recorder) deviceOrNull(handle altfile.PtrToken) *altregistry.Device {
	if d := r.findDevice(handle); d != nil {
		return d
	}
	return r.reg.NullDevice
}

func (r *Recorder) findContext(handle altfile.PtrToken) *altregistry.Context {
	for _, d := range r.reg.Devices() {
		for _, c := range d.Contexts() {
			if c.Handle == handle {
				return c
			}
		}
	}
	for _, c := range r.reg.NullDevice.Contexts() {
		if c.Handle == handle {
			return c
		}
	}
	return nil
}
