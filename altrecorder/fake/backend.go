// Package fake implements altrecorder.Backend entirely in memory,
// driven by altfsm's source-state table. It stands in for the real
// audio API in unit tests and in cmd/altrace-record's self-contained
// demo mode, the same role spec.md §9 asks a "value, not a true
// global" recorder to make possible: "unit tests construct in-memory
// recorders targeting a byte buffer" extends naturally here to "and a
// fake backend".
package fake

import (
	"sync"

	"github.com/altrace-project/altrace/altfile"
	"github.com/altrace-project/altrace/altfsm"
	"github.com/altrace-project/altrace/altrecorder"
)

type device struct {
	handle           altfile.PtrToken
	hasDisconnectExt bool
	connected        bool
	isCapture        bool
	captureSamples   int32
	errorLatch       int32
}

type source struct {
	fsm               altfsm.Source
	pitch             float32
	gain              float32
	minGain           float32
	maxGain           float32
	maxDistance       float32
	rolloffFactor     float32
	referenceDistance float32
	coneOuterGain     float32
	coneInnerAngle    float32
	coneOuterAngle    float32
	position          [3]float32
	velocity          [3]float32
	direction         [3]float32
	relative          bool
	looping           bool
	buffer            uint32
	queuedBuffers     []uint32
	processed         int32
}

// Backend is an in-memory stand-in for the audio API. It is safe for
// concurrent use from multiple goroutines calling through a single
// altrecorder.Recorder (the recorder's own mutex already serializes
// these calls, but Backend keeps its own lock so it can also be driven
// directly by tests that want to simulate state changing "behind the
// recorder's back", e.g. a disconnect between two wrapped calls).
type Backend struct {
	mu sync.Mutex

	nextHandle uint64
	nextName   uint32
	devices    map[altfile.PtrToken]*device
	sources    map[uint32]*source
	buffers    map[uint32]struct{}
	errorLatch int32
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		nextHandle: 1,
		nextName:   1,
		devices:    make(map[altfile.PtrToken]*device),
		sources:    make(map[uint32]*source),
		buffers:    make(map[uint32]struct{}),
	}
}

func (b *Backend) allocHandle() altfile.PtrToken {
	h := altfile.PtrToken(b.nextHandle)
	b.nextHandle++
	return h
}

func (b *Backend) allocName() uint32 {
	n := b.nextName
	b.nextName++
	return n
}

func (b *Backend) AlcOpenDevice(name string) altfile.PtrToken {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.allocHandle()
	b.devices[h] = &device{handle: h, hasDisconnectExt: true, connected: true}
	return h
}

func (b *Backend) AlcCloseDevice(dev altfile.PtrToken) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.devices[dev]; !ok {
		return false
	}
	delete(b.devices, dev)
	return true
}

func (b *Backend) AlcCreateContext(dev altfile.PtrToken) altfile.PtrToken {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocHandle()
}

func (b *Backend) AlcMakeContextCurrent(ctx altfile.PtrToken) bool { return true }

func (b *Backend) AlcDestroyContext(ctx altfile.PtrToken) {}

func (b *Backend) AlcGetError(dev altfile.PtrToken) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[dev]
	if !ok {
		return 0
	}
	code := d.errorLatch
	d.errorLatch = 0
	return code
}

func (b *Backend) AlcIsExtensionPresent(dev altfile.PtrToken, name string) bool { return false }

func (b *Backend) AlcGetString(dev altfile.PtrToken, param int32) string { return "" }

func (b *Backend) ContextStaticState(ctx altfile.PtrToken) (vendor, renderer, version, extensions string) {
	return "Fake Vendor", "Fake Renderer", "1.1 FAKE", "AL_EXT_FLOAT32"
}

func (b *Backend) AlcCaptureOpenDevice(name string, freq, format, bufferSize int32) altfile.PtrToken {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.allocHandle()
	b.devices[h] = &device{handle: h, isCapture: true}
	return h
}

func (b *Backend) AlcCaptureCloseDevice(dev altfile.PtrToken) bool { return b.AlcCloseDevice(dev) }

func (b *Backend) AlcCaptureStart(dev altfile.PtrToken) {}

func (b *Backend) AlcCaptureStop(dev altfile.PtrToken) {}

func (b *Backend) CaptureSamples(dev altfile.PtrToken) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[dev]
	if !ok {
		return 0
	}
	return d.captureSamples
}

// AdvanceCapture lets a test simulate the driver accumulating capture
// samples between wrapped calls.
func (b *Backend) AdvanceCapture(dev altfile.PtrToken, n int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.devices[dev]; ok {
		d.captureSamples += n
	}
}

func (b *Backend) HasDisconnectExt(dev altfile.PtrToken) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[dev]
	return ok && d.hasDisconnectExt
}

func (b *Backend) Connected(dev altfile.PtrToken) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[dev]
	return ok && d.connected
}

// Disconnect lets a test simulate the driver flipping CONNECTED to
// false between wrapped calls (spec.md §8 seed scenario 4).
func (b *Backend) Disconnect(dev altfile.PtrToken) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d, ok := b.devices[dev]; ok {
		d.connected = false
	}
}

func (b *Backend) AlGetError() int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	code := b.errorLatch
	b.errorLatch = 0
	return code
}

// RaiseError lets a test latch a global AL error the way an invalid
// call (e.g. BufferData with a bad format enum) would.
func (b *Backend) RaiseError(code int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.errorLatch == 0 {
		b.errorLatch = code
	}
}

func (b *Backend) AlGenBuffers(n int) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint32, n)
	for i := range out {
		name := b.allocName()
		b.buffers[name] = struct{}{}
		out[i] = name
	}
	return out
}

func (b *Backend) AlDeleteBuffers(names []uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range names {
		delete(b.buffers, n)
	}
	return true
}

func (b *Backend) AlBufferData(buffer uint32, format, size, freq int32) {}

func (b *Backend) AlGenSources(n int) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint32, n)
	for i := range out {
		name := b.allocName()
		b.sources[name] = &source{gain: 1, minGain: 0, maxGain: 1, pitch: 1, maxDistance: 3.40282e38, referenceDistance: 1}
		out[i] = name
	}
	return out
}

func (b *Backend) AlDeleteSources(names []uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range names {
		delete(b.sources, n)
	}
	return true
}

func (b *Backend) AlSourceSetInt(src uint32, param, value int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return
	}
	switch param {
	case 0x1009: // AL_BUFFER
		s.buffer = uint32(value)
	case 0x202: // AL_SOURCE_RELATIVE
		s.relative = value != 0
	case 0x1007: // AL_LOOPING
		s.looping = value != 0
	}
}

func (b *Backend) AlSourceSetFloat(src uint32, param int32, value float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return
	}
	switch param {
	case 0x100A:
		s.gain = value
	case 0x1003:
		s.pitch = value
	}
}

func (b *Backend) AlGetSourceInt(src uint32, param int32) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return 0
	}
	switch param {
	case 0x1009: // AL_BUFFER
		return int32(s.buffer)
	case 0x202: // AL_SOURCE_RELATIVE
		return boolToInt32(s.relative)
	case 0x1007: // AL_LOOPING
		return boolToInt32(s.looping)
	case 0x1015: // AL_BUFFERS_QUEUED
		return int32(len(s.queuedBuffers))
	case 0x1016: // AL_BUFFERS_PROCESSED
		return s.processed
	}
	return 0
}

func (b *Backend) AlGetSourceFloat(src uint32, param int32) float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return 0
	}
	switch param {
	case 0x100A:
		return s.gain
	case 0x1003:
		return s.pitch
	}
	return 0
}

func boolToInt32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

func (b *Backend) AlSourceQueueBuffers(src uint32, buffers []uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.queuedBuffers = append(s.queuedBuffers, buffers...)
	}
}

// AlSourceUnqueueBuffers removes up to n buffers from the front of the
// queue, the order alSourceUnqueueBuffers guarantees, and reports the
// names actually removed.
func (b *Backend) AlSourceUnqueueBuffers(src uint32, n int) []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return nil
	}
	if n > len(s.queuedBuffers) {
		n = len(s.queuedBuffers)
	}
	removed := append([]uint32(nil), s.queuedBuffers[:n]...)
	s.queuedBuffers = s.queuedBuffers[n:]
	s.processed += int32(n)
	return removed
}

func (b *Backend) AlDistanceModel(ctx altfile.PtrToken, model int32) {}

func (b *Backend) AlDopplerFactor(ctx altfile.PtrToken, value float32) {}

func (b *Backend) AlDopplerVelocity(ctx altfile.PtrToken, value float32) {}

func (b *Backend) AlSpeedOfSound(ctx altfile.PtrToken, value float32) {}

func (b *Backend) AlListenerSetFloat(ctx altfile.PtrToken, param int32, values []float32) {}

func (b *Backend) AlSourcePlay(src uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.fsm.Apply(altfsm.Play)
	}
}

func (b *Backend) AlSourcePause(src uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.fsm.Apply(altfsm.Pause)
	}
}

func (b *Backend) AlSourceStop(src uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.fsm.Apply(altfsm.Stop)
	}
}

func (b *Backend) AlSourceRewind(src uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.fsm.Apply(altfsm.Rewind)
	}
}

// FinishPlaying lets a test simulate the mixer reaching the end of a
// buffer and transitioning a playing source to STOPPED on its own,
// without any wrapped call — the asynchronous mutation the state-change
// detector exists to surface.
func (b *Backend) FinishPlaying(src uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sources[src]; ok {
		s.fsm.State = altfsm.Stopped
	}
}

func (b *Backend) QuerySource(src uint32) altrecorder.SourceSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sources[src]
	if !ok {
		return altrecorder.SourceSnapshot{}
	}
	return altrecorder.SourceSnapshot{
		State:             int32(s.fsm.State),
		Pitch:             s.pitch,
		Gain:              s.gain,
		MinGain:           s.minGain,
		MaxGain:           s.maxGain,
		MaxDistance:       s.maxDistance,
		RolloffFactor:     s.rolloffFactor,
		ReferenceDistance: s.referenceDistance,
		ConeOuterGain:     s.coneOuterGain,
		ConeInnerAngle:    s.coneInnerAngle,
		ConeOuterAngle:    s.coneOuterAngle,
		Position:          s.position,
		Velocity:          s.velocity,
		Direction:         s.direction,
		SourceRelative:    s.relative,
		Looping:           s.looping,
		Buffer:            s.buffer,
		BuffersQueued:     int32(len(s.queuedBuffers)),
		BuffersProcessed:  s.processed,
	}
}

var _ altrecorder.Backend = (*Backend)(nil)
