// Package altrecorder implements the interception-time half of the
// trace engine: a wrapper around every traced audio-API entry point
// that emits the call to an altfile.Encoder, shadows the object graph
// in an altregistry.Registry, and runs the state-change detector at
// the tail of every call.
//
// Go has no link-time symbol interposition, so Recorder does not
// literally wrap C symbols the way altrace_record.c does — the
// library-preloading shim that would expose the wrapped symbols is the
// external collaborator spec.md §1 puts out of scope. Instead Recorder
// wraps any Backend implementation: the real audio API through cgo (not
// provided here, matching the non-goal of reimplementing the audio API
// itself), or altrecorder/fake for tests and for cmd/altrace-record's
// self-contained demo mode.
package altrecorder

import "github.com/altrace-project/altrace/altfile"

// Backend is the minimal surface of the audio API Recorder wraps. Each
// method corresponds to one or more real entry points that share an
// argument shape (mirroring the Tag grouping in altfile/format.go);
// Recorder is responsible for the parts of the call template Backend
// has no opinion about: locking, stack capture, serialization, and
// shadow-state maintenance.
type Backend interface {
	// Device and context lifecycle.
	AlcOpenDevice(name string) altfile.PtrToken
	AlcCloseDevice(device altfile.PtrToken) bool
	AlcCreateContext(device altfile.PtrToken) altfile.PtrToken
	AlcMakeContextCurrent(ctx altfile.PtrToken) bool
	AlcDestroyContext(ctx altfile.PtrToken)
	AlcGetError(device altfile.PtrToken) int32
	AlcIsExtensionPresent(device altfile.PtrToken, name string) bool
	AlcGetString(device altfile.PtrToken, param int32) string

	// Context static state, queried once per context on first
	// alcMakeContextCurrent.
	ContextStaticState(ctx altfile.PtrToken) (vendor, renderer, version, extensions string)

	// Capture devices.
	AlcCaptureOpenDevice(name string, freq, format, bufferSize int32) altfile.PtrToken
	AlcCaptureCloseDevice(device altfile.PtrToken) bool
	AlcCaptureStart(device altfile.PtrToken)
	AlcCaptureStop(device altfile.PtrToken)
	CaptureSamples(device altfile.PtrToken) int32

	// Disconnect-extension polling.
	HasDisconnectExt(device altfile.PtrToken) bool
	Connected(device altfile.PtrToken) bool

	// Global AL error latch.
	AlGetError() int32

	// Buffers.
	AlGenBuffers(n int) []uint32
	AlDeleteBuffers(names []uint32) bool
	AlBufferData(buffer uint32, format, size, freq int32)

	// Sources.
	AlGenSources(n int) []uint32
	AlDeleteSources(names []uint32) bool
	AlSourceSetInt(source uint32, param int32, value int32)
	AlSourceSetFloat(source uint32, param int32, value float32)
	AlSourcePlay(source uint32)
	AlSourcePause(source uint32)
	AlSourceStop(source uint32)
	AlSourceRewind(source uint32)

	// AlGetSourceInt/AlGetSourceFloat wrap alGetSourcei/alGetSourcef: a
	// read-only query that reports the live value but, unlike
	// AlSourceSetInt/Float, never mutates the shadow record itself —
	// divergence from the shadow is still only ever surfaced by the
	// poll in checker.go.
	AlGetSourceInt(source uint32, param int32) int32
	AlGetSourceFloat(source uint32, param int32) float32

	// AlSourceQueueBuffers/AlSourceUnqueueBuffers wrap
	// alSourceQueueBuffers/alSourceUnqueueBuffers. Unqueue reports the
	// buffer names the backend actually removed, which may be fewer
	// than requested.
	AlSourceQueueBuffers(source uint32, buffers []uint32)
	AlSourceUnqueueBuffers(source uint32, n int) []uint32

	// QuerySource returns every property the state-change detector
	// tracks for a PLAYING source, for diffing against the shadow
	// record (spec.md §4.5, §3 Source).
	QuerySource(source uint32) SourceSnapshot

	// Context-global state (distance model, doppler, speed of sound)
	// and the listener's float-vector properties. Unlike source
	// properties these are never polled: the new value is already
	// authoritative from the wrapped call's own argument, so Recorder
	// diffs it against the shadow record and emits the state-changed
	// event directly instead of waiting for the next checker pass.
	AlDistanceModel(ctx altfile.PtrToken, model int32)
	AlDopplerFactor(ctx altfile.PtrToken, value float32)
	AlDopplerVelocity(ctx altfile.PtrToken, value float32)
	AlSpeedOfSound(ctx altfile.PtrToken, value float32)
	AlListenerSetFloat(ctx altfile.PtrToken, param int32, values []float32)
}

// SourceSnapshot is a point-in-time read of every polled source
// property, used by the checker to diff against the shadow record.
type SourceSnapshot struct {
	State             int32 // altfsm.State value as reported by the backend
	Pitch             float32
	Gain              float32
	MinGain           float32
	MaxGain           float32
	MaxDistance       float32
	RolloffFactor     float32
	ReferenceDistance float32
	ConeOuterGain     float32
	ConeInnerAngle    float32
	ConeOuterAngle    float32
	Position          [3]float32
	Velocity          [3]float32
	Direction         [3]float32
	SourceRelative    bool
	Looping           bool
	Buffer            uint32
	BuffersQueued     int32
	BuffersProcessed  int32
}
