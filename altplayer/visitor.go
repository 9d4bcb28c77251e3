package altplayer

import "github.com/altrace-project/altrace/altfile"

// CallerInfo is the player-side, resolved counterpart of
// altfile.CallerInfoWire: every Visitor method receives one. Symbols
// are resolved against the frame map mirror rather than carried on the
// wire a second time (invariant 4).
type CallerInfo struct {
	ThreadID   int      // dense id, per spec.md invariant 5
	RawFrames  []uint64 // innermost first
	Frames     []string // resolved symbols, parallel to RawFrames
	TraceScope int      // current nesting depth (alTracePushScope/PopScope)
	Offset     int64    // file offset this event starts at
	UserData   any      // opaque token supplied at Play start
}

// Visitor is the player's contract with its front-end: one method per
// entry point or synthetic event this reimplementation's Recorder can
// emit (a strict subset of the Tag space — see entrypoints.go in
// altrecorder for why), plus Progress and EOS. Front-ends that only
// care about a handful of events should embed NopVisitor and override
// what they need, the same "small interface, embeddable default"
// pattern visitor-style Go APIs use throughout the standard library
// (e.g. http.Handler / http.HandlerFunc, ast.Visitor).
type Visitor interface {
	// Device/context lifecycle.
	OnAlcOpenDevice(ci CallerInfo, name string, device altfile.PtrToken)
	OnAlcCloseDevice(ci CallerInfo, device altfile.PtrToken, ok bool)
	OnAlcCreateContext(ci CallerInfo, device, ctx altfile.PtrToken)
	OnAlcMakeContextCurrent(ci CallerInfo, ctx altfile.PtrToken, ok bool)
	OnAlcDestroyContext(ci CallerInfo, ctx altfile.PtrToken)
	OnAlcGetError(ci CallerInfo, device altfile.PtrToken, code int32)

	// Capture devices.
	OnAlcCaptureOpenDevice(ci CallerInfo, name string, freq, format, bufferSize int32, device altfile.PtrToken)
	OnAlcCaptureCloseDevice(ci CallerInfo, device altfile.PtrToken, ok bool)
	OnAlcCaptureStart(ci CallerInfo, device altfile.PtrToken)
	OnAlcCaptureStop(ci CallerInfo, device altfile.PtrToken)

	// Global AL error.
	OnAlGetError(ci CallerInfo, code int32)

	// Buffers.
	OnAlGenBuffers(ci CallerInfo, names []uint32)
	OnAlDeleteBuffers(ci CallerInfo, names []uint32, ok bool)
	OnAlBufferData(ci CallerInfo, buffer uint32, format, size, freq int32)

	// Sources.
	OnAlGenSources(ci CallerInfo, names []uint32)
	OnAlDeleteSources(ci CallerInfo, names []uint32, ok bool)
	OnAlSourceSetInt(ci CallerInfo, source uint32, param, value int32)
	OnAlSourceSetFloat(ci CallerInfo, source uint32, param int32, value float32)
	OnAlGetSourceInt(ci CallerInfo, source uint32, param, value int32)
	OnAlGetSourceFloat(ci CallerInfo, source uint32, param int32, value float32)
	OnAlSourcePlay(ci CallerInfo, source uint32)
	OnAlSourcePause(ci CallerInfo, source uint32)
	OnAlSourceStop(ci CallerInfo, source uint32)
	OnAlSourceRewind(ci CallerInfo, source uint32)
	OnAlSourceQueueBuffers(ci CallerInfo, source uint32, buffers []uint32)
	OnAlSourceUnqueueBuffers(ci CallerInfo, source uint32, requested int32, buffers []uint32)

	// Context-global and listener state.
	OnAlDistanceModel(ci CallerInfo, model int32)
	OnAlDopplerFactor(ci CallerInfo, value float32)
	OnAlDopplerVelocity(ci CallerInfo, value float32)
	OnAlSpeedOfSound(ci CallerInfo, value float32)
	OnAlListenerSetFloat(ci CallerInfo, param int32, values []float32)

	// Trace-only entry points.
	OnAlTracePushScope(ci CallerInfo, message string)
	OnAlTracePopScope(ci CallerInfo)
	OnAlTraceMessage(ci CallerInfo, message string)
	OnAlTraceBufferLabel(ci CallerInfo, buffer uint32, label string)
	OnAlTraceSourceLabel(ci CallerInfo, source uint32, label string)
	OnAlcTraceDeviceLabel(ci CallerInfo, device altfile.PtrToken, label string)
	OnAlcTraceContextLabel(ci CallerInfo, ctx altfile.PtrToken, label string)

	// Synthetic state-change events (no caller-info in the wire format
	// — these are emitted outside any wrapped call — so Offset/
	// TraceScope on the CallerInfo passed here reflect the player's
	// position when it decoded the event, not a captured call; ThreadID
	// is 0 and there are no frames).
	OnALErrorTriggered(ci CallerInfo, code int32)
	OnALCErrorTriggered(ci CallerInfo, device altfile.PtrToken, code int32)
	OnDeviceStateChangedBool(ci CallerInfo, device altfile.PtrToken, param int32, value bool)
	OnDeviceStateChangedInt(ci CallerInfo, device altfile.PtrToken, param int32, value int32)
	OnContextStateChangedEnum(ci CallerInfo, ctx altfile.PtrToken, param, value int32)
	OnContextStateChangedFloat(ci CallerInfo, ctx altfile.PtrToken, param int32, value float32)
	OnContextStateChangedString(ci CallerInfo, ctx altfile.PtrToken, param int32, value string)
	OnListenerStateChangedFloatV(ci CallerInfo, ctx altfile.PtrToken, param int32, values []float32)
	OnSourceStateChangedBool(ci CallerInfo, source altfile.PtrToken, param int32, value bool)
	OnSourceStateChangedEnum(ci CallerInfo, source altfile.PtrToken, param int32, value int32)
	OnSourceStateChangedInt(ci CallerInfo, source altfile.PtrToken, param int32, value int32)
	OnSourceStateChangedUint(ci CallerInfo, source altfile.PtrToken, param int32, value uint32)
	OnSourceStateChangedFloat(ci CallerInfo, source altfile.PtrToken, param int32, value float32)
	OnSourceStateChangedFloat3(ci CallerInfo, source altfile.PtrToken, param int32, values [3]float32)
	OnBufferStateChangedInt(ci CallerInfo, buffer altfile.PtrToken, param, value int32)

	// Progress is invoked before every event is dispatched; returning
	// false cancels playback cleanly (spec.md §4.6/§7 "player-cancel").
	Progress(offset, size int64) bool

	// EOS terminates playback, clean or not (spec.md §7).
	EOS(clean bool, finalTimestampMS uint32)
}

// NopVisitor implements Visitor with every method a no-op except
// Progress (which always continues). Front-ends embed it and override
// only the events they care about.
type NopVisitor struct{}

func (NopVisitor) OnAlcOpenDevice(CallerInfo, string, altfile.PtrToken)                 {}
func (NopVisitor) OnAlcCloseDevice(CallerInfo, altfile.PtrToken, bool)                  {}
func (NopVisitor) OnAlcCreateContext(CallerInfo, altfile.PtrToken, altfile.PtrToken)    {}
func (NopVisitor) OnAlcMakeContextCurrent(CallerInfo, altfile.PtrToken, bool)           {}
func (NopVisitor) OnAlcDestroyContext(CallerInfo, altfile.PtrToken)                     {}
func (NopVisitor) OnAlcGetError(CallerInfo, altfile.PtrToken, int32)                    {}
func (NopVisitor) OnAlcCaptureOpenDevice(CallerInfo, string, int32, int32, int32, altfile.PtrToken) {
}
func (NopVisitor) OnAlcCaptureCloseDevice(CallerInfo, altfile.PtrToken, bool) {}
func (NopVisitor) OnAlcCaptureStart(CallerInfo, altfile.PtrToken)             {}
func (NopVisitor) OnAlcCaptureStop(CallerInfo, altfile.PtrToken)              {}
func (NopVisitor) OnAlGetError(CallerInfo, int32)                             {}
func (NopVisitor) OnAlGenBuffers(CallerInfo, []uint32)                        {}
func (NopVisitor) OnAlDeleteBuffers(CallerInfo, []uint32, bool)               {}
func (NopVisitor) OnAlBufferData(CallerInfo, uint32, int32, int32, int32)     {}
func (NopVisitor) OnAlGenSources(CallerInfo, []uint32)                        {}
func (NopVisitor) OnAlDeleteSources(CallerInfo, []uint32, bool)               {}
func (NopVisitor) OnAlSourceSetInt(CallerInfo, uint32, int32, int32)          {}
func (NopVisitor) OnAlSourceSetFloat(CallerInfo, uint32, int32, float32)      {}
func (NopVisitor) OnAlGetSourceInt(CallerInfo, uint32, int32, int32)          {}
func (NopVisitor) OnAlGetSourceFloat(CallerInfo, uint32, int32, float32)      {}
func (NopVisitor) OnAlSourcePlay(CallerInfo, uint32)                          {}
func (NopVisitor) OnAlSourcePause(CallerInfo, uint32)                         {}
func (NopVisitor) OnAlSourceStop(CallerInfo, uint32)                          {}
func (NopVisitor) OnAlSourceRewind(CallerInfo, uint32)                        {}
func (NopVisitor) OnAlSourceQueueBuffers(CallerInfo, uint32, []uint32)        {}
func (NopVisitor) OnAlSourceUnqueueBuffers(CallerInfo, uint32, int32, []uint32) {}
func (NopVisitor) OnAlDistanceModel(CallerInfo, int32)                        {}
func (NopVisitor) OnAlDopplerFactor(CallerInfo, float32)                      {}
func (NopVisitor) OnAlDopplerVelocity(CallerInfo, float32)                    {}
func (NopVisitor) OnAlSpeedOfSound(CallerInfo, float32)                       {}
func (NopVisitor) OnAlListenerSetFloat(CallerInfo, int32, []float32)          {}
func (NopVisitor) OnAlTracePushScope(CallerInfo, string)                     {}
func (NopVisitor) OnAlTracePopScope(CallerInfo)                              {}
func (NopVisitor) OnAlTraceMessage(CallerInfo, string)                       {}
func (NopVisitor) OnAlTraceBufferLabel(CallerInfo, uint32, string)           {}
func (NopVisitor) OnAlTraceSourceLabel(CallerInfo, uint32, string)           {}
func (NopVisitor) OnAlcTraceDeviceLabel(CallerInfo, altfile.PtrToken, string) {}
func (NopVisitor) OnAlcTraceContextLabel(CallerInfo, altfile.PtrToken, string) {}
func (NopVisitor) OnALErrorTriggered(CallerInfo, int32)                       {}
func (NopVisitor) OnALCErrorTriggered(CallerInfo, altfile.PtrToken, int32)    {}
func (NopVisitor) OnDeviceStateChangedBool(CallerInfo, altfile.PtrToken, int32, bool) {}
func (NopVisitor) OnDeviceStateChangedInt(CallerInfo, altfile.PtrToken, int32, int32) {}
func (NopVisitor) OnContextStateChangedEnum(CallerInfo, altfile.PtrToken, int32, int32) {}
func (NopVisitor) OnContextStateChangedFloat(CallerInfo, altfile.PtrToken, int32, float32) {
}
func (NopVisitor) OnContextStateChangedString(CallerInfo, altfile.PtrToken, int32, string) {
}
func (NopVisitor) OnListenerStateChangedFloatV(CallerInfo, altfile.PtrToken, int32, []float32) {
}
func (NopVisitor) OnSourceStateChangedBool(CallerInfo, altfile.PtrToken, int32, bool)  {}
func (NopVisitor) OnSourceStateChangedEnum(CallerInfo, altfile.PtrToken, int32, int32) {}
func (NopVisitor) OnSourceStateChangedInt(CallerInfo, altfile.PtrToken, int32, int32)  {}
func (NopVisitor) OnSourceStateChangedUint(CallerInfo, altfile.PtrToken, int32, uint32) {}
func (NopVisitor) OnSourceStateChangedFloat(CallerInfo, altfile.PtrToken, int32, float32) {
}
func (NopVisitor) OnSourceStateChangedFloat3(CallerInfo, altfile.PtrToken, int32, [3]float32) {
}
func (NopVisitor) OnBufferStateChangedInt(CallerInfo, altfile.PtrToken, int32, int32) {}
func (NopVisitor) Progress(int64, int64) bool           { return true }
func (NopVisitor) EOS(bool, uint32)                      {}

var _ Visitor = NopVisitor{}
