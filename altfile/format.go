// Package altfile implements the on-disk trace format shared by the
// recorder and the player: a magic/version header followed by a stream
// of length-implicit, tag-prefixed events.
package altfile

// Magic identifies an altrace trace file. It is the first four bytes
// of every trace, little-endian.
const Magic uint32 = 0x4c54414f // "OATL" read little-endian

// FormatVersion is bumped whenever the wire layout of an existing tag
// changes. Readers reject any version they were not built to decode.
const FormatVersion uint32 = 1

// Tag identifies the shape of the event that follows it in the stream.
//
// The audio API this format traces has on the order of a hundred
// entry points, but most of them differ only in argument arity
// (alSourcef/alSource3f/alSourcefv all set a float-valued source
// property; alGetSourcei/alGetSourceiv both read an int-valued one).
// Rather than one tag per C symbol, entry points that update or query
// the same shadow-state slot share one tag with a variable-length
// value payload (TagAlListenerSetFloat carries a counted float array;
// the source-property tags carry a single value); argument-count
// differences live in the recorder's per-entry-point descriptor table,
// not in the wire format. This keeps the tag space proportional to the
// number of distinct *shapes* of call, which is what the player
// actually needs to dispatch on.
type Tag uint32

const (
	TagInvalid Tag = iota

	// ALC device/context lifecycle and queries.
	TagAlcOpenDevice
	TagAlcCloseDevice
	TagAlcCreateContext
	TagAlcMakeContextCurrent
	TagAlcProcessContext
	TagAlcSuspendContext
	TagAlcDestroyContext
	TagAlcGetCurrentContext
	TagAlcGetContextsDevice
	TagAlcGetError
	TagAlcGetIntegerv
	TagAlcGetString
	TagAlcIsExtensionPresent
	TagAlcGetProcAddress
	TagAlcGetEnumValue
	TagAlcCaptureOpenDevice
	TagAlcCaptureCloseDevice
	TagAlcCaptureStart
	TagAlcCaptureStop
	TagAlcCaptureSamples

	// AL global state.
	TagAlDopplerFactor
	TagAlDopplerVelocity
	TagAlSpeedOfSound
	TagAlDistanceModel
	TagAlEnable
	TagAlDisable
	TagAlIsEnabled
	TagAlGetString
	TagAlGetBooleanv
	TagAlGetIntegerv
	TagAlGetFloatv
	TagAlGetDoublev
	TagAlIsExtensionPresent
	TagAlGetError
	TagAlGetProcAddress
	TagAlGetEnumValue

	// AL listener.
	TagAlListenerSetFloat // alListenerf / alListener3f / alListenerfv
	TagAlGetListenerFloat // alGetListenerf / alGetListener3f / alGetListenerfv

	// AL source lifecycle, properties, and transport.
	TagAlGenSources
	TagAlDeleteSources
	TagAlIsSource
	TagAlSourceSetFloat // alSourcef / alSource3f / alSourcefv
	TagAlSourceSetInt   // alSourcei / alSource3i / alSourceiv
	TagAlGetSourceFloat
	TagAlGetSourceInt
	TagAlSourcePlay
	TagAlSourcePlayv
	TagAlSourcePause
	TagAlSourcePausev
	TagAlSourceRewind
	TagAlSourceRewindv
	TagAlSourceStop
	TagAlSourceStopv
	TagAlSourceQueueBuffers
	TagAlSourceUnqueueBuffers

	// AL buffer lifecycle and properties.
	TagAlGenBuffers
	TagAlDeleteBuffers
	TagAlIsBuffer
	TagAlBufferData
	TagAlBufferSetFloat
	TagAlBufferSetInt
	TagAlGetBufferFloat
	TagAlGetBufferInt

	// Trace-only entry points (not real audio API calls).
	TagAlTracePushScope
	TagAlTracePopScope
	TagAlTraceMessage
	TagAlTraceBufferLabel
	TagAlTraceSourceLabel
	TagAlcTraceDeviceLabel
	TagAlcTraceContextLabel

	// Synthetic events emitted by the recorder out of band from any
	// single entry point.
	TagNewCallstackSymbols
	TagALErrorTriggered
	TagALCErrorTriggered
	TagDeviceStateChangedBool
	TagDeviceStateChangedInt
	TagContextStateChangedEnum
	TagContextStateChangedFloat
	TagContextStateChangedString
	TagListenerStateChangedFloatV
	TagSourceStateChangedBool
	TagSourceStateChangedEnum
	TagSourceStateChangedInt
	TagSourceStateChangedUint
	TagSourceStateChangedFloat
	TagSourceStateChangedFloat3
	TagBufferStateChangedInt

	// TagEOS terminates every trace, clean or not.
	TagEOS
)

// AbsentLength is the 64-bit length sentinel meaning "no string/blob
// present", distinct from a zero-length one.
const AbsentLength uint64 = 0xFFFFFFFFFFFFFFFF

// MaxFrames bounds how many call-stack frames a single caller-info
// block may carry.
const MaxFrames = 32
