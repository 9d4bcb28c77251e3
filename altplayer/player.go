// Package altplayer implements the mirror-image half of the trace
// engine: it parses the byte stream altrecorder/altfile produced back
// into typed events and dispatches them to a Visitor, grounded on the
// teacher's Records.Next() iterator (perffile/records.go) generalized
// from perf.data's record-union model to altrace's visitor-dispatch
// model.
package altplayer

import (
	"errors"
	"fmt"
	"io"

	"github.com/altrace-project/altrace/altfile"
)

// FormatError reports a player-fatal condition: a bad header or an
// unrecognized event tag (the stream is out of sync, not merely
// short).
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return "altplayer: " + e.msg }

// ErrCancelled is returned by Play when the Visitor's Progress hook
// returns false, distinguishable from a FormatError or an IO failure
// via errors.Is.
var ErrCancelled = errors.New("altplayer: playback cancelled")

// Player replays a single trace file to a Visitor. It holds the
// player-side mirrors of the recorder's registries (frame map, thread
// id map, trace scope) — all single-threaded by construction, since a
// Player only ever drives one decode loop.
type Player struct {
	frames  *frameMap
	threads *threadIDMap
	Labels  Labels
	scope   int
}

// New returns a Player ready to decode a trace.
func New() *Player {
	return &Player{
		frames:  newFrameMap(),
		threads: newThreadIDMap(),
		Labels:  newLabels(),
	}
}

// Play validates the header of r, then decodes events one at a time,
// dispatching each to v, until EOS, a fatal format error, an IO
// failure, or the visitor cancels via Progress. userData is threaded
// through unchanged on every CallerInfo.
//
// r must also implement io.Seeker so Play can compute file offsets for
// Visitor.Progress; size is the total byte length of the trace (as
// reported by the caller, e.g. via os.File.Stat), used as the
// denominator of that progress fraction.
func (p *Player) Play(r io.ReadSeeker, size int64, v Visitor, userData any) error {
	dec := altfile.NewDecoder(r)
	if err := dec.Header(); err != nil {
		var hdrErr *altfile.HeaderError
		if errors.As(err, &hdrErr) {
			v.EOS(false, 0)
			return &FormatError{msg: err.Error()}
		}
		v.EOS(false, 0)
		return err
	}

	for {
		offset, _ := r.Seek(0, io.SeekCurrent)
		if !v.Progress(offset, size) {
			v.EOS(false, 0)
			return ErrCancelled
		}

		tag := dec.Tag()
		if dec.Failed() {
			v.EOS(false, 0)
			return io.ErrUnexpectedEOF
		}

		if tag == altfile.TagEOS {
			clean := dec.Bool()
			ts := dec.Uint32()
			if dec.Failed() {
				v.EOS(false, 0)
				return io.ErrUnexpectedEOF
			}
			v.EOS(clean, ts)
			return nil
		}

		if tag == altfile.TagNewCallstackSymbols {
			batch := dec.ReadNewCallstackSymbols()
			if dec.Failed() {
				v.EOS(false, 0)
				return io.ErrUnexpectedEOF
			}
			p.frames.install(batch)
			continue
		}

		if err := p.dispatch(dec, tag, offset, userData, v); err != nil {
			v.EOS(false, 0)
			return err
		}
		if dec.Failed() {
			v.EOS(false, 0)
			return io.ErrUnexpectedEOF
		}
	}
}

// readCaller decodes a CallerInfoWire prefix and resolves it against
// the player's mirrors.
func (p *Player) readCaller(dec *altfile.Decoder, offset int64, userData any) CallerInfo {
	wire := dec.ReadCallerInfo()
	return CallerInfo{
		ThreadID:   p.threads.resolve(wire.RawThreadID),
		RawFrames:  wire.Frames,
		Frames:     p.frames.resolve(wire.Frames),
		TraceScope: p.scope,
		Offset:     offset,
		UserData:   userData,
	}
}

// dispatch decodes the schema for tag (a mirror of the matching
// Recorder method's serialization order) and invokes the matching
// Visitor callback. An unrecognized tag is player-fatal: the stream is
// out of sync and there is no way to know how many bytes to skip.
func (p *Player) dispatch(dec *altfile.Decoder, tag altfile.Tag, offset int64, userData any, v Visitor) error {
	switch tag {
	case altfile.TagAlcOpenDevice:
		ci := p.readCaller(dec, offset, userData)
		name, _ := dec.String()
		device := dec.Ptr()
		v.OnAlcOpenDevice(ci, name, device)

	case altfile.TagAlcCloseDevice:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		ok := dec.Bool()
		if ok {
			delete(p.Labels.Device, device)
		}
		v.OnAlcCloseDevice(ci, device, ok)

	case altfile.TagAlcCreateContext:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		ctx := dec.Ptr()
		v.OnAlcCreateContext(ci, device, ctx)

	case altfile.TagAlcMakeContextCurrent:
		ci := p.readCaller(dec, offset, userData)
		ctx := dec.Ptr()
		ok := dec.Bool()
		v.OnAlcMakeContextCurrent(ci, ctx, ok)

	case altfile.TagAlcDestroyContext:
		ci := p.readCaller(dec, offset, userData)
		ctx := dec.Ptr()
		delete(p.Labels.Context, ctx)
		v.OnAlcDestroyContext(ci, ctx)

	case altfile.TagAlcGetError:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		code := dec.Int32()
		v.OnAlcGetError(ci, device, code)

	case altfile.TagAlcCaptureOpenDevice:
		ci := p.readCaller(dec, offset, userData)
		name, _ := dec.String()
		freq := dec.Int32()
		format := dec.Int32()
		bufferSize := dec.Int32()
		device := dec.Ptr()
		v.OnAlcCaptureOpenDevice(ci, name, freq, format, bufferSize, device)

	case altfile.TagAlcCaptureCloseDevice:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		ok := dec.Bool()
		v.OnAlcCaptureCloseDevice(ci, device, ok)

	case altfile.TagAlcCaptureStart:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		v.OnAlcCaptureStart(ci, device)

	case altfile.TagAlcCaptureStop:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		v.OnAlcCaptureStop(ci, device)

	case altfile.TagAlGetError:
		ci := p.readCaller(dec, offset, userData)
		code := dec.Int32()
		v.OnAlGetError(ci, code)

	case altfile.TagAlGenBuffers:
		ci := p.readCaller(dec, offset, userData)
		dec.Int32() // n requested, discarded (len(names) is authoritative)
		names := readUint32Array(dec)
		v.OnAlGenBuffers(ci, names)

	case altfile.TagAlDeleteBuffers:
		ci := p.readCaller(dec, offset, userData)
		names := readUint32Array(dec)
		ok := dec.Bool()
		if ok {
			for _, n := range names {
				delete(p.Labels.Buffer, n)
			}
		}
		v.OnAlDeleteBuffers(ci, names, ok)

	case altfile.TagAlBufferData:
		ci := p.readCaller(dec, offset, userData)
		buffer := dec.Uint32()
		format := dec.Int32()
		size := dec.Int32()
		freq := dec.Int32()
		v.OnAlBufferData(ci, buffer, format, size, freq)

	case altfile.TagAlGenSources:
		ci := p.readCaller(dec, offset, userData)
		dec.Int32()
		names := readUint32Array(dec)
		v.OnAlGenSources(ci, names)

	case altfile.TagAlDeleteSources:
		ci := p.readCaller(dec, offset, userData)
		names := readUint32Array(dec)
		ok := dec.Bool()
		if ok {
			for _, n := range names {
				delete(p.Labels.Source, n)
			}
		}
		v.OnAlDeleteSources(ci, names, ok)

	case altfile.TagAlSourceSetInt:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		param := dec.Int32()
		value := dec.Int32()
		v.OnAlSourceSetInt(ci, source, param, value)

	case altfile.TagAlSourceSetFloat:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		param := dec.Int32()
		value := dec.Float32()
		v.OnAlSourceSetFloat(ci, source, param, value)

	case altfile.TagAlGetSourceInt:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		param := dec.Int32()
		value := dec.Int32()
		v.OnAlGetSourceInt(ci, source, param, value)

	case altfile.TagAlGetSourceFloat:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		param := dec.Int32()
		value := dec.Float32()
		v.OnAlGetSourceFloat(ci, source, param, value)

	case altfile.TagAlSourceQueueBuffers:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		buffers := readUint32Array(dec)
		v.OnAlSourceQueueBuffers(ci, source, buffers)

	case altfile.TagAlSourceUnqueueBuffers:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		requested := dec.Int32()
		buffers := readUint32Array(dec)
		v.OnAlSourceUnqueueBuffers(ci, source, requested, buffers)

	case altfile.TagAlDistanceModel:
		ci := p.readCaller(dec, offset, userData)
		model := dec.Int32()
		v.OnAlDistanceModel(ci, model)

	case altfile.TagAlDopplerFactor:
		ci := p.readCaller(dec, offset, userData)
		value := dec.Float32()
		v.OnAlDopplerFactor(ci, value)

	case altfile.TagAlDopplerVelocity:
		ci := p.readCaller(dec, offset, userData)
		value := dec.Float32()
		v.OnAlDopplerVelocity(ci, value)

	case altfile.TagAlSpeedOfSound:
		ci := p.readCaller(dec, offset, userData)
		value := dec.Float32()
		v.OnAlSpeedOfSound(ci, value)

	case altfile.TagAlListenerSetFloat:
		ci := p.readCaller(dec, offset, userData)
		param := dec.Int32()
		values := readFloat32Array(dec)
		v.OnAlListenerSetFloat(ci, param, values)

	case altfile.TagAlSourcePlay:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		v.OnAlSourcePlay(ci, source)

	case altfile.TagAlSourcePause:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		v.OnAlSourcePause(ci, source)

	case altfile.TagAlSourceStop:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		v.OnAlSourceStop(ci, source)

	case altfile.TagAlSourceRewind:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		v.OnAlSourceRewind(ci, source)

	case altfile.TagAlTracePushScope:
		ci := p.readCaller(dec, offset, userData)
		message, _ := dec.String()
		p.scope++
		v.OnAlTracePushScope(ci, message)

	case altfile.TagAlTracePopScope:
		ci := p.readCaller(dec, offset, userData)
		if p.scope > 0 {
			p.scope--
		}
		v.OnAlTracePopScope(ci)

	case altfile.TagAlTraceMessage:
		ci := p.readCaller(dec, offset, userData)
		message, _ := dec.String()
		v.OnAlTraceMessage(ci, message)

	case altfile.TagAlTraceBufferLabel:
		ci := p.readCaller(dec, offset, userData)
		buffer := dec.Uint32()
		label, _ := dec.String()
		p.Labels.Buffer[buffer] = label
		v.OnAlTraceBufferLabel(ci, buffer, label)

	case altfile.TagAlTraceSourceLabel:
		ci := p.readCaller(dec, offset, userData)
		source := dec.Uint32()
		label, _ := dec.String()
		p.Labels.Source[source] = label
		v.OnAlTraceSourceLabel(ci, source, label)

	case altfile.TagAlcTraceDeviceLabel:
		ci := p.readCaller(dec, offset, userData)
		device := dec.Ptr()
		label, _ := dec.String()
		p.Labels.Device[device] = label
		v.OnAlcTraceDeviceLabel(ci, device, label)

	case altfile.TagAlcTraceContextLabel:
		ci := p.readCaller(dec, offset, userData)
		ctx := dec.Ptr()
		label, _ := dec.String()
		p.Labels.Context[ctx] = label
		v.OnAlcTraceContextLabel(ci, ctx, label)

	case altfile.TagALErrorTriggered:
		ci := p.synthetic(offset, userData)
		code := dec.Int32()
		v.OnALErrorTriggered(ci, code)

	case altfile.TagALCErrorTriggered:
		ci := p.synthetic(offset, userData)
		device := dec.Ptr()
		code := dec.Int32()
		v.OnALCErrorTriggered(ci, device, code)

	case altfile.TagDeviceStateChangedBool:
		ci := p.synthetic(offset, userData)
		device := dec.Ptr()
		param := dec.Int32()
		value := dec.Bool()
		v.OnDeviceStateChangedBool(ci, device, param, value)

	case altfile.TagDeviceStateChangedInt:
		ci := p.synthetic(offset, userData)
		device := dec.Ptr()
		param := dec.Int32()
		value := dec.Int32()
		v.OnDeviceStateChangedInt(ci, device, param, value)

	case altfile.TagContextStateChangedEnum:
		ci := p.synthetic(offset, userData)
		ctx := dec.Ptr()
		param := dec.Int32()
		value := dec.Int32()
		v.OnContextStateChangedEnum(ci, ctx, param, value)

	case altfile.TagContextStateChangedFloat:
		ci := p.synthetic(offset, userData)
		ctx := dec.Ptr()
		param := dec.Int32()
		value := dec.Float32()
		v.OnContextStateChangedFloat(ci, ctx, param, value)

	case altfile.TagContextStateChangedString:
		ci := p.synthetic(offset, userData)
		ctx := dec.Ptr()
		param := dec.Int32()
		value, _ := dec.String()
		v.OnContextStateChangedString(ci, ctx, param, value)

	case altfile.TagListenerStateChangedFloatV:
		ci := p.synthetic(offset, userData)
		ctx := dec.Ptr()
		param := dec.Int32()
		values := readFloat32Array(dec)
		v.OnListenerStateChangedFloatV(ci, ctx, param, values)

	case altfile.TagSourceStateChangedBool:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		value := dec.Bool()
		v.OnSourceStateChangedBool(ci, source, param, value)

	case altfile.TagSourceStateChangedEnum:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		value := dec.Int32()
		v.OnSourceStateChangedEnum(ci, source, param, value)

	case altfile.TagSourceStateChangedInt:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		value := dec.Int32()
		v.OnSourceStateChangedInt(ci, source, param, value)

	case altfile.TagSourceStateChangedFloat:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		value := dec.Float32()
		v.OnSourceStateChangedFloat(ci, source, param, value)

	case altfile.TagSourceStateChangedFloat3:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		var values [3]float32
		values[0], values[1], values[2] = dec.Float32(), dec.Float32(), dec.Float32()
		v.OnSourceStateChangedFloat3(ci, source, param, values)

	case altfile.TagSourceStateChangedUint:
		ci := p.synthetic(offset, userData)
		source := dec.Ptr()
		param := dec.Int32()
		value := dec.Uint32()
		v.OnSourceStateChangedUint(ci, source, param, value)

	case altfile.TagBufferStateChangedInt:
		ci := p.synthetic(offset, userData)
		buffer := dec.Ptr()
		param := dec.Int32()
		value := dec.Int32()
		v.OnBufferStateChangedInt(ci, buffer, param, value)

	default:
		return &FormatError{msg: fmt.Sprintf("unrecognized event tag %d at offset %d", tag, offset)}
	}
	return nil
}

// synthetic builds a CallerInfo for an event emitted outside any
// wrapped call (the state-change detector and error-latch checker run
// at the tail of some other call, but the event itself carries no
// caller-info prefix on the wire).
func (p *Player) synthetic(offset int64, userData any) CallerInfo {
	return CallerInfo{TraceScope: p.scope, Offset: offset, UserData: userData}
}

func readUint32Array(dec *altfile.Decoder) []uint32 {
	n := dec.Uint32()
	if dec.Failed() {
		return nil
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = dec.Uint32()
	}
	return out
}

func readFloat32Array(dec *altfile.Decoder) []float32 {
	n := dec.Uint32()
	if dec.Failed() {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = dec.Float32()
	}
	return out
}
