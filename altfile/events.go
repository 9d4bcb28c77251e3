package altfile

// CallerInfoWire is the fixed prefix attached to every API-call event:
// when it happened, which thread made the call, and the call stack at
// the point of the call.
type CallerInfoWire struct {
	TimestampMS uint32
	RawThreadID uint64
	Frames      []uint64 // len <= MaxFrames
}

// WriteCallerInfo emits a CallerInfoWire prefix.
func (e *Encoder) WriteCallerInfo(ci CallerInfoWire) {
	e.Uint32(ci.TimestampMS)
	e.Uint64(ci.RawThreadID)
	e.Uint32(uint32(len(ci.Frames)))
	for _, pc := range ci.Frames {
		e.Uint64(pc)
	}
}

// ReadCallerInfo decodes a CallerInfoWire prefix.
func (d *Decoder) ReadCallerInfo() CallerInfoWire {
	var ci CallerInfoWire
	ci.TimestampMS = d.Uint32()
	ci.RawThreadID = d.Uint64()
	n := d.Uint32()
	if d.failed {
		return ci
	}
	ci.Frames = make([]uint64, n)
	for i := range ci.Frames {
		ci.Frames[i] = d.Uint64()
	}
	return ci
}

// NewCallstackSymbols is emitted once per newly-seen frame address,
// immediately before the first caller-info block that references it.
type NewCallstackSymbols struct {
	Addr   uint64
	Symbol string // empty if symbolication failed
}

// WriteNewCallstackSymbols emits a TagNewCallstackSymbols event carrying
// the whole batch of symbols interned by a single call's stack capture,
// preceded by a 32-bit count. Callers must not invoke this with an
// empty batch; the recorder only emits the event when it has something
// to report.
func (e *Encoder) WriteNewCallstackSymbols(batch []NewCallstackSymbols) {
	e.Tag(TagNewCallstackSymbols)
	e.Uint32(uint32(len(batch)))
	for _, s := range batch {
		e.Uint64(s.Addr)
		e.String(s.Symbol, s.Symbol != "")
	}
}

// ReadNewCallstackSymbols decodes the batch written by
// WriteNewCallstackSymbols. The tag itself must already have been
// consumed by the caller.
func (d *Decoder) ReadNewCallstackSymbols() []NewCallstackSymbols {
	n := d.Uint32()
	if d.failed {
		return nil
	}
	out := make([]NewCallstackSymbols, n)
	for i := range out {
		out[i].Addr = d.Uint64()
		out[i].Symbol, _ = d.String()
	}
	return out
}

// ALErrorTriggered / ALCErrorTriggered report a newly-latched error
// code observed by the state-change detector.
type ALErrorTriggered struct {
	Code int32
}

type ALCErrorTriggered struct {
	Device PtrToken
	Code   int32
}

type DeviceStateChangedBool struct {
	Device PtrToken
	Param  int32
	Value  bool
}

type DeviceStateChangedInt struct {
	Device PtrToken
	Param  int32
	Value  int32
}

type ContextStateChangedEnum struct {
	Context PtrToken
	Param   int32
	Value   int32
}

type ContextStateChangedFloat struct {
	Context PtrToken
	Param   int32
	Value   float32
}

type ContextStateChangedString struct {
	Context PtrToken
	Param   int32
	Value   string
}

// ListenerStateChangedFloatV reports a listener float-vector property
// (gain is a 1-element Values, position/velocity 3, orientation 6 —
// unlike a source's fixed-arity SourceStateChangedFloat3, the listener
// orientation property needs two 3-vectors, so Values is variable
// length rather than a fixed array).
type ListenerStateChangedFloatV struct {
	Context PtrToken
	Param   int32
	Values  []float32
}

type SourceStateChangedBool struct {
	Source PtrToken
	Param  int32
	Value  bool
}

type SourceStateChangedEnum struct {
	Source PtrToken
	Param  int32
	Value  int32
}

type SourceStateChangedInt struct {
	Source PtrToken
	Param  int32
	Value  int32
}

type SourceStateChangedUint struct {
	Source PtrToken
	Param  int32
	Value  uint32
}

type SourceStateChangedFloat struct {
	Source PtrToken
	Param  int32
	Value  float32
}

type SourceStateChangedFloat3 struct {
	Source PtrToken
	Param  int32
	Values [3]float32
}

type BufferStateChangedInt struct {
	Buffer PtrToken
	Param  int32
	Value  int32
}

// EOS is the terminal event of every trace.
type EOS struct {
	Clean            bool
	FinalTimestampMS uint32
}
