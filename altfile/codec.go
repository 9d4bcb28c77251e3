package altfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// HeaderError reports a malformed or unsupported trace-file header.
type HeaderError struct {
	Magic, Version uint32
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("altfile: bad header (magic=%#x version=%d)", e.Magic, e.Version)
}

// PtrToken is an opaque, never-dereferenced identity token for a
// pointer value transmitted over the wire.
type PtrToken uint64

// Encoder serializes primitives onto an io.Writer in the little-endian
// layout shared by every event. It keeps no internal buffering beyond
// the per-call scratch array; callers needing buffered output should
// wrap w in a *bufio.Writer.
type Encoder struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Err reports the first write error encountered, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.w.Write(b); err != nil {
		e.err = err
	}
}

// Header writes the magic/version pair that must open every trace.
func (e *Encoder) Header() {
	e.Uint32(Magic)
	e.Uint32(FormatVersion)
}

func (e *Encoder) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

func (e *Encoder) Int32(v int32) { e.Uint32(uint32(v)) }

func (e *Encoder) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:8], v)
	e.write(e.buf[:8])
}

func (e *Encoder) Float32(v float32) { e.Uint32(math.Float32bits(v)) }

func (e *Encoder) Float64(v float64) { e.Uint64(math.Float64bits(v)) }

func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint32(1)
	} else {
		e.Uint32(0)
	}
}

func (e *Encoder) Tag(t Tag) { e.Uint32(uint32(t)) }

// Ptr writes an opaque pointer-identity token.
func (e *Encoder) Ptr(p PtrToken) { e.Uint64(uint64(p)) }

// String writes a length-prefixed string. present=false writes the
// absent sentinel instead of a zero-length body.
func (e *Encoder) String(s string, present bool) {
	if !present {
		e.Uint64(AbsentLength)
		return
	}
	e.Uint64(uint64(len(s)))
	e.write([]byte(s))
}

// Blob writes a length-prefixed byte slice. A nil slice with
// present=false encodes as absent, distinct from an empty present blob.
func (e *Encoder) Blob(b []byte, present bool) {
	if !present {
		e.Uint64(AbsentLength)
		return
	}
	e.Uint64(uint64(len(b)))
	e.write(b)
}

// Decoder deserializes primitives from an io.Reader. Once a short read
// occurs, every subsequent method becomes a no-op returning the zero
// value and Failed reports true — callers check Failed once after a
// decode pass rather than after every field.
type Decoder struct {
	r      io.Reader
	failed bool
	buf    [8]byte
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder { return &Decoder{r: r} }

// Failed reports whether a short read has latched the IO-failure state.
func (d *Decoder) Failed() bool { return d.failed }

func (d *Decoder) read(n int) []byte {
	if d.failed {
		return d.buf[:n]
	}
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		d.failed = true
	}
	return d.buf[:n]
}

// Header reads and validates the magic/version pair. On mismatch it
// returns a *HeaderError without consulting or setting the IO-failure
// latch (a bad header is player-fatal, not player-soft).
func (d *Decoder) Header() error {
	magic := d.Uint32()
	version := d.Uint32()
	if d.failed {
		return &HeaderError{magic, version}
	}
	if magic != Magic || version != FormatVersion {
		return &HeaderError{magic, version}
	}
	return nil
}

func (d *Decoder) Uint32() uint32 {
	b := d.read(4)
	if d.failed {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *Decoder) Int32() int32 { return int32(d.Uint32()) }

func (d *Decoder) Uint64() uint64 {
	b := d.read(8)
	if d.failed {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *Decoder) Float32() float32 { return math.Float32frombits(d.Uint32()) }

func (d *Decoder) Float64() float64 { return math.Float64frombits(d.Uint64()) }

func (d *Decoder) Bool() bool { return d.Uint32() != 0 }

func (d *Decoder) Tag() Tag { return Tag(d.Uint32()) }

func (d *Decoder) Ptr() PtrToken { return PtrToken(d.Uint64()) }

// String reads a length-prefixed string. The second return is false
// if the wire value was the absent sentinel.
func (d *Decoder) String() (string, bool) {
	n := d.Uint64()
	if d.failed {
		return "", false
	}
	if n == AbsentLength {
		return "", false
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.failed = true
		return "", false
	}
	return string(buf), true
}

// Blob reads a length-prefixed byte slice, mirroring String's
// absent/empty distinction.
func (d *Decoder) Blob() ([]byte, bool) {
	n := d.Uint64()
	if d.failed {
		return nil, false
	}
	if n == AbsentLength {
		return nil, false
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.failed = true
		return nil, false
	}
	return buf, true
}
