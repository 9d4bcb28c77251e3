package altfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHeaderRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	NewEncoder(&buf).Header()

	d := NewDecoder(&buf)
	require.NoError(t, d.Header())
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.Uint32(0xdeadbeef)
	e.Uint32(FormatVersion)

	d := NewDecoder(&buf)
	var herr *HeaderError
	err := d.Header()
	require.Error(t, err)
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, uint32(0xdeadbeef), herr.Magic)
}

func TestPrimitiveRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u32 := rapid.Uint32().Draw(t, "u32")
		u64 := rapid.Uint64().Draw(t, "u64")
		i32 := rapid.Int32().Draw(t, "i32")
		f32 := rapid.Float32().Draw(t, "f32")
		f64 := rapid.Float64().Draw(t, "f64")
		b := rapid.Bool().Draw(t, "b")

		var buf bytes.Buffer
		e := NewEncoder(&buf)
		e.Uint32(u32)
		e.Uint64(u64)
		e.Int32(i32)
		e.Float32(f32)
		e.Float64(f64)
		e.Bool(b)
		require.NoError(t, e.Err())

		d := NewDecoder(&buf)
		assert.Equal(t, u32, d.Uint32())
		assert.Equal(t, u64, d.Uint64())
		assert.Equal(t, i32, d.Int32())
		gotF32 := d.Float32()
		if f32 == f32 { // skip NaN, which never compares equal
			assert.Equal(t, f32, gotF32)
		}
		gotF64 := d.Float64()
		if f64 == f64 {
			assert.Equal(t, f64, gotF64)
		}
		assert.Equal(t, b, d.Bool())
		assert.False(t, d.Failed())
	})
}

func TestStringAbsentVsEmpty(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.String("", true)
	e.String("", false)
	e.String("hello", true)

	d := NewDecoder(&buf)
	s, present := d.String()
	assert.Equal(t, "", s)
	assert.True(t, present)

	s, present = d.String()
	assert.Equal(t, "", s)
	assert.False(t, present)

	s, present = d.String()
	assert.Equal(t, "hello", s)
	assert.True(t, present)
}

func TestBlobRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOf(rapid.Byte()).Draw(t, "data")

		var buf bytes.Buffer
		NewEncoder(&buf).Blob(data, true)

		d := NewDecoder(&buf)
		got, present := d.Blob()
		assert.True(t, present)
		assert.Equal(t, data, got)
	})
}

func TestShortReadLatchesFailure(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2})
	d := NewDecoder(buf)
	_ = d.Uint32()
	assert.True(t, d.Failed())
	assert.Equal(t, uint32(0), d.Uint32())
	assert.True(t, d.Failed())
}

func TestCallerInfoRoundtrip(t *testing.T) {
	ci := CallerInfoWire{
		TimestampMS: 12345,
		RawThreadID: 0xabc123,
		Frames:      []uint64{0x1000, 0x2000, 0x3000},
	}
	var buf bytes.Buffer
	NewEncoder(&buf).WriteCallerInfo(ci)

	got := NewDecoder(&buf).ReadCallerInfo()
	assert.Equal(t, ci, got)
}
