package altstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureReturnsFrames(t *testing.T) {
	c := NewCollector()
	frames, fresh := c.Capture(0)
	assert.NotEmpty(t, frames)
	assert.LessOrEqual(t, len(frames), MaxFrames)
	assert.NotEmpty(t, fresh)
}

func TestCaptureSymbolEconomy(t *testing.T) {
	c := NewCollector()
	_, fresh1 := c.Capture(0)
	_, fresh2 := c.Capture(0)
	assert.NotEmpty(t, fresh1, "first capture from a given call site interns new symbols")

	seen := make(map[uint64]bool)
	for _, s := range fresh1 {
		seen[s.Addr] = true
	}
	for _, s := range fresh2 {
		assert.False(t, seen[s.Addr], "address %x re-emitted as new on second capture", s.Addr)
	}
}

func TestDemangleLeavesPlainNamesAlone(t *testing.T) {
	assert.Equal(t, "main.foo", Demangle("main.foo"))
}
