package altregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceArenaAllocLookupFree(t *testing.T) {
	a := NewSourceArena()
	idx := a.Alloc(7, 0x1000)
	s := &a.slots[idx]
	require.NotNil(t, s)
	assert.Equal(t, a.Lookup(7), s)

	a.Free(s)
	assert.Nil(t, a.Lookup(7))
}

func TestSourceArenaReusesFreedSlots(t *testing.T) {
	a := NewSourceArena()
	idx1 := a.Alloc(1, 0)
	a.Free(&a.slots[idx1])
	idx2 := a.Alloc(2, 0)
	assert.Equal(t, idx1, idx2, "freed slot should be reused")
}

func TestPlaylistSoundness(t *testing.T) {
	a := NewSourceArena()
	var sources []*Source
	for i := uint32(0); i < 10; i++ {
		a.Alloc(i, 0)
	}
	// Take pointers only after the last Alloc: growing the slot slice
	// moves earlier slots.
	for i := uint32(0); i < 10; i++ {
		s := a.Lookup(i)
		s.State = SourcePlaying
		sources = append(sources, s)
	}

	for _, s := range sources {
		a.EnterPlaylist(s)
	}
	assert.Len(t, a.Playlist(), 10)

	// Only PLAYING sources may remain in the playlist.
	for i, s := range sources {
		if i%2 == 0 {
			s.State = SourceStopped
			a.LeavePlaylist(s)
		}
	}
	playlist := a.Playlist()
	assert.Len(t, playlist, 5)
	for _, s := range playlist {
		assert.Equal(t, SourcePlaying, s.State)
	}
}

func TestSourceBucketKeyIsNameAndFF(t *testing.T) {
	a := NewSourceArena()
	a.Alloc(0x101, 0) // bucket 1
	a.Alloc(0x001, 0) // bucket 1, collides
	assert.NotNil(t, a.Lookup(0x101))
	assert.NotNil(t, a.Lookup(0x001))
	assert.Nil(t, a.Lookup(0x201))
}
