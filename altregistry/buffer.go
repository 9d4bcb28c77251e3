package altregistry

import "github.com/altrace-project/altrace/altfile"

// Buffer shadows an AL buffer: format and hash linkage only, since
// buffers have no playlist-style polled state.
type Buffer struct {
	Handle     altfile.PtrToken
	Name       uint32
	Channels   int32
	Bits       int32
	Frequency  int32
	Size       int32

	self                   int
	bucketNext, bucketPrev int
	free                   bool
}

// BufferArena is the buffer-side analogue of SourceArena: same
// arena-plus-free-list, same 256-bucket hash, no playlist.
type BufferArena struct {
	slots     []Buffer
	freeList  []int
	hashHeads [256]int
}

// NewBufferArena returns an empty arena.
func NewBufferArena() *BufferArena {
	a := &BufferArena{}
	for i := range a.hashHeads {
		a.hashHeads[i] = -1
	}
	return a
}

func (a *BufferArena) Alloc(name uint32, handle altfile.PtrToken) int {
	idx := a.takeSlot()
	bucket := int(name & 0xFF)
	a.slots[idx] = Buffer{
		Handle:     handle,
		Name:       name,
		self:       idx,
		bucketNext: a.hashHeads[bucket],
		bucketPrev: -1,
	}
	if a.hashHeads[bucket] != -1 {
		a.slots[a.hashHeads[bucket]].bucketPrev = idx
	}
	a.hashHeads[bucket] = idx
	return idx
}

func (a *BufferArena) takeSlot() int {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return idx
	}
	a.slots = append(a.slots, Buffer{})
	return len(a.slots) - 1
}

func (a *BufferArena) Lookup(name uint32) *Buffer {
	bucket := int(name & 0xFF)
	for idx := a.hashHeads[bucket]; idx != -1; idx = a.slots[idx].bucketNext {
		b := &a.slots[idx]
		if !b.free && b.Name == name {
			return b
		}
	}
	return nil
}

func (a *BufferArena) Free(b *Buffer) {
	idx := b.self
	bucket := int(b.Name & 0xFF)
	if b.bucketPrev != -1 {
		a.slots[b.bucketPrev].bucketNext = b.bucketNext
	} else {
		a.hashHeads[bucket] = b.bucketNext
	}
	if b.bucketNext != -1 {
		a.slots[b.bucketNext].bucketPrev = b.bucketPrev
	}
	a.slots[idx].free = true
	a.freeList = append(a.freeList, idx)
}
