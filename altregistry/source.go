package altregistry

import "github.com/altrace-project/altrace/altfile"

// SourceState mirrors the four states an AL source reports via
// AL_SOURCE_STATE.
type SourceState int32

const (
	SourceInitial SourceState = iota
	SourcePlaying
	SourcePaused
	SourceStopped
)

// Source shadows an AL source. Sources live in a per-context arena
// (see SourceArena) rather than a pointer-linked hash bucket; the
// bucket/playlist linkage below is expressed as arena indices instead
// of pointers, which keeps the free-list O(1) without manual pointer
// surgery.
type Source struct {
	Handle altfile.PtrToken
	Name   uint32 // AL source name; bucket key is Name & 0xFF

	State SourceState

	Pitch          float32
	Gain           float32
	MinGain        float32
	MaxGain        float32
	MaxDistance    float32
	RolloffFactor  float32
	ReferenceDistance float32
	ConeOuterGain  float32
	ConeInnerAngle float32
	ConeOuterAngle float32
	Position       [3]float32
	Velocity       [3]float32
	Direction      [3]float32
	SourceRelative bool
	SourceType     int32
	Looping        bool
	Buffer         uint32
	BuffersQueued  int32
	BuffersProcessed int32

	self                   int // this record's own arena index
	bucketNext, bucketPrev int // arena indices, -1 terminated
	listNext, listPrev     int // playlist linkage, -1 terminated
	inPlaylist             bool
	free                   bool
}

// SourceArena holds every source that has ever existed for a context,
// indexed by a slot that is reused via a free-list once the source is
// deleted. hashHeads[name&0xFF] is the arena index of the bucket's
// first live entry, or -1. playlistHead is the arena index of the
// first PLAYING source, or -1.
type SourceArena struct {
	slots        []Source
	freeList     []int
	hashHeads    [256]int
	playlistHead int
}

// NewSourceArena returns an empty arena.
func NewSourceArena() *SourceArena {
	a := &SourceArena{playlistHead: -1}
	for i := range a.hashHeads {
		a.hashHeads[i] = -1
	}
	return a
}

// Alloc creates a new source with the given name, inserting it at the
// head of its hash bucket.
func (a *SourceArena) Alloc(name uint32, handle altfile.PtrToken) int {
	idx := a.takeSlot()
	bucket := int(name & 0xFF)
	a.slots[idx] = Source{
		Handle:     handle,
		Name:       name,
		self:       idx,
		bucketNext: a.hashHeads[bucket],
		bucketPrev: -1,
		listNext:   -1,
		listPrev:   -1,
	}
	if a.hashHeads[bucket] != -1 {
		a.slots[a.hashHeads[bucket]].bucketPrev = idx
	}
	a.hashHeads[bucket] = idx
	return idx
}

func (a *SourceArena) takeSlot() int {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return idx
	}
	a.slots = append(a.slots, Source{})
	return len(a.slots) - 1
}

// Lookup finds the live source with the given name, or nil.
func (a *SourceArena) Lookup(name uint32) *Source {
	bucket := int(name & 0xFF)
	for idx := a.hashHeads[bucket]; idx != -1; idx = a.slots[idx].bucketNext {
		s := &a.slots[idx]
		if !s.free && s.Name == name {
			return s
		}
	}
	return nil
}

func (a *SourceArena) indexOf(s *Source) int {
	return s.self
}

// Free removes a source from its hash bucket and the playlist (if
// present) and returns its slot to the free-list.
func (a *SourceArena) Free(s *Source) {
	idx := a.indexOf(s)
	if idx < 0 {
		return
	}
	a.unlinkBucket(idx)
	if s.inPlaylist {
		a.unlinkPlaylist(idx)
	}
	a.slots[idx].free = true
	a.freeList = append(a.freeList, idx)
}

func (a *SourceArena) unlinkBucket(idx int) {
	s := &a.slots[idx]
	bucket := int(s.Name & 0xFF)
	if s.bucketPrev != -1 {
		a.slots[s.bucketPrev].bucketNext = s.bucketNext
	} else {
		a.hashHeads[bucket] = s.bucketNext
	}
	if s.bucketNext != -1 {
		a.slots[s.bucketNext].bucketPrev = s.bucketPrev
	}
}

// EnterPlaylist links a newly-PLAYING source at the head of the
// playlist. A no-op if already linked.
func (a *SourceArena) EnterPlaylist(s *Source) {
	if s.inPlaylist {
		return
	}
	idx := a.indexOf(s)
	s.listNext = a.playlistHead
	s.listPrev = -1
	if a.playlistHead != -1 {
		a.slots[a.playlistHead].listPrev = idx
	}
	a.playlistHead = idx
	s.inPlaylist = true
}

// LeavePlaylist unlinks a source that is no longer PLAYING.
func (a *SourceArena) LeavePlaylist(s *Source) {
	if !s.inPlaylist {
		return
	}
	idx := a.indexOf(s)
	a.unlinkPlaylist(idx)
}

func (a *SourceArena) unlinkPlaylist(idx int) {
	s := &a.slots[idx]
	if s.listPrev != -1 {
		a.slots[s.listPrev].listNext = s.listNext
	} else {
		a.playlistHead = s.listNext
	}
	if s.listNext != -1 {
		a.slots[s.listNext].listPrev = s.listPrev
	}
	s.inPlaylist = false
	s.listNext, s.listPrev = -1, -1
}

// Playlist returns the currently-PLAYING sources, head first.
func (a *SourceArena) Playlist() []*Source {
	var out []*Source
	for idx := a.playlistHead; idx != -1; idx = a.slots[idx].listNext {
		out = append(out, &a.slots[idx])
	}
	return out
}
