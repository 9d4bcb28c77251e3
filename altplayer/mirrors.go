package altplayer

import "github.com/altrace-project/altrace/altfile"

// frameMap mirrors the recorder's append-only address→symbol table: a
// symbol is looked up here the first time its address is referenced by
// a caller-info block, after having been installed by a
// NewCallstackSymbols event (invariant 4).
type frameMap struct {
	symbols map[uint64]string
}

func newFrameMap() *frameMap {
	return &frameMap{symbols: make(map[uint64]string)}
}

func (m *frameMap) install(batch []altfile.NewCallstackSymbols) {
	for _, s := range batch {
		m.symbols[s.Addr] = s.Symbol
	}
}

func (m *frameMap) resolve(frames []uint64) []string {
	out := make([]string, len(frames))
	for i, addr := range frames {
		out[i] = m.symbols[addr]
	}
	return out
}

// threadIDMap assigns dense, first-seen-order ids to raw thread ids
// (invariant 5). It is single-threaded by construction: the player
// itself never runs more than one goroutine over a single trace.
type threadIDMap struct {
	ids  map[uint64]int
	next int
}

func newThreadIDMap() *threadIDMap {
	return &threadIDMap{ids: make(map[uint64]int), next: 1}
}

func (m *threadIDMap) resolve(raw uint64) int {
	if id, ok := m.ids[raw]; ok {
		return id
	}
	id := m.next
	m.ids[raw] = id
	m.next++
	return id
}

// Labels mirrors altregistry.Labels on the player side: installed by
// the decoded label events, cleared when the owning object's
// destroy/delete event is processed (spec.md §8 "Delete-clears-label").
type Labels struct {
	Device  map[altfile.PtrToken]string
	Context map[altfile.PtrToken]string
	Source  map[uint32]string
	Buffer  map[uint32]string
}

func newLabels() Labels {
	return Labels{
		Device:  make(map[altfile.PtrToken]string),
		Context: make(map[altfile.PtrToken]string),
		Source:  make(map[uint32]string),
		Buffer:  make(map[uint32]string),
	}
}
