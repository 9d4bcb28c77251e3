// Package altstack captures and interns call stacks the way the
// recorder needs them: bounded depth, append-only symbol table, and a
// batch of newly-seen symbols ready to be flushed as trace events.
package altstack

import (
	"runtime"

	"github.com/altrace-project/altrace/altfile"
)

// MaxFrames mirrors altfile.MaxFrames; kept as a distinct constant so
// this package has no import-cycle dependency beyond the wire types it
// needs for NewSymbol.
const MaxFrames = altfile.MaxFrames

// NewSymbol is a freshly-interned (address, symbol) pair ready to be
// emitted as an altfile.NewCallstackSymbols event, in first-sighting
// order.
type NewSymbol struct {
	Addr   uint64
	Symbol string
}

// Collector captures call stacks and interns their frame symbols.
// Symbol resolution happens lazily, the first time an address is
// captured, and is never retried — an unresolvable address is
// interned with an empty string forever after.
type Collector struct {
	known map[uint64]struct{}
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{known: make(map[uint64]struct{})}
}

// Capture walks the stack above its caller (skip additionally skips
// that many more frames, e.g. for wrapper layers between the entry
// point and the real collection site), returning up to MaxFrames
// addresses and the batch of symbols newly interned by this call.
func (c *Collector) Capture(skip int) (frames []uint64, fresh []NewSymbol) {
	pcs := make([]uintptr, MaxFrames)
	// +2 to skip runtime.Callers itself and this method.
	n := runtime.Callers(skip+2, pcs)
	pcs = pcs[:n]

	frames = make([]uint64, n)
	cf := runtime.CallersFrames(pcs)
	for i := range pcs {
		frame, more := cf.Next()
		addr := uint64(frame.PC)
		frames[i] = addr
		if _, seen := c.known[addr]; !seen {
			c.known[addr] = struct{}{}
			fresh = append(fresh, NewSymbol{Addr: addr, Symbol: resolveSymbol(frame)})
		}
		if !more {
			break
		}
	}
	return frames, fresh
}

func resolveSymbol(frame runtime.Frame) string {
	if frame.Function == "" {
		return ""
	}
	return Demangle(frame.Function)
}
