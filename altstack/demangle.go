package altstack

import "github.com/ianlancetaylor/demangle"

// Demangle best-effort demangles a C++ symbol name. Frames below the
// audio backend's C entry points are frequently C++ internals exposed
// through a C ABI; demangle.Filter leaves anything it doesn't
// recognize (including plain C names) untouched.
func Demangle(sym string) string {
	return demangle.Filter(sym)
}
