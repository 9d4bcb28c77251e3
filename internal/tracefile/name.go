// Package tracefile chooses trace output file names.
package tracefile

import (
	"fmt"
	"os"
)

// ChooseName returns "<procName>.altrace" if that path doesn't already
// exist, otherwise the smallest "<procName>.N.altrace" (N starting at
// 1) that doesn't.
func ChooseName(procName string) string {
	base := procName + ".altrace"
	if !exists(base) {
		return base
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%d.altrace", procName, n)
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
