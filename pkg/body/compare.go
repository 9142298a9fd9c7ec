// pkg/body/compare.go

package body

import "AveBody/pkg/chunk"

// SameChunks reports whether a and b are backed by the same storage, chunk by chunk.
// A partial overlap or a different order is not the same.
func SameChunks(a, b chunk.Sequence) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
