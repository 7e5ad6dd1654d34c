package runutil

import (
	"path/filepath"
	"runtime"
)

// EffectiveThreads maps a non-positive thread request to the CPU count.
func EffectiveThreads(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// DedupeWindow is the number of distinct recent paths DedupePaths remembers.
const DedupeWindow = 1 << 16

// DedupePaths drops inputs (after filepath.Clean) already seen among the
// last window distinct paths, keeping first-seen order. It returns the kept
// paths and how many were dropped. A repeat older than window passes through.
func DedupePaths(paths []string, window int) ([]string, int) {
	seen := NewLRUSet[string](window)
	out := make([]string, 0, len(paths))
	dropped := 0
	for _, p := range paths {
		if seen.Add(filepath.Clean(p)) {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}
