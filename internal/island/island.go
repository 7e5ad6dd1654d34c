// Package island finds runs of high-current events ("islands") in a raw
// event stream. The same detector serves abasic blocking and hairpin capture.
package island

import (
	"fmt"
	"strings"
)

// Island is a half-open range [Start, End) of raw-event indices.
type Island struct {
	Start int
	End   int
}

func (i Island) Len() int { return i.End - i.Start }

func (i Island) String() string { return fmt.Sprintf("[%d,%d)", i.Start, i.End) }

// Join renders a list of islands for log lines.
func Join(list []Island) string {
	parts := make([]string, len(list))
	for i, is := range list {
		parts[i] = is.String()
	}
	return strings.Join(parts, " ")
}

// Finder is a windowed run detector: an island closes at the event that
// brings MinCount of the last WindowSize events to high, and the window
// restarts after it. WindowSize == MinCount only accepts perfectly contiguous
// runs, which extend to the last high event of the run.
type Finder struct {
	WindowSize int
	MinCount   int
}

// ExactRun returns the Finder accepting only runs of at least n consecutive
// high events.
func ExactRun(n int) Finder { return Finder{WindowSize: n, MinCount: n} }

// Sliding returns the Finder tolerating dips: minCount of windowSize.
func Sliding(windowSize, minCount int) Finder {
	return Finder{WindowSize: windowSize, MinCount: minCount}
}

func (f Finder) String() string { return fmt.Sprintf("%d/%d", f.MinCount, f.WindowSize) }

func (f Finder) normalized() (w, l int) {
	w, l = f.WindowSize, f.MinCount
	if l < 1 {
		l = 1
	}
	if w < l {
		w = l
	}
	return w, l
}

// Find scans means left to right and returns disjoint, ordered islands of
// events with mean >= threshold. Every island starts and ends on a high event.
func (f Finder) Find(means []float64, threshold float64) []Island {
	w, l := f.normalized()
	n := len(means)
	high := func(i int) bool { return means[i] >= threshold }

	var out []Island
	windowStart, count := 0, 0
	for i := 0; i < n; i++ {
		if !high(i) {
			continue
		}
		for windowStart+w <= i {
			if high(windowStart) {
				count--
			}
			windowStart++
		}
		for windowStart < i && !high(windowStart) {
			windowStart++
		}
		count++
		if count < l {
			continue
		}

		end := i + 1
		if w == l {
			for end < n && high(end) {
				end++
			}
		}
		out = append(out, Island{Start: windowStart, End: end})

		windowStart, count = end, 0
		i = end - 1
	}
	return out
}

// Merge joins consecutive islands whose gap is at most radius, restarting
// the scan after every merge until no two islands are within radius.
// The input is not modified.
func Merge(islands []Island, radius int) []Island {
	out := append([]Island(nil), islands...)
	for i := 1; i < len(out); i++ {
		if out[i].Start-out[i-1].End <= radius {
			out[i-1].End = out[i].End
			out = append(out[:i], out[i+1:]...)
			i = 0
		}
	}
	return out
}
