// Package abasic estimates the open-pore ("abasic") current of a read from
// its raw event means.
package abasic

import "sort"

// MinLevel is the level at or below which a channel is considered broken.
const MinLevel = 1.0

// Detect sorts means and returns the value at rank
// floor(n * (1 - topPercent/100)) plus topOffset. The top topPercent of
// events are treated as outliers. An empty input yields 0.
func Detect(means []float64, topPercent, topOffset float64) float64 {
	n := len(means)
	if n == 0 {
		return 0
	}
	s := append([]float64(nil), means...)
	sort.Float64s(s)
	rank := int(float64(n) * (1 - topPercent/100))
	rank = min(max(rank, 0), n-1)
	return s[rank] + topOffset
}

// Degenerate reports whether level is too low to be a real baseline.
func Degenerate(level float64) bool { return level <= MinLevel }
