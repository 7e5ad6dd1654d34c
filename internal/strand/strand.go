// Package strand names the two passes of a read and the raw-event ranges
// they occupy. It never imports signal sources, writers, or the app layer.
package strand

import "fmt"

// ID selects one pass of a read.
type ID int

const (
	Template   ID = 0
	Complement ID = 1
)

// All lists both strands in output order.
var All = [2]ID{Template, Complement}

func (s ID) String() string {
	switch s {
	case Template:
		return "template"
	case Complement:
		return "complement"
	}
	return fmt.Sprintf("strand(%d)", int(s))
}

// Bounds holds raw-event indices
// [template_start, template_end, complement_start, complement_end).
// A pair with end <= start means the strand is absent.
type Bounds [4]int

func (b Bounds) Start(st ID) int { return b[2*st] }
func (b Bounds) End(st ID) int   { return b[2*st+1] }

// Len is the number of raw events covered by st, 0 when absent or inverted.
func (b Bounds) Len(st ID) int {
	if n := b.End(st) - b.Start(st); n > 0 {
		return n
	}
	return 0
}

// Empty reports whether st covers no events.
func (b Bounds) Empty(st ID) bool { return b.Len(st) == 0 }

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b[0], b[1], b[2], b[3])
}

// Trim holds the event counts excluded near read and hairpin boundaries.
type Trim struct {
	Start         int // after read start
	End           int // before read end
	BeforeHairpin int // before hairpin start
	AfterHairpin  int // after hairpin end
}

// TrimFromMargins maps the configured margin array
// (after start, before end, before hairpin, after hairpin) onto Trim.
func TrimFromMargins(m [4]int) Trim {
	return Trim{Start: m[0], End: m[1], BeforeHairpin: m[2], AfterHairpin: m[3]}
}

// MergeRadius is the largest island gap that still merges two islands.
func (t Trim) MergeRadius() int { return max(t.BeforeHairpin, t.AfterHairpin) }

// TemplateOnly returns the bounds of a read without a complement strand.
func TemplateOnly(n int, t Trim) Bounds {
	return Bounds{t.Start, n - t.End, 0, 0}
}
