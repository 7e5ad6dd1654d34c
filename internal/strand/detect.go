package strand

import (
	"io"
	"log/slog"

	"nanoprep/internal/island"
)

// Detection is the outcome of hairpin-based strand splitting.
type Detection struct {
	Bounds     Bounds
	Islands    []island.Island // after merging
	Hairpin    island.Island
	HasHairpin bool
}

// Detector splits a read into template and complement at the high-current
// island nearest the read center.
type Detector struct {
	Finder island.Finder
	Trim   Trim
	Log    *slog.Logger
}

func (d Detector) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Detect computes strand bounds over the raw means of a read. Without a
// credible hairpin the read is template-only. The returned template range
// may be empty; callers reject such reads.
func (d Detector) Detect(means []float64, abasicLevel float64) Detection {
	log := d.logger()
	n := len(means)
	found := d.Finder.Find(means, abasicLevel)
	merged := island.Merge(found, d.Trim.MergeRadius())
	log.Debug("islands",
		slog.Int("num_events", n),
		slog.Float64("abasic_level", abasicLevel),
		slog.String("found", island.Join(found)),
		slog.String("merged", island.Join(merged)))

	res := Detection{Bounds: TemplateOnly(n, d.Trim), Islands: merged}
	if len(merged) == 0 {
		log.Debug("template only: no islands")
		return res
	}

	best := merged[0]
	bestDist := distToMiddle(best, n)
	for _, is := range merged[1:] {
		if dd := distToMiddle(is, n); dd < bestDist {
			best, bestDist = is, dd
		}
	}
	if bestDist > n/6 {
		log.Debug("template only: hairpin outside middle third",
			slog.String("island", best.String()),
			slog.Int("dist", bestDist))
		return res
	}

	t := d.Trim
	b := Bounds{
		t.Start,
		best.Start - t.BeforeHairpin,
		best.End + t.AfterHairpin,
		n - t.End,
	}
	if first := merged[0]; first.Start < t.Start+t.BeforeHairpin {
		b[0] = first.End
	}
	if last := merged[len(merged)-1]; last.End > n-(t.End+t.AfterHairpin) {
		b[3] = min(b[3], last.Start)
	}
	log.Debug("hairpin", slog.String("island", best.String()), slog.String("bounds", b.String()))

	res.Bounds = b
	res.Hairpin = best
	res.HasHairpin = true
	return res
}

func distToMiddle(is island.Island, n int) int {
	mid := n / 2
	return min(abs(is.Start-mid), abs(is.End-mid))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
