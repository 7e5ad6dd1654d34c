// Package event turns raw event-detection events into calibrated,
// per-strand event sequences.
package event

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"nanoprep/internal/signal"
	"nanoprep/internal/strand"
)

// DefaultMaxStdev is the largest raw stdev kept by the filter.
const DefaultMaxStdev = 4.0

// Calibrated is a filtered event with times in seconds.
type Calibrated struct {
	Mean          float64
	CorrectedMean float64
	Stdev         float64
	Start         float64
	Length        float64
	LogStdev      float64
	LogLength     float64
}

func newCalibrated(raw signal.RawEvent, origin int64, rate float64) Calibrated {
	e := Calibrated{
		Mean:          raw.Mean,
		CorrectedMean: raw.Mean,
		Stdev:         raw.Stdev,
		Start:         float64(raw.Start-origin) / rate,
		Length:        float64(raw.Length) / rate,
	}
	e.LogStdev = math.Log(e.Stdev)
	e.LogLength = math.Log(e.Length)
	return e
}

// Sequence is the ordered calibrated events of one strand.
type Sequence []Calibrated

// Means returns the event means in order.
func (s Sequence) Means() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.Mean
	}
	return out
}

// TimeLength is the end time of the last event, 0 for an empty sequence.
func (s Sequence) TimeLength() float64 {
	if len(s) == 0 {
		return 0
	}
	last := s[len(s)-1]
	return last.Start + last.Length
}

// Fingerprint hashes every field of every event; equal sequences have
// equal fingerprints.
func (s Sequence) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	put := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for _, e := range s {
		put(e.Mean)
		put(e.CorrectedMean)
		put(e.Stdev)
		put(e.Start)
		put(e.Length)
		put(e.LogStdev)
		put(e.LogLength)
	}
	return h.Sum64()
}

// Wire is the stored form of a calibrated event. Log fields that are not
// finite (zero stdev or zero length) are null.
type Wire struct {
	Mean          float64  `json:"mean"`
	CorrectedMean float64  `json:"corrected_mean"`
	Stdev         float64  `json:"stdev"`
	Start         float64  `json:"start"`
	Length        float64  `json:"length"`
	LogStdev      *float64 `json:"log_stdev"`
	LogLength     *float64 `json:"log_length"`
}

func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// Wire converts the sequence to its stored form.
func (s Sequence) Wire() []Wire {
	out := make([]Wire, len(s))
	for i, e := range s {
		out[i] = Wire{
			Mean:          e.Mean,
			CorrectedMean: e.CorrectedMean,
			Stdev:         e.Stdev,
			Start:         e.Start,
			Length:        e.Length,
			LogStdev:      finite(e.LogStdev),
			LogLength:     finite(e.LogLength),
		}
	}
	return out
}

// Keep reports whether a raw event survives filtering: below the abasic
// level and not noisier than maxStdev.
func Keep(e signal.RawEvent, abasicLevel, maxStdev float64) bool {
	return e.Mean < abasicLevel && e.Stdev <= maxStdev
}

// LoadParams fixes everything Load needs besides the raw events.
type LoadParams struct {
	Bounds       strand.Bounds
	AbasicLevel  float64
	SamplingRate float64
	MaxStdev     float64
	// Joint rebases both strands on the template origin.
	Joint bool
}

// Load filters raw events per strand and converts ticks to seconds. Start
// times are relative to the first kept event of the strand, or of the
// template strand when p.Joint is set. Load is pure: equal inputs give equal
// sequences.
func Load(raw []signal.RawEvent, p LoadParams) [2]Sequence {
	maxStdev := p.MaxStdev
	if maxStdev <= 0 {
		maxStdev = DefaultMaxStdev
	}
	var out [2]Sequence
	for _, st := range strand.All {
		originStrand := st
		if p.Joint {
			originStrand = strand.Template
		}
		origin := originTicks(raw, p, originStrand, maxStdev)

		lo, hi := clampRange(p.Bounds.Start(st), p.Bounds.End(st), len(raw))
		seq := make(Sequence, 0, hi-lo)
		for j := lo; j < hi; j++ {
			if Keep(raw[j], p.AbasicLevel, maxStdev) {
				seq = append(seq, newCalibrated(raw[j], origin, p.SamplingRate))
			}
		}
		out[st] = seq
	}
	return out
}

// originTicks is the start of the first kept event of st, falling back to
// the first raw event of its range.
func originTicks(raw []signal.RawEvent, p LoadParams, st strand.ID, maxStdev float64) int64 {
	lo, hi := clampRange(p.Bounds.Start(st), p.Bounds.End(st), len(raw))
	for j := lo; j < hi; j++ {
		if Keep(raw[j], p.AbasicLevel, maxStdev) {
			return raw[j].Start
		}
	}
	if lo < len(raw) {
		return raw[lo].Start
	}
	return 0
}

func clampRange(lo, hi, n int) (int, int) {
	lo = min(max(lo, 0), n)
	hi = min(max(hi, lo), n)
	return lo, hi
}
