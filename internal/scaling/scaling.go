// Package scaling derives the initial affine calibration (scale, shift) of
// every candidate pore model against the observed event statistics of a read.
package scaling

import (
	"math"
	"sort"
)

// Params is the per-model calibration of a read. Only Scale and Shift are
// estimated here; the decoder refines the rest.
type Params struct {
	Scale   float64 `json:"scale"`
	Shift   float64 `json:"shift"`
	Drift   float64 `json:"drift"`
	Var     float64 `json:"var"`
	ScaleSD float64 `json:"scale_sd"`
	VarSD   float64 `json:"var_sd"`
}

// Fitted returns the parameter set of a fresh estimate.
func Fitted(scale, shift float64) Params {
	return Params{Scale: scale, Shift: shift, Var: 1, ScaleSD: 1, VarSD: 1}
}

// Transitions is the state-transition placeholder filled by the decoder.
type Transitions struct {
	PStay float64 `json:"p_stay"`
	PSkip float64 `json:"p_skip"`
}

// Key names a candidate by (template model, complement model). The slot of
// a strand without a model is empty.
type Key [2]string

func (k Key) String() string {
	name := func(s string) string {
		if s == "" {
			return "."
		}
		return s
	}
	return name(k[0]) + "+" + name(k[1])
}

// Candidate is one calibrated model choice for a read.
type Candidate struct {
	Key         Key
	Params      Params
	Transitions [2]Transitions
}

// Candidates are keyed uniquely by model-name pair.
type Candidates map[Key]Candidate

// Keys returns all keys in lexical order.
func (c Candidates) Keys() []Key {
	out := make([]Key, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Stats summarizes observed event means.
type Stats struct {
	Mean  float64
	Stdev float64
	Count int
}

// Summarize returns the mean and population standard deviation of values.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	varianceSum := 0.0
	for _, v := range values {
		d := v - mean
		varianceSum += d * d
	}
	return Stats{
		Mean:  mean,
		Stdev: math.Sqrt(varianceSum / float64(len(values))),
		Count: len(values),
	}
}
