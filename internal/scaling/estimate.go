package scaling

import (
	"io"
	"log/slog"

	"nanoprep/internal/event"
	"nanoprep/internal/poremodel"
	"nanoprep/internal/strand"
)

// Single calibrates one strand against model m:
// scale = σ/M.stdev, shift = μ - scale*M.mean.
func Single(obs Stats, m poremodel.Model) Params {
	scale := obs.Stdev / m.Stdev
	return Fitted(scale, obs.Mean-scale*m.Mean)
}

// Shared calibrates both strands with one scale: the mean of the per-strand
// scales, and the mean of the per-strand shifts under that scale.
func Shared(t, c Stats, mt, mc poremodel.Model) Params {
	scale := (t.Stdev/mt.Stdev + c.Stdev/mc.Stdev) / 2
	shift := ((t.Mean - scale*mt.Mean) + (c.Mean - scale*mc.Mean)) / 2
	return Fitted(scale, shift)
}

// Estimator enumerates calibration candidates for a read.
type Estimator struct {
	MinEvents int
	Log       *slog.Logger
}

func (e Estimator) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Estimate returns one candidate per eligible model (independent scaling)
// or per (template, complement) model pair (joint scaling). A strand with
// fewer than MinEvents events contributes nothing in independent mode.
func (e Estimator) Estimate(seqs [2]event.Sequence, models poremodel.Dict, joint bool) Candidates {
	log := e.logger()
	out := make(Candidates)
	if joint {
		t := Summarize(seqs[strand.Template].Means())
		c := Summarize(seqs[strand.Complement].Means())
		for _, mt := range models.Eligible(strand.Template) {
			for _, mc := range models.Eligible(strand.Complement) {
				k := Key{mt.Name, mc.Name}
				p := Shared(t, c, mt, mc)
				log.Debug("initial scaling", slog.String("strand", "both"),
					slog.String("model", k.String()),
					slog.Float64("scale", p.Scale), slog.Float64("shift", p.Shift))
				out[k] = Candidate{Key: k, Params: p}
			}
		}
		return out
	}

	for _, st := range strand.All {
		if len(seqs[st]) < e.MinEvents {
			continue
		}
		obs := Summarize(seqs[st].Means())
		for _, m := range models.Eligible(st) {
			var k Key
			k[st] = m.Name
			p := Single(obs, m)
			log.Debug("initial scaling", slog.String("strand", st.String()),
				slog.String("model", k.String()),
				slog.Float64("scale", p.Scale), slog.Float64("shift", p.Shift))
			out[k] = Candidate{Key: k, Params: p}
		}
	}
	return out
}

// Preselect picks, per strand, the only candidate covering it. A strand
// with zero or several candidates keeps an empty key.
func Preselect(c Candidates, joint bool) [2]Key {
	var pref [2]Key
	if joint {
		if len(c) == 1 {
			for k := range c {
				pref = [2]Key{k, k}
			}
		}
		return pref
	}
	for _, st := range strand.All {
		var only Key
		n := 0
		for k := range c {
			if k[st] != "" {
				only = k
				n++
			}
		}
		if n == 1 {
			pref[st] = only
		}
	}
	return pref
}
