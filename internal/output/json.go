package output

import (
	"io"

	"nanoprep/internal/jsonutil"
	"nanoprep/internal/strand"
	"nanoprep/internal/summary"
	"nanoprep/pkg/api"
)

// ToAPISummary converts a ReadSummary to the stable wire schema (v1).
func ToAPISummary(rs *summary.ReadSummary) api.SummaryV1 {
	v := api.SummaryV1{
		FileName:        rs.BaseName,
		ReadName:        rs.ReadID,
		NumEvents:       rs.NumEvents,
		AbasicLevel:     rs.AbasicLevel,
		TemplateStart:   rs.Bounds[0],
		TemplateEnd:     rs.Bounds[1],
		ComplementStart: rs.Bounds[2],
		ComplementEnd:   rs.Bounds[3],
		RejectReason:    string(rs.RejectReason),
	}
	if !rs.Accepted() {
		return v
	}
	v.SamplingRate = rs.SamplingRate
	v.TimeLength = []float64{rs.TimeLength[0], rs.TimeLength[1]}
	v.JointScaling = rs.JointScaling
	v.Tag = rs.Tag
	for _, st := range strand.All {
		c, ok := rs.PreferredCandidate(st)
		if !ok {
			continue
		}
		m := &api.ModelV1{
			Name:  c.Key[st],
			Scale: c.Params.Scale, Shift: c.Params.Shift, Drift: c.Params.Drift,
			Var: c.Params.Var, ScaleSD: c.Params.ScaleSD, VarSD: c.Params.VarSD,
			PStay: c.Transitions[st].PStay, PSkip: c.Transitions[st].PSkip,
		}
		if st == strand.Template {
			v.Template = m
		} else {
			v.Complement = m
		}
	}
	for _, k := range rs.Candidates.Keys() {
		c := rs.Candidates[k]
		v.Candidates = append(v.Candidates, api.CandidateV1{
			TemplateModel: k[0], ComplementModel: k[1],
			Scale: c.Params.Scale, Shift: c.Params.Shift,
		})
	}
	return v
}

func toAPISummaries(list []*summary.ReadSummary) []api.SummaryV1 {
	out := make([]api.SummaryV1, 0, len(list))
	for _, rs := range list {
		out = append(out, ToAPISummary(rs))
	}
	return out
}

// WriteJSON writes a single JSON array of v1 summaries (pretty-indented).
func WriteJSON(w io.Writer, list []*summary.ReadSummary) error {
	return jsonutil.EncodePretty(w, toAPISummaries(list))
}
