// Package summary runs the per-read analysis pass: raw event loading,
// abasic level detection, strand splitting, filtering and initial model
// scaling. The result is a ReadSummary whose heavy event data is a
// recomputable cache.
package summary

import (
	"fmt"
	"path/filepath"
	"strings"

	"nanoprep/internal/event"
	"nanoprep/internal/scaling"
	"nanoprep/internal/strand"
)

// Reason names why a read was rejected.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonMissingMetadata    Reason = "missing-metadata"
	ReasonSamplingRate       Reason = "sampling-rate"
	ReasonInsufficientEvents Reason = "insufficient-events"
	ReasonLowAbasicLevel     Reason = "low-abasic-level"
	ReasonNoStrand           Reason = "no-strand"
	ReasonSignalSource       Reason = "signal-source"
)

// OutcomeAccepted is the metrics/outcome label of an accepted read.
const OutcomeAccepted = "accepted"

// OutcomeTagsExhausted labels a read that passed every stage but found no
// free annotation tag.
const OutcomeTagsExhausted = "tags-exhausted"

// signalExtensions are stripped from file names to form the base name.
var signalExtensions = []string{".fast5", ".sqlite", ".db"}

// BaseName strips the directory and a known signal-file extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	for _, ext := range signalExtensions {
		if strings.HasSuffix(base, ext) && len(base) > len(ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

// ReadSummary is the per-read aggregate. When NumEvents is 0 the read is
// rejected and only FileName, BaseName, ReadID and RejectReason are
// meaningful.
type ReadSummary struct {
	FileName     string
	BaseName     string
	ReadID       string
	Valid        bool
	NumEvents    int
	SamplingRate float64
	AbasicLevel  float64
	Bounds       strand.Bounds
	TimeLength   [2]float64
	JointScaling bool
	Candidates   scaling.Candidates
	// Preferred[st] is the candidate reported for strand st; an empty
	// Preferred[st][st] means none.
	Preferred    [2]scaling.Key
	Tag          string
	RejectReason Reason

	cache eventCache
	env   *Summarizer
}

func newReadSummary(path string, env *Summarizer) *ReadSummary {
	base := BaseName(path)
	return &ReadSummary{
		FileName:   path,
		BaseName:   base,
		ReadID:     base,
		Candidates: make(scaling.Candidates),
		env:        env,
	}
}

// Accepted reports whether the read passed every stage.
func (rs *ReadSummary) Accepted() bool { return rs.Valid && rs.NumEvents > 0 }

// Outcome is "accepted" or the rejection reason.
func (rs *ReadSummary) Outcome() string {
	if rs.Accepted() {
		return OutcomeAccepted
	}
	if rs.RejectReason == ReasonNone {
		return "unprocessed"
	}
	return string(rs.RejectReason)
}

// PreferredCandidate returns the candidate reported for st.
func (rs *ReadSummary) PreferredCandidate(st strand.ID) (scaling.Candidate, bool) {
	k := rs.Preferred[st]
	if k[st] == "" {
		return scaling.Candidate{}, false
	}
	c, ok := rs.Candidates[k]
	return c, ok
}

// SetPreferred records k as the candidate reported for st. k must be a
// known candidate covering st.
func (rs *ReadSummary) SetPreferred(st strand.ID, k scaling.Key) error {
	if k[st] == "" {
		return fmt.Errorf("candidate %s has no %s model", k, st)
	}
	if _, ok := rs.Candidates[k]; !ok {
		return fmt.Errorf("unknown candidate %s", k)
	}
	rs.Preferred[st] = k
	return nil
}

// SetTransitions stores decoder-estimated transitions of candidate k for st.
func (rs *ReadSummary) SetTransitions(k scaling.Key, st strand.ID, tr scaling.Transitions) error {
	c, ok := rs.Candidates[k]
	if !ok {
		return fmt.Errorf("unknown candidate %s", k)
	}
	c.Transitions[st] = tr
	rs.Candidates[k] = c
	return nil
}

func (rs *ReadSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[base_file_name=%s valid=%t", rs.BaseName, rs.Valid)
	if rs.Valid {
		fmt.Fprintf(&b, " num_events=%d", rs.NumEvents)
		if rs.NumEvents > 0 {
			fmt.Fprintf(&b, " read_id=%s abasic_level=%g strand_bounds=%s time_length=[%g,%g]",
				rs.ReadID, rs.AbasicLevel, rs.Bounds, rs.TimeLength[0], rs.TimeLength[1])
		} else if rs.RejectReason != ReasonNone {
			fmt.Fprintf(&b, " reason=%s", rs.RejectReason)
		}
	}
	b.WriteString("]")
	return b.String()
}

// eventCache is either unloaded or holds both strands' sequences.
type eventCache struct {
	loaded bool
	seqs   [2]event.Sequence
}
