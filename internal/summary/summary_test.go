package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/scaling"
	"nanoprep/internal/strand"
)

func TestBaseName(t *testing.T) {
	for in, want := range map[string]string{
		"/data/run1/read_1.fast5": "read_1",
		"read_2.sqlite":           "read_2",
		"dir/read_3.db":           "read_3",
		"read_4.txt":              "read_4.txt",
		".db":                     ".db",
	} {
		assert.Equal(t, want, BaseName(in), in)
	}
}

func candidates() scaling.Candidates {
	return scaling.Candidates{
		{"t6", ""}: {Key: scaling.Key{"t6", ""}, Params: scaling.Fitted(10, 80)},
		{"t7", ""}: {Key: scaling.Key{"t7", ""}, Params: scaling.Fitted(11, 81)},
		{"", "c6"}: {Key: scaling.Key{"", "c6"}, Params: scaling.Fitted(9, 70)},
	}
}

func TestPreferred(t *testing.T) {
	rs := &ReadSummary{Valid: true, NumEvents: 10, Candidates: candidates()}
	_, ok := rs.PreferredCandidate(strand.Template)
	assert.False(t, ok)

	require.NoError(t, rs.SetPreferred(strand.Template, scaling.Key{"t7", ""}))
	c, ok := rs.PreferredCandidate(strand.Template)
	require.True(t, ok)
	assert.Equal(t, 11.0, c.Params.Scale)

	assert.Error(t, rs.SetPreferred(strand.Complement, scaling.Key{"t7", ""}), "no complement model")
	assert.Error(t, rs.SetPreferred(strand.Complement, scaling.Key{"", "c9"}), "unknown")
}

func TestSetTransitions(t *testing.T) {
	rs := &ReadSummary{Candidates: candidates()}
	tr := scaling.Transitions{PStay: 0.1, PSkip: 0.05}
	require.NoError(t, rs.SetTransitions(scaling.Key{"", "c6"}, strand.Complement, tr))
	assert.Equal(t, tr, rs.Candidates[scaling.Key{"", "c6"}].Transitions[strand.Complement])
	assert.Error(t, rs.SetTransitions(scaling.Key{"x", ""}, strand.Template, tr))
}

func TestOutcomeAndString(t *testing.T) {
	rs := newReadSummary("a/r9.fast5", nil)
	assert.Equal(t, "unprocessed", rs.Outcome())
	assert.Equal(t, "[base_file_name=r9 valid=false]", rs.String())

	rs.Valid = true
	rs.RejectReason = ReasonNoStrand
	assert.Equal(t, "[base_file_name=r9 valid=true num_events=0 reason=no-strand]", rs.String())

	rs.NumEvents = 1000
	rs.RejectReason = ReasonNone
	rs.AbasicLevel = 200
	rs.Bounds = strand.Bounds{50, 430, 545, 950}
	assert.Equal(t, OutcomeAccepted, rs.Outcome())
	assert.Contains(t, rs.String(), "strand_bounds=[50,430,545,950]")
	assert.Contains(t, rs.String(), "read_id=r9")
}
