package summary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nanoprep/internal/config"
	"nanoprep/internal/poremodel"
	"nanoprep/internal/signal"
	"nanoprep/internal/signal/memsource"
)

const (
	lowMean  = 40.0
	highMean = 200.0
)

// hairpinEvents returns n raw events with low current everywhere except
// the half-open high runs.
func hairpinEvents(n int, high ...[2]int) []signal.RawEvent {
	out := make([]signal.RawEvent, n)
	for i := range out {
		out[i] = signal.RawEvent{
			Mean:   lowMean + float64(i%7),
			Stdev:  1,
			Start:  1000 + int64(i)*20,
			Length: 20,
		}
	}
	for _, r := range high {
		for i := r[0]; i < r[1]; i++ {
			out[i].Mean = highMean
		}
	}
	return out
}

func record(events []signal.RawEvent, tags ...string) signal.Record {
	return signal.Record{
		SamplingRate: 5000,
		Runs: map[string]signal.Run{
			"000": {Params: signal.EventDetectionParams{ReadID: "read-7", ReadNumber: 7}, Events: events},
		},
		Tags: tags,
	}
}

// standardRead is the 1000-event read with one hairpin at [480,495).
func standardRead() signal.Record {
	return record(hairpinEvents(1000, [2]int{480, 495}))
}

func testModels(t *testing.T) poremodel.Dict {
	t.Helper()
	d := poremodel.Dict{}
	require.NoError(t, d.Add(poremodel.Model{Name: "t6", Strand: poremodel.AffinityTemplate, Mean: 0, Stdev: 1}))
	require.NoError(t, d.Add(poremodel.Model{Name: "c6", Strand: poremodel.AffinityComplement, Mean: 0, Stdev: 1}))
	return d
}

func newTestSummarizer(t *testing.T, cfg config.Config, src signal.Opener, opts ...Option) *Summarizer {
	t.Helper()
	s, err := NewSummarizer(cfg, testModels(t), src, opts...)
	require.NoError(t, err)
	return s
}

func sourceWith(path string, rec signal.Record) *memsource.Source {
	src := memsource.New()
	src.Put(path, rec)
	return src
}
