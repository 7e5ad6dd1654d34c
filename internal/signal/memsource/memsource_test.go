package memsource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/signal"
)

func TestReaderIsolatedFromStore(t *testing.T) {
	s := New()
	s.Put("r", signal.Record{
		SamplingRate: 4000,
		Runs:         map[string]signal.Run{"000": {Events: []signal.RawEvent{{Mean: 1}}}},
	})
	r, err := s.Open("r")
	require.NoError(t, err)
	ev, err := r.EventDetectionEvents("000")
	require.NoError(t, err)
	ev[0].Mean = 99

	again, _ := r.EventDetectionEvents("000")
	assert.Equal(t, 1.0, again[0].Mean)
	assert.Equal(t, 1, s.Opens("r"))
}

func TestFailures(t *testing.T) {
	s := New()
	s.Put("r", signal.Record{Runs: map[string]signal.Run{"000": {}}})
	_, err := s.Open("missing")
	assert.ErrorIs(t, err, signal.ErrNotFound)

	s.FailRead("r", errors.New("bad sector"))
	r, err := s.Open("r")
	require.NoError(t, err)
	_, err = r.EventDetectionEvents("000")
	assert.ErrorIs(t, err, signal.ErrRead)

	s.FailOpen("r", errors.New("locked"))
	_, err = s.OpenWritable("r")
	assert.ErrorIs(t, err, signal.ErrOpen)
}

func TestAnnotateAddsTag(t *testing.T) {
	s := New()
	s.Put("r", signal.Record{})
	w, err := s.OpenWritable("r")
	require.NoError(t, err)
	require.NoError(t, w.Annotate(signal.Annotation{Tag: "Nanoprep_000", Kind: signal.KindSequence, Payload: "AC"}))
	require.NoError(t, w.Annotate(signal.Annotation{Tag: "Nanoprep_000", Kind: signal.KindEvents}))

	r, err := s.Open("r")
	require.NoError(t, err)
	tags, err := r.AnnotationTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"Nanoprep_000"}, tags)
	assert.Len(t, s.Annotations("r"), 2)

	s.FailWrite("r", errors.New("ro"))
	assert.ErrorIs(t, w.Annotate(signal.Annotation{Tag: "x"}), signal.ErrWrite)
}
