package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/strand"
)

func TestRecord(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordRead("accepted", 2*time.Millisecond)
	m.RecordRead("accepted", time.Millisecond)
	m.RecordRead("no-strand", time.Millisecond)
	m.RecordEvents(strand.Template, 380)
	m.RecordEvents(strand.Complement, 405)
	m.RecordCandidates(4)
	m.RecordWriteBackError("events")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.readsTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readsTotal.WithLabelValues("no-strand")))
	assert.Equal(t, 380.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("template")))
	assert.Equal(t, 405.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("complement")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.candidatesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeBackErrors.WithLabelValues("events")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.summarizeDuration))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordRead("accepted", time.Second)
	m.RecordEvents(strand.Template, 1)
	m.RecordCandidates(1)
	m.RecordWriteBackError("model")
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)
	m.RecordRead("accepted", time.Millisecond)

	p := filepath.Join(t.TempDir(), "nanoprep.prom")
	require.NoError(t, m.WriteTextfile(p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `nanoprep_reads_total{outcome="accepted"} 1`))
}
