package integration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/app"
	"nanoprep/internal/jsonutil"
	"nanoprep/internal/output"
	"nanoprep/internal/signal/sqlitesrc"
	"nanoprep/pkg/api"
)

func write(t *testing.T, fn, data string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
	return fn
}

// eventsTSV renders n events with a high-current run over [hiStart, hiEnd).
func eventsTSV(n, hiStart, hiEnd int) string {
	var b strings.Builder
	b.WriteString("mean\tstdev\tstart\tlength\n")
	for i := 0; i < n; i++ {
		mean := 40 + float64(i%7)
		if i >= hiStart && i < hiEnd {
			mean = 200
		}
		fmt.Fprintf(&b, "%g\t1\t%d\t20\n", mean, 1000+i*20)
	}
	return b.String()
}

const modelsYAML = `models:
  - name: t6
    strand: template
    mean: 0
    stdev: 1
  - name: c6
    strand: complement
    mean: 0
    stdev: 1
`

func run(t *testing.T, argv ...string) (int, string, string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code := app.Run(argv, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

// importRead builds a signal file from a generated event table.
func importRead(t *testing.T, dir, name string, n, hiStart, hiEnd int) string {
	t.Helper()
	tsv := write(t, filepath.Join(dir, name+".tsv"), eventsTSV(n, hiStart, hiEnd))
	db := filepath.Join(dir, name+".sqlite")
	code, _, errs := run(t, "import", "--read-id", name+"-id", tsv, db)
	require.Equal(t, 0, code, errs)
	return db
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	db := importRead(t, dir, "r1", 1000, 480, 495)
	models := write(t, filepath.Join(dir, "models.yaml"), modelsYAML)

	code, out, errs := run(t, "summarize", "--models", models, "--quiet", db)
	require.Equal(t, 0, code, errs)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, output.TSVHeader, lines[0])
	f := strings.Split(lines[1], "\t")
	require.Len(t, f, 26)
	assert.Equal(t, []string{"r1", "r1-id", "1000", "200", "50", "430", "545", "950"}, f[:8])
	assert.Equal(t, "t6", f[8])
	assert.Equal(t, "c6", f[17])

	// summarize never writes back on its own
	ann, err := sqlitesrc.Annotations(db)
	require.NoError(t, err)
	assert.Empty(t, ann)
}

func TestParallelMatchesSerial(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 6; i++ {
		importRead(t, dir, fmt.Sprintf("r%d", i), 600+i*50, 300+i*25-5, 300+i*25+10)
	}
	glob := filepath.Join(dir, "*.sqlite")
	runOut := func(threads int) string {
		code, out, errs := run(t, "summarize", "-q", "--sort", "--output", "json",
			"--threads", fmt.Sprint(threads), glob)
		require.Equal(t, 0, code, errs)
		return out
	}
	serial := runOut(1)
	assert.Equal(t, serial, runOut(4))

	var got []api.SummaryV1
	require.NoError(t, jsonutil.API.Unmarshal([]byte(serial), &got))
	require.Len(t, got, 6)
	assert.Equal(t, "r0", got[0].FileName)
}

func TestDirectoryInputAndJSONL(t *testing.T) {
	dir := t.TempDir()
	importRead(t, dir, "a", 1000, 480, 495)
	importRead(t, dir, "b", 50, 0, 0)

	code, out, errs := run(t, "summarize", "-q", "--sort", "-o", "jsonl", dir)
	require.Equal(t, 0, code, errs)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"file_name":"a"`)
	assert.Contains(t, lines[1], `"reject_reason":"insufficient-events"`)

	code, out, _ = run(t, "summarize", "-q", "--accepted-only", "--no-header", dir)
	require.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNoAcceptedExitCode(t *testing.T) {
	dir := t.TempDir()
	db := importRead(t, dir, "short", 50, 0, 0)

	code, out, _ := run(t, "summarize", "-q", db)
	assert.Equal(t, 1, code)
	assert.Equal(t, 2, strings.Count(out, "\n"))

	code, _, _ = run(t, "summarize", "-q", "--no-accepted-exit-code", "0", db)
	assert.Equal(t, 0, code)
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	db := importRead(t, dir, "r1", 1000, 480, 495)
	cfg := write(t, filepath.Join(dir, "nanoprep.yaml"), `
summary:
  template_only: true
  trim_margins: [10, 10, 50, 50]
logging:
  level: error
`)
	code, out, errs := run(t, "summarize", "--config", cfg, "--no-header", db)
	require.Equal(t, 0, code, errs)
	f := strings.Split(strings.TrimSpace(out), "\t")
	assert.Equal(t, []string{"10", "990", "0", "0"}, f[4:8])

	code, out, errs = run(t, "summarize", "--config", cfg, "--no-header", "--trim", "20,30,50,50", db)
	require.Equal(t, 0, code, errs)
	f = strings.Split(strings.TrimSpace(out), "\t")
	assert.Equal(t, []string{"20", "970", "0", "0"}, f[4:8])
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	db := importRead(t, dir, "r1", 1000, 480, 495)
	prom := filepath.Join(dir, "nanoprep.prom")
	code, _, errs := run(t, "summarize", "-q", "--metrics-file", prom, db)
	require.Equal(t, 0, code, errs)
	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `nanoprep_reads_total{outcome="accepted"} 1`)
}

func TestUsageErrors(t *testing.T) {
	dir := t.TempDir()
	db := importRead(t, dir, "r1", 1000, 480, 495)
	for name, argv := range map[string][]string{
		"unknown flag":    {"summarize", "--bogus", db},
		"no inputs":       {"summarize"},
		"bad output":      {"summarize", "-o", "xml", db},
		"bad trim":        {"summarize", "--trim", "1,2", db},
		"bad island mode": {"summarize", "--island-mode", "fuzzy", db},
		"bad log level":   {"summarize", "--log-level", "loud", db},
		"missing config":  {"summarize", "--config", filepath.Join(dir, "none.yaml"), db},
		"missing models":  {"summarize", "--models", filepath.Join(dir, "none.yaml"), db},
		"empty glob":      {"summarize", filepath.Join(dir, "*.fast5")},
		"unknown command": {"frobnicate"},
		"import args":     {"import", "only-one"},
	} {
		t.Run(name, func(t *testing.T) {
			code, _, errs := run(t, argv...)
			assert.Equal(t, 2, code, errs)
			assert.NotEmpty(t, errs)
		})
	}
}

func TestVersionAndHelp(t *testing.T) {
	code, out, _ := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "nanoprep version dev\n", out)

	code, out, _ = run(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "summarize")
}
