package poremodel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nanoprep/internal/strand"
)

func TestParseAffinity(t *testing.T) {
	for in, want := range map[string]Affinity{
		"template": AffinityTemplate, "0": AffinityTemplate,
		"Complement": AffinityComplement, "1": AffinityComplement,
		"any": AffinityAny, "": AffinityAny, "2": AffinityAny,
	} {
		got, err := ParseAffinity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAffinity("sideways")
	assert.Error(t, err)
}

func TestAffinityMatches(t *testing.T) {
	assert.True(t, AffinityTemplate.Matches(strand.Template))
	assert.False(t, AffinityTemplate.Matches(strand.Complement))
	assert.True(t, AffinityComplement.Matches(strand.Complement))
	assert.True(t, AffinityAny.Matches(strand.Template))
	assert.True(t, AffinityAny.Matches(strand.Complement))
}

func TestDict(t *testing.T) {
	d := Dict{}
	require.NoError(t, d.Add(Model{Name: "t6", Strand: AffinityTemplate, Mean: 60, Stdev: 2}))
	require.NoError(t, d.Add(Model{Name: "c6", Strand: AffinityComplement, Mean: 55, Stdev: 2}))
	require.NoError(t, d.Add(Model{Name: "any", Strand: AffinityAny, Mean: 58, Stdev: 2}))

	assert.Error(t, d.Add(Model{Name: "t6", Mean: 1, Stdev: 1}), "duplicate")
	assert.Error(t, d.Add(Model{Name: "zero", Mean: 1, Stdev: 0}), "zero stdev")
	assert.Error(t, d.Add(Model{Mean: 1, Stdev: 1}), "no name")

	assert.Equal(t, []string{"any", "c6", "t6"}, d.Names())
	var names []string
	for _, m := range d.Eligible(strand.Template) {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"any", "t6"}, names)
}

func TestFromLevels(t *testing.T) {
	m := FromLevels("k", AffinityAny, []Level{{Kmer: "AA", Mean: 2}, {Kmer: "AC", Mean: 4}})
	assert.InDelta(t, 3, m.Mean, 1e-12)
	assert.InDelta(t, 1, m.Stdev, 1e-12)
	assert.Len(t, m.Levels, 2)
}

const levelTable = `kmer	level_mean	level_stdev	sd_mean	sd_stdev
# two k-mers
AAAAAA	50.0	1.0	1.1	0.2
CCCCCC	70.0	1.5	1.2	0.3
`

func TestParseLevels(t *testing.T) {
	levels, err := parseLevels(strings.NewReader(levelTable))
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Equal(t, Level{Kmer: "CCCCCC", Mean: 70, Stdev: 1.5, SDMean: 1.2, SDStdev: 0.3}, levels[1])

	_, err = parseLevels(strings.NewReader("AAAAAA 1 2 3\n"))
	assert.Error(t, err)
	_, err = parseLevels(strings.NewReader("AAAAAA 1 x 3 4\n"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c6.tsv"), []byte(levelTable), 0o644))
	p := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
models:
  - name: t6
    strand: template
    mean: 65.3
    stdev: 10.1
  - name: c6
    strand: complement
    levels: c6.tsv
`), 0o644))

	d, err := LoadYAML(p)
	require.NoError(t, err)
	require.Equal(t, []string{"c6", "t6"}, d.Names())
	assert.Equal(t, AffinityTemplate, d["t6"].Strand)
	assert.InDelta(t, 65.3, d["t6"].Mean, 1e-12)
	assert.Equal(t, AffinityComplement, d["c6"].Strand)
	assert.InDelta(t, 60, d["c6"].Mean, 1e-12)
	assert.InDelta(t, 10, d["c6"].Stdev, 1e-12)
}

func TestLoadYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	_, err := LoadYAML(write("empty.yaml", "models: []\n"))
	assert.Error(t, err)
	_, err = LoadYAML(write("strand.yaml", "models:\n  - {name: x, strand: up, mean: 1, stdev: 1}\n"))
	assert.Error(t, err)
	_, err = LoadYAML(write("stdev.yaml", "models:\n  - {name: x, mean: 1, stdev: 0}\n"))
	assert.Error(t, err)
	_, err = LoadYAML(write("levels.yaml", "models:\n  - {name: x, levels: missing.tsv}\n"))
	assert.Error(t, err)
}

func TestLoadTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "t.tsv")
	require.NoError(t, os.WriteFile(p, []byte(levelTable), 0o644))
	m, err := LoadTSV(p, "t6", AffinityTemplate)
	require.NoError(t, err)
	assert.Equal(t, "t6", m.Name)
	assert.InDelta(t, 60, m.Mean, 1e-12)

	empty := filepath.Join(t.TempDir(), "empty.tsv")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err = LoadTSV(empty, "x", AffinityAny)
	assert.Error(t, err)
}
