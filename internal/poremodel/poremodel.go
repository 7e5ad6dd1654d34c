// Package poremodel holds the candidate pore models a read is calibrated
// against. Only the summary statistics of a model are used here; per-k-mer
// emission statistics belong to the decoder.
package poremodel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"nanoprep/internal/strand"
)

// Affinity says which strand a model applies to.
type Affinity int

const (
	AffinityTemplate   Affinity = 0
	AffinityComplement Affinity = 1
	AffinityAny        Affinity = 2
)

// ParseAffinity accepts template, complement, any (or 0, 1, 2).
func ParseAffinity(s string) (Affinity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "template", "0":
		return AffinityTemplate, nil
	case "complement", "1":
		return AffinityComplement, nil
	case "any", "both", "2", "":
		return AffinityAny, nil
	}
	return 0, fmt.Errorf("unknown strand affinity %q", s)
}

func (a Affinity) String() string {
	switch a {
	case AffinityTemplate:
		return "template"
	case AffinityComplement:
		return "complement"
	}
	return "any"
}

// Matches reports whether a model with this affinity can serve st.
func (a Affinity) Matches(st strand.ID) bool {
	return a == AffinityAny || int(a) == int(st)
}

// Level is one k-mer row of a pore model table.
type Level struct {
	Kmer    string  `json:"kmer"`
	Mean    float64 `json:"level_mean"`
	Stdev   float64 `json:"level_stdev"`
	SDMean  float64 `json:"sd_mean"`
	SDStdev float64 `json:"sd_stdev"`
}

// Model is a candidate pore model.
type Model struct {
	Name   string   `json:"name"`
	Strand Affinity `json:"strand"`
	Mean   float64  `json:"mean"`
	Stdev  float64  `json:"stdev"`
	Levels []Level  `json:"levels,omitempty"`
}

// FromLevels builds a model whose summary mean and stdev are taken over
// the k-mer level means.
func FromLevels(name string, a Affinity, levels []Level) Model {
	m := Model{Name: name, Strand: a, Levels: levels}
	if len(levels) == 0 {
		return m
	}
	var sum, sumSq float64
	for _, l := range levels {
		sum += l.Mean
		sumSq += l.Mean * l.Mean
	}
	n := float64(len(levels))
	m.Mean = sum / n
	m.Stdev = math.Sqrt(math.Max(sumSq/n-m.Mean*m.Mean, 0))
	return m
}

// Validate checks that a model can be used for scaling.
func (m Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("pore model: empty name")
	}
	if !(m.Stdev > 0) || math.IsInf(m.Stdev, 0) {
		return fmt.Errorf("pore model %s: stdev must be > 0, got %g", m.Name, m.Stdev)
	}
	if math.IsNaN(m.Mean) || math.IsInf(m.Mean, 0) {
		return fmt.Errorf("pore model %s: mean must be finite", m.Name)
	}
	return nil
}

// Dict maps model names to models.
type Dict map[string]Model

// Add validates m and stores it, rejecting duplicate names.
func (d Dict) Add(m Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if _, dup := d[m.Name]; dup {
		return fmt.Errorf("pore model %s: duplicate name", m.Name)
	}
	d[m.Name] = m
	return nil
}

// Names returns all model names, sorted.
func (d Dict) Names() []string {
	out := make([]string, 0, len(d))
	for n := range d {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Eligible returns the models usable for st, sorted by name.
func (d Dict) Eligible(st strand.ID) []Model {
	var out []Model
	for _, n := range d.Names() {
		if m := d[n]; m.Strand.Matches(st) {
			out = append(out, m)
		}
	}
	return out
}
