package poremodel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileEntry struct {
	Name   string  `yaml:"name"`
	Strand string  `yaml:"strand"`
	Mean   float64 `yaml:"mean"`
	Stdev  float64 `yaml:"stdev"`
	Levels string  `yaml:"levels"`
}

type dictFile struct {
	Models []fileEntry `yaml:"models"`
}

// LoadYAML reads a model dictionary:
//
//	models:
//	  - name: t6mer
//	    strand: template
//	    mean: 65.3
//	    stdev: 10.1
//	  - name: c6mer
//	    strand: complement
//	    levels: c6mer.tsv   # summary computed from the k-mer table
//
// Relative level-table paths resolve against the YAML file's directory.
func LoadYAML(path string) (Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f dictFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(f.Models) == 0 {
		return nil, fmt.Errorf("%s: no models", path)
	}
	d := make(Dict, len(f.Models))
	for i, e := range f.Models {
		a, err := ParseAffinity(e.Strand)
		if err != nil {
			return nil, fmt.Errorf("%s: model %d: %w", path, i, err)
		}
		m := Model{Name: e.Name, Strand: a, Mean: e.Mean, Stdev: e.Stdev}
		if e.Levels != "" {
			lp := e.Levels
			if !filepath.IsAbs(lp) {
				lp = filepath.Join(filepath.Dir(path), lp)
			}
			if m, err = LoadTSV(lp, e.Name, a); err != nil {
				return nil, err
			}
		}
		if err := d.Add(m); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return d, nil
}

// LoadTSV reads a whitespace-separated k-mer table
//
//	kmer level_mean level_stdev sd_mean sd_stdev
//
// and returns the model summarized over its level means. A header line
// starting with "kmer" and '#' comments are skipped.
func LoadTSV(path, name string, a Affinity) (Model, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Model{}, err
	}
	defer fh.Close()
	levels, err := parseLevels(fh)
	if err != nil {
		return Model{}, fmt.Errorf("%s:%w", path, err)
	}
	if len(levels) == 0 {
		return Model{}, fmt.Errorf("%s: no k-mer levels", path)
	}
	return FromLevels(name, a, levels), nil
}

func parseLevels(r io.Reader) ([]Level, error) {
	var list []Level
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if f[0] == "kmer" {
			continue
		}
		if len(f) != 5 {
			return nil, fmt.Errorf("%d bad field count", ln)
		}
		l := Level{Kmer: f[0]}
		for i, dst := range []*float64{&l.Mean, &l.Stdev, &l.SDMean, &l.SDStdev} {
			v, err := strconv.ParseFloat(f[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%d field %d: %w", ln, i+2, err)
			}
			*dst = v
		}
		list = append(list, l)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
