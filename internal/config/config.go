// Package config holds the immutable summarizer configuration. A Config is
// built once per batch (defaults, then an optional YAML file, then CLI
// flags) and passed by value; there is no package-level state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"nanoprep/internal/island"
	"nanoprep/internal/strand"
)

// Island detector modes.
const (
	IslandExact   = "exact"
	IslandSliding = "sliding"
)

// Config controls read summarization.
type Config struct {
	MinEvents         int     `yaml:"min_events"`
	MaxEvents         int     `yaml:"max_events"`
	EventDetectionRun string  `yaml:"event_detection_run"`
	AbasicTopPercent  float64 `yaml:"abasic_top_percent"`
	AbasicTopOffset   float64 `yaml:"abasic_top_offset"`

	IslandMode        string `yaml:"island_mode"`      // exact | sliding
	ExactRunLength    int    `yaml:"exact_run_length"` // W = L for exact mode
	HairpinWindowSize int    `yaml:"hairpin_window_size"`
	HairpinWindowLoad int    `yaml:"hairpin_window_load"`

	TemplateOnly bool   `yaml:"template_only"`
	TrimMargins  [4]int `yaml:"trim_margins"` // after start, before end, before hairpin, after hairpin
	JointScaling bool   `yaml:"joint_scaling"`

	MaxEventStdev   float64 `yaml:"max_event_stdev"`
	SamplingRateMin float64 `yaml:"sampling_rate_min"`
	SamplingRateMax float64 `yaml:"sampling_rate_max"`

	TagPrefix string `yaml:"tag_prefix"`
	TagSlots  int    `yaml:"tag_slots"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		MinEvents:         10,
		MaxEvents:         100000,
		EventDetectionRun: "000",
		AbasicTopPercent:  1.0,
		AbasicTopOffset:   0.0,
		IslandMode:        IslandExact,
		ExactRunLength:    5,
		HairpinWindowSize: 10,
		HairpinWindowLoad: 5,
		TrimMargins:       [4]int{50, 50, 50, 50},
		MaxEventStdev:     4.0,
		SamplingRateMin:   1000,
		SamplingRateMax:   10000,
		TagPrefix:         "Nanoprep_",
		TagSlots:          1000,
	}
}

// Validate rejects configurations the summarizer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MinEvents < 1 {
		errs = append(errs, fmt.Errorf("min_events must be ≥ 1, got %d", c.MinEvents))
	}
	if c.MaxEvents < c.MinEvents {
		errs = append(errs, fmt.Errorf("max_events (%d) is smaller than min_events (%d)", c.MaxEvents, c.MinEvents))
	}
	if c.EventDetectionRun == "" {
		errs = append(errs, errors.New("event_detection_run must not be empty"))
	}
	if c.AbasicTopPercent < 0 || c.AbasicTopPercent > 100 {
		errs = append(errs, fmt.Errorf("abasic_top_percent must be in [0,100], got %g", c.AbasicTopPercent))
	}
	switch c.IslandMode {
	case IslandExact:
		if c.ExactRunLength < 1 {
			errs = append(errs, fmt.Errorf("exact_run_length must be ≥ 1, got %d", c.ExactRunLength))
		}
	case IslandSliding:
		if c.HairpinWindowLoad < 1 {
			errs = append(errs, fmt.Errorf("hairpin_window_load must be ≥ 1, got %d", c.HairpinWindowLoad))
		}
		if c.HairpinWindowLoad > c.HairpinWindowSize {
			errs = append(errs, fmt.Errorf("hairpin_window_load (%d) exceeds hairpin_window_size (%d)", c.HairpinWindowLoad, c.HairpinWindowSize))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid island_mode %q (want %s | %s)", c.IslandMode, IslandExact, IslandSliding))
	}
	for i, m := range c.TrimMargins {
		if m < 0 {
			errs = append(errs, fmt.Errorf("trim_margins[%d] must be ≥ 0, got %d", i, m))
		}
	}
	if c.MaxEventStdev <= 0 {
		errs = append(errs, fmt.Errorf("max_event_stdev must be > 0, got %g", c.MaxEventStdev))
	}
	if c.SamplingRateMin <= 0 || c.SamplingRateMin > c.SamplingRateMax {
		errs = append(errs, fmt.Errorf("sampling rate range [%g,%g] is invalid", c.SamplingRateMin, c.SamplingRateMax))
	}
	if c.TagPrefix == "" {
		errs = append(errs, errors.New("tag_prefix must not be empty"))
	}
	if c.TagSlots < 1 || c.TagSlots > 1000 {
		errs = append(errs, fmt.Errorf("tag_slots must be in [1,1000], got %d", c.TagSlots))
	}
	return errors.Join(errs...)
}

// IslandFinder returns the hairpin island detector selected by IslandMode.
func (c Config) IslandFinder() island.Finder {
	if c.IslandMode == IslandSliding {
		return island.Sliding(c.HairpinWindowSize, c.HairpinWindowLoad)
	}
	return island.ExactRun(c.ExactRunLength)
}

// Trim returns the trim margins.
func (c Config) Trim() strand.Trim { return strand.TrimFromMargins(c.TrimMargins) }

// RequiredEvents is the smallest raw event count a read may have.
func (c Config) RequiredEvents() int {
	return c.MinEvents + c.TrimMargins[0] + c.TrimMargins[1]
}

// File is the on-disk configuration layout.
type File struct {
	Summary Config        `yaml:"summary"`
	Models  string        `yaml:"models"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultFile returns the defaults of every section.
func DefaultFile() File {
	return File{Summary: Default(), Logging: LoggingConfig{Level: "info", Format: "text"}}
}

// Load overlays the YAML file at path onto the defaults. Keys missing from
// the file keep their default values. A relative models path resolves
// against the directory of path.
func Load(path string) (File, error) {
	f := DefaultFile()
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	if f.Models != "" && !filepath.IsAbs(f.Models) {
		f.Models = filepath.Join(filepath.Dir(path), f.Models)
	}
	if err := f.Summary.Validate(); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
