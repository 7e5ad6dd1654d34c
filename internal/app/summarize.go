package app

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"nanoprep/internal/appcore"
	"nanoprep/internal/cliutil"
	"nanoprep/internal/config"
	"nanoprep/internal/logging"
	"nanoprep/internal/metrics"
	"nanoprep/internal/poremodel"
	"nanoprep/internal/runutil"
	"nanoprep/internal/signal/sqlitesrc"
	"nanoprep/internal/summary"
	"nanoprep/internal/visitors"
	"nanoprep/internal/writers"
)

type summarizeFlags struct {
	configPath string
	modelsPath string

	cfg  config.Config
	trim []int

	threads      int
	output       string
	sort         bool
	noHeader     bool
	acceptedOnly bool

	logLevel    string
	logFormat   string
	quiet       bool
	metricsFile string

	noAcceptedExitCode int
}

func summarizeCommand() *cobra.Command {
	f := summarizeFlags{cfg: config.Default()}
	cmd := &cobra.Command{
		Use:   "summarize [flags] FILE|DIR|GLOB...",
		Short: "Summarize signal files into per-read calibration records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, args, &f)
		},
	}
	registerSummarizeFlags(cmd.Flags(), &f)
	return cmd
}

func registerSummarizeFlags(fs *pflag.FlagSet, f *summarizeFlags) {
	d := config.Default()
	c := &f.cfg

	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.modelsPath, "models", "", "YAML pore-model dictionary")

	fs.IntVar(&c.MinEvents, "min-events", d.MinEvents, "minimum calibrated events per strand")
	fs.IntVar(&c.MaxEvents, "max-events", d.MaxEvents, "maximum raw events read per file")
	fs.StringVar(&c.EventDetectionRun, "ed-run", d.EventDetectionRun, "event-detection run id")
	fs.Float64Var(&c.AbasicTopPercent, "abasic-top-percent", d.AbasicTopPercent, "top percent of means used for the abasic level")
	fs.Float64Var(&c.AbasicTopOffset, "abasic-top-offset", d.AbasicTopOffset, "offset added to the abasic level")
	fs.StringVar(&c.IslandMode, "island-mode", d.IslandMode, "hairpin island detector: exact | sliding")
	fs.IntVar(&c.ExactRunLength, "exact-run-length", d.ExactRunLength, "consecutive high events forming an island (exact mode)")
	fs.IntVar(&c.HairpinWindowSize, "hairpin-window-size", d.HairpinWindowSize, "sliding window size (sliding mode)")
	fs.IntVar(&c.HairpinWindowLoad, "hairpin-window-load", d.HairpinWindowLoad, "high events per window opening an island (sliding mode)")
	fs.BoolVar(&c.TemplateOnly, "template-only", d.TemplateOnly, "skip hairpin detection")
	fs.IntSliceVar(&f.trim, "trim", d.TrimMargins[:], "trim margins: after start, before end, before hairpin, after hairpin")
	fs.BoolVar(&c.JointScaling, "joint-scaling", d.JointScaling, "estimate one scaling for both strands")
	fs.Float64Var(&c.MaxEventStdev, "max-event-stdev", d.MaxEventStdev, "drop events with a larger stdev")
	fs.StringVar(&c.TagPrefix, "tag-prefix", d.TagPrefix, "annotation tag prefix")

	fs.IntVar(&f.threads, "threads", 0, "worker goroutines (0 = all CPUs)")
	fs.StringVarP(&f.output, "output", "o", "tsv", "output format: "+strings.Join(writers.Formats(), " | "))
	fs.BoolVar(&f.sort, "sort", false, "sort output by file name")
	fs.BoolVar(&f.noHeader, "no-header", false, "omit the TSV header")
	fs.BoolVar(&f.acceptedOnly, "accepted-only", false, "write accepted reads only")

	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug | info | warn | error")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format: text | json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "log errors only")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	fs.IntVar(&f.noAcceptedExitCode, "no-accepted-exit-code", 1, "exit code when no read is accepted")
}

// summaryOverrides copies a changed flag from the flag-bound config onto
// the effective one.
var summaryOverrides = map[string]func(dst *config.Config, src config.Config){
	"min-events":          func(d *config.Config, s config.Config) { d.MinEvents = s.MinEvents },
	"max-events":          func(d *config.Config, s config.Config) { d.MaxEvents = s.MaxEvents },
	"ed-run":              func(d *config.Config, s config.Config) { d.EventDetectionRun = s.EventDetectionRun },
	"abasic-top-percent":  func(d *config.Config, s config.Config) { d.AbasicTopPercent = s.AbasicTopPercent },
	"abasic-top-offset":   func(d *config.Config, s config.Config) { d.AbasicTopOffset = s.AbasicTopOffset },
	"island-mode":         func(d *config.Config, s config.Config) { d.IslandMode = s.IslandMode },
	"exact-run-length":    func(d *config.Config, s config.Config) { d.ExactRunLength = s.ExactRunLength },
	"hairpin-window-size": func(d *config.Config, s config.Config) { d.HairpinWindowSize = s.HairpinWindowSize },
	"hairpin-window-load": func(d *config.Config, s config.Config) { d.HairpinWindowLoad = s.HairpinWindowLoad },
	"template-only":       func(d *config.Config, s config.Config) { d.TemplateOnly = s.TemplateOnly },
	"trim":                func(d *config.Config, s config.Config) { d.TrimMargins = s.TrimMargins },
	"joint-scaling":       func(d *config.Config, s config.Config) { d.JointScaling = s.JointScaling },
	"max-event-stdev":     func(d *config.Config, s config.Config) { d.MaxEventStdev = s.MaxEventStdev },
	"tag-prefix":          func(d *config.Config, s config.Config) { d.TagPrefix = s.TagPrefix },
}

// resolve merges defaults, the config file and changed flags, in that order.
func (f *summarizeFlags) resolve(fs *pflag.FlagSet) (config.File, error) {
	file := config.DefaultFile()
	if f.configPath != "" {
		var err error
		if file, err = config.Load(f.configPath); err != nil {
			return file, err
		}
	}
	if fs.Changed("trim") {
		if len(f.trim) != 4 {
			return file, fmt.Errorf("--trim wants 4 values, got %d", len(f.trim))
		}
		copy(f.cfg.TrimMargins[:], f.trim)
	}
	fs.Visit(func(fl *pflag.Flag) {
		if apply, ok := summaryOverrides[fl.Name]; ok {
			apply(&file.Summary, f.cfg)
		}
	})
	if fs.Changed("models") || file.Models == "" {
		file.Models = f.modelsPath
	}
	if fs.Changed("log-level") {
		file.Logging.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		file.Logging.Format = f.logFormat
	}
	if f.quiet {
		file.Logging.Level = "error"
	}
	if !slices.Contains(writers.Formats(), f.output) {
		return file, fmt.Errorf("invalid --output %q (want %s)", f.output, strings.Join(writers.Formats(), " | "))
	}
	if f.noAcceptedExitCode < 0 || f.noAcceptedExitCode > 255 {
		return file, fmt.Errorf("--no-accepted-exit-code must be between 0 and 255")
	}
	return file, file.Summary.Validate()
}

func runSummarize(cmd *cobra.Command, args []string, f *summarizeFlags) error {
	file, err := f.resolve(cmd.Flags())
	if err != nil {
		return usageError(err)
	}

	base, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: file.Logging.Level, Format: file.Logging.Format})
	if err != nil {
		return usageError(err)
	}
	log := base.With(slog.String("run_id", uuid.NewString()))

	var models poremodel.Dict
	if file.Models != "" {
		if models, err = poremodel.LoadYAML(file.Models); err != nil {
			return usageError(err)
		}
	} else {
		log.Warn("no pore models given; summaries carry no calibration candidates")
	}

	files, err := cliutil.ExpandPositionals(args)
	if err != nil {
		return usageError(err)
	}
	files, dropped := runutil.DedupePaths(files, runutil.DedupeWindow)
	if dropped > 0 {
		log.Warn("duplicate inputs skipped", slog.Int("count", dropped))
	}

	var m *metrics.Metrics
	if f.metricsFile != "" {
		if m, err = metrics.New(prometheus.NewRegistry()); err != nil {
			return ioError(err)
		}
	}

	sm, err := summary.NewSummarizer(file.Summary, models, sqlitesrc.New(),
		summary.WithLogger(log), summary.WithMetrics(m))
	if err != nil {
		return usageError(err)
	}

	visit := visitors.PassThrough{}.Visit
	if f.acceptedOnly {
		visit = visitors.AcceptedOnly{}.Visit
	}

	log.Info("batch started",
		slog.Int("files", len(files)),
		slog.Int("threads", runutil.EffectiveThreads(f.threads)),
		slog.Int("models", len(models)))

	code := appcore.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(),
		appcore.Options{Files: files, Threads: f.threads, NoAcceptedExitCode: f.noAcceptedExitCode},
		sm, visit, appcore.NewSummaryWriterFactory(f.output, f.sort, !f.noHeader),
		logging.Module(log, "batch"))

	if err := m.WriteTextfile(f.metricsFile); err != nil {
		log.Error("metrics not written", slog.String("path", f.metricsFile), slog.Any("error", err))
		if code == 0 {
			code = 3
		}
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}
