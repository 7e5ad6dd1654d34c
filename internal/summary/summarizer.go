package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"nanoprep/internal/abasic"
	"nanoprep/internal/config"
	"nanoprep/internal/event"
	"nanoprep/internal/logging"
	"nanoprep/internal/metrics"
	"nanoprep/internal/poremodel"
	"nanoprep/internal/scaling"
	"nanoprep/internal/signal"
	"nanoprep/internal/strand"
)

// Summarizer holds everything shared by the reads of one batch. It is safe
// for concurrent use; each ReadSummary is owned by a single goroutine.
type Summarizer struct {
	cfg      config.Config
	models   poremodel.Dict
	src      signal.Opener
	log      *slog.Logger
	metrics  *metrics.Metrics
	detector strand.Detector
	scaler   scaling.Estimator

	// ioMu serializes open+read when src is not safe for concurrent access.
	ioMu sync.Mutex
}

// Option customizes a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option { return func(s *Summarizer) { s.log = l } }

// WithMetrics sets the metrics sink; nil records nothing.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Summarizer) { s.metrics = m } }

// NewSummarizer validates cfg and returns a Summarizer reading from src.
func NewSummarizer(cfg config.Config, models poremodel.Dict, src signal.Opener, opts ...Option) (*Summarizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("summary: signal source is required")
	}
	s := &Summarizer{cfg: cfg, models: models, src: src, log: logging.Discard()}
	for _, o := range opts {
		o(s)
	}
	s.log = logging.Module(s.log, "summary")
	s.detector = strand.Detector{
		Finder: cfg.IslandFinder(),
		Trim:   cfg.Trim(),
		Log:    logging.Module(s.log, "strand"),
	}
	s.scaler = scaling.Estimator{MinEvents: cfg.MinEvents, Log: logging.Module(s.log, "scaling")}
	return s, nil
}

// Config returns the configuration the Summarizer was built with.
func (s *Summarizer) Config() config.Config { return s.cfg }

// rawRead is everything read from the signal file in the locked section.
type rawRead struct {
	samplingRate float64
	params       signal.EventDetectionParams
	events       []signal.RawEvent
	tags         []string
}

// rejection is a stage failure that downgrades the read.
type rejection struct {
	reason Reason
	level  slog.Level
	msg    string
	attrs  []slog.Attr
}

func reject(reason Reason, level slog.Level, msg string, attrs ...slog.Attr) *rejection {
	return &rejection{reason: reason, level: level, msg: msg, attrs: attrs}
}

func (s *Summarizer) lockIO() func() {
	if s.src.ConcurrentSafe() {
		return func() {}
	}
	s.ioMu.Lock()
	return s.ioMu.Unlock
}

// Summarize analyses the read at path. Every stage failure is contained in
// the returned summary (NumEvents == 0, RejectReason set). The only error
// is ErrTagsExhausted, returned with the otherwise complete summary.
func (s *Summarizer) Summarize(path string) (*ReadSummary, error) {
	start := time.Now()
	rs := newReadSummary(path, s)
	rs.Valid = true

	rej, err := s.summarize(rs)
	if rej != nil {
		rs.NumEvents = 0
		rs.RejectReason = rej.reason
		attrs := append([]slog.Attr{slog.String("file", path), slog.String("reason", string(rej.reason))}, rej.attrs...)
		s.log.LogAttrs(context.Background(), rej.level, rej.msg, attrs...)
	}
	rs.DropEvents()
	outcome := rs.Outcome()
	if errors.Is(err, ErrTagsExhausted) {
		outcome = OutcomeTagsExhausted
	}
	s.metrics.RecordRead(outcome, time.Since(start))
	s.log.Debug("summary", slog.String("read", rs.String()))
	return rs, err
}

func (s *Summarizer) summarize(rs *ReadSummary) (*rejection, error) {
	cfg := s.cfg
	raw, rej := s.readRaw(rs.FileName)
	if rej != nil {
		return rej, nil
	}
	rs.SamplingRate = raw.samplingRate
	if raw.params.ReadID != "" {
		rs.ReadID = raw.params.ReadID
	}
	rs.NumEvents = len(raw.events)

	if rs.NumEvents < cfg.RequiredEvents() {
		return reject(ReasonInsufficientEvents, slog.LevelInfo, "not enough event detection events",
			slog.Int("num_events", rs.NumEvents), slog.Int("required", cfg.RequiredEvents())), nil
	}

	means := make([]float64, len(raw.events))
	for i, e := range raw.events {
		means[i] = e.Mean
	}
	rs.AbasicLevel = abasic.Detect(means, cfg.AbasicTopPercent, cfg.AbasicTopOffset)
	if abasic.Degenerate(rs.AbasicLevel) {
		return reject(ReasonLowAbasicLevel, slog.LevelInfo, "abasic level too low",
			slog.Float64("abasic_level", rs.AbasicLevel)), nil
	}

	if cfg.TemplateOnly {
		rs.Bounds = strand.TemplateOnly(rs.NumEvents, cfg.Trim())
	} else {
		rs.Bounds = s.detector.Detect(means, rs.AbasicLevel).Bounds
	}
	if rs.Bounds.Empty(strand.Template) {
		return reject(ReasonNoStrand, slog.LevelInfo, "no template strand detected",
			slog.String("bounds", rs.Bounds.String())), nil
	}

	rs.JointScaling = cfg.JointScaling &&
		rs.Bounds.Len(strand.Template) >= cfg.MinEvents &&
		rs.Bounds.Len(strand.Complement) >= cfg.MinEvents
	seqs := event.Load(raw.events, rs.loadParams())
	if rs.JointScaling && (len(seqs[strand.Template]) < cfg.MinEvents || len(seqs[strand.Complement]) < cfg.MinEvents) {
		s.log.Debug("joint scaling disabled: too few calibrated events",
			slog.String("read_id", rs.ReadID),
			slog.Int("template", len(seqs[strand.Template])),
			slog.Int("complement", len(seqs[strand.Complement])))
		rs.JointScaling = false
		seqs = event.Load(raw.events, rs.loadParams())
	}
	for _, st := range strand.All {
		s.metrics.RecordEvents(st, len(seqs[st]))
		if len(seqs[st]) >= cfg.MinEvents {
			rs.TimeLength[st] = seqs[st].TimeLength()
		}
	}

	rs.Candidates = s.scaler.Estimate(seqs, s.models, rs.JointScaling)
	rs.Preferred = scaling.Preselect(rs.Candidates, rs.JointScaling)
	s.metrics.RecordCandidates(len(rs.Candidates))

	tag, err := AllocateTag(raw.tags, cfg.TagPrefix, cfg.TagSlots)
	if err != nil {
		s.log.Error("annotation tag allocation failed", slog.String("file", rs.FileName), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", rs.FileName, err)
	}
	rs.Tag = tag
	return nil, nil
}

// readRaw opens the file, checks metadata and reads the raw events capped
// at MaxEvents. Only this step holds the I/O lock.
func (s *Summarizer) readRaw(path string) (rawRead, *rejection) {
	unlock := s.lockIO()
	defer unlock()

	var out rawRead
	sourceErr := func(err error) *rejection {
		return reject(ReasonSignalSource, slog.LevelWarn, "signal source error", slog.Any("error", err))
	}

	r, err := s.src.Open(path)
	if err != nil {
		return out, sourceErr(err)
	}
	defer r.Close()

	if !r.HasSamplingRate() {
		return out, reject(ReasonMissingMetadata, slog.LevelInfo, "missing sampling rate")
	}
	if out.samplingRate, err = r.SamplingRate(); err != nil {
		return out, sourceErr(err)
	}
	if out.samplingRate < s.cfg.SamplingRateMin || out.samplingRate > s.cfg.SamplingRateMax {
		return out, reject(ReasonSamplingRate, slog.LevelWarn, "unexpected sampling rate",
			slog.Float64("sampling_rate", out.samplingRate))
	}

	run := s.cfg.EventDetectionRun
	if !r.HasEventDetection(run) {
		return out, reject(ReasonMissingMetadata, slog.LevelInfo, "missing event detection events",
			slog.String("run", run))
	}
	if out.params, err = r.EventDetectionParams(run); err != nil {
		return out, sourceErr(err)
	}
	if out.events, err = r.EventDetectionEvents(run); err != nil {
		return out, sourceErr(err)
	}
	if n := len(out.events); n > s.cfg.MaxEvents {
		s.log.Info("capping event detection events",
			slog.String("file", path),
			slog.String("using", humanize.Comma(int64(s.cfg.MaxEvents))),
			slog.String("of", humanize.Comma(int64(n))))
		out.events = out.events[:s.cfg.MaxEvents]
	}
	if out.tags, err = r.AnnotationTags(); err != nil {
		return out, sourceErr(err)
	}
	return out, nil
}
