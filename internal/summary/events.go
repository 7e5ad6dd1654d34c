package summary

import (
	"errors"
	"fmt"
	"log/slog"

	"nanoprep/internal/event"
	"nanoprep/internal/signal"
	"nanoprep/internal/strand"
)

// ErrRejected is returned when events are requested for a rejected read.
var ErrRejected = errors.New("read was rejected")

func (rs *ReadSummary) loadParams() event.LoadParams {
	maxStdev := event.DefaultMaxStdev
	if rs.env != nil {
		maxStdev = rs.env.cfg.MaxEventStdev
	}
	return event.LoadParams{
		Bounds:       rs.Bounds,
		AbasicLevel:  rs.AbasicLevel,
		SamplingRate: rs.SamplingRate,
		MaxStdev:     maxStdev,
		Joint:        rs.JointScaling,
	}
}

// Loaded reports whether calibrated events are materialized.
func (rs *ReadSummary) Loaded() bool { return rs.cache.loaded }

// LoadEvents rebuilds the calibrated sequences from the signal file, the
// bounds and the abasic level. It is a no-op when already loaded.
func (rs *ReadSummary) LoadEvents() error {
	if rs.cache.loaded {
		return nil
	}
	if !rs.Accepted() {
		return fmt.Errorf("%s: %w", rs.FileName, ErrRejected)
	}
	if rs.env == nil {
		return fmt.Errorf("%s: summary has no signal source", rs.FileName)
	}
	raw, err := rs.env.readEvents(rs.FileName)
	if err != nil {
		return err
	}
	if len(raw) < rs.NumEvents {
		return fmt.Errorf("%s: signal file has %d events, summary expects %d", rs.FileName, len(raw), rs.NumEvents)
	}
	raw = raw[:rs.NumEvents]
	rs.cache = eventCache{loaded: true, seqs: event.Load(raw, rs.loadParams())}
	rs.env.log.Debug("events loaded",
		slog.String("read_id", rs.ReadID),
		slog.Int("template", len(rs.cache.seqs[strand.Template])),
		slog.Int("complement", len(rs.cache.seqs[strand.Complement])),
		slog.Uint64("template_fingerprint", rs.cache.seqs[strand.Template].Fingerprint()),
		slog.Uint64("complement_fingerprint", rs.cache.seqs[strand.Complement].Fingerprint()))
	return nil
}

// DropEvents frees the calibrated sequences. Safe to call when unloaded.
func (rs *ReadSummary) DropEvents() { rs.cache = eventCache{} }

// Events returns the calibrated sequence of st; ok is false when unloaded.
func (rs *ReadSummary) Events(st strand.ID) (seq event.Sequence, ok bool) {
	if !rs.cache.loaded {
		return nil, false
	}
	return rs.cache.seqs[st], true
}

func (s *Summarizer) readEvents(path string) ([]signal.RawEvent, error) {
	unlock := s.lockIO()
	defer unlock()
	r, err := s.src.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.EventDetectionEvents(s.cfg.EventDetectionRun)
}
