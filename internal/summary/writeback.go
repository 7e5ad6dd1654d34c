package summary

import (
	"log/slog"

	"nanoprep/internal/event"
	"nanoprep/internal/poremodel"
	"nanoprep/internal/scaling"
	"nanoprep/internal/signal"
	"nanoprep/internal/strand"
)

// Write-back stores decoder results in this read's annotation slot. Every
// call opens its own handle; failures are logged and never affect the
// read's own state.

// WriteSequence stores a called sequence for st under name.
func (rs *ReadSummary) WriteSequence(st strand.ID, name, seq string) {
	rs.annotate(signal.Annotation{Strand: int(st), Kind: signal.KindSequence, Name: name, Payload: seq})
}

// WriteEvents stores the calibrated events of st.
func (rs *ReadSummary) WriteEvents(st strand.ID, seq event.Sequence) {
	rs.annotate(signal.Annotation{Strand: int(st), Kind: signal.KindEvents, Payload: seq.Wire()})
}

// WriteModel stores the pore model used for st.
func (rs *ReadSummary) WriteModel(st strand.ID, m poremodel.Model) {
	rs.annotate(signal.Annotation{Strand: int(st), Kind: signal.KindModel, Name: m.Name, Payload: m})
}

// WriteModelParams stores the calibration parameters used for st.
func (rs *ReadSummary) WriteModelParams(st strand.ID, p scaling.Params) {
	rs.annotate(signal.Annotation{Strand: int(st), Kind: signal.KindModelParams, Payload: p})
}

func (rs *ReadSummary) annotate(a signal.Annotation) {
	if rs.env == nil {
		return
	}
	log := rs.env.log
	if rs.Tag == "" {
		log.Warn("write-back skipped: no annotation tag",
			slog.String("file", rs.FileName), slog.String("kind", string(a.Kind)))
		rs.env.metrics.RecordWriteBackError(string(a.Kind))
		return
	}
	a.Tag = rs.Tag
	if err := rs.env.writeAnnotation(rs.FileName, a); err != nil {
		log.Warn("write-back failed",
			slog.String("file", rs.FileName), slog.String("kind", string(a.Kind)), slog.Any("error", err))
		rs.env.metrics.RecordWriteBackError(string(a.Kind))
	}
}

func (s *Summarizer) writeAnnotation(path string, a signal.Annotation) error {
	w, err := s.src.OpenWritable(path)
	if err != nil {
		return err
	}
	werr := w.Annotate(a)
	cerr := w.Close()
	if werr != nil {
		return werr
	}
	return cerr
}
