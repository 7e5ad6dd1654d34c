// Package signal defines the capability set of a per-read signal file: the
// metadata and raw event-detection events read by the summarizer and the
// annotation slots written back by later stages.
//
// Backends live in subpackages (memsource, sqlitesrc). Callers depend only
// on Opener, Reader and Writer.
package signal

import "errors"

var (
	ErrOpen     = errors.New("signal: open failed")
	ErrRead     = errors.New("signal: read failed")
	ErrWrite    = errors.New("signal: write failed")
	ErrNotFound = errors.New("signal: not found")
)

// RawEvent is one event-detection event exactly as stored by the device.
// Start and Length are in sampling ticks.
type RawEvent struct {
	Mean   float64
	Stdev  float64
	Start  int64
	Length int64
}

// EventDetectionParams is the per-run metadata attached to event detection.
type EventDetectionParams struct {
	ReadID     string
	ReadNumber int
	StartTime  int64
	Duration   int64
}

// Kind names the payload written into an annotation slot.
type Kind string

const (
	KindSequence    Kind = "sequence"
	KindEvents      Kind = "events"
	KindModel       Kind = "model"
	KindModelParams Kind = "model_params"
)

// Annotation is one write-back payload. Payload is encoded by the backend.
type Annotation struct {
	Tag     string
	Strand  int
	Kind    Kind
	Name    string
	Payload any
}

// Reader is an open signal file.
type Reader interface {
	HasSamplingRate() bool
	SamplingRate() (float64, error)
	HasEventDetection(run string) bool
	EventDetectionParams(run string) (EventDetectionParams, error)
	EventDetectionEvents(run string) ([]RawEvent, error)
	// AnnotationTags lists the annotation tags already present in the file.
	AnnotationTags() ([]string, error)
	Close() error
}

// Writer is a signal file opened for annotation write-back.
type Writer interface {
	Annotate(a Annotation) error
	Close() error
}

// Opener opens signal files by path.
type Opener interface {
	Open(path string) (Reader, error)
	OpenWritable(path string) (Writer, error)
	// ConcurrentSafe reports whether Open and reads may run concurrently
	// across files. When false, callers serialize open+read.
	ConcurrentSafe() bool
}

// Run is one event-detection run of a Record.
type Run struct {
	Params EventDetectionParams
	Events []RawEvent
}

// Record is a complete signal file held in memory. A zero SamplingRate
// means the file carries no sampling rate.
type Record struct {
	SamplingRate float64
	Runs         map[string]Run
	Tags         []string
}
