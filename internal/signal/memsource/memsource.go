// Package memsource is an in-memory signal.Opener. It backs tests and
// callers that already hold decoded signal data.
package memsource

import (
	"fmt"
	"slices"
	"sync"

	"nanoprep/internal/signal"
)

type entry struct {
	rec         signal.Record
	openErr     error
	readErr     error
	writeErr    error
	annotations []signal.Annotation
	opens       int
}

// Source holds records by path. Safe for concurrent use.
type Source struct {
	mu         sync.Mutex
	files      map[string]*entry
	concurrent bool
}

func New() *Source {
	return &Source{files: make(map[string]*entry), concurrent: true}
}

func (s *Source) get(path string) *entry {
	e, ok := s.files[path]
	if !ok {
		e = &entry{}
		s.files[path] = e
	}
	return e
}

// Put stores rec under path, replacing any previous record.
func (s *Source) Put(path string, rec signal.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(path).rec = rec
}

// FailOpen makes every Open/OpenWritable of path fail with err.
func (s *Source) FailOpen(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(path).openErr = err
}

// FailRead makes event reads of path fail with err.
func (s *Source) FailRead(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(path).readErr = err
}

// FailWrite makes annotation writes to path fail with err.
func (s *Source) FailWrite(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(path).writeErr = err
}

// SetConcurrentSafe controls what ConcurrentSafe reports.
func (s *Source) SetConcurrentSafe(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.concurrent = v
}

func (s *Source) ConcurrentSafe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.concurrent
}

// Annotations returns a copy of everything written back to path.
func (s *Source) Annotations(path string) []signal.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.files[path]; ok {
		return slices.Clone(e.annotations)
	}
	return nil
}

// Opens counts successful read-only opens of path.
func (s *Source) Opens(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.files[path]; ok {
		return e.opens
	}
	return 0
}

func (s *Source) Open(path string) (signal.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, signal.ErrNotFound)
	}
	if e.openErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, e.openErr)
	}
	e.opens++
	return &reader{path: path, rec: e.rec, readErr: e.readErr}, nil
}

func (s *Source) OpenWritable(path string) (signal.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, signal.ErrNotFound)
	}
	if e.openErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, e.openErr)
	}
	return &writer{src: s, path: path}, nil
}

type reader struct {
	path    string
	rec     signal.Record
	readErr error
}

func (r *reader) HasSamplingRate() bool { return r.rec.SamplingRate != 0 }

func (r *reader) SamplingRate() (float64, error) {
	if r.rec.SamplingRate == 0 {
		return 0, fmt.Errorf("%w: %s: sampling rate: %w", signal.ErrRead, r.path, signal.ErrNotFound)
	}
	return r.rec.SamplingRate, nil
}

func (r *reader) HasEventDetection(run string) bool {
	_, ok := r.rec.Runs[run]
	return ok
}

func (r *reader) EventDetectionParams(run string) (signal.EventDetectionParams, error) {
	ed, ok := r.rec.Runs[run]
	if !ok {
		return signal.EventDetectionParams{}, fmt.Errorf("%w: %s: run %s: %w", signal.ErrRead, r.path, run, signal.ErrNotFound)
	}
	return ed.Params, nil
}

func (r *reader) EventDetectionEvents(run string) ([]signal.RawEvent, error) {
	if r.readErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrRead, r.path, r.readErr)
	}
	ed, ok := r.rec.Runs[run]
	if !ok {
		return nil, fmt.Errorf("%w: %s: run %s: %w", signal.ErrRead, r.path, run, signal.ErrNotFound)
	}
	return slices.Clone(ed.Events), nil
}

func (r *reader) AnnotationTags() ([]string, error) { return slices.Clone(r.rec.Tags), nil }

func (r *reader) Close() error { return nil }

type writer struct {
	src  *Source
	path string
}

func (w *writer) Annotate(a signal.Annotation) error {
	w.src.mu.Lock()
	defer w.src.mu.Unlock()
	e := w.src.files[w.path]
	if e.writeErr != nil {
		return fmt.Errorf("%w: %s: %w", signal.ErrWrite, w.path, e.writeErr)
	}
	e.annotations = append(e.annotations, a)
	if !slices.Contains(e.rec.Tags, a.Tag) {
		e.rec.Tags = append(e.rec.Tags, a.Tag)
	}
	return nil
}

func (w *writer) Close() error { return nil }
