// Package sqlitesrc stores per-read signal files as SQLite databases:
// metadata, event-detection runs with their raw events, and annotation
// slots written back by later stages.
package sqlitesrc

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"nanoprep/internal/signal"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS event_detection (
    run_id TEXT PRIMARY KEY,
    read_id TEXT NOT NULL DEFAULT '',
    read_number INTEGER NOT NULL DEFAULT 0,
    start_time INTEGER NOT NULL DEFAULT 0,
    duration INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS events (
    run_id TEXT NOT NULL,
    idx INTEGER NOT NULL,
    mean REAL NOT NULL,
    stdev REAL NOT NULL,
    start INTEGER NOT NULL,
    length INTEGER NOT NULL,
    PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS annotations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tag TEXT NOT NULL,
    strand INTEGER NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL
);`

const keySamplingRate = "sampling_rate"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is a signal.Opener over SQLite signal files.
type Store struct{}

func New() Store { return Store{} }

// ConcurrentSafe is false; open+read of signal files is serialized.
func (Store) ConcurrentSafe() bool { return false }

func openDB(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (Store) Open(path string) (signal.Reader, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, err)
	}
	return &reader{db: db, path: path}, nil
}

func (Store) OpenWritable(path string) (signal.Writer, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: schema: %w", signal.ErrOpen, path, err)
	}
	return &writer{db: db, path: path}, nil
}

// Create writes rec as a new signal file at path. An existing file is
// replaced.
func Create(path string, rec signal.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("sqlitesrc: ensure dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sqlitesrc: replace %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlitesrc: open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlitesrc: schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlitesrc: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if rec.SamplingRate != 0 {
		if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`,
			keySamplingRate, strconv.FormatFloat(rec.SamplingRate, 'g', -1, 64)); err != nil {
			return fmt.Errorf("sqlitesrc: meta: %w", err)
		}
	}
	for id, run := range rec.Runs {
		p := run.Params
		if _, err := tx.Exec(`
INSERT INTO event_detection (run_id, read_id, read_number, start_time, duration)
VALUES (?, ?, ?, ?, ?)`, id, p.ReadID, p.ReadNumber, p.StartTime, p.Duration); err != nil {
			return fmt.Errorf("sqlitesrc: run %s: %w", id, err)
		}
		stmt, err := tx.Prepare(`
INSERT INTO events (run_id, idx, mean, stdev, start, length) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("sqlitesrc: prepare events: %w", err)
		}
		for i, ev := range run.Events {
			if _, err := stmt.Exec(id, i, ev.Mean, ev.Stdev, ev.Start, ev.Length); err != nil {
				stmt.Close()
				return fmt.Errorf("sqlitesrc: run %s event %d: %w", id, i, err)
			}
		}
		stmt.Close()
	}
	for _, tag := range rec.Tags {
		if _, err := tx.Exec(`
INSERT INTO annotations (tag, strand, kind, name, payload) VALUES (?, 0, 'tag', '', 'null')`, tag); err != nil {
			return fmt.Errorf("sqlitesrc: tag %s: %w", tag, err)
		}
	}
	return tx.Commit()
}

type reader struct {
	db   *sql.DB
	path string
}

func (r *reader) readErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		err = signal.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %s: %w", signal.ErrRead, r.path, what, err)
}

func (r *reader) HasSamplingRate() bool {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM meta WHERE key = ?`, keySamplingRate).Scan(&n)
	return err == nil && n > 0
}

func (r *reader) SamplingRate() (float64, error) {
	var v string
	if err := r.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, keySamplingRate).Scan(&v); err != nil {
		return 0, r.readErr("sampling rate", err)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, r.readErr("sampling rate", err)
	}
	return f, nil
}

func (r *reader) HasEventDetection(run string) bool {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM event_detection WHERE run_id = ?`, run).Scan(&n)
	return err == nil && n > 0
}

func (r *reader) EventDetectionParams(run string) (signal.EventDetectionParams, error) {
	var p signal.EventDetectionParams
	err := r.db.QueryRow(`
SELECT read_id, read_number, start_time, duration FROM event_detection WHERE run_id = ?`, run).
		Scan(&p.ReadID, &p.ReadNumber, &p.StartTime, &p.Duration)
	if err != nil {
		return p, r.readErr("event detection params", err)
	}
	return p, nil
}

func (r *reader) EventDetectionEvents(run string) ([]signal.RawEvent, error) {
	rows, err := r.db.Query(`
SELECT mean, stdev, start, length FROM events WHERE run_id = ? ORDER BY idx`, run)
	if err != nil {
		return nil, r.readErr("events", err)
	}
	defer rows.Close()
	var out []signal.RawEvent
	for rows.Next() {
		var ev signal.RawEvent
		if err := rows.Scan(&ev.Mean, &ev.Stdev, &ev.Start, &ev.Length); err != nil {
			return nil, r.readErr("events", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, r.readErr("events", err)
	}
	return out, nil
}

func (r *reader) AnnotationTags() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT tag FROM annotations ORDER BY tag`)
	if err != nil {
		return nil, r.readErr("annotation tags", err)
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, r.readErr("annotation tags", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.readErr("annotation tags", err)
	}
	return tags, nil
}

func (r *reader) Close() error { return r.db.Close() }

type writer struct {
	db   *sql.DB
	path string
}

func (w *writer) Annotate(a signal.Annotation) error {
	payload, err := json.MarshalToString(a.Payload)
	if err != nil {
		return fmt.Errorf("%w: %s: encode %s: %w", signal.ErrWrite, w.path, a.Kind, err)
	}
	if _, err := w.db.Exec(`
INSERT INTO annotations (tag, strand, kind, name, payload) VALUES (?, ?, ?, ?, ?)`,
		a.Tag, a.Strand, string(a.Kind), a.Name, payload); err != nil {
		return fmt.Errorf("%w: %s: %w", signal.ErrWrite, w.path, err)
	}
	return nil
}

func (w *writer) Close() error { return w.db.Close() }

// Annotations reads back every annotation stored in the file at path with
// its raw JSON payload.
func Annotations(path string) ([]StoredAnnotation, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrOpen, path, err)
	}
	defer db.Close()
	rows, err := db.Query(`
SELECT tag, strand, kind, name, payload FROM annotations WHERE kind <> 'tag' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", signal.ErrRead, path, err)
	}
	defer rows.Close()
	var out []StoredAnnotation
	for rows.Next() {
		var a StoredAnnotation
		var kind string
		if err := rows.Scan(&a.Tag, &a.Strand, &kind, &a.Name, &a.Payload); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", signal.ErrRead, path, err)
		}
		a.Kind = signal.Kind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}

// StoredAnnotation is an annotation row with its encoded payload.
type StoredAnnotation struct {
	Tag     string
	Strand  int
	Kind    signal.Kind
	Name    string
	Payload string
}
