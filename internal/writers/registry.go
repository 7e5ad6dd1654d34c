// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"nanoprep/internal/output"
	"nanoprep/internal/summary"
)

// BufferedFunc writes a complete, already collected list of summaries.
type BufferedFunc func(w io.Writer, list []*summary.ReadSummary, header bool) error

// Buffered writer registry (format → handler), used when output must be
// collected first (sorting, JSON arrays).
var buffered = map[string]BufferedFunc{}

// RegisterBuffered adds or replaces the handler for format (last wins).
func RegisterBuffered(format string, fn BufferedFunc) { buffered[format] = fn }

// Formats lists every registered format, sorted.
func Formats() []string {
	out := make([]string, 0, len(buffered))
	for f := range buffered {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteBuffered dispatches to the handler registered for format.
func WriteBuffered(format string, w io.Writer, list []*summary.ReadSummary, header bool) error {
	fn, ok := buffered[format]
	if !ok {
		return fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn(w, list, header)
}

func init() {
	RegisterBuffered("tsv", output.WriteText)
	RegisterBuffered("json", func(w io.Writer, list []*summary.ReadSummary, _ bool) error {
		return output.WriteJSON(w, list)
	})
	RegisterBuffered("jsonl", func(w io.Writer, list []*summary.ReadSummary, _ bool) error {
		enc := jsonlEncoder(w)
		for _, rs := range list {
			if err := enc.Encode(output.ToAPISummary(rs)); err != nil {
				return err
			}
		}
		return nil
	})
}
