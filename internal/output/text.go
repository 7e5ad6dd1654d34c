package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"nanoprep/internal/scaling"
	"nanoprep/internal/strand"
	"nanoprep/internal/summary"
)

// Fields renders one summary as TSV fields in TSVHeader order.
func Fields(rs *summary.ReadSummary) []string {
	f := make([]string, 0, 8+2*len(modelColumns))
	f = append(f,
		rs.BaseName, rs.ReadID, strconv.Itoa(rs.NumEvents), ftoa(rs.AbasicLevel),
		strconv.Itoa(rs.Bounds[0]), strconv.Itoa(rs.Bounds[1]),
		strconv.Itoa(rs.Bounds[2]), strconv.Itoa(rs.Bounds[3]),
	)
	for _, st := range strand.All {
		name := "."
		var (
			p  scaling.Params
			tr scaling.Transitions
		)
		if c, ok := rs.PreferredCandidate(st); ok {
			name = c.Key[st]
			p = c.Params
			tr = c.Transitions[st]
		}
		f = append(f, name,
			ftoa(p.Scale), ftoa(p.Shift), ftoa(p.Drift), ftoa(p.Var), ftoa(p.ScaleSD), ftoa(p.VarSD),
			ftoa(tr.PStay), ftoa(tr.PSkip))
	}
	return f
}

// WriteText writes an optional header and one TSV row per summary.
func WriteText(w io.Writer, list []*summary.ReadSummary, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for _, rs := range list {
		if _, err := fmt.Fprintln(w, strings.Join(Fields(rs), "\t")); err != nil {
			return err
		}
	}
	return nil
}

// StreamText writes rows as summaries arrive on in.
func StreamText(w io.Writer, in <-chan *summary.ReadSummary, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for rs := range in {
		if _, err := fmt.Fprintln(w, strings.Join(Fields(rs), "\t")); err != nil {
			return err
		}
	}
	return nil
}
