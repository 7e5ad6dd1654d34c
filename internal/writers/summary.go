package writers

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"nanoprep/internal/jsonlutil"
	"nanoprep/internal/jsonutil"
	"nanoprep/internal/output"
	"nanoprep/internal/summary"
)

func jsonlEncoder(w io.Writer) *jsoniter.Encoder { return jsonutil.API.NewEncoder(w) }

// StartSummaryJSONLWriter streams each summary as one JSON line (v1).
func StartSummaryJSONLWriter(out io.Writer, bufSize int) (chan<- *summary.ReadSummary, <-chan error) {
	return jsonlutil.Start[*summary.ReadSummary](out, bufSize,
		func(enc *jsoniter.Encoder, rs *summary.ReadSummary) error {
			return enc.Encode(output.ToAPISummary(rs))
		},
		IsBrokenPipe,
	)
}

// StartSummaryWriter spins up a writer goroutine for read summaries.
// With sort set (and always for json) summaries are collected and written
// on close; otherwise tsv and jsonl stream.
func StartSummaryWriter(out io.Writer, format string, sort bool, header bool, bufSize int) (chan<- *summary.ReadSummary, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	if format == "jsonl" && !sort {
		return StartSummaryJSONLWriter(out, bufSize)
	}
	in := make(chan *summary.ReadSummary, bufSize)
	errCh := make(chan error, 1)

	go func() {
		var err error
		if format == "tsv" && !sort {
			err = output.StreamText(out, in, header)
		} else {
			var buf []*summary.ReadSummary
			for rs := range in {
				buf = append(buf, rs)
			}
			if sort {
				output.SortSummaries(buf)
			}
			err = WriteBuffered(format, out, buf, header)
		}
		// Drain so senders never block on a dead writer.
		for range in {
		}
		errCh <- err
	}()

	return in, errCh
}
