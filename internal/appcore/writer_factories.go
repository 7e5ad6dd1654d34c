package appcore

import (
	"io"

	"nanoprep/internal/summary"
	"nanoprep/internal/writers"
)

// SummaryWriterFactory starts the writer selected on the command line.
type SummaryWriterFactory struct {
	Format string
	Sort   bool
	Header bool
}

func NewSummaryWriterFactory(format string, sort, header bool) SummaryWriterFactory {
	return SummaryWriterFactory{Format: format, Sort: sort, Header: header}
}

func (w SummaryWriterFactory) Start(out io.Writer, bufSize int) (chan<- *summary.ReadSummary, <-chan error) {
	return writers.StartSummaryWriter(out, w.Format, w.Sort, w.Header, bufSize)
}
