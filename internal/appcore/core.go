package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"nanoprep/internal/cmdutil"
	"nanoprep/internal/logging"
	"nanoprep/internal/pipeline"
	"nanoprep/internal/runutil"
	"nanoprep/internal/summary"
	"nanoprep/internal/writers"
)

type Options struct {
	Files []string

	Threads int

	// NoAcceptedExitCode is returned when no read was accepted.
	NoAcceptedExitCode int
}

type VisitorFunc func(*summary.ReadSummary) (keep bool, err error)

type WriterFactory interface {
	Start(out io.Writer, bufSize int) (chan<- *summary.ReadSummary, <-chan error)
}

// Run summarizes o.Files and writes the kept summaries to stdout. It
// returns the process exit code: 0 ok, NoAcceptedExitCode when nothing was
// accepted, 3 for I/O or batch errors, 130 on cancellation.
func Run(
	parent context.Context,
	stdout, stderr io.Writer,
	o Options,
	sm pipeline.Summarizer,
	visit VisitorFunc,
	wf WriterFactory,
	log *slog.Logger,
) int {
	if log == nil {
		log = logging.Discard()
	}
	outw := bufio.NewWriter(stdout)

	thr := runutil.EffectiveThreads(o.Threads)

	inCh, writeErr := wf.Start(outw, thr*4)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	began := time.Now()
	stats, perr := cmdutil.RunStream(
		ctx,
		pipeline.Config{Threads: thr},
		o.Files,
		sm,
		visit,
		func(rs *summary.ReadSummary) error {
			select {
			case inCh <- rs:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)

	close(inCh)

	log.Info("batch finished",
		slog.String("reads", humanize.Comma(int64(stats.Total))),
		slog.String("accepted", humanize.Comma(int64(stats.Accepted))),
		slog.String("written", humanize.Comma(int64(stats.Kept))),
		slog.Duration("elapsed", time.Since(began)))

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return 0
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return 3
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return 3
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return 130
		}
		fmt.Fprintln(stderr, perr)
		return 3
	}
	if stats.Accepted == 0 {
		return o.NoAcceptedExitCode
	}
	return 0
}
