package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nanoprep/internal/signal"
	"nanoprep/internal/signal/sqlitesrc"
)

type importFlags struct {
	samplingRate float64
	readID       string
	readNumber   int
	run          string
	tags         []string
}

func importCommand() *cobra.Command {
	var f importFlags
	cmd := &cobra.Command{
		Use:   "import EVENTS.tsv OUT.sqlite",
		Short: "Build a signal file from an event table",
		Long: `Import reads a whitespace-separated event table (mean stdev start length,
start and length in sampling ticks) and writes a SQLite signal file that
the summarize command can read.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], args[1], f)
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&f.samplingRate, "sampling-rate", 5000, "sampling rate in Hz (0 omits it)")
	fs.StringVar(&f.readID, "read-id", "", "event-detection read id")
	fs.IntVar(&f.readNumber, "read-number", 0, "event-detection read number")
	fs.StringVar(&f.run, "ed-run", "000", "event-detection run id")
	fs.StringSliceVar(&f.tags, "tag", nil, "pre-existing annotation tag (repeatable)")
	return cmd
}

func runImport(cmd *cobra.Command, in, out string, f importFlags) error {
	if strings.TrimSpace(f.run) == "" {
		return usageError(fmt.Errorf("--ed-run must not be empty"))
	}
	if f.samplingRate < 0 {
		return usageError(fmt.Errorf("--sampling-rate must be ≥ 0"))
	}
	fh, err := os.Open(in)
	if err != nil {
		return ioError(err)
	}
	defer fh.Close()
	events, err := signal.ParseEventsTSV(fh)
	if err != nil {
		return usageError(fmt.Errorf("%s: %w", in, err))
	}
	var start, duration int64
	if n := len(events); n > 0 {
		start = events[0].Start
		duration = events[n-1].Start + events[n-1].Length - start
	}
	rec := signal.Record{
		SamplingRate: f.samplingRate,
		Runs: map[string]signal.Run{
			f.run: {
				Params: signal.EventDetectionParams{
					ReadID:     f.readID,
					ReadNumber: f.readNumber,
					StartTime:  start,
					Duration:   duration,
				},
				Events: events,
			},
		},
		Tags: f.tags,
	}
	if err := sqlitesrc.Create(out, rec); err != nil {
		return ioError(err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d events to %s\n", len(events), out)
	return nil
}

