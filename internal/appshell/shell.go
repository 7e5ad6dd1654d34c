// Package appshell wires a RunContext-style entry point to the process:
// signals, arguments and the exit code.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

func Main(run RunFunc) {
	os.Exit(runWithSignals(run, os.Args[1:]))
}

func runWithSignals(run RunFunc, argv []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	code := run(ctx, argv, os.Stdout, os.Stderr)
	// Normalize cancellation exit code.
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
