// Package app is the nanoprep command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nanoprep/internal/version"
)

// exitError carries a process exit code out of a cobra RunE. A nil err
// means the message was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: 2, err: err} }

func ioError(err error) error { return &exitError{code: 3, err: err} }

// RootCommand builds the nanoprep command tree.
func RootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "nanoprep",
		Short:         "Summarize and calibrate nanopore reads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(
		summarizeCommand(),
		importCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "nanoprep version %s\n", version.Version)
			return err
		},
	}
}

// RunContext executes argv and returns the process exit code:
// 0 ok, 1 no accepted reads, 2 usage or configuration error,
// 3 I/O or batch error, 130 cancelled.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := RootCommand(stdout, stderr)
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			_, _ = fmt.Fprintln(stderr, "Error:", ee.err)
		}
		return ee.code
	}
	// Flag parsing and unknown commands.
	_, _ = fmt.Fprintln(stderr, "Error:", err)
	return 2
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
