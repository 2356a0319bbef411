// Command cryptval runs the primitive validator catalog and reports the outcome.
//
// Exit status is 0 when every selected validator passed, 1 when any failed
// or a replay drifted, 2 for configuration and usage errors, and 10 for
// internal errors.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/lattice-substrate/cryptval/valerr"
)

// version is set via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newApp(stdout, stderr).execute(ctx, args)
}

// ExitError carries a non-zero exit code out of a RunE handler. A nil Err
// means the outcome has already been reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// writeClassifiedError reports err on stderr and returns its exit code.
// Unclassified errors are internal.
func writeClassifiedError(stderr io.Writer, err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err == nil {
			return exitErr.Code
		}
		if werr := writef(stderr, "error: %v\n", exitErr.Err); werr != nil {
			return valerr.ExitInternal
		}
		return exitErr.Code
	}
	if werr := writef(stderr, "error: %v\n", err); werr != nil {
		return valerr.ExitInternal
	}
	return valerr.ExitCodeOf(err)
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	return nil
}
