// internal/cli/exit.go
package cli

import (
	"context"
	"errors"
	"io/fs"

	"primerqc/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2 // bad flags, arguments, config or input sequences
	ExitIO        = 3 // unreadable input, unwritable output
	ExitCancelled = 130
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error { return &exitError{code: ExitUsage, err: err} }
func ioError(err error) error    { return &exitError{code: ExitIO, err: err} }

// exitCode maps a command error to the process exit status. Unclassified
// errors are usage errors; file-system errors are I/O.
func exitCode(ctx context.Context, err error) int {
	var (
		ee *exitError
		pe *fs.PathError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return ExitCancelled
	case writers.IsBrokenPipe(err):
		return ExitOK
	case errors.As(err, &ee):
		return ee.code
	case errors.As(err, &pe):
		return ExitIO
	default:
		return ExitUsage
	}
}
