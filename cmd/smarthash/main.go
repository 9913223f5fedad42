package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gingerrexayers/smarthash-go/internal/smarthash/types"
)

// exitError carries the process exit code out of a command. A nil err
// means the code is reported without a message.
type exitError struct {
	code types.ExitCode
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return e.code.String()
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(int(code))
}

// run executes the command line in args and returns the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) types.ExitCode {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return types.ExitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(stderr, "Error:", exitErr.err)
		}
		return exitErr.code
	}

	// Errors raised by cobra itself: unknown commands, flags or arguments.
	fmt.Fprintln(stderr, "Error:", err)
	return types.ExitInvalidCommandLineParams
}
