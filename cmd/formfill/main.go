// Command formfill classifies form fields and plans or performs fills, on
// static HTML files or live pages driven through a browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			pterm.Error.Println(err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors onto process exit codes. An unfillable page exits
// with 2 so scripts can tell it apart from failures.
func exitCode(err error) int {
	var outcome *outcomeError
	if errors.As(err, &outcome) {
		return 2
	}
	return 1
}

type outcomeError struct {
	err error
}

func (e *outcomeError) Error() string {
	return fmt.Sprintf("%v", e.err)
}

func (e *outcomeError) Unwrap() error {
	return e.err
}
