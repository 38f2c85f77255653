package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/cwspublish/internal/app"
	"github.com/vk/cwspublish/internal/cli"
	"github.com/vk/cwspublish/internal/report"
)

// main is the entrypoint for the cwspublish application.
func main() {
	// Use a minimal logger until the app configures its own.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Environ())
	stop()

	os.Exit(exitCode(os.Stderr, err))
}

// run encapsulates the main application logic for easier testing.
func run(ctx context.Context, outW, errW io.Writer, args, environ []string) error {
	cfg, shouldExit, err := cli.Parse(args, outW, environ)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a := app.NewApp(outW, errW, cfg)
	defer a.Close()

	return a.Run(ctx)
}

// exitCode maps the error returned by run to a process exit status, printing
// it first unless the workflow already reported it.
func exitCode(errW io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(errW, exitErr.Message)
		return exitErr.Code
	}

	var failure *report.Failure
	if !errors.As(err, &failure) {
		fmt.Fprintln(errW, err)
	}
	return 1
}
