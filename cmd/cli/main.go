package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/defstack/defstack/internal/app"
	"github.com/defstack/defstack/internal/cli"
)

// main is the entrypoint for the defstack application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Build results go to outW; logs go to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	// Programmer errors (like duplicate type registration) panic; recover
	// here to provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	cfg, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	application := app.New(outW, errW, cfg)
	d, err := application.Build(context.Background(), nil)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		return cli.WriteJSON(outW, d)
	}
	cli.WriteSummary(outW, d)
	return nil
}
