package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/specialistvlad/rplkit/internal/app"
	"github.com/specialistvlad/rplkit/internal/cli"
	"github.com/specialistvlad/rplkit/internal/hclconfig"
)

func main() {
	// Startup logger; NewApp builds the configured one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses args and executes one command. Command output goes to outW and
// logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a, err := app.NewApp(outW, logW, appConfig, hclconfig.NewLoader())
	if err != nil {
		return &cli.ExitError{Code: 1, Message: fmt.Sprintf("startup failed: %v", err)}
	}
	return a.Run(ctx)
}
