package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/pulljson/internal/config"
	"github.com/jacoelho/pulljson/internal/logging"
	"github.com/jacoelho/pulljson/internal/run"
)

func main() {
	exitCode := execute(os.Args)
	os.Exit(exitCode)
}

func execute(args []string) int {
	cfg, exitResult := config.Parse(args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	logger := logging.New(os.Stderr, cfg.Debug)
	defer func() { _ = logger.Sync() }()

	r, exitResult := run.New(cfg, logger)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return r.Run(ctx)
}
