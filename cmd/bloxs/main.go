package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arikb/bloxs/internal/adapters/cli"
	"github.com/arikb/bloxs/internal/app"
	"github.com/arikb/bloxs/internal/config"
	"github.com/arikb/bloxs/internal/logger"

	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeFn := app.FromConfig(cfg, log)
	defer closeFn()

	if err := cli.NewApp(svc, cfg.JWTSecret).RunContext(ctx, os.Args); err != nil {
		log.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}
