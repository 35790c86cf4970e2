package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fplbuddy/scoreboard/internal/app"
	"github.com/fplbuddy/scoreboard/internal/config"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("scoreboard starting",
		"entry_id", cfg.EntryID,
		"poll_interval", cfg.PollInterval.String(),
		"env", cfg.AppEnv,
	)

	if err := a.Run(ctx); err != nil {
		logger.Error("scoreboard stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("scoreboard stopped")
}
