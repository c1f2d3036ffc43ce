// Command tracker runs the expense tracker Telegram bot.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/tracker/internal/bootstrap"
	"github.com/m3rciful/tracker/internal/config"
	"github.com/m3rciful/tracker/internal/logger"
	"github.com/m3rciful/tracker/internal/telegram"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	startedAt := time.Now()
	cfgPath := os.Getenv(configEnvVar)
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts := app.TelegramRunOptions()
	runOpts.OnStart = func(ctx context.Context) error {
		logger.LogEvent(ctx, logger.Component("app"), slog.LevelInfo, "ready",
			slog.Duration("startup_duration", logger.Took(startedAt)),
		)
		return nil
	}
	runOpts.OnStop = func(ctx context.Context) error {
		logger.LogEvent(ctx, logger.Component("app"), slog.LevelInfo, "shutdown")
		return nil
	}

	runErr := telegram.Run(ctx, runOpts)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer closeCancel()
	if err := app.Close(closeCtx); err != nil {
		logger.LogEvent(closeCtx, logger.Component("app"), slog.LevelWarn, "close",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return runErr
}
