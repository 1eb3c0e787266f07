package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/soundscript/internal/services"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("SOUNDSCRIPT_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	config := shared.LoadConfigOrDefault(configPath)
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		API:        services.NewContentService(config.API, services.WithLogger(shared.WithLogger(logger, "component", "api"))),
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "soundscript",
		Usage:    "Play transcribed audio content from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
