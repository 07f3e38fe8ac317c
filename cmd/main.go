package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/songlist/internal/services"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config, err := shared.Load(defaultConfigPath)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		API:        services.NewAPIService(config.Client.BaseURL, nil),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "songlist",
		Usage:    "Song catalogue API server and client",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
