package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/songlist/internal/api"
	"github.com/desertthunder/songlist/internal/auth"
	"github.com/desertthunder/songlist/internal/server"
	"github.com/desertthunder/songlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve validates the configuration, opens the database and runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))

	gate, err := auth.NewGate(config.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	store, closeStore, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewRouter(server.RouterOptions{
		Logger:      logger,
		CORSOrigins: config.Server.CORSOrigins,
	}, api.NewHandler(store, gate, logger))

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Address()
	}
	timeout := time.Duration(config.Server.ShutdownTimeoutSeconds) * time.Second

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting server", "addr", addr, "driver", config.Database.Driver)
	return server.New(addr, router, timeout, logger).Run(ctx)
}
