package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/soundscript/internal/server"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the development content backend over the local track store until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}
	token := cmd.String("token")
	if token == "" {
		token = r.config.API.Token
	}
	status := r.statusOr(cmd.String("status"))

	store, err := r.trackStore()
	if err != nil {
		return err
	}

	if seed := cmd.String("seed"); seed != "" {
		details, err := server.LoadSeedFile(seed)
		if err != nil {
			return err
		}
		if err := server.Seed(store, status, details); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		r.logger.Info("seeded track store", "file", seed, "count", len(details), "status", status)
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	srv := server.New(addr, server.NewContentRouter(store, token, logger), logger)
	return srv.Run(ctx)
}
