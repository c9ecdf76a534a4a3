package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/server"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// BackendServe runs the reference backend on the configured transport until interrupted.
func (r *Runner) BackendServe(ctx context.Context, cmd *cli.Command) error {
	var legacy []models.PlaylistSummary
	if path := cmd.String("legacy"); path != "" {
		items, err := server.LoadLegacy(path)
		if err != nil {
			return err
		}
		legacy = items
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := server.NewBackend(server.BackendOpts{Legacy: legacy, Logger: r.logger})
	r.logger.Info("starting backend", "transport", r.config.Backend.Transport, "legacy", len(legacy))

	switch r.config.Backend.Transport {
	case shared.TransportRedis:
		opts, err := redis.ParseURL(r.config.Backend.URL)
		if err != nil {
			return fmt.Errorf("%w: backend.url: %v", shared.ErrInvalidConfig, err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		return backend.ServeRedis(ctx, client, r.config.Backend.ChannelPrefix)

	default:
		return server.ListenAndServe(ctx, cmd.String("addr"), server.NewRouter(backend, r.logger), r.logger)
	}
}
