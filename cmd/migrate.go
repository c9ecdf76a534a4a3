package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// purgePrompt guards the one-way request that deletes migrated playlists on the backend.
var purgePrompt = tasks.Prompt{
	Title:   "Delete migrated playlists",
	Message: "The backend will delete every playlist it migrated. Local playlists are kept. Continue?",
}

func (s *session) requireBackend() error {
	if !s.recent.Connected() {
		return fmt.Errorf("%w: set backend.transport in config.toml or %s", shared.ErrChannelAbsent, shared.EnvBackendTransport)
	}
	return nil
}

// MigrateCheck prints whether the backend can migrate legacy playlists.
func (r *Runner) MigrateCheck(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.requireBackend(); err != nil {
		return err
	}
	if err := s.recent.Activate(); err != nil {
		return err
	}

	status, state, err := s.waitHandshake(ctx, cmd.Duration("wait"))
	if err != nil {
		return err
	}

	r.writePlain("Migration: %s\n", status)
	if state.Message != "" {
		r.writePlain("%s\n", state.Message)
	}
	return nil
}

// MigrateRun checks with the backend, then migrates and merges the returned playlists into the list.
func (r *Runner) MigrateRun(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.requireBackend(); err != nil {
		return err
	}
	if err := s.recent.Activate(); err != nil {
		return err
	}

	wait := cmd.Duration("wait")
	status, state, err := s.waitHandshake(ctx, wait)
	if err != nil {
		return err
	}
	if status != tasks.StatusPossible && !cmd.Bool("force") {
		r.writePlain("Migration: %s\n", status)
		if state.Message != "" {
			r.writePlain("%s\n", state.Message)
		}
		return nil
	}

	before := s.store.Len()
	if err := s.recent.Migrate(); err != nil {
		return err
	}
	r.logger.Info("migration requested")

	n, err := s.waitNotice(ctx, wait, func(n tasks.Notification) bool {
		return n.Kind == tasks.NoticeMigrated
	})
	if err != nil {
		return err
	}

	r.logger.Info("migration complete", "received", n.Count, "added", s.store.Len()-before)
	return r.writePlain("✓ %s\n", n.Message)
}

// MigratePurge asks the backend to delete every migrated playlist. No answer is expected.
func (r *Runner) MigratePurge(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.requireBackend(); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		confirmed, err := r.confirm(purgePrompt)
		if err != nil {
			return err
		}
		if !confirmed {
			return r.writePlain("Nothing deleted\n")
		}
	}

	if err := s.recent.DeleteMigrated(); err != nil {
		return err
	}
	return r.writePlain("✓ Delete request sent\n")
}
