package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints the saved playlists in display order, or writes them to --output.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	playlists := s.recent.Playlists()
	format := cmd.String("format")

	if path := cmd.String("output"); path != "" {
		written, err := formatter.WriteExport(playlists, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported playlists", "count", len(playlists), "format", format, "path", written)
		return r.writePlain("✓ Exported %d playlists to %s\n", len(playlists), written)
	}

	data, err := formatter.Format(playlists, format)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// PlaylistsInfo prints every detail of one playlist.
func (r *Runner) PlaylistsInfo(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.recent.Info(cmd.String("id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p, true)
	}
	r.writePlainHeader(p.Title)
	return r.writePlain("%s", formatter.Info(p, time.Now()))
}

// PlaylistsOpen opens a playlist's source with the system's default application.
func (r *Runner) PlaylistsOpen(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	id := cmd.String("id")
	if err := s.recent.Open(id); err != nil {
		return err
	}

	p, _ := s.recent.Info(id)
	r.logger.Info("opening playlist", "id", id, "location", p.Location())
	if err := r.open(p.Location()); err != nil {
		return err
	}
	return r.writePlain("Opened %s\n", p.Title)
}

// PlaylistsMove moves one playlist and persists the whole reconciled order.
func (r *Runner) PlaylistsMove(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	from, to := int(cmd.Int("from")), int(cmd.Int("to"))
	if err := s.recent.Drop(from, to); err != nil {
		return err
	}

	r.logger.Info("moved playlist", "from", from, "to", to)
	data, err := formatter.ExportToText(s.recent.Playlists())
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// PlaylistsRemove removes one playlist once the user confirms.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	s, err := r.openSession(ctx, nil, false)
	if err != nil {
		return err
	}
	defer s.Close()

	id := cmd.String("id")
	p, err := s.recent.Info(id)
	if err != nil {
		return err
	}

	prompt, err := s.recent.RequestRemoval(id)
	if err != nil {
		return err
	}

	confirmed := cmd.Bool("yes")
	if !confirmed {
		prompt.Message = fmt.Sprintf("%s\n  %s", p.Title, prompt.Message)
		if confirmed, err = r.confirm(prompt); err != nil {
			s.recent.Confirm(false)
			return err
		}
	}

	if err := s.recent.Confirm(confirmed); err != nil {
		return err
	}
	if !confirmed {
		return r.writePlain("Kept %s\n", p.Title)
	}
	return r.writePlain("✓ Removed %s\n", p.Title)
}

// PlaylistsRefresh asks the backend to reload one playlist and waits for the updated entry.
func (r *Runner) PlaylistsRefresh(ctx context.Context, cmd *cli.Command) error {
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

	id := cmd.String("id")
	if err := s.recent.Refresh(id); err != nil {
		return err
	}
	r.logger.Info("refresh requested", "id", id)

	wait := cmd.Duration("wait")
	if wait <= 0 {
		return r.writePlain("Refresh of %s requested\n", id)
	}

	n, err := s.waitNotice(ctx, wait, func(n tasks.Notification) bool {
		return n.Kind == tasks.NoticeRefreshed && n.PlaylistID == id
	})
	if err != nil {
		return err
	}
	if err := s.settle(ctx); err != nil {
		return err
	}

	p, err := s.recent.Info(id)
	if err != nil {
		return err
	}
	r.writePlain("✓ %s\n", n.Message)
	return r.writePlain("%s", formatter.Info(p, time.Now()))
}
