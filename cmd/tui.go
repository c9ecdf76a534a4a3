package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive recent playlists list.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	scheduler := ui.NewProgramScheduler()
	s, err := r.openSession(ctx, scheduler, true)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.recent.Activate(); err != nil {
		return fmt.Errorf("failed to activate playlists: %w", err)
	}

	model := ui.NewModel(s.recent, scheduler, s.notes)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	scheduler.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if id := model.Opened(); id != "" {
		if pl, err := s.recent.Info(id); err == nil {
			r.writePlain("%s\n", pl.Location())
		}
	}
	return nil
}
