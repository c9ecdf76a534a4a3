// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/urfave/cli/v3"
)

const defaultWait = 5 * time.Second

// Flags are built per command: urfave/cli keeps parsed values on the flag itself.
func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "Playlist ID",
		Required: true,
	}
}

func waitFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "wait",
		Usage: "How long to wait for the backend's answer",
		Value: defaultWait,
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// playlistsCommand handles operations on the saved playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Recent playlists operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved playlists in display order",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, csv, json)",
						Value:   formatter.FormatText,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file instead of stdout",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "info",
				Usage: "Show the details of one playlist",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.PlaylistsInfo,
			},
			{
				Name:   "open",
				Usage:  "Open a playlist's source in the system browser or player",
				Flags:  []cli.Flag{idFlag()},
				Action: r.PlaylistsOpen,
			},
			{
				Name:  "move",
				Usage: "Move a playlist from one display index to another",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "from",
						Usage:    "Current index (0-based)",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Target index (0-based)",
						Required: true,
					},
				},
				Action: r.PlaylistsMove,
			},
			{
				Name:  "remove",
				Usage: "Remove a playlist after confirmation",
				Flags: []cli.Flag{
					idFlag(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.PlaylistsRemove,
			},
			{
				Name:  "refresh",
				Usage: "Ask the backend to reload a playlist from its source",
				Flags: []cli.Flag{
					idFlag(),
					waitFlag(),
				},
				Action: r.PlaylistsRefresh,
			},
		},
	}
}

// migrateCommand handles the legacy playlist migration handshake.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Migrate legacy playlists through the backend",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Ask the backend whether migration is possible",
				Flags:  []cli.Flag{waitFlag()},
				Action: r.MigrateCheck,
			},
			{
				Name:  "run",
				Usage: "Migrate legacy playlists into the local list",
				Flags: []cli.Flag{
					waitFlag(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Send the migration request even when the backend reports it is not possible",
					},
				},
				Action: r.MigrateRun,
			},
			{
				Name:  "purge",
				Usage: "Ask the backend to delete every migrated playlist",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Action: r.MigratePurge,
			},
		},
	}
}

// backendCommand runs the reference backend.
func backendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backend",
		Usage: "Reference backend answering the playlist bridge",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Serve the bridge over WebSocket or Redis until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address for the WebSocket transport",
						Value: "127.0.0.1:7878",
					},
					&cli.StringFlag{
						Name:  "legacy",
						Usage: "JSON file with the legacy playlists offered for migration",
					},
				},
				Action: r.BackendServe,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive recent playlists list",
		Action:  r.TUI,
	}
}
