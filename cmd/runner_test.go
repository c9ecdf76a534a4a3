package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/server"
	"github.com/desertthunder/plx/internal/shared"
	tu "github.com/desertthunder/plx/internal/testing"
	"github.com/urfave/cli/v3"
)

type harness struct {
	runner *Runner
	config *shared.Config
	output *bytes.Buffer
	opened []string
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "plx.db")
	config.Backend.Transport = shared.TransportNone

	h := &harness{config: config, output: &bytes.Buffer{}}
	h.runner = NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.DiscardLogger(),
		Output: h.output,
		Input:  strings.NewReader(input),
		Open: func(location string) error {
			h.opened = append(h.opened, location)
			return nil
		},
	})
	return h
}

// run builds a fresh command tree for every invocation since parsed flag values live on the flags.
func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "plx", Commands: h.runner.register()}
	return app.Run(context.Background(), append([]string{"plx"}, args...))
}

func (h *harness) seed(t *testing.T, items ...models.PlaylistSummary) {
	t.Helper()
	db, err := shared.OpenDatabase(h.config.Database)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := repositories.NewPlaylistRepository(db).AddMany(items); err != nil {
		t.Fatalf("failed to seed playlists: %v", err)
	}
}

func (h *harness) saved(t *testing.T) []models.PlaylistSummary {
	t.Helper()
	db, err := shared.OpenDatabase(h.config.Database)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	items, err := repositories.NewPlaylistRepository(db).List()
	if err != nil {
		t.Fatalf("failed to list playlists: %v", err)
	}
	return items
}

// useBackend points the harness at a reference backend served over WebSocket.
func (h *harness) useBackend(t *testing.T, legacy ...models.PlaylistSummary) {
	t.Helper()
	srv := httptest.NewServer(server.NewRouter(server.NewBackend(server.BackendOpts{Legacy: legacy}), shared.DiscardLogger()))
	t.Cleanup(srv.Close)

	h.config.Backend.Transport = shared.TransportWebSocket
	h.config.Backend.URL = "ws" + strings.TrimPrefix(srv.URL, "http") + "/bridge"
}

func playlist(id, title string) models.PlaylistSummary {
	return models.PlaylistSummary{
		ID:         id,
		Title:      title,
		Count:      3,
		ImportDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Source:     models.FromURL("https://example.com/" + id + ".m3u"),
	}
}

func ids(items []models.PlaylistSummary) string {
	var b strings.Builder
	for _, p := range items {
		b.WriteString(p.ID)
	}
	return b.String()
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout output")
			}
			if runner.input != os.Stdin {
				t.Error("expected stdin input")
			}
			if runner.open == nil {
				t.Error("expected default opener")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		names := map[string]bool{}
		for _, c := range NewRunner(RunnerOpts{}).register() {
			names[c.Name] = true
		}
		for _, want := range []string{"setup", "playlists", "migrate", "backend", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		h := newHarness(t, "")
		if err := h.runner.writeJSON(map[string]int{"a": 1}, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := h.output.String(); got != "{\"a\":1}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("writePlainln", func(t *testing.T) {
		h := newHarness(t, "")
		h.runner.writePlainln("hello %s", "world")
		if got := h.output.String(); got != "\nhello world\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("write errors", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writePlain("x"); err == nil {
			t.Error("expected writePlain to fail")
		}
		if err := runner.writeJSON([]int{1}, true); err == nil {
			t.Error("expected writeJSON to fail")
		}
	})

	t.Run("confirm", func(t *testing.T) {
		tests := []struct {
			input string
			want  bool
		}{
			{input: "y\n", want: true},
			{input: "YES\n", want: true},
			{input: "n\n", want: false},
			{input: "\n", want: false},
			{input: "", want: false},
		}

		for _, tt := range tests {
			h := newHarness(t, tt.input)
			got, err := h.runner.confirm(purgePrompt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("input %q: expected %v, got %v", tt.input, tt.want, got)
			}
		}
	})
}

func TestSetupDatabase(t *testing.T) {
	h := newHarness(t, "")
	configPath := filepath.Join(t.TempDir(), "config.toml")

	if err := h.run(t, "setup", "database", "--config", configPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, h.config.Database.Path)
	if !strings.Contains(h.output.String(), "Database ready") {
		t.Errorf("unexpected output %q", h.output.String())
	}
}

func TestPlaylistsCommands(t *testing.T) {
	t.Run("ListText", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"), playlist("B", "Beta"))

		if err := h.run(t, "playlists", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Playlists: 2") || strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("ListToFile", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"))
		path := filepath.Join(t.TempDir(), "playlists.csv")

		if err := h.run(t, "playlists", "list", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "Alpha") {
			t.Errorf("expected Alpha in export, got:\n%s", content)
		}
	})

	t.Run("ListUnknownFormat", func(t *testing.T) {
		h := newHarness(t, "")
		if err := h.run(t, "playlists", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("InfoJSON", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"))

		if err := h.run(t, "playlists", "info", "--id", "A", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), `"url": "https://example.com/A.m3u"`) {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})

	t.Run("InfoUnknown", func(t *testing.T) {
		h := newHarness(t, "")
		if err := h.run(t, "playlists", "info", "--id", "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Open", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"))

		if err := h.run(t, "playlists", "open", "--id", "A"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(h.opened) != 1 || h.opened[0] != "https://example.com/A.m3u" {
			t.Errorf("expected source to be opened, got %v", h.opened)
		}
	})

	t.Run("MovePersists", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "A"), playlist("B", "B"), playlist("C", "C"), playlist("D", "D"), playlist("E", "E"))

		if err := h.run(t, "playlists", "move", "--from", "0", "--to", "3"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved := h.saved(t)
		if got := ids(saved); got != "BCDAE" {
			t.Errorf("expected BCDAE, got %s", got)
		}
		for i, p := range saved {
			if p.Position != i {
				t.Errorf("expected %s at position %d, got %d", p.ID, i, p.Position)
			}
		}
	})

	t.Run("MoveOutOfRange", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "A"))

		if err := h.run(t, "playlists", "move", "--from", "0", "--to", "5"); !errors.Is(err, shared.ErrInvalidIndex) {
			t.Errorf("expected ErrInvalidIndex, got %v", err)
		}
	})

	t.Run("RemoveConfirmed", func(t *testing.T) {
		h := newHarness(t, "y\n")
		h.seed(t, playlist("A", "Alpha"), playlist("B", "Beta"))

		if err := h.run(t, "playlists", "remove", "--id", "A"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ids(h.saved(t)); got != "B" {
			t.Errorf("expected only B left, got %s", got)
		}
		if !strings.Contains(h.output.String(), "Remove playlist") {
			t.Errorf("expected prompt in output, got:\n%s", h.output.String())
		}
	})

	t.Run("RemoveDeclined", func(t *testing.T) {
		h := newHarness(t, "n\n")
		h.seed(t, playlist("A", "Alpha"), playlist("B", "Beta"))

		if err := h.run(t, "playlists", "remove", "--id", "A"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := ids(h.saved(t)); got != "AB" {
			t.Errorf("expected AB kept, got %s", got)
		}
		if !strings.Contains(h.output.String(), "Kept Alpha") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})

	t.Run("RemoveWithoutPrompt", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"))

		if err := h.run(t, "playlists", "remove", "--id", "A", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(h.saved(t)) != 0 {
			t.Error("expected playlist to be removed")
		}
	})

	t.Run("RefreshWithoutBackend", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Alpha"))

		if err := h.run(t, "playlists", "refresh", "--id", "A"); !errors.Is(err, shared.ErrChannelAbsent) {
			t.Errorf("expected ErrChannelAbsent, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		h := newHarness(t, "")
		path := filepath.Join(t.TempDir(), "local.m3u")
		os.WriteFile(path, []byte("#EXTM3U\n#EXTINF:-1,One\nhttp://a/1\n#EXTINF:-1,Two\nhttp://a/2\n"), 0644)

		local := playlist("A", "Local")
		local.Source = models.FromFile(path)
		h.seed(t, playlist("Z", "First"), local)
		h.useBackend(t)

		if err := h.run(t, "playlists", "refresh", "--id", "A", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		saved := h.saved(t)
		if got := ids(saved); got != "ZA" {
			t.Errorf("expected refresh to keep order ZA, got %s", got)
		}
		if saved[1].Count != 2 || saved[1].UpdateDate == nil {
			t.Errorf("expected refreshed count and update date, got %+v", saved[1])
		}
		if !strings.Contains(h.output.String(), "Playlist Local was successfully updated") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})
}

func TestMigrateCommands(t *testing.T) {
	legacy := []models.PlaylistSummary{playlist("L1", "Legacy one"), playlist("L2", "Legacy two")}

	t.Run("CheckWithoutBackend", func(t *testing.T) {
		h := newHarness(t, "")
		if err := h.run(t, "migrate", "check"); !errors.Is(err, shared.ErrChannelAbsent) {
			t.Errorf("expected ErrChannelAbsent, got %v", err)
		}
	})

	t.Run("Check", func(t *testing.T) {
		h := newHarness(t, "")
		h.useBackend(t, legacy...)

		if err := h.run(t, "migrate", "check", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := h.output.String()
		if !strings.Contains(out, "Migration: POSSIBLE") || !strings.Contains(out, "2 legacy playlists can be migrated") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("RunMergesIntoList", func(t *testing.T) {
		h := newHarness(t, "")
		h.seed(t, playlist("A", "Existing"))
		h.useBackend(t, legacy...)

		if err := h.run(t, "migrate", "run", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "2 playlists were successfully migrated") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
		if got := ids(h.saved(t)); got != "AL1L2" {
			t.Errorf("expected migrated playlists appended, got %s", got)
		}
	})

	t.Run("RunNotPossible", func(t *testing.T) {
		h := newHarness(t, "")
		h.useBackend(t)

		if err := h.run(t, "migrate", "run", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "Migration: NOT_POSSIBLE") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
		if len(h.saved(t)) != 0 {
			t.Error("expected nothing migrated")
		}
	})

	t.Run("PurgeReachesBackend", func(t *testing.T) {
		h := newHarness(t, "")
		h.useBackend(t, legacy...)

		if err := h.run(t, "migrate", "run", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := h.run(t, "migrate", "purge", "--yes"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		h.output.Reset()
		if err := h.run(t, "migrate", "check", "--wait", "2s"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "Migration: POSSIBLE") {
			t.Errorf("expected backend to offer migration again, got:\n%s", h.output.String())
		}
		if len(h.saved(t)) != 2 {
			t.Error("expected local playlists to be kept")
		}
	})

	t.Run("PurgeDeclined", func(t *testing.T) {
		h := newHarness(t, "n\n")
		h.useBackend(t, legacy...)

		if err := h.run(t, "migrate", "purge"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(h.output.String(), "Nothing deleted") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})
}
