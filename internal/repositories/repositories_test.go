package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func summary(id string, position int) models.PlaylistSummary {
	return models.PlaylistSummary{
		ID:         id,
		Title:      "Playlist " + id,
		Position:   position,
		Count:      3,
		ImportDate: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Source:     models.FromURL("https://example.com/" + id + ".m3u"),
	}
}

func seed(t *testing.T, repo *PlaylistRepository, ids ...string) {
	t.Helper()
	items := make([]models.PlaylistSummary, len(ids))
	for i, id := range ids {
		items[i] = summary(id, i)
	}
	if err := repo.AddMany(items); err != nil {
		t.Fatalf("failed to seed playlists: %v", err)
	}
}

func listIDs(t *testing.T, repo *PlaylistRepository) []string {
	t.Helper()
	playlists, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list playlists: %v", err)
	}
	ids := make([]string, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("AddMany", func(t *testing.T) {
		t.Run("InsertsAndLists", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a", "b", "c")

			if got := listIDs(t, repo); !sameIDs(got, []string{"a", "b", "c"}) {
				t.Errorf("expected [a b c], got %v", got)
			}
		})

		t.Run("StoresFileSource", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			p := summary("local", 0)
			p.Source = models.FromFile("/music/local.m3u")

			if err := repo.AddMany([]models.PlaylistSummary{p}); err != nil {
				t.Fatalf("failed to add playlist: %v", err)
			}

			got, err := repo.Get("local")
			if err != nil {
				t.Fatalf("failed to get playlist: %v", err)
			}
			if got.Kind() != models.SourceFile || got.FilePath != "/music/local.m3u" || got.URL != "" {
				t.Errorf("expected file source, got %+v", got.Source)
			}
		})

		t.Run("KeepsExistingRows", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a")

			dup := summary("a", 4)
			dup.Title = "Replacement"
			if err := repo.AddMany([]models.PlaylistSummary{dup}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, _ := repo.Get("a")
			if got.Title != "Playlist a" || got.Position != 0 {
				t.Errorf("expected original row to be kept, got %+v", got)
			}
		})

		t.Run("RevivesRemovedRows", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a")
			if err := repo.Remove("a"); err != nil {
				t.Fatalf("failed to remove: %v", err)
			}

			again := summary("a", 2)
			again.Title = "Back again"
			if err := repo.AddMany([]models.PlaylistSummary{again}); err != nil {
				t.Fatalf("failed to re-add: %v", err)
			}

			got, err := repo.Get("a")
			if err != nil {
				t.Fatalf("expected revived playlist: %v", err)
			}
			if got.Title != "Back again" || got.Position != 2 {
				t.Errorf("expected new values, got %+v", got)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			bad := summary("a", 0)
			bad.Source = models.Source{}

			if err := repo.AddMany([]models.PlaylistSummary{summary("ok", 0), bad}); err == nil {
				t.Fatal("expected validation error")
			}
			if got := listIDs(t, repo); len(got) != 0 {
				t.Errorf("expected batch to roll back, got %v", got)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("PartialChanges", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a")

			title := "Renamed"
			count := 12
			refresh := true
			updated := time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC)
			err := repo.Update("a", models.PlaylistChanges{
				Title:       &title,
				Count:       &count,
				AutoRefresh: &refresh,
				UpdateDate:  &updated,
			})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}

			got, _ := repo.Get("a")
			if got.Title != title || got.Count != count || !got.AutoRefresh {
				t.Errorf("unexpected playlist after update: %+v", got)
			}
			if got.UpdateDate == nil || !got.UpdateDate.Equal(updated) {
				t.Errorf("expected update date %v, got %v", updated, got.UpdateDate)
			}
			if got.Position != 0 || got.URL == "" {
				t.Errorf("untouched fields changed: %+v", got)
			}
		})

		t.Run("SwitchesSource", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a")

			src := models.FromFile("/tmp/a.m3u")
			if err := repo.Update("a", models.PlaylistChanges{Source: &src}); err != nil {
				t.Fatalf("failed to update source: %v", err)
			}

			got, _ := repo.Get("a")
			if got.URL != "" || got.FilePath != "/tmp/a.m3u" {
				t.Errorf("expected file source only, got %+v", got.Source)
			}
		})

		t.Run("EmptyChangesIsNoop", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			if err := repo.Update("missing", models.PlaylistChanges{}); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			title := "x"
			err := repo.Update("missing", models.PlaylistChanges{Title: &title})
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})

	t.Run("Remove", func(t *testing.T) {
		repo := NewPlaylistRepository(setupTestDB(t))
		seed(t, repo, "a", "b")

		if err := repo.Remove("a"); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		if got := listIDs(t, repo); !sameIDs(got, []string{"b"}) {
			t.Errorf("expected [b], got %v", got)
		}
		if _, err := repo.Get("a"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected removed playlist to be hidden, got %v", err)
		}
		if err := repo.Remove("a"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected second removal to fail, got %v", err)
		}
	})

	t.Run("UpdatePositions", func(t *testing.T) {
		t.Run("Reorders", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a", "b", "c", "d", "e")

			err := repo.UpdatePositions([]models.PositionUpdate{
				{ID: "b", NewPosition: 0},
				{ID: "c", NewPosition: 1},
				{ID: "d", NewPosition: 2},
				{ID: "a", NewPosition: 3},
			})
			if err != nil {
				t.Fatalf("failed to update positions: %v", err)
			}

			if got := listIDs(t, repo); !sameIDs(got, []string{"b", "c", "d", "a", "e"}) {
				t.Errorf("expected [b c d a e], got %v", got)
			}
		})

		t.Run("AllOrNothing", func(t *testing.T) {
			repo := NewPlaylistRepository(setupTestDB(t))
			seed(t, repo, "a", "b")

			err := repo.UpdatePositions([]models.PositionUpdate{
				{ID: "b", NewPosition: 0},
				{ID: "missing", NewPosition: 1},
			})
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
			}

			got, _ := repo.Get("b")
			if got.Position != 1 {
				t.Errorf("expected position rollback, got %d", got.Position)
			}
		})
	})
}
