package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/store"
)

var _ store.Persister = (*PlaylistRepository)(nil)

// PlaylistRepository persists recent playlists.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

const playlistColumns = `id, title, position, url, file_path, count, auto_refresh, import_date, update_date`

// List returns every playlist that is not deleted, ordered by position.
func (r *PlaylistRepository) List() ([]models.PlaylistSummary, error) {
	query := `SELECT ` + playlistColumns + `
		FROM playlists
		WHERE deleted_at IS NULL
		ORDER BY position ASC, rowid ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.PlaylistSummary
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (models.PlaylistSummary, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	p, err := scanPlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return models.PlaylistSummary{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return p, err
}

// Update writes the non-nil changes for one playlist.
func (r *PlaylistRepository) Update(id string, changes models.PlaylistChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any

	if changes.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *changes.Title)
	}
	if changes.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *changes.Position)
	}
	if changes.Count != nil {
		sets = append(sets, "count = ?")
		args = append(args, *changes.Count)
	}
	if changes.AutoRefresh != nil {
		sets = append(sets, "auto_refresh = ?")
		args = append(args, *changes.AutoRefresh)
	}
	if changes.UpdateDate != nil {
		sets = append(sets, "update_date = ?")
		args = append(args, *changes.UpdateDate)
	}
	if changes.Source != nil {
		sets = append(sets, "url = ?", "file_path = ?")
		args = append(args, nullString(changes.Source.URL), nullString(changes.Source.FilePath))
	}

	query := "UPDATE playlists SET " + strings.Join(sets, ", ") + " WHERE id = ? AND deleted_at IS NULL"
	args = append(args, id)

	return withTx(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(query, args...)
		if err != nil {
			return fmt.Errorf("failed to update playlist: %w", err)
		}
		return expectRows(result, 1, id)
	})
}

// AddMany inserts playlists. Live rows with the same id are left untouched and soft-deleted rows
// are revived with the new values.
func (r *PlaylistRepository) AddMany(items []models.PlaylistSummary) error {
	query := `INSERT INTO playlists (` + playlistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			position = excluded.position,
			url = excluded.url,
			file_path = excluded.file_path,
			count = excluded.count,
			auto_refresh = excluded.auto_refresh,
			import_date = excluded.import_date,
			update_date = excluded.update_date,
			deleted_at = NULL
		WHERE playlists.deleted_at IS NOT NULL`

	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range items {
			if err := p.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			imported := p.ImportDate
			if imported.IsZero() {
				imported = time.Now()
			}

			var updated sql.NullTime
			if p.UpdateDate != nil {
				updated = sql.NullTime{Time: *p.UpdateDate, Valid: true}
			}

			if _, err := stmt.Exec(
				p.ID,
				p.Title,
				p.Position,
				nullString(p.URL),
				nullString(p.FilePath),
				p.Count,
				p.AutoRefresh,
				imported,
				updated,
			); err != nil {
				return fmt.Errorf("failed to insert playlist %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// Remove soft-deletes a playlist by ID
func (r *PlaylistRepository) Remove(id string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		return expectRows(result, 1, id)
	})
}

// UpdatePositions writes every position in a single transaction.
func (r *PlaylistRepository) UpdatePositions(updates []models.PositionUpdate) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE playlists SET position = ? WHERE id = ? AND deleted_at IS NULL`)
		if err != nil {
			return fmt.Errorf("failed to prepare position update: %w", err)
		}
		defer stmt.Close()

		for _, u := range updates {
			result, err := stmt.Exec(u.NewPosition, u.ID)
			if err != nil {
				return fmt.Errorf("failed to update position of %s: %w", u.ID, err)
			}
			if err := expectRows(result, 1, u.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func expectRows(result sql.Result, want int64, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows != want {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPlaylist scans one row into a [models.PlaylistSummary]
func scanPlaylist(row scanner) (models.PlaylistSummary, error) {
	var (
		p        models.PlaylistSummary
		url      sql.NullString
		filePath sql.NullString
		updated  sql.NullTime
	)

	err := row.Scan(&p.ID, &p.Title, &p.Position, &url, &filePath, &p.Count, &p.AutoRefresh, &p.ImportDate, &updated)
	if err == sql.ErrNoRows {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan playlist: %w", err)
	}

	p.Source = models.Source{URL: url.String, FilePath: filePath.String}
	if updated.Valid {
		t := updated.Time
		p.UpdateDate = &t
	}

	return p, nil
}
