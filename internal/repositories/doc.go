// Package repositories implements SQLite persistence for the playlist store.
//
// [PlaylistRepository] implements store.Persister. Every method runs in its own transaction, so a
// batch of position updates is either fully written or not at all. Removal is a soft delete via
// deleted_at, and deleted rows are excluded from every query.
package repositories
