// Package models defines the playlist data carried between the UI, the local store and the backend process.
//
// The package contains:
//   - [PlaylistSummary] : one saved playlist as shown in the recent playlists list
//   - [Source] : where a playlist was imported from, either a URL or a local file path (never both)
//   - [PlaylistChanges] : a partial update applied to a stored playlist
//   - [PositionUpdate] : a single reconciled position produced by a reorder
//
// All types implement JSON encoding matching the backend wire format (camelCase keys, url/filePath flattened).
package models
