// Package server is a reference backend for the playlist bridge.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Backend
//
// [Backend] answers the bridge protocol from a fixed set of legacy playlists:
//
//	CHECK_POSSIBLE       → CHECK_POSSIBLE_RESPONSE {result, message}
//	MIGRATE              → MIGRATE_RESPONSE {payload: [...]}
//	UPDATE_PLAYLIST      → UPDATE_PLAYLIST_RESPONSE {message, playlist}
//	DELETE_ALL_MIGRATED  → (no response)
//
// It is reachable over a WebSocket route ([Backend.ServeHTTP]) or over a pair of Redis
// pub/sub channels ([Backend.ServeRedis]). Both use the same envelope as package transport.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
