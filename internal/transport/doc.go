// Package transport implements [bridge.Channel] over concrete links to the backend process.
//
// Every transport exchanges the same JSON [Envelope]. Inbound envelopes are decoded by a single
// reader goroutine per connection, so messages of one id reach their handler in the order the
// backend sent them. Outbound messages go through a bounded queue drained at the configured rate;
// Send only enqueues and fails with shared.ErrQueueFull when the queue is full.
//
//   - [Pipe]: in-process pair of channels, used for tests and embedded backends
//   - [WebSocket]: gorilla/websocket client connection
//   - [Redis]: pub/sub on two channels, <prefix>:to-backend and <prefix>:to-ui
//
// [Open] picks the transport named by shared.BackendConfig.
package transport
