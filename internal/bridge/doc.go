// Package bridge exchanges typed, fire-and-forget messages between the UI and the backend process.
//
// # Channel
//
// A [Channel] is the transport: one-way [Channel.Send], per-id [Channel.Subscribe] and [Channel.UnsubscribeAll],
// and a [Channel.Connected] flag. When no backend is present every operation is a no-op; [Disconnected] is
// that channel. Implementations live in internal/transport.
//
// # Catalogue
//
// The message set is fixed. [DefaultCatalogue] maps each outbound request id to the inbound response id that
// answers it, or marks it one-way. A component validates at construction that every answered request has a
// registered handler, so correlation is by static pairing rather than a naming convention.
//
// # Registry
//
// A [Registry] owns an immutable list of [Command] values built at construction. [Registry.Register]
// subscribes each handler once; [Registry.UnregisterAll] removes them and is safe to call repeatedly or
// without a backend. Inbound messages are handed to a [Scheduler] so handlers run one at a time on the UI
// context. A handler that fails or panics is logged and does not stop later messages.
//
// # Dispatcher
//
// A [Dispatcher] sends requests named in the catalogue. It has no correlation logic: a response, if any,
// arrives later as an independent inbound message.
package bridge
