package bridge

import "encoding/json"

// MessageID is the type tag of a message exchanged with the backend.
type MessageID string

func (id MessageID) String() string { return string(id) }

// Handler receives the raw JSON payload of one inbound message.
type Handler func(payload json.RawMessage)

// Channel is the asynchronous transport to the backend process.
//
// Implementations deliver inbound messages of the same id in the order the backend sent them,
// each to exactly one subscribed handler.
type Channel interface {
	// Connected reports whether a backend is present. When false, callers treat the channel as absent.
	Connected() bool

	// Send enqueues a one-way message. It returns once the message is queued, not when delivered.
	Send(id MessageID, payload any) error

	// Subscribe registers the handler for id. At most one handler may be subscribed per id.
	Subscribe(id MessageID, h Handler) error

	// UnsubscribeAll removes every handler for id. Removing an id with no handler is a no-op.
	UnsubscribeAll(id MessageID)
}

// Disconnected is the channel used when the application runs without a backend.
var Disconnected Channel = disconnected{}

type disconnected struct{}

func (disconnected) Connected() bool                    { return false }
func (disconnected) Send(MessageID, any) error          { return nil }
func (disconnected) Subscribe(MessageID, Handler) error { return nil }
func (disconnected) UnsubscribeAll(MessageID)           {}
