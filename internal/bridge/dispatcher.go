package bridge

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/shared"
)

// Dispatcher sends catalogue requests over a [Channel].
type Dispatcher struct {
	channel   Channel
	catalogue Catalogue
	logger    *log.Logger
}

// NewDispatcher creates a [Dispatcher]. A nil channel is treated as [Disconnected].
func NewDispatcher(ch Channel, catalogue Catalogue, logger *log.Logger) *Dispatcher {
	if ch == nil {
		ch = Disconnected
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Dispatcher{
		channel:   ch,
		catalogue: catalogue,
		logger:    shared.WithLogger(logger, "component", "dispatcher"),
	}
}

// Connected reports whether a backend is present.
func (d *Dispatcher) Connected() bool {
	return d.channel.Connected()
}

// Send enqueues a request. Without a backend it is a silent no-op.
//
// Ids missing from the catalogue are rejected even when disconnected.
func (d *Dispatcher) Send(id MessageID, payload any) error {
	route, ok := d.catalogue.Route(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnknownMessage, id)
	}

	if !d.channel.Connected() {
		d.logger.Debug("backend absent, not sending", "id", id)
		return nil
	}

	if err := d.channel.Send(id, payload); err != nil {
		return fmt.Errorf("failed to send %s: %w", id, err)
	}

	if route.OneWay() {
		d.logger.Debug("sent", "id", id)
	} else {
		d.logger.Debug("sent", "id", id, "awaiting", route.Response)
	}
	return nil
}
