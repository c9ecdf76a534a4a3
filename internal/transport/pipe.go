package transport

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
)

var _ bridge.Channel = (*Pipe)(nil)

// Pipe is one end of an in-process link. Messages sent on one end are delivered, encoded
// as envelopes, to the handlers of the other end on that end's own goroutine.
type Pipe struct {
	peer     *Pipe
	handlers *handlerTable
	inbox    *bridge.Loop
	closed   *atomic.Bool
	cancel   context.CancelFunc
}

// NewPipe returns two connected ends. Closing either end closes both.
func NewPipe(logger *log.Logger) (*Pipe, *Pipe) {
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	closed := &atomic.Bool{}

	a := &Pipe{
		handlers: newHandlerTable(shared.WithLogger(logger, "transport", "pipe", "end", "a")),
		inbox:    bridge.NewLoop(),
		closed:   closed,
		cancel:   cancel,
	}
	b := &Pipe{
		handlers: newHandlerTable(shared.WithLogger(logger, "transport", "pipe", "end", "b")),
		inbox:    bridge.NewLoop(),
		closed:   closed,
		cancel:   cancel,
	}
	a.peer, b.peer = b, a

	go a.inbox.Run(ctx)
	go b.inbox.Run(ctx)

	return a, b
}

func (p *Pipe) Connected() bool { return !p.closed.Load() }

func (p *Pipe) Send(id bridge.MessageID, payload any) error {
	if p.closed.Load() {
		return shared.ErrChannelClosed
	}

	data, err := Encode(id, payload)
	if err != nil {
		return err
	}

	peer := p.peer
	peer.inbox.Schedule(func() { peer.handlers.dispatch(data) })
	return nil
}

func (p *Pipe) Subscribe(id bridge.MessageID, h bridge.Handler) error {
	return p.handlers.subscribe(id, h)
}

func (p *Pipe) UnsubscribeAll(id bridge.MessageID) {
	p.handlers.unsubscribeAll(id)
}

// Close disconnects both ends. Pending deliveries are dropped.
// Flush returns at once: sends are handed to the peer's inbox synchronously.
func (p *Pipe) Flush(context.Context) error { return nil }

func (p *Pipe) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	p.cancel()
	return nil
}
