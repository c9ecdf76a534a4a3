package transport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultQueueSize = 256
	defaultSendRate  = 20.0
	defaultSendBurst = 5
	flushInterval    = 10 * time.Millisecond
)

// outbox is the bounded, rate limited send queue shared by the network transports.
type outbox struct {
	queue   chan []byte
	limiter *rate.Limiter
	closed  atomic.Bool
	pending atomic.Int64 // queued or being written
}

func newOutbox(size int, perSecond float64, burst int) *outbox {
	if size <= 0 {
		size = defaultQueueSize
	}
	if perSecond <= 0 {
		perSecond = defaultSendRate
	}
	if burst <= 0 {
		burst = defaultSendBurst
	}
	return &outbox{
		queue:   make(chan []byte, size),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// push enqueues data without blocking.
func (o *outbox) push(data []byte) error {
	if o.closed.Load() {
		return shared.ErrChannelClosed
	}
	o.pending.Add(1)
	select {
	case o.queue <- data:
		return nil
	default:
		o.pending.Add(-1)
		return shared.ErrQueueFull
	}
}

// done marks one dequeued message as written or dropped.
func (o *outbox) done() {
	o.pending.Add(-1)
}

// flush waits until every pushed message has been written or dropped.
func (o *outbox) flush(ctx context.Context) error {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for o.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// wait blocks until the limiter allows the next write.
func (o *outbox) wait(ctx context.Context) error {
	return o.limiter.Wait(ctx)
}

func (o *outbox) close() {
	o.closed.Store(true)
}
