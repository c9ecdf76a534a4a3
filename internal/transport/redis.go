package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/redis/go-redis/v9"
)

var _ bridge.Channel = (*Redis)(nil)

// RedisOpts configures [DialRedis]. Client, when set, is used instead of dialing URL and is not
// closed by [Redis.Close].
type RedisOpts struct {
	URL       string
	Client    *redis.Client
	Prefix    string
	SendRate  float64
	SendBurst int
	QueueSize int
	Logger    *log.Logger
}

// Redis is a [bridge.Channel] over redis pub/sub.
//
// The UI publishes on <prefix>:to-backend and listens on <prefix>:to-ui.
type Redis struct {
	client     *redis.Client
	ownsClient bool
	sub        *redis.PubSub
	inbound    string
	outbound   string
	handlers   *handlerTable
	out        *outbox
	logger     *log.Logger
	connected  atomic.Bool
	cancel     context.CancelFunc
	closeOnce  sync.Once
	wg         sync.WaitGroup
	done       chan struct{}
}

// BackendChannel returns the channel the UI publishes requests on.
func BackendChannel(prefix string) string { return prefix + ":to-backend" }

// UIChannel returns the channel the backend publishes responses on.
func UIChannel(prefix string) string { return prefix + ":to-ui" }

// DialRedis connects, subscribes to the inbound channel and waits for the subscription to be confirmed.
func DialRedis(ctx context.Context, opts RedisOpts) (*Redis, error) {
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Prefix == "" {
		opts.Prefix = "plx"
	}

	client, owns := opts.Client, false
	if client == nil {
		if opts.URL == "" {
			return nil, fmt.Errorf("%w: backend url", shared.ErrMissingConfig)
		}
		ropts, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
		client, owns = redis.NewClient(ropts), true
	}

	if err := client.Ping(ctx).Err(); err != nil {
		if owns {
			client.Close()
		}
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	inbound := UIChannel(opts.Prefix)
	sub := client.Subscribe(ctx, inbound)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		if owns {
			client.Close()
		}
		return nil, fmt.Errorf("failed to subscribe to %s: %w", inbound, err)
	}

	logger := shared.WithLogger(opts.Logger, "transport", "redis")
	pumpCtx, cancel := context.WithCancel(context.Background())

	r := &Redis{
		client:     client,
		ownsClient: owns,
		sub:        sub,
		inbound:    inbound,
		outbound:   BackendChannel(opts.Prefix),
		handlers:   newHandlerTable(logger),
		out:        newOutbox(opts.QueueSize, opts.SendRate, opts.SendBurst),
		logger:     logger,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.connected.Store(true)

	r.wg.Add(2)
	go r.readPump()
	go r.writePump(pumpCtx)

	logger.Info("subscribed to backend", "inbound", inbound, "outbound", r.outbound)
	return r, nil
}

func (r *Redis) Connected() bool { return r.connected.Load() }

func (r *Redis) Send(id bridge.MessageID, payload any) error {
	if !r.connected.Load() {
		return shared.ErrChannelClosed
	}

	data, err := Encode(id, payload)
	if err != nil {
		return err
	}

	if err := r.out.push(data); err != nil {
		return fmt.Errorf("failed to queue %s: %w", id, err)
	}
	return nil
}

func (r *Redis) Subscribe(id bridge.MessageID, h bridge.Handler) error {
	return r.handlers.subscribe(id, h)
}

func (r *Redis) UnsubscribeAll(id bridge.MessageID) {
	r.handlers.unsubscribeAll(id)
}

// Flush waits until every queued message has been published, the publisher stops, or ctx ends.
func (r *Redis) Flush(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return r.out.flush(ctx)
}

// Close unsubscribes and stops both pumps.
func (r *Redis) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.connected.Store(false)
		r.out.close()
		r.cancel()
		err = r.sub.Close()
		r.wg.Wait()
		if r.ownsClient {
			if cerr := r.client.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}

func (r *Redis) readPump() {
	defer r.wg.Done()
	for msg := range r.sub.Channel() {
		r.handlers.dispatch([]byte(msg.Payload))
	}
	r.connected.Store(false)
}

// writePump is the only publisher. done is closed when it exits.
func (r *Redis) writePump(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-r.out.queue:
			if err := r.out.wait(ctx); err != nil {
				r.out.done()
				return
			}
			pubCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := r.client.Publish(pubCtx, r.outbound, data).Err()
			cancel()
			r.out.done()
			if err != nil {
				r.logger.Error("publish failed", "channel", r.outbound, "error", err)
			}
		}
	}
}
