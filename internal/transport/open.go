package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
)

// Conn is a [bridge.Channel] that owns a connection.
type Conn interface {
	bridge.Channel
	// Flush waits until queued sends have left the process.
	Flush(ctx context.Context) error
	io.Closer
}

type absent struct{ bridge.Channel }

func (absent) Flush(context.Context) error { return nil }
func (absent) Close() error                { return nil }

// Open connects the transport selected by cfg. With transport "none" it returns a
// disconnected channel and no error.
func Open(ctx context.Context, cfg shared.BackendConfig, logger *log.Logger) (Conn, error) {
	switch cfg.Transport {
	case shared.TransportNone, "":
		return absent{bridge.Disconnected}, nil
	case shared.TransportWebSocket:
		ws, err := DialWebSocket(ctx, WebSocketOpts{
			URL:       cfg.URL,
			SendRate:  cfg.SendRate,
			SendBurst: cfg.SendBurst,
			QueueSize: cfg.QueueSize,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		return ws, nil
	case shared.TransportRedis:
		r, err := DialRedis(ctx, RedisOpts{
			URL:       cfg.URL,
			Prefix:    cfg.ChannelPrefix,
			SendRate:  cfg.SendRate,
			SendBurst: cfg.SendBurst,
			QueueSize: cfg.QueueSize,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", shared.ErrInvalidConfig, cfg.Transport)
	}
}
