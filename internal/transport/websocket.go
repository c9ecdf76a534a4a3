package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

var _ bridge.Channel = (*WebSocket)(nil)

// WebSocketOpts configures [DialWebSocket].
type WebSocketOpts struct {
	URL       string
	Header    http.Header
	Dialer    *websocket.Dialer
	SendRate  float64
	SendBurst int
	QueueSize int
	Logger    *log.Logger
}

// WebSocket is a [bridge.Channel] over a single websocket connection.
//
// Once the connection drops the channel reports itself disconnected and every later
// Send fails with shared.ErrChannelClosed.
type WebSocket struct {
	conn      *websocket.Conn
	handlers  *handlerTable
	out       *outbox
	logger    *log.Logger
	connected atomic.Bool
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// DialWebSocket connects to opts.URL and starts the read and write pumps.
func DialWebSocket(ctx context.Context, opts WebSocketOpts) (*WebSocket, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: backend url", shared.ErrMissingConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, opts.URL, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s (status %d): %w", opts.URL, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", opts.URL, err)
	}

	logger := shared.WithLogger(opts.Logger, "transport", "websocket")
	pumpCtx, cancel := context.WithCancel(context.Background())

	ws := &WebSocket{
		conn:     conn,
		handlers: newHandlerTable(logger),
		out:      newOutbox(opts.QueueSize, opts.SendRate, opts.SendBurst),
		logger:   logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	ws.connected.Store(true)

	go ws.writePump(pumpCtx)
	go ws.readPump()

	logger.Info("connected to backend", "url", opts.URL)
	return ws, nil
}

func (ws *WebSocket) Connected() bool { return ws.connected.Load() }

func (ws *WebSocket) Send(id bridge.MessageID, payload any) error {
	if !ws.connected.Load() {
		return shared.ErrChannelClosed
	}

	data, err := Encode(id, payload)
	if err != nil {
		return err
	}

	if err := ws.out.push(data); err != nil {
		return fmt.Errorf("failed to queue %s: %w", id, err)
	}
	return nil
}

func (ws *WebSocket) Subscribe(id bridge.MessageID, h bridge.Handler) error {
	return ws.handlers.subscribe(id, h)
}

func (ws *WebSocket) UnsubscribeAll(id bridge.MessageID) {
	ws.handlers.unsubscribeAll(id)
}

// Flush waits until every queued message has been written, the connection drops, or ctx ends.
func (ws *WebSocket) Flush(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-ws.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ws.out.flush(ctx)
}

// Done is closed once the connection has shut down.
func (ws *WebSocket) Done() <-chan struct{} { return ws.done }

// Close sends a close frame and tears the connection down.
func (ws *WebSocket) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		ws.connected.Store(false)
		ws.out.close()
		ws.cancel()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		err = ws.conn.Close()
		close(ws.done)
	})
	return err
}

// readPump is the only reader, which keeps per-id delivery in send order.
func (ws *WebSocket) readPump() {
	defer ws.Close()

	ws.conn.SetReadLimit(maxMessageSize)
	_ = ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Error("connection lost", "error", err)
			} else if ws.connected.Load() {
				ws.logger.Info("backend closed the connection")
			}
			return
		}
		ws.handlers.dispatch(data)
	}
}

func (ws *WebSocket) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-ws.out.queue:
			if err := ws.out.wait(ctx); err != nil {
				ws.out.done()
				return
			}
			_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := ws.conn.WriteMessage(websocket.TextMessage, data)
			ws.out.done()
			if err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					ws.logger.Error("write failed", "error", err)
				}
				return
			}
		case <-ticker.C:
			_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
