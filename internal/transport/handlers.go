package transport

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
)

// handlerTable holds at most one handler per message id.
type handlerTable struct {
	mu       sync.RWMutex
	handlers map[bridge.MessageID]bridge.Handler
	logger   *log.Logger
}

func newHandlerTable(logger *log.Logger) *handlerTable {
	return &handlerTable{handlers: make(map[bridge.MessageID]bridge.Handler), logger: logger}
}

func (t *handlerTable) subscribe(id bridge.MessageID, h bridge.Handler) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.handlers[id]; ok {
		return fmt.Errorf("%w: %s", shared.ErrAlreadySubscribed, id)
	}
	t.handlers[id] = h
	return nil
}

func (t *handlerTable) unsubscribeAll(id bridge.MessageID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.handlers, id)
}

// dispatch decodes data and calls the handler for its id. Messages nobody listens to are dropped.
func (t *handlerTable) dispatch(data []byte) {
	env, err := Decode(data)
	if err != nil {
		t.logger.Warn("discarding inbound message", "error", err)
		return
	}

	t.mu.RLock()
	h, ok := t.handlers[env.ID]
	t.mu.RUnlock()

	if !ok {
		t.logger.Debug("no subscriber", "id", env.ID, "nonce", env.Nonce)
		return
	}

	t.logger.Debug("received", "id", env.ID, "nonce", env.Nonce)
	h(env.Payload)
}
