package tasks

import (
	"sync"

	"github.com/desertthunder/plx/internal/shared"
)

// Prompt is the question shown before a destructive action.
type Prompt struct {
	Title   string
	Message string
}

type pendingAction struct {
	prompt    Prompt
	onConfirm func() error
}

// Guard keeps at most one destructive action waiting for confirmation.
type Guard struct {
	mu      sync.Mutex
	pending *pendingAction
}

// Request holds onConfirm until [Guard.Resolve]. A newer request replaces an unresolved one.
func (g *Guard) Request(p Prompt, onConfirm func() error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &pendingAction{prompt: p, onConfirm: onConfirm}
}

// Pending returns the prompt awaiting an answer.
func (g *Guard) Pending() (Prompt, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Prompt{}, false
	}
	return g.pending.prompt, true
}

// Resolve answers the pending prompt. The action runs only when confirmed is true.
func (g *Guard) Resolve(confirmed bool) error {
	g.mu.Lock()
	p := g.pending
	g.pending = nil
	g.mu.Unlock()

	if p == nil {
		return shared.ErrNoPendingConfirmation
	}
	if !confirmed {
		return nil
	}
	return p.onConfirm()
}

// Cancel drops the pending prompt, if any.
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}
