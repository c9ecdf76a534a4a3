package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/bridge"
)

var _ bridge.Scheduler = (*ProgramScheduler)(nil)

// Sender delivers messages to a running program. [tea.Program] implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramScheduler runs scheduled functions inside [Model.Update], in submission order.
//
// Schedule never blocks: work is queued and a single drain message is sent per batch.
// Work scheduled before [ProgramScheduler.Attach] waits until a program is attached.
type ProgramScheduler struct {
	mu      sync.Mutex
	queue   []func()
	pending bool
	sender  Sender
}

// NewProgramScheduler returns a detached scheduler.
func NewProgramScheduler() *ProgramScheduler {
	return &ProgramScheduler{}
}

// Attach sets the program that receives drain messages.
func (s *ProgramScheduler) Attach(sender Sender) {
	s.mu.Lock()
	s.sender = sender
	kick := len(s.queue) > 0 && !s.pending
	if kick {
		s.pending = true
	}
	s.mu.Unlock()

	if kick {
		go sender.Send(drainMsg())
	}
}

func (s *ProgramScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	sender := s.sender
	kick := sender != nil && !s.pending
	if kick {
		s.pending = true
	}
	s.mu.Unlock()

	if kick {
		go sender.Send(drainMsg())
	}
}

// drain runs everything queued so far. Called from Update only.
func (s *ProgramScheduler) drain() int {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.pending = false
	s.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}
