package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/shared"
)

// CommandHandler processes the payload of one inbound message.
type CommandHandler func(payload json.RawMessage) error

// Command is an inbound message id and its handler. Identity is by ID.
type Command struct {
	ID     MessageID
	Handle CommandHandler
}

// On builds a [Command] whose handler receives the payload decoded into T.
func On[T any](id MessageID, fn func(T) error) Command {
	return Command{
		ID: id,
		Handle: func(payload json.RawMessage) error {
			var v T
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &v); err != nil {
					return fmt.Errorf("%w: decoding %s: %v", shared.ErrInvalidInput, id, err)
				}
			}
			return fn(v)
		},
	}
}

// FaultFunc is told about every handler failure after it has been logged.
type FaultFunc func(id MessageID, err error)

// RegistryOpts contains the collaborators of a [Registry].
type RegistryOpts struct {
	Channel   Channel
	Scheduler Scheduler
	Logger    *log.Logger
	OnFault   FaultFunc
}

// Registry subscribes a fixed list of commands to a [Channel] and tears the subscriptions down again.
//
// Every subscribe made by Register is matched by exactly one unsubscribe in UnregisterAll.
type Registry struct {
	channel   Channel
	scheduler Scheduler
	logger    *log.Logger
	onFault   FaultFunc
	commands  []Command

	mu         sync.Mutex
	active     map[MessageID]bool
	generation int
}

// NewRegistry validates the commands and returns an inactive [Registry].
func NewRegistry(opts RegistryOpts, commands ...Command) (*Registry, error) {
	if opts.Channel == nil {
		opts.Channel = Disconnected
	}
	if opts.Scheduler == nil {
		opts.Scheduler = Inline
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	seen := make(map[MessageID]bool, len(commands))
	for _, cmd := range commands {
		if cmd.ID == "" || cmd.Handle == nil {
			return nil, fmt.Errorf("%w: command %q has no id or handler", shared.ErrInvalidArgument, cmd.ID)
		}
		if seen[cmd.ID] {
			return nil, fmt.Errorf("%w: %s", shared.ErrDuplicateCommand, cmd.ID)
		}
		seen[cmd.ID] = true
	}

	return &Registry{
		channel:   opts.Channel,
		scheduler: opts.Scheduler,
		logger:    shared.WithLogger(opts.Logger, "component", "registry"),
		onFault:   opts.OnFault,
		commands:  append([]Command(nil), commands...),
		active:    make(map[MessageID]bool),
	}, nil
}

// IDs returns the command ids in registration order.
func (r *Registry) IDs() []MessageID {
	ids := make([]MessageID, len(r.commands))
	for i, cmd := range r.commands {
		ids[i] = cmd.ID
	}
	return ids
}

// Active reports whether id currently has a live subscription.
func (r *Registry) Active(id MessageID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[id]
}

// Register subscribes every command that is not already subscribed.
//
// Without a backend it does nothing. If a subscription fails, the ones made so far are removed.
func (r *Registry) Register() error {
	if !r.channel.Connected() {
		r.logger.Debug("backend absent, skipping subscriptions")
		return nil
	}

	// Live handlers carry the current generation, so only a fresh cycle may advance it.
	r.mu.Lock()
	if len(r.active) == 0 {
		r.generation++
	}
	gen := r.generation
	r.mu.Unlock()

	for _, cmd := range r.commands {
		if r.Active(cmd.ID) {
			continue
		}

		if err := r.channel.Subscribe(cmd.ID, r.deliver(cmd, gen)); err != nil {
			r.UnregisterAll()
			return fmt.Errorf("failed to subscribe %s: %w", cmd.ID, err)
		}

		r.mu.Lock()
		r.active[cmd.ID] = true
		r.mu.Unlock()
	}

	r.logger.Debug("subscribed", "commands", len(r.commands))
	return nil
}

// UnregisterAll removes every subscription made by Register. Safe to call any number of times.
func (r *Registry) UnregisterAll() {
	r.mu.Lock()
	ids := make([]MessageID, 0, len(r.active))
	for _, cmd := range r.commands {
		if r.active[cmd.ID] {
			ids = append(ids, cmd.ID)
		}
	}
	r.active = make(map[MessageID]bool)
	r.generation++
	r.mu.Unlock()

	for _, id := range ids {
		r.channel.UnsubscribeAll(id)
	}

	if len(ids) > 0 {
		r.logger.Debug("unsubscribed", "commands", len(ids))
	}
}

// deliver returns the channel handler for cmd. The handler hops onto the scheduler and
// drops the message if the subscription it was made for is gone by the time it runs.
func (r *Registry) deliver(cmd Command, gen int) Handler {
	return func(payload json.RawMessage) {
		r.scheduler.Schedule(func() {
			r.mu.Lock()
			live := r.active[cmd.ID] && r.generation == gen
			r.mu.Unlock()

			if !live {
				r.logger.Debug("dropping message for inactive subscription", "id", cmd.ID)
				return
			}

			r.invoke(cmd, payload)
		})
	}
}

func (r *Registry) invoke(cmd Command, payload json.RawMessage) {
	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: %s panicked: %v", shared.ErrHandlerFault, cmd.ID, p)
			}
		}()
		if herr := cmd.Handle(payload); herr != nil {
			err = fmt.Errorf("%w: %s: %w", shared.ErrHandlerFault, cmd.ID, herr)
		}
	}()

	if err == nil {
		return
	}

	r.logger.Error("handler failed", "id", cmd.ID, "error", err)
	if r.onFault != nil {
		r.onFault(cmd.ID, err)
	}
}
