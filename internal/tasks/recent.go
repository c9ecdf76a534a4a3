package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/store"
)

// RemovePrompt is shown before a playlist is removed.
var RemovePrompt = Prompt{
	Title:   "Remove playlist",
	Message: "The playlist will be removed from the list. Continue?",
}

// Opts contains the collaborators of [RecentPlaylists].
type Opts struct {
	Store                *store.Store
	Channel              bridge.Channel      // nil runs without a backend
	Scheduler            bridge.Scheduler    // defaults to bridge.Inline
	Catalogue            bridge.Catalogue    // defaults to bridge.DefaultCatalogue
	Notifications        chan<- Notification // optional
	NotificationDuration time.Duration
	Logger               *log.Logger
}

// RecentPlaylists is the recent playlists component: an ordered list the user can reorder,
// inspect, refresh, remove and migrate, kept in sync with the backend through the bridge.
type RecentPlaylists struct {
	store      *store.Store
	dispatcher *bridge.Dispatcher
	registry   *bridge.Registry
	handshake  Handshake
	guard      Guard
	notify     chan<- Notification
	duration   time.Duration
	logger     *log.Logger

	mu     sync.Mutex
	active bool
}

// New builds the component and validates its message catalogue against its handlers.
func New(opts Opts) (*RecentPlaylists, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store", shared.ErrMissingArgument)
	}
	if opts.Channel == nil {
		opts.Channel = bridge.Disconnected
	}
	if opts.Catalogue == nil {
		opts.Catalogue = bridge.DefaultCatalogue
	}
	if opts.NotificationDuration <= 0 {
		opts.NotificationDuration = DefaultNotificationDuration
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	r := &RecentPlaylists{
		store:    opts.Store,
		notify:   opts.Notifications,
		duration: opts.NotificationDuration,
		logger:   shared.WithLogger(opts.Logger, "component", "recent_playlists"),
	}

	registry, err := bridge.NewRegistry(bridge.RegistryOpts{
		Channel:   opts.Channel,
		Scheduler: opts.Scheduler,
		Logger:    opts.Logger,
		OnFault: func(id bridge.MessageID, err error) {
			sendNotification(r.notify, faultNotice(id, err, r.duration))
		},
	},
		bridge.On(bridge.UpdatePlaylistResponse, r.onPlaylistUpdated),
		bridge.On(bridge.CheckPossibleResponse, r.onCheckPossible),
		bridge.On(bridge.MigrateResponse, r.onMigrated),
	)
	if err != nil {
		return nil, err
	}

	if err := opts.Catalogue.Validate(registry.IDs()); err != nil {
		return nil, fmt.Errorf("invalid message catalogue: %w", err)
	}

	r.registry = registry
	r.dispatcher = bridge.NewDispatcher(opts.Channel, opts.Catalogue, opts.Logger)
	return r, nil
}

// Activate subscribes every handler and, with a backend present, asks whether migration is possible.
//
// Activating an active component does nothing.
func (r *RecentPlaylists) Activate() error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return nil
	}
	r.active = true
	r.mu.Unlock()

	r.handshake.Reset()
	if err := r.registry.Register(); err != nil {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
		return err
	}

	if !r.dispatcher.Connected() {
		r.logger.Debug("activated without backend")
		return nil
	}

	r.handshake.Begin()
	if err := r.dispatcher.Send(bridge.CheckPossible, nil); err != nil {
		r.handshake.Reset()
		return err
	}

	r.logger.Debug("activated", "migration", r.handshake.Status())
	return nil
}

// Deactivate removes every subscription and drops any pending confirmation. Safe to call repeatedly.
func (r *RecentPlaylists) Deactivate() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()

	r.registry.UnregisterAll()
	r.guard.Cancel()
}

// Active reports whether the component is activated.
func (r *RecentPlaylists) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Connected reports whether a backend is present.
func (r *RecentPlaylists) Connected() bool {
	return r.dispatcher.Connected()
}

// Playlists returns the playlists in render order.
func (r *RecentPlaylists) Playlists() []models.PlaylistSummary {
	return r.store.Select()
}

// Info returns one playlist for the details view.
func (r *RecentPlaylists) Info(id string) (models.PlaylistSummary, error) {
	return r.store.Get(id)
}

// Open announces that the user picked a playlist.
func (r *RecentPlaylists) Open(id string) error {
	if _, err := r.store.Get(id); err != nil {
		return err
	}
	sendNotification(r.notify, openedNotice(id))
	return nil
}

// Drop applies a drag from one rendered index to another as a single position batch.
func (r *RecentPlaylists) Drop(from, to int) error {
	_, updates, err := Reorder(r.store.Select(), from, to)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	return r.store.Dispatch(store.UpdatePositions(updates))
}

// Refresh asks the backend to reload one playlist from its source.
func (r *RecentPlaylists) Refresh(id string) error {
	p, err := r.store.Get(id)
	if err != nil {
		return err
	}

	req, err := bridge.NewUpdatePlaylistRequest(p)
	if err != nil {
		return err
	}
	return r.dispatcher.Send(bridge.UpdatePlaylist, req)
}

// RequestRemoval asks for confirmation before removing a playlist. Answer with [RecentPlaylists.Confirm].
func (r *RecentPlaylists) RequestRemoval(id string) (Prompt, error) {
	if _, err := r.store.Get(id); err != nil {
		return Prompt{}, err
	}

	r.guard.Request(RemovePrompt, func() error { return r.remove(id) })
	return RemovePrompt, nil
}

// PendingConfirmation returns the prompt waiting for an answer.
func (r *RecentPlaylists) PendingConfirmation() (Prompt, bool) {
	return r.guard.Pending()
}

// Confirm answers the pending prompt. Declining changes nothing.
func (r *RecentPlaylists) Confirm(confirmed bool) error {
	return r.guard.Resolve(confirmed)
}

func (r *RecentPlaylists) remove(id string) error {
	p, err := r.store.Get(id)
	if err != nil {
		return err
	}
	if err := r.store.Dispatch(store.Remove(id)); err != nil {
		return err
	}
	sendNotification(r.notify, removedNotice(p.Title, id, r.duration))
	return nil
}

// Migrate asks the backend to migrate legacy playlists. Without a backend it does nothing.
//
// A second call while a migration is outstanding fails with shared.ErrMigrationInProgress.
func (r *RecentPlaylists) Migrate() error {
	if !r.dispatcher.Connected() {
		return nil
	}

	prev, err := r.handshake.StartMigration()
	if err != nil {
		return err
	}
	if err := r.dispatcher.Send(bridge.Migrate, nil); err != nil {
		r.handshake.Abort(prev)
		return err
	}
	return nil
}

// DeleteMigrated asks the backend to delete every migrated playlist. No response is expected.
func (r *RecentPlaylists) DeleteMigrated() error {
	return r.dispatcher.Send(bridge.DeleteAllMigrated, nil)
}

// Migration returns the handshake status and the last reported state.
func (r *RecentPlaylists) Migration() (MigrationStatus, MigrationState) {
	return r.handshake.Status(), r.handshake.State()
}

func (r *RecentPlaylists) onPlaylistUpdated(reply bridge.UpdatePlaylistReply) error {
	sendNotification(r.notify, refreshedNotice(reply.Message, reply.Playlist.ID, r.duration))
	return r.store.Dispatch(store.Update(reply.Playlist.ID, models.RefreshedChanges(reply.Playlist)))
}

func (r *RecentPlaylists) onCheckPossible(reply bridge.CheckPossibleReply) error {
	r.handshake.Resolve(reply)
	r.logger.Debug("migration check", "possible", reply.Result, "message", reply.Message)
	return nil
}

func (r *RecentPlaylists) onMigrated(reply bridge.MigrateReply) error {
	if err := r.store.Dispatch(store.AddMany(reply.Payload)); err != nil {
		return err
	}
	r.handshake.Complete()
	sendNotification(r.notify, migratedNotice(len(reply.Payload), r.duration))
	return nil
}
