package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/store"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/desertthunder/plx/internal/transport"
	"github.com/urfave/cli/v3"
)

const (
	flushTimeout = 2 * time.Second
	pollInterval = 25 * time.Millisecond
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	input  io.Reader
	open   func(location string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
	Open   func(location string) error // defaults to shared.OpenLocation
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Open == nil {
		opts.Open = shared.OpenLocation
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		input:  opts.Input,
		open:   opts.Open,
	}
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, playlistsCommand, migrateCommand, backendCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session is one opened component: database, backend connection and the recent playlists over them.
type session struct {
	db     *sql.DB
	conn   transport.Conn
	store  *store.Store
	recent *tasks.RecentPlaylists
	notes  chan tasks.Notification
	loop   *bridge.Loop // nil when the caller supplied a scheduler
	done   chan struct{}
	stop   context.CancelFunc
}

// openSession loads the saved playlists and, when connect is set, connects the configured backend.
//
// With a nil scheduler, handlers run on a [bridge.Loop] owned by the session.
func (r *Runner) openSession(ctx context.Context, sched bridge.Scheduler, connect bool) (*session, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}

	repo := repositories.NewPlaylistRepository(db)
	items, err := repo.List()
	if err != nil {
		db.Close()
		return nil, err
	}

	st := store.New(repo, r.logger)
	st.Load(items)

	backend := r.config.Backend
	if !connect {
		backend.Transport = shared.TransportNone
	}
	conn, err := transport.Open(ctx, backend, r.logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect backend: %w", err)
	}

	loopCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	var loop *bridge.Loop
	if sched == nil {
		loop = bridge.NewLoop()
		sched = loop
		go func() {
			defer close(done)
			loop.Run(loopCtx)
		}()
	} else {
		close(done)
	}

	notes := make(chan tasks.Notification, 16)
	recent, err := tasks.New(tasks.Opts{
		Store:                st,
		Channel:              conn,
		Scheduler:            sched,
		Notifications:        notes,
		NotificationDuration: r.config.UI.NotificationDuration(),
		Logger:               r.logger,
	})
	if err != nil {
		stop()
		<-done
		conn.Close()
		db.Close()
		return nil, err
	}

	return &session{db: db, conn: conn, store: st, recent: recent, notes: notes, loop: loop, done: done, stop: stop}, nil
}

// settle waits until every handler scheduled so far has run.
func (s *session) settle(ctx context.Context) error {
	if s.loop == nil {
		return nil
	}
	return s.loop.Do(ctx, func() {})
}

// Close deactivates the component, lets pending sends leave and releases everything.
func (s *session) Close() error {
	s.recent.Deactivate()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	_ = s.conn.Flush(ctx)

	s.stop()
	<-s.done
	err := s.conn.Close()
	if dberr := s.db.Close(); err == nil {
		err = dberr
	}
	return err
}

// waitNotice waits for the first notification accepted by match. A fault notification ends the wait with an error.
func (s *session) waitNotice(ctx context.Context, timeout time.Duration, match func(tasks.Notification) bool) (tasks.Notification, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case n := <-s.notes:
			if n.Kind == tasks.NoticeFault {
				return n, fmt.Errorf("%w: %s", shared.ErrHandlerFault, n.Message)
			}
			if match(n) {
				return n, nil
			}
		case <-timer.C:
			return tasks.Notification{}, fmt.Errorf("%w after %s", shared.ErrTimeout, timeout)
		case <-ctx.Done():
			return tasks.Notification{}, ctx.Err()
		}
	}
}

// waitHandshake polls until the migration status stops waiting for the backend.
func (s *session) waitHandshake(ctx context.Context, timeout time.Duration) (tasks.MigrationStatus, tasks.MigrationState, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		status, state := s.recent.Migration()
		if !status.Waiting() {
			return status, state, nil
		}

		select {
		case <-ticker.C:
		case <-timer.C:
			return status, state, fmt.Errorf("%w: backend did not answer within %s", shared.ErrTimeout, timeout)
		case <-ctx.Done():
			return status, state, ctx.Err()
		}
	}
}

// confirm prints prompt and reads a y/n answer from the runner's input.
func (r *Runner) confirm(prompt tasks.Prompt) (bool, error) {
	r.writePlain("%s\n%s [y/N] ", prompt.Title, prompt.Message)

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
