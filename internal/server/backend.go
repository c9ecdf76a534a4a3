package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/transport"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	fetchTimeout    = 10 * time.Second
	maxPlaylistSize = 32 << 20
	writeWait       = 10 * time.Second
)

// BackendOpts configures a [Backend].
type BackendOpts struct {
	Legacy     []models.PlaylistSummary // playlists offered by MIGRATE
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// Backend answers bridge requests from the UI.
type Backend struct {
	mu       sync.Mutex
	legacy   []models.PlaylistSummary
	migrated bool

	client   *http.Client
	upgrader websocket.Upgrader
	logger   *log.Logger
	now      func() time.Time
}

// NewBackend creates a backend offering opts.Legacy for migration.
func NewBackend(opts BackendOpts) *Backend {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Backend{
		legacy:   opts.Legacy,
		client:   opts.HTTPClient,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		logger:   shared.WithLogger(opts.Logger, "component", "backend"),
		now:      opts.Now,
	}
}

// LoadLegacy reads legacy playlists from a JSON array file.
func LoadLegacy(path string) ([]models.PlaylistSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy playlists: %w", err)
	}

	var items []models.PlaylistSummary
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: legacy playlists: %v", shared.ErrInvalidInput, err)
	}
	for _, p := range items {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Routes returns the bridge route.
func (b *Backend) Routes() []string {
	return []string{"/bridge"}
}

// ServeHTTP upgrades to a WebSocket and answers every envelope read from it.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	b.logger.Info("ui connected", "remote", r.RemoteAddr)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.Warn("read failed", "error", err)
			}
			b.logger.Info("ui disconnected", "remote", r.RemoteAddr)
			return
		}

		reply := b.Reply(r.Context(), data)
		if reply == nil {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			b.logger.Warn("write failed", "error", err)
			return
		}
	}
}

// ServeRedis answers envelopes published on the backend channel of prefix until ctx is done.
func (b *Backend) ServeRedis(ctx context.Context, client *redis.Client, prefix string) error {
	sub := client.Subscribe(ctx, transport.BackendChannel(prefix))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	b.logger.Info("backend subscribed", "channel", transport.BackendChannel(prefix))
	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return shared.ErrChannelClosed
			}
			reply := b.Reply(ctx, []byte(msg.Payload))
			if reply == nil {
				continue
			}
			if err := client.Publish(ctx, transport.UIChannel(prefix), reply).Err(); err != nil {
				b.logger.Warn("publish failed", "error", err)
			}
		}
	}
}

// Reply decodes one request and returns the encoded response, or nil when none is due.
func (b *Backend) Reply(ctx context.Context, data []byte) []byte {
	env, err := transport.Decode(data)
	if err != nil {
		b.logger.Warn("dropping message", "error", err)
		return nil
	}

	id, payload, err := b.handle(ctx, env)
	if err != nil {
		b.logger.Warn("request failed", "id", env.ID, "nonce", env.Nonce, "error", err)
		return nil
	}
	if id == "" {
		return nil
	}

	out, err := transport.Encode(id, payload)
	if err != nil {
		b.logger.Error("failed to encode reply", "id", id, "error", err)
		return nil
	}
	return out
}

func (b *Backend) handle(ctx context.Context, env transport.Envelope) (bridge.MessageID, any, error) {
	b.logger.Debug("request", "id", env.ID, "nonce", env.Nonce)

	switch env.ID {
	case bridge.CheckPossible:
		return bridge.CheckPossibleResponse, b.check(), nil
	case bridge.Migrate:
		return bridge.MigrateResponse, bridge.MigrateReply{Payload: b.migrate()}, nil
	case bridge.DeleteAllMigrated:
		b.mu.Lock()
		b.migrated = false
		b.mu.Unlock()
		return "", nil, nil
	case bridge.UpdatePlaylist:
		var req bridge.UpdatePlaylistRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return "", nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		reply, err := b.refresh(ctx, req)
		if err != nil {
			return "", nil, err
		}
		return bridge.UpdatePlaylistResponse, reply, nil
	default:
		return "", nil, fmt.Errorf("%w: %s", shared.ErrUnknownMessage, env.ID)
	}
}

func (b *Backend) check() bridge.CheckPossibleReply {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case len(b.legacy) == 0:
		return bridge.CheckPossibleReply{Message: "No legacy playlists found"}
	case b.migrated:
		return bridge.CheckPossibleReply{Message: "Legacy playlists were already migrated"}
	default:
		return bridge.CheckPossibleReply{
			Result:  true,
			Message: fmt.Sprintf("%d legacy playlists can be migrated", len(b.legacy)),
		}
	}
}

func (b *Backend) migrate() []models.PlaylistSummary {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.migrated {
		return []models.PlaylistSummary{}
	}
	b.migrated = true

	now := b.now()
	out := make([]models.PlaylistSummary, len(b.legacy))
	for i, p := range b.legacy {
		if p.ImportDate.IsZero() {
			p.ImportDate = now
		}
		out[i] = p
	}
	return out
}

func (b *Backend) refresh(ctx context.Context, req bridge.UpdatePlaylistRequest) (bridge.UpdatePlaylistReply, error) {
	if req.ID == "" {
		return bridge.UpdatePlaylistReply{}, fmt.Errorf("%w: missing id", shared.ErrInvalidInput)
	}

	count, err := b.count(ctx, req.Source)
	if err != nil {
		return bridge.UpdatePlaylistReply{}, err
	}

	now := b.now()
	return bridge.UpdatePlaylistReply{
		Message: fmt.Sprintf("Playlist %s was successfully updated", req.Title),
		Playlist: models.PlaylistSummary{
			ID:         req.ID,
			Title:      req.Title,
			Count:      count,
			UpdateDate: &now,
			Source:     req.Source,
		},
	}, nil
}

// count reads the playlist behind src and returns its number of entries.
func (b *Backend) count(ctx context.Context, src models.Source) (int, error) {
	if err := src.Validate(); err != nil {
		return 0, err
	}

	if src.Kind() == models.SourceFile {
		f, err := os.Open(src.FilePath)
		if err != nil {
			return 0, fmt.Errorf("failed to open playlist file: %w", err)
		}
		defer f.Close()
		return CountEntries(f)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("failed to fetch playlist: status %d", resp.StatusCode)
	}
	return CountEntries(io.LimitReader(resp.Body, maxPlaylistSize))
}

// CountEntries counts the entries of an M3U playlist: every non-blank line that is not a directive.
func CountEntries(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read playlist: %w", err)
	}
	return n, nil
}
