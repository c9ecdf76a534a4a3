package bridge

import (
	"fmt"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Messages understood by the recent playlists component.
const (
	CheckPossible          MessageID = "CHECK_POSSIBLE"
	CheckPossibleResponse  MessageID = "CHECK_POSSIBLE_RESPONSE"
	Migrate                MessageID = "MIGRATE"
	MigrateResponse        MessageID = "MIGRATE_RESPONSE"
	DeleteAllMigrated      MessageID = "DELETE_ALL_MIGRATED"
	UpdatePlaylist         MessageID = "UPDATE_PLAYLIST"
	UpdatePlaylistResponse MessageID = "UPDATE_PLAYLIST_RESPONSE"
)

// CheckPossibleReply is the payload of [CheckPossibleResponse].
type CheckPossibleReply struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
}

// MigrateReply is the payload of [MigrateResponse].
type MigrateReply struct {
	Payload []models.PlaylistSummary `json:"payload"`
}

// UpdatePlaylistRequest is the payload of [UpdatePlaylist]. Exactly one of url or filePath is sent.
type UpdatePlaylistRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	models.Source
}

// NewUpdatePlaylistRequest builds a refresh request for p.
func NewUpdatePlaylistRequest(p models.PlaylistSummary) (UpdatePlaylistRequest, error) {
	if err := p.Source.Validate(); err != nil {
		return UpdatePlaylistRequest{}, fmt.Errorf("cannot refresh %s: %w", p.ID, err)
	}
	return UpdatePlaylistRequest{ID: p.ID, Title: p.Title, Source: p.Source}, nil
}

// UpdatePlaylistReply is the payload of [UpdatePlaylistResponse].
type UpdatePlaylistReply struct {
	Message  string                 `json:"message"`
	Playlist models.PlaylistSummary `json:"playlist"`
}

// Route pairs an outbound request with the inbound message that answers it.
// An empty Response marks the request as one-way.
type Route struct {
	Request  MessageID
	Response MessageID
}

// OneWay reports whether the request expects no answer.
func (r Route) OneWay() bool { return r.Response == "" }

// Catalogue is the static set of routes a component may use.
type Catalogue []Route

// DefaultCatalogue lists every request of the recent playlists protocol.
var DefaultCatalogue = Catalogue{
	{Request: CheckPossible, Response: CheckPossibleResponse},
	{Request: Migrate, Response: MigrateResponse},
	{Request: DeleteAllMigrated},
	{Request: UpdatePlaylist, Response: UpdatePlaylistResponse},
}

// Route returns the route for a request id.
func (c Catalogue) Route(request MessageID) (Route, bool) {
	for _, r := range c {
		if r.Request == request {
			return r, true
		}
	}
	return Route{}, false
}

// Responses returns every inbound id named by the catalogue.
func (c Catalogue) Responses() []MessageID {
	var ids []MessageID
	for _, r := range c {
		if !r.OneWay() {
			ids = append(ids, r.Response)
		}
	}
	return ids
}

// Validate checks the catalogue against the inbound ids that have handlers.
//
// Every request must be declared once, and every answered request must have a handler for its response.
func (c Catalogue) Validate(handled []MessageID) error {
	seen := make(map[MessageID]bool, len(c))
	for _, r := range c {
		if r.Request == "" {
			return fmt.Errorf("%w: route with empty request id", shared.ErrUnknownMessage)
		}
		if seen[r.Request] {
			return fmt.Errorf("%w: request %s declared twice", shared.ErrDuplicateCommand, r.Request)
		}
		seen[r.Request] = true
	}

	has := make(map[MessageID]bool, len(handled))
	for _, id := range handled {
		has[id] = true
	}

	for _, r := range c {
		if !r.OneWay() && !has[r.Response] {
			return fmt.Errorf("%w: %s answers %s", shared.ErrMissingHandler, r.Response, r.Request)
		}
	}

	return nil
}
