package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plx/internal/models"
	"github.com/dustin/go-humanize"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.PlaylistSummary] to implement [list.Item].
type playlistItem struct {
	playlist models.PlaylistSummary
	grabbed  bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string {
	if i.grabbed {
		return "≡ " + i.playlist.Title
	}
	return i.playlist.Title
}
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%s tracks • %s", humanize.Comma(int64(i.playlist.Count)), i.playlist.Location())
	if i.playlist.AutoRefresh {
		desc += " • auto-refresh"
	}
	return desc
}

func toItems(playlists []models.PlaylistSummary, grabbed string) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, grabbed: p.ID == grabbed}
	}
	return items
}
