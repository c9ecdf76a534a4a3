package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/shared"
)

// SourceKind identifies which variant of [Source] is set.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceURL
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceURL:
		return "url"
	case SourceFile:
		return "file"
	default:
		return "none"
	}
}

// Source is where a playlist was imported from. Exactly one of URL or FilePath is set.
type Source struct {
	URL      string `json:"url,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

// FromURL returns a URL [Source].
func FromURL(url string) Source { return Source{URL: url} }

// FromFile returns a file path [Source].
func FromFile(path string) Source { return Source{FilePath: path} }

// Kind reports which variant is set, [SourceNone] when the source is empty or ambiguous.
func (s Source) Kind() SourceKind {
	switch {
	case s.URL != "" && s.FilePath == "":
		return SourceURL
	case s.FilePath != "" && s.URL == "":
		return SourceFile
	default:
		return SourceNone
	}
}

// Location returns whichever of URL or FilePath is set.
func (s Source) Location() string {
	if s.URL != "" {
		return s.URL
	}
	return s.FilePath
}

func (s Source) Validate() error {
	if s.URL != "" && s.FilePath != "" {
		return fmt.Errorf("%w: source has both url and filePath", shared.ErrInvalidPlaylist)
	}
	if s.URL == "" && s.FilePath == "" {
		return fmt.Errorf("%w: source has neither url nor filePath", shared.ErrInvalidPlaylist)
	}
	return nil
}

// PlaylistSummary is one saved playlist as displayed in the recent playlists list.
//
// Position defines render order. After a reorder, positions across the list are exactly 0..n-1.
type PlaylistSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Position    int        `json:"position"`
	Count       int        `json:"count"`
	ImportDate  time.Time  `json:"importDate"`
	UpdateDate  *time.Time `json:"updateDate,omitempty"`
	AutoRefresh bool       `json:"autoRefresh"`
	Source
}

func (p PlaylistSummary) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", shared.ErrInvalidPlaylist)
	}
	if p.Position < 0 {
		return fmt.Errorf("%w: negative position %d for %s", shared.ErrInvalidPlaylist, p.Position, p.ID)
	}
	if err := p.Source.Validate(); err != nil {
		return fmt.Errorf("playlist %s: %w", p.ID, err)
	}
	return nil
}

// PlaylistChanges is a partial update. Nil fields are left untouched.
type PlaylistChanges struct {
	Title       *string
	Position    *int
	Count       *int
	UpdateDate  *time.Time
	AutoRefresh *bool
	Source      *Source
}

// Apply returns a copy of p with the non-nil changes applied.
func (c PlaylistChanges) Apply(p PlaylistSummary) PlaylistSummary {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Position != nil {
		p.Position = *c.Position
	}
	if c.Count != nil {
		p.Count = *c.Count
	}
	if c.UpdateDate != nil {
		d := *c.UpdateDate
		p.UpdateDate = &d
	}
	if c.AutoRefresh != nil {
		p.AutoRefresh = *c.AutoRefresh
	}
	if c.Source != nil {
		p.Source = *c.Source
	}
	return p
}

// IsEmpty reports whether no field would change.
func (c PlaylistChanges) IsEmpty() bool {
	return c.Title == nil && c.Position == nil && c.Count == nil &&
		c.UpdateDate == nil && c.AutoRefresh == nil && c.Source == nil
}

// RefreshedChanges builds the changes applied when the backend returns a refreshed playlist.
//
// Position and AutoRefresh are left out: a refresh never reorders the local list
// and the refresh request does not carry the user's auto-refresh setting.
func RefreshedChanges(p PlaylistSummary) PlaylistChanges {
	title, count, source := p.Title, p.Count, p.Source
	changes := PlaylistChanges{
		Title:  &title,
		Count:  &count,
		Source: &source,
	}
	if p.UpdateDate != nil {
		d := *p.UpdateDate
		changes.UpdateDate = &d
	}
	return changes
}

// PositionUpdate is a reconciled position for one playlist.
type PositionUpdate struct {
	ID          string `json:"id"`
	NewPosition int    `json:"newPosition"`
}

func (u PositionUpdate) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: position update without id", shared.ErrInvalidPlaylist)
	}
	if u.NewPosition < 0 {
		return fmt.Errorf("%w: negative position %d for %s", shared.ErrInvalidPlaylist, u.NewPosition, u.ID)
	}
	return nil
}
