// package models defines the data model for the playlist bridge
package models

// Validator is implemented by every value that crosses the message channel or is persisted.
type Validator interface {
	Validate() error // Validate checks if the value is well-formed and returns an error if not
}

var (
	_ Validator = PlaylistSummary{}
	_ Validator = Source{}
	_ Validator = PositionUpdate{}
)
