package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Channel and protocol errors
	ErrChannelAbsent     = fmt.Errorf("no backend connected")
	ErrChannelClosed     = fmt.Errorf("channel closed")
	ErrUnknownMessage    = fmt.Errorf("unknown message id")
	ErrAlreadySubscribed = fmt.Errorf("message id already subscribed")
	ErrQueueFull         = fmt.Errorf("outbound queue full")
	ErrHandlerFault      = fmt.Errorf("message handler failed")
	ErrMissingHandler    = fmt.Errorf("response has no registered handler")
	ErrDuplicateCommand  = fmt.Errorf("duplicate command id")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// Playlist and state errors
	ErrPlaylistNotFound      = fmt.Errorf("playlist not found")
	ErrInvalidPlaylist       = fmt.Errorf("invalid playlist")
	ErrInvalidIndex          = fmt.Errorf("index out of range")
	ErrMigrationInProgress   = fmt.Errorf("migration already in progress")
	ErrNoPendingConfirmation = fmt.Errorf("no pending confirmation")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
