package tasks

import (
	"sync"

	"github.com/desertthunder/plx/internal/bridge"
	"github.com/desertthunder/plx/internal/shared"
)

// MigrationStatus is a state of the migration [Handshake].
type MigrationStatus int

const (
	StatusUnknown MigrationStatus = iota
	StatusChecking
	StatusPossible
	StatusNotPossible
	StatusMigrating
	StatusMigrated
)

func (s MigrationStatus) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusChecking:
		return "CHECKING"
	case StatusPossible:
		return "POSSIBLE"
	case StatusNotPossible:
		return "NOT_POSSIBLE"
	case StatusMigrating:
		return "MIGRATING"
	case StatusMigrated:
		return "MIGRATED"
	default:
		return ""
	}
}

// Waiting reports whether a response is outstanding.
func (s MigrationStatus) Waiting() bool {
	return s == StatusChecking || s == StatusMigrating
}

// MigrationState is what the backend last said about migration.
type MigrationState struct {
	IsPossible bool
	Message    string
}

// Handshake tracks whether legacy playlists can be, or have been, migrated.
//
// The zero value is ready to use and starts in [StatusUnknown].
type Handshake struct {
	mu     sync.Mutex
	status MigrationStatus
	state  MigrationState
}

// Status returns the current state.
func (h *Handshake) Status() MigrationStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// State returns the last reported migration state.
func (h *Handshake) State() MigrationState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Reset returns to [StatusUnknown] with an empty state.
func (h *Handshake) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusUnknown
	h.state = MigrationState{}
}

// Begin records that the possibility check was sent.
func (h *Handshake) Begin() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusChecking
}

// Resolve applies the possibility response.
//
// The state is always updated. The status only moves when no migration has started.
func (h *Handshake) Resolve(reply bridge.CheckPossibleReply) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = MigrationState{IsPossible: reply.Result, Message: reply.Message}
	if h.status == StatusMigrating || h.status == StatusMigrated {
		return
	}
	if reply.Result {
		h.status = StatusPossible
	} else {
		h.status = StatusNotPossible
	}
}

// StartMigration moves to [StatusMigrating] and returns the status it left.
func (h *Handshake) StartMigration() (MigrationStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status == StatusMigrating {
		return h.status, shared.ErrMigrationInProgress
	}
	prev := h.status
	h.status = StatusMigrating
	return prev, nil
}

// Abort restores prev if a migration request could not be sent.
func (h *Handshake) Abort(prev MigrationStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusMigrating {
		h.status = prev
	}
}

// Complete records the migration response.
func (h *Handshake) Complete() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusMigrated
}
