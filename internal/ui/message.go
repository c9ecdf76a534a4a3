package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDrain MsgKind = iota
	MsgNotification
	MsgNotificationExpired
	MsgNotificationsClosed
)

// drainMsg is the constructor for [MsgDrain]
func drainMsg() Msg {
	return Msg{kind: MsgDrain}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg(n tasks.Notification) Msg {
	return Msg{kind: MsgNotification, data: n}
}

// notificationExpiredMsg is the constructor for [MsgNotificationExpired]
func notificationExpiredMsg(seq int) Msg {
	return Msg{kind: MsgNotificationExpired, data: seq}
}

// notificationsClosedMsg is the constructor for [MsgNotificationsClosed]
func notificationsClosedMsg() Msg {
	return Msg{kind: MsgNotificationsClosed}
}
