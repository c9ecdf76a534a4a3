package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/bridge"
)

// DefaultNotificationDuration is how long a notification stays visible when none is configured.
const DefaultNotificationDuration = 2 * time.Second

// Notification is a transient message for the presentation layer.
type Notification struct {
	Kind       NotificationKind // What happened
	Message    string           // Human-readable message for display
	PlaylistID string           // Playlist the notification is about, if any
	Count      int              // Number of playlists affected, if any
	Duration   time.Duration    // How long to show it
}

// NotificationKind enumerates the notifications the component emits.
type NotificationKind int

const (
	NoticeRefreshed NotificationKind = iota
	NoticeMigrated
	NoticeRemoved
	NoticeOpened
	NoticeFault
)

func (k NotificationKind) String() string {
	switch k {
	case NoticeRefreshed:
		return "refreshed"
	case NoticeMigrated:
		return "migrated"
	case NoticeRemoved:
		return "removed"
	case NoticeOpened:
		return "opened"
	case NoticeFault:
		return "fault"
	default:
		return ""
	}
}

func refreshedNotice(message, id string, d time.Duration) Notification {
	return Notification{Kind: NoticeRefreshed, Message: message, PlaylistID: id, Count: 1, Duration: d}
}

func migratedNotice(count int, d time.Duration) Notification {
	return Notification{
		Kind:     NoticeMigrated,
		Message:  fmt.Sprintf("%d playlists were successfully migrated", count),
		Count:    count,
		Duration: d,
	}
}

func removedNotice(title, id string, d time.Duration) Notification {
	return Notification{
		Kind:       NoticeRemoved,
		Message:    fmt.Sprintf("Removed %s", title),
		PlaylistID: id,
		Count:      1,
		Duration:   d,
	}
}

// openedNotice has no duration; it is a navigation event rather than something to display.
func openedNotice(id string) Notification {
	return Notification{Kind: NoticeOpened, PlaylistID: id}
}

func faultNotice(id bridge.MessageID, err error, d time.Duration) Notification {
	return Notification{
		Kind:     NoticeFault,
		Message:  fmt.Sprintf("Could not handle %s: %v", id, err),
		Duration: d,
	}
}

// sendNotification delivers n without blocking. Notifications are dropped when nobody keeps up.
func sendNotification(ch chan<- Notification, n Notification) {
	if ch == nil {
		return
	}
	select {
	case ch <- n:
	default:
	}
}
