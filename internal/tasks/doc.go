// Package tasks implements the recent playlists component and the pieces it is built from.
//
// # Components
//
//  1. [Reorder] : turns a drag from one index to another into position updates
//     - moves the element, then reassigns positions 0..n-1 by index
//     - returns only the updates whose position changed
//
//  2. [Handshake] : tracks whether legacy playlists can be migrated
//     - UNKNOWN → CHECKING → POSSIBLE | NOT_POSSIBLE → MIGRATING → MIGRATED
//     - a missing response leaves it waiting; there is no timeout
//
//  3. [Guard] : holds one pending confirmation in front of a destructive action
//     - declining is a no-op, not an error
//
//  4. [RecentPlaylists] : wires the above to the store and the backend bridge
//     - Activate subscribes every handler, then asks the backend whether migration is possible
//     - Deactivate removes every subscription; late responses are dropped
//
// # Notifications
//
// Handlers surface transient messages as [Notification] values on an optional channel.
// Sends use select with default, so a slow reader never blocks a handler.
package tasks
