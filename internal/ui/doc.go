// Package ui implements an interactive terminal interface over the recent playlists component using bubbletea's Elm architecture.
//
// The TUI provides three views:
//  1. [ListView] : the playlists in position order; grab one with space, move, and drop it with space again
//  2. [InfoView] : every detail of one playlist, with relative dates
//  3. [ConfirmView] : the yes/no step in front of a removal
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Backend responses reach the component through a [ProgramScheduler], which runs every bridge handler inside Update,
// so a handler always completes before the next render. Notifications flow through a channel and are shown for their
// configured duration.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
