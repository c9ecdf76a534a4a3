package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	grab    key.Binding
	open    key.Binding
	info    key.Binding
	refresh key.Binding
	remove  key.Binding
	migrate key.Binding
	purge   key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		grab:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/drop")),
		open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		info:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		remove:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		migrate: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "migrate")),
		purge:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete migrated")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.grab, k.open, k.info, k.refresh, k.remove, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.grab, k.open},
		{k.info, k.refresh, k.remove},
		{k.migrate, k.purge},
		{k.back, k.yes, k.no, k.quit},
	}
}
