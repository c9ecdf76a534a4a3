package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	InfoView
	ConfirmView
)

// Model represents the TUI application state.
type Model struct {
	view          ViewState
	recent        *tasks.RecentPlaylists
	scheduler     *ProgramScheduler
	notifications <-chan tasks.Notification
	list          list.Model
	grabbed       string
	info          models.PlaylistSummary
	prompt        tasks.Prompt
	notice        *tasks.Notification
	noticeSeq     int
	opened        string
	width         int
	height        int
	err           error
	help          help.Model
	keys          keyMap
	now           func() time.Time
}

// NewModel creates a new TUI model over an activated component.
//
// scheduler must be the one the component's registry was built with. notifications may be nil.
func NewModel(recent *tasks.RecentPlaylists, scheduler *ProgramScheduler, notifications <-chan tasks.Notification) *Model {
	l := list.New(toItems(recent.Playlists(), ""), list.NewDefaultDelegate(), 80, 20)
	l.Title = "Recent Playlists"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return &Model{
		view:          ListView,
		recent:        recent,
		scheduler:     scheduler,
		notifications: notifications,
		list:          l,
		help:          help.New(),
		keys:          newKeyMap(),
		now:           time.Now,
	}
}

// Opened returns the id of the last playlist opened with enter.
func (m *Model) Opened() string { return m.opened }

// Init starts listening for notifications.
func (m *Model) Init() tea.Cmd {
	return m.waitForNotification()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case InfoView:
			return m.handleInfoKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgDrain:
		if m.scheduler != nil && m.scheduler.drain() > 0 {
			m.sync()
		}
		return m, nil

	case MsgNotification:
		n := msg.data.(tasks.Notification)
		cmd := m.showNotification(n)
		return m, tea.Batch(cmd, m.waitForNotification())

	case MsgNotificationExpired:
		if seq := msg.data.(int); seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case MsgNotificationsClosed:
		return m, nil
	}
	return m, nil
}

func (m *Model) showNotification(n tasks.Notification) tea.Cmd {
	if n.Kind == tasks.NoticeOpened {
		m.opened = n.PlaylistID
		if p, err := m.recent.Info(n.PlaylistID); err == nil {
			n.Message = fmt.Sprintf("Opened %s", p.Title)
		}
		n.Duration = tasks.DefaultNotificationDuration
	}

	m.noticeSeq++
	m.notice = &n
	seq := m.noticeSeq
	return tea.Tick(n.Duration, func(time.Time) tea.Msg {
		return notificationExpiredMsg(seq)
	})
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ListView:
		body = m.renderList()
	case InfoView:
		body = m.renderInfo()
	case ConfirmView:
		body = m.renderConfirm()
	}

	var b strings.Builder
	b.WriteString(body)
	if m.notice != nil && m.notice.Message != "" {
		b.WriteString("\n\n")
		if m.notice.Kind == tasks.NoticeFault {
			b.WriteString(styles.err.Render(m.notice.Message))
		} else {
			b.WriteString(styles.banner.Render(m.notice.Message))
		}
	}
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	return b.String()
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.grab):
		m.toggleGrab()
		return m, nil

	case key.Matches(msg, m.keys.back):
		if m.grabbed != "" {
			m.grabbed = ""
			m.sync()
		}
		return m, nil
	}

	if m.grabbed == "" {
		if p, ok := m.selected(); ok {
			switch {
			case key.Matches(msg, m.keys.open):
				m.err = m.recent.Open(p.ID)
				return m, nil
			case key.Matches(msg, m.keys.info):
				m.info = p
				m.view = InfoView
				return m, nil
			case key.Matches(msg, m.keys.refresh):
				m.err = m.recent.Refresh(p.ID)
				return m, nil
			case key.Matches(msg, m.keys.remove):
				prompt, err := m.recent.RequestRemoval(p.ID)
				if err != nil {
					m.err = err
					return m, nil
				}
				m.prompt = prompt
				m.info = p
				m.view = ConfirmView
				return m, nil
			}
		}

		switch {
		case key.Matches(msg, m.keys.migrate):
			m.err = m.recent.Migrate()
			return m, nil
		case key.Matches(msg, m.keys.purge):
			m.err = m.recent.DeleteMigrated()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleInfoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.info):
		m.view = ListView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.err = m.recent.Confirm(true)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.err = m.recent.Confirm(false)
	default:
		return m, nil
	}

	if errors.Is(m.err, shared.ErrNoPendingConfirmation) {
		m.err = nil
	}
	m.view = ListView
	m.sync()
	return m, nil
}

// toggleGrab picks up the selected playlist, or drops the held one at the cursor.
func (m *Model) toggleGrab() {
	if m.grabbed == "" {
		if p, ok := m.selected(); ok {
			m.grabbed = p.ID
			m.sync()
		}
		return
	}

	to := m.list.Index()
	if from, ok := m.indexOf(m.grabbed); ok {
		m.err = m.recent.Drop(from, to)
	} else {
		m.err = fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, m.grabbed)
	}
	m.grabbed = ""
	m.sync()
	m.list.Select(to)
}

// indexOf finds id in the current store order, which may have changed since the grab.
func (m *Model) indexOf(id string) (int, bool) {
	for i, p := range m.recent.Playlists() {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}

// sync reloads the list from the store, keeping the cursor where it was.
func (m *Model) sync() {
	idx := m.list.Index()
	m.list.SetItems(toItems(m.recent.Playlists(), m.grabbed))
	if n := len(m.list.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	m.list.Select(idx)
}

func (m *Model) selected() (models.PlaylistSummary, bool) {
	item, ok := m.list.SelectedItem().(playlistItem)
	if !ok {
		return models.PlaylistSummary{}, false
	}
	return item.playlist, true
}

// waitForNotification blocks on the notification channel inside a command.
func (m *Model) waitForNotification() tea.Cmd {
	if m.notifications == nil {
		return nil
	}
	ch := m.notifications
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return notificationsClosedMsg()
		}
		return notificationMsg(n)
	}
}

func (m *Model) renderList() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.renderMigration())
	b.WriteString("\n\n")

	if m.grabbed != "" {
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.grab, m.keys.back}))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.migrate, m.keys.purge}))
	}
	return b.String()
}

func (m *Model) renderMigration() string {
	if !m.recent.Connected() {
		return styles.help.Render("No backend connected")
	}

	status, state := m.recent.Migration()
	line := fmt.Sprintf("Migration: %s", status)
	if state.Message != "" {
		line += " · " + state.Message
	}

	switch status {
	case tasks.StatusPossible, tasks.StatusMigrated:
		return styles.ok.Render(line)
	case tasks.StatusChecking, tasks.StatusMigrating:
		return styles.warn.Render(line + " (waiting for backend)")
	default:
		return styles.help.Render(line)
	}
}

func (m *Model) renderInfo() string {
	title := styles.title.Render(m.info.Title)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s", title, formatter.Info(m.info, m.now()), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(m.prompt.Title)
	info := fmt.Sprintf("%s\n\n%s", styles.warn.Render(m.info.Title), m.prompt.Message)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
