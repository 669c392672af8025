// Package tui is a live terminal viewer for the notification service.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/notifyd/internal/config"
	"github.com/llehouerou/notifyd/internal/keymap"
	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
)

// Dismisser closes notifications. *notify.Server implements it.
type Dismisser interface {
	Close(id uint32, reason notify.CloseReason) bool
}

// NotificationMsg delivers a notification to the viewer.
type NotificationMsg struct {
	Notification notify.Notification
}

// ClosedMsg removes a closed notification from the viewer.
type ClosedMsg struct {
	ID     uint32
	Reason notify.CloseReason
}

// Model is the bubbletea model of the viewer.
type Model struct {
	dismisser Dismisser
	settings  *config.Store
	resolver  *keymap.Resolver
	renderer  *render.Renderer

	items  []notify.Notification // newest first
	cursor int                   // index into visible()
	offset int

	filter    textinput.Model
	filtering bool

	details bool
	help    bool
	status  string

	width, height int
}

// New creates a viewer. settings may be nil, which disables the
// do-not-disturb toggle.
func New(dismisser Dismisser, settings *config.Store, r *render.Renderer) Model {
	ti := textinput.New()
	ti.Placeholder = "app, summary or text..."
	ti.Prompt = "/ "
	ti.CharLimit = 128

	return Model{
		dismisser: dismisser,
		settings:  settings,
		resolver:  keymap.NewResolver(keymap.All),
		renderer:  r,
		filter:    ti,
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.filter.Width = max(msg.Width-4, 10)
		m.clampCursor()
		return m, nil

	case NotificationMsg:
		m.add(msg.Notification)
		return m, nil

	case ClosedMsg:
		m.remove(msg.ID)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.cursor, m.offset = 0, 0
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursor, m.offset = 0, 0
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	visible := m.visible()

	switch m.resolver.Resolve(msg.String()) {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help = !m.help
	case keymap.ActionMoveUp:
		m.move(-1)
	case keymap.ActionMoveDown:
		m.move(1)
	case keymap.ActionJumpStart:
		m.cursor, m.offset = 0, 0
	case keymap.ActionJumpEnd:
		m.move(len(visible))
	case keymap.ActionToggleDetails:
		m.details = !m.details
	case keymap.ActionDismiss:
		if len(visible) == 0 {
			return m, nil
		}
		id := visible[m.cursor].ID
		m.remove(id)
		return m, m.dismiss(id)
	case keymap.ActionDismissAll:
		cmds := make([]tea.Cmd, 0, len(visible))
		for _, n := range visible {
			m.remove(n.ID)
			cmds = append(cmds, m.dismiss(n.ID))
		}
		return m, tea.Batch(cmds...)
	case keymap.ActionFilter:
		m.filtering = true
		return m, m.filter.Focus()
	case keymap.ActionClearFilter:
		m.filter.SetValue("")
		m.details = false
		m.cursor, m.offset = 0, 0
	case keymap.ActionToggleDND:
		m.toggleDND()
	}
	return m, nil
}

// dismiss closes id off the update loop; the server's close event
// arrives later as a ClosedMsg for an already removed item.
func (m Model) dismiss(id uint32) tea.Cmd {
	if m.dismisser == nil {
		return nil
	}
	d := m.dismisser
	return func() tea.Msg {
		d.Close(id, notify.ReasonDismissed)
		return nil
	}
}

func (m *Model) toggleDND() {
	if m.settings == nil {
		return
	}
	cfg := *m.settings.Get()
	cfg.DoNotDisturb = !cfg.DoNotDisturb
	m.settings.Set(&cfg)
	if cfg.DoNotDisturb {
		m.status = "do not disturb on"
	} else {
		m.status = "do not disturb off"
	}
}

// add puts n on top, replacing an item with the same id. The selection
// stays on the same notification.
func (m *Model) add(n notify.Notification) {
	selected, hadSelection := m.Selected()
	m.items = without(m.items, n.ID)
	m.items = append([]notify.Notification{n}, m.items...)
	if len(m.items) > notify.MaxStored {
		m.items = m.items[:notify.MaxStored]
	}
	if hadSelection && m.cursor > 0 {
		for i, it := range m.visible() {
			if it.ID == selected.ID {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) remove(id uint32) {
	m.items = without(m.items, id)
	m.clampCursor()
}

// without returns a copy of items minus the one with id.
func without(items []notify.Notification, id uint32) []notify.Notification {
	out := make([]notify.Notification, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	m.cursor = max(min(m.cursor, n-1), 0)
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(min(m.offset, n-page), 0)
}

// visible returns the items matching the filter, newest first.
func (m Model) visible() []notify.Notification {
	if m.filter.Value() == "" {
		return m.items
	}
	var out []notify.Notification
	for _, n := range m.items {
		if m.matches(n) {
			out = append(out, n)
		}
	}
	return out
}

func (m Model) matches(n notify.Notification) bool {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if q == "" {
		return true
	}
	for _, field := range []string{n.AppName, n.DesktopEntry, n.Summary, n.Content.PlainText} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Selected returns the notification under the cursor.
func (m Model) Selected() (notify.Notification, bool) {
	visible := m.visible()
	if len(visible) == 0 {
		return notify.Notification{}, false
	}
	return visible[m.cursor], true
}

// Len returns the number of notifications shown with the current filter.
func (m Model) Len() int {
	return len(m.visible())
}
