package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/notifyd/internal/notify"
	"github.com/llehouerou/notifyd/internal/render"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Lines used by the header, filter and footer.
const chromeLines = 4

// Each list item takes a title line and a body line.
const itemLines = 2

func (m Model) pageSize() int {
	return max((m.height-chromeLines)/itemLines, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(render.Separator(m.width))
	}
	b.WriteString("\n")

	if m.details {
		if n, ok := m.Selected(); ok {
			b.WriteString(m.detailsView(n))
			b.WriteString("\n")
			b.WriteString(m.footerView())
			return b.String()
		}
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(hintStyle.Render("no notifications"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.pageSize(), len(visible))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.itemView(visible[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	title := fmt.Sprintf("notifyd · %s", pluralize(m.Len(), "notification"))
	if m.settings != nil && m.settings.Get().DoNotDisturb {
		title += " · do not disturb"
	}
	return headerStyle.Render(render.Truncate(title, m.width))
}

func (m Model) itemView(n notify.Notification, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	title := n.Summary
	if title == "" {
		title = n.AppName
	}
	meta := humanize.Time(n.Received)
	if n.AppName != "" && n.Summary != "" {
		meta = n.AppName + " · " + meta
	}

	width := max(m.width-len(marker), 10)
	title = render.Truncate(title, max(width-lipgloss.Width(meta)-1, 1))
	row := marker + render.Row(title, meta, width)
	switch {
	case selected:
		row = selectedStyle.Render(row)
	case n.Urgency == notify.UrgencyCritical:
		row = criticalStyle.Render(row)
	}

	body := firstLine(n.Content.PlainText)
	return row + "\n" + strings.Repeat(" ", len(marker)) + hintStyle.Render(render.Truncate(body, width))
}

func (m Model) detailsView(n notify.Notification) string {
	meta := n.Urgency.String()
	if n.AppName != "" {
		meta = n.AppName + " · " + meta
	}
	title := n.Summary
	if title == "" {
		title = n.AppName
	}
	out := m.renderer.Card(title, meta, n.Content.Segments, m.width)
	for _, l := range n.Content.Links {
		out += "\n" + hintStyle.Render(render.Truncate("→ "+l.URL, m.width))
	}
	return out
}

func (m Model) footerView() string {
	if m.status != "" {
		return hintStyle.Render(m.status)
	}
	if !m.help {
		return hintStyle.Render("? help · q quit")
	}
	help := append(m.resolver.Help("list"), m.resolver.Help("global")...)
	return hintStyle.Render(strings.Join(help, " · "))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func pluralize(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
