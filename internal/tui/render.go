package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/reminder"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	defaultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	upcomingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	elapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	searchStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)
)

func (m appModel) renderHeader() string {
	sortText := "none"
	if k := m.sortKey(); k != query.SortNone {
		sortText = fmt.Sprintf("%s %s", k, m.order)
	}
	header := fmt.Sprintf("Link Manager  [Sort: %s]  [%d links]  [Page %d/%d]",
		sortText, m.page.Total, m.page.Page, max(m.page.TotalPages, 1))
	if m.searchQuery != "" && !m.searchMode {
		header += fmt.Sprintf("  [Search: %s]", m.searchQuery)
	}
	return headerStyle.Render(header)
}

func (m appModel) renderSearchBar() string {
	prompt := fmt.Sprintf("/%s", m.searchQuery)
	return searchStyle.Width(m.width - 2).Render(prompt)
}

func (m appModel) renderList() string {
	if m.confirmDelete {
		return m.renderDeleteConfirmation()
	}

	if len(m.page.Items) == 0 {
		return "No links found. Use 'lm add <url>' to add one, or 'q' to quit."
	}

	var b strings.Builder
	for i, link := range m.page.Items {
		b.WriteString(m.renderLink(link, i == m.selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (m appModel) renderLink(link model.Link, selected bool) string {
	marker := " "
	if link.IsDefault {
		marker = defaultStyle.Render("★")
	}

	title := link.DisplayTitle()
	if len(title) > 50 {
		title = title[:47] + "..."
	}

	rem := reminder.StatusAt(link.ReminderTimestamp, m.now())
	remText := ""
	switch rem.Status {
	case reminder.Upcoming:
		remText = upcomingStyle.Render("⏰ " + rem.DisplayTime)
	case reminder.Elapsed:
		remText = elapsedStyle.Render("⏰ " + rem.DisplayTime + " due")
	}

	line := fmt.Sprintf("%s %s %s %s %s",
		marker,
		titleStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d visits, last %s)", link.VisitCount,
			m.settings.FormatTimestamp(link.LastVisitedTimestamp))),
		remText,
		dimStyle.Render(link.URL),
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return " " + line
}

func (m appModel) renderStatusBar() string {
	var parts []string

	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	} else {
		parts = append(parts, fmt.Sprintf("%d/%d", m.selected+1, len(m.page.Items)))
	}
	parts = append(parts, "[o]pen [v]isit [r]emove [n/p]age [s]ort [/]search [?]help [q]uit")

	return statusBarStyle.Width(m.width).Render(strings.Join(parts, "  |  "))
}

func (m appModel) renderDeleteConfirmation() string {
	var linkTitle string
	if link, ok := m.current(); ok {
		linkTitle = link.DisplayTitle()
		if len(linkTitle) > 50 {
			linkTitle = linkTitle[:47] + "..."
		}
	}

	confirmText := fmt.Sprintf("Delete link: %s?\n\n[y]es / [n]o", linkTitle)
	return selectedStyle.Width(m.width-4).Padding(1, 2).Render(confirmText)
}
