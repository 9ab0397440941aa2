package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tahp/LinkManager/internal/links"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/settings"
)

// sortCycle is the order the s key steps through.
var sortCycle = append([]query.SortKey{query.SortNone}, query.SortKeys...)

type appModel struct {
	links    *links.Repository
	settings *settings.Store
	openURL  func(string) error
	now      func() time.Time

	all           []model.Link
	page          query.Page
	pageNum       int
	selected      int
	sortIdx       int
	order         query.Order
	searchQuery   string
	searchMode    bool
	confirmDelete bool
	deleteLinkID  string
	width         int
	height        int
	err           error
	statusMsg     string
}

// loadLinksMsg carries a fresh copy of the collection, plus the outcome
// of the action that triggered the reload, if any.
type loadLinksMsg struct {
	links  []model.Link
	err    error
	status string
}

type statusMsg struct {
	message string
}

func initialModel(repo *links.Repository, store *settings.Store, openURL func(string) error) appModel {
	sortIdx := 0
	for i, k := range sortCycle {
		if k == query.DefaultSort {
			sortIdx = i
		}
	}
	return appModel{
		links:    repo,
		settings: store,
		openURL:  openURL,
		now:      time.Now,
		pageNum:  1,
		sortIdx:  sortIdx,
		order:    query.Asc,
		width:    80,
		height:   24,
	}
}

func (m appModel) Init() tea.Cmd {
	return loadLinks(m.links)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle delete confirmation first
	if m.confirmDelete {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.handleDeleteConfirmation(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchInput(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			if m.selected < len(m.page.Items)-1 {
				m.selected++
			}

		case "k", "up":
			if m.selected > 0 {
				m.selected--
			}

		case "n", "right":
			if m.page.HasNext() {
				m.pageNum++
				m.selected = 0
				m.refresh()
			}

		case "p", "left":
			if m.page.HasPrev() {
				m.pageNum--
				m.selected = 0
				m.refresh()
			}

		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(sortCycle)
			m.pageNum, m.selected = 1, 0
			m.refresh()

		case "S":
			if m.order == query.Asc {
				m.order = query.Desc
			} else {
				m.order = query.Asc
			}
			m.pageNum, m.selected = 1, 0
			m.refresh()

		case "o", "enter":
			return m, m.visit(true)

		case "v":
			return m, m.visit(false)

		case "r":
			if link, ok := m.current(); ok {
				m.confirmDelete = true
				m.deleteLinkID = link.ID
			}

		case "/":
			m.searchMode = true
			m.searchQuery = ""

		case "esc":
			m.searchQuery = ""
			m.pageNum, m.selected = 1, 0
			m.refresh()

		case "?":
			return m, setStatus("q=quit j/k=nav n/p=page s=sort S=order o=open v=visit r=remove /=search")

		case "ctrl+l":
			return m, loadLinks(m.links)
		}
		return m, nil

	case loadLinksMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.all = msg.links
		m.refresh()
		if msg.status != "" {
			return m.Update(statusMsg{msg.status})
		}
		return m, nil

	case statusMsg:
		m.statusMsg = msg.message
		if msg.message == "" {
			return m, nil
		}
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return statusMsg{""}
		})
	}

	return m, nil
}

func (m appModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.searchMode {
		b.WriteString(m.renderSearchBar())
		b.WriteString("\n")
	}
	b.WriteString(m.renderList())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m appModel) sortKey() query.SortKey {
	return sortCycle[m.sortIdx]
}

// refresh recomputes the visible page from the loaded links.
func (m *appModel) refresh() {
	page, err := query.Select(m.all, query.Request{
		Search: m.searchQuery,
		Sort:   string(m.sortKey()),
		Order:  string(m.order),
		Page:   m.pageNum,
	}, m.settings.PageSize())
	if err != nil {
		m.err = err
		return
	}
	if len(page.Items) == 0 && page.TotalPages > 0 {
		m.pageNum = page.TotalPages
		m.refresh()
		return
	}
	m.page = page

	if m.selected >= len(m.page.Items) {
		m.selected = len(m.page.Items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m appModel) current() (model.Link, bool) {
	if m.selected < 0 || m.selected >= len(m.page.Items) {
		return model.Link{}, false
	}
	return m.page.Items[m.selected], true
}

func (m appModel) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchMode = false
		m.searchQuery = ""
	case "enter":
		m.searchMode = false
	case "backspace":
		if len(m.searchQuery) > 0 {
			r := []rune(m.searchQuery)
			m.searchQuery = string(r[:len(r)-1])
		}
	default:
		if len(msg.Runes) == 0 {
			return m, nil
		}
		m.searchQuery += string(msg.Runes)
	}
	m.pageNum, m.selected = 1, 0
	m.refresh()
	return m, nil
}

func (m appModel) handleDeleteConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		linkID := m.deleteLinkID
		m.deleteLinkID = ""
		repo := m.links
		return m, func() tea.Msg {
			status := "Deleted link"
			if err := repo.Delete(context.Background(), linkID); err != nil {
				status = fmt.Sprintf("Error: %v", err)
			}
			return reload(repo, status)
		}

	case "n", "N", "esc":
		m.confirmDelete = false
		m.deleteLinkID = ""
	}
	return m, nil
}

// visit records a visit to the selected link and optionally opens it.
func (m appModel) visit(open bool) tea.Cmd {
	link, ok := m.current()
	if !ok {
		return nil
	}
	repo, openURL := m.links, m.openURL
	return func() tea.Msg {
		visited, err := repo.RecordVisit(context.Background(), link.ID)
		switch {
		case err != nil:
			return reload(repo, fmt.Sprintf("Error: %v", err))
		case !open:
			return reload(repo, fmt.Sprintf("Visit recorded (%d)", visited.VisitCount))
		}
		if err := openURL(visited.URL); err != nil {
			return reload(repo, fmt.Sprintf("Visit recorded, open failed: %v", err))
		}
		return reload(repo, fmt.Sprintf("Opened: %s", visited.URL))
	}
}

func loadLinks(repo *links.Repository) tea.Cmd {
	return func() tea.Msg {
		return reload(repo, "")
	}
}

func reload(repo *links.Repository, status string) loadLinksMsg {
	all, err := repo.ListAll(context.Background())
	return loadLinksMsg{links: all, err: err, status: status}
}

func setStatus(msg string) tea.Cmd {
	return func() tea.Msg { return statusMsg{msg} }
}

// Run starts the TUI application.
func Run(repo *links.Repository, store *settings.Store, openURL func(string) error) error {
	p := tea.NewProgram(initialModel(repo, store, openURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
