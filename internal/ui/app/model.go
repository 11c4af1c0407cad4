package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	authdto "vecino/internal/modules/auth/dto"
	feeddto "vecino/internal/modules/feed/dto"
	apperrors "vecino/internal/platform/errors"
	"vecino/internal/ui/components"
	"vecino/internal/ui/theme"
	announcementsview "vecino/internal/ui/views/announcements"
	historyview "vecino/internal/ui/views/history"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type feedPort interface {
	History(ctx context.Context) ([]feeddto.PublicationOutput, error)
	Announcements(ctx context.Context) ([]feeddto.AnnouncementOutput, error)
}

type sessionPort interface {
	Whoami(ctx context.Context) (authdto.SessionOutput, error)
	Logout(ctx context.Context)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabHistory tabID = iota
	tabAnnouncements
	tabCount
)

var tabLabels = [tabCount]string{"My reports", "Announcements"}

// ─── async messages ──────────────────────────────────────────────────────────

type whoamiMsg struct {
	session authdto.SessionOutput
	err     error
}

type loggedOutMsg struct{}

const sessionExpired = "session expired, run `vecino login`"

var paletteCommands = []components.Command{
	{Name: "refresh", Help: "reload the active tab"},
	{Name: "history", Help: "show my reports"},
	{Name: "announcements", Help: "show municipal announcements"},
	{Name: "whoami", Help: "show the stored session"},
	{Name: "logout", Help: "forget the session"},
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Reload  key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Reload},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model of the feed browser. A feed answering
// Unauthorized clears the session and stops further loads.
type Model struct {
	session sessionPort

	historyView       historyview.Model
	announcementsView announcementsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	userID    int
	expired   bool
	status    string
	width     int
	height    int
}

func NewModel(feed feedPort, session sessionPort) Model {
	return Model{
		session:           session,
		historyView:       historyview.New(feed),
		announcementsView: announcementsview.New(feed),
		activeTab:         tabHistory,
		keys:              defaultKeys(),
		help:              help.New(),
		palette:           components.NewPalette(paletteCommands),
		status:            "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.historyView.Init(),
		m.announcementsView.Init(),
		m.whoamiCmd(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case whoamiMsg:
		if msg.err != nil {
			m.status = apperrors.UserMessage(msg.err)
		} else {
			m.userID = msg.session.UserID
		}
		return m, nil

	case loggedOutMsg:
		m.userID = 0
		return m, nil

	// feed results go to their own view whichever tab is active
	case historyview.LoadedMsg:
		cmds = append(cmds, m.noteFeedError("history", msg.Err))
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case announcementsview.LoadedMsg:
		cmds = append(cmds, m.noteFeedError("announcements", msg.Err))
		var cmd tea.Cmd
		m.announcementsView, cmd = m.announcementsView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewFiltering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			return m, m.reloadActive()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	case tabAnnouncements:
		m.announcementsView, tabCmd = m.announcementsView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabAnnouncements:
		content = m.announcementsView.View()
	default:
		content = m.historyView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "vecino  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	switch {
	case m.expired:
		left = theme.Error.Render(left)
	case m.userID > 0:
		left = theme.Hot.Render(fmt.Sprintf("● user %d", m.userID)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  r:reload  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "refresh":
		return m, m.reloadActive()
	case "history":
		m.activeTab = tabHistory
		return m, nil
	case "announcements":
		m.activeTab = tabAnnouncements
		return m, nil
	case "whoami":
		return m, m.whoamiCmd()
	case "logout":
		m.expired = false
		m.status = "logged out"
		return m, m.logoutCmd()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) noteFeedError(feed string, err error) tea.Cmd {
	switch {
	case err == nil:
		if !m.expired {
			m.status = feed + " updated"
		}
		return nil
	case apperrors.RequiresLogin(err):
		m.expired = true
		m.status = sessionExpired
		return m.logoutCmd()
	default:
		m.status = feed + ": " + apperrors.UserMessage(err)
		return nil
	}
}

func (m Model) reloadActive() tea.Cmd {
	if m.expired {
		return nil
	}
	if m.activeTab == tabAnnouncements {
		return m.announcementsView.Reload()
	}
	return m.historyView.Reload()
}

func (m Model) subViewFiltering() bool {
	if m.activeTab == tabAnnouncements {
		return m.announcementsView.Filtering()
	}
	return m.historyView.Filtering()
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.historyView, _ = m.historyView.Update(sz)
	m.announcementsView, _ = m.announcementsView.Update(sz)
}

func (m Model) whoamiCmd() tea.Cmd {
	return func() tea.Msg {
		if m.session == nil {
			return whoamiMsg{err: apperrors.ErrNoSession}
		}
		s, err := m.session.Whoami(context.Background())
		return whoamiMsg{session: s, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if m.session != nil {
			m.session.Logout(context.Background())
		}
		return loggedOutMsg{}
	}
}
