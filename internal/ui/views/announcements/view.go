package announcements

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	feeddto "vecino/internal/modules/feed/dto"
	"vecino/internal/ui/theme"
)

type AnnouncementsPort interface {
	Announcements(ctx context.Context) ([]feeddto.AnnouncementOutput, error)
}

type LoadedMsg struct {
	Items []feeddto.AnnouncementOutput
	Err   error
}

type announcementItem struct {
	a feeddto.AnnouncementOutput
}

func (i announcementItem) Title() string { return i.a.Title }
func (i announcementItem) Description() string {
	date := i.a.RawDate
	if !i.a.Date.IsZero() {
		date = i.a.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("%s  %s", date, i.a.Subtitle)
}
func (i announcementItem) FilterValue() string { return i.a.Title + " " + i.a.Category }

type Model struct {
	port    AnnouncementsPort
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port AnnouncementsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Peach).BorderForeground(theme.Peach)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Peach)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Announcements"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Peach)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		items, err := m.port.Announcements(context.Background())
		return LoadedMsg{Items: items, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listW := m.width / 2
		m.list.SetSize(listW, m.height)
		m.preview.Width = m.width - listW - 4
		m.preview.Height = m.height - 4

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Announcements (error)"
			m.preview.SetContent(theme.Error.Render(msg.Err.Error()))
			return m, nil
		}
		m.list.Title = "Announcements"
		items := make([]list.Item, len(msg.Items))
		for i, a := range msg.Items {
			items[i] = announcementItem{a: a}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.preview.SetContent(m.renderDetail())
		}
		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading announcements…")
	}
	listW := m.width / 2
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Pane.
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(announcementItem)
	if !ok {
		return theme.Muted.Render("No announcements published")
	}
	a := item.a
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(a.Title) + "\n")
	if a.Subtitle != "" {
		sb.WriteString(theme.Muted.Render(a.Subtitle) + "\n")
	}
	sb.WriteString("\n" + theme.Status(a.Status))
	if a.Category != "" {
		sb.WriteString("  " + theme.Hot.Render(a.Category))
	}
	sb.WriteString("\n")
	if a.Author != "" {
		sb.WriteString(theme.Muted.Render("by "+a.Author) + "\n")
	}
	if a.Description != "" {
		sb.WriteString("\n" + a.Description + "\n")
	}
	if len(a.Images) > 0 {
		sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("images (%d):", len(a.Images))) + "\n")
		for _, img := range a.Images {
			sb.WriteString("  " + img.URL + "\n")
		}
	}
	return sb.String()
}
