package history

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

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context) ([]feeddto.PublicationOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Items []feeddto.PublicationOutput
	Err   error
}

// ─── list item ───────────────────────────────────────────────────────────────

type publicationItem struct {
	p feeddto.PublicationOutput
}

func (i publicationItem) Title() string { return i.p.Title }
func (i publicationItem) Description() string {
	return fmt.Sprintf("%s  %s  %s", i.p.Code, i.p.Status, dateLabel(i.p.RawDate, i.p.PublishedAt.IsZero(), i.p.PublishedAt.Format("2006-01-02")))
}
func (i publicationItem) FilterValue() string { return i.p.Title + " " + i.p.Category }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	list    list.Model
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "My reports"
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
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the history again.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return LoadedMsg{}
		}
		items, err := m.port.History(context.Background())
		return LoadedMsg{Items: items, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "My reports (error)"
			m.preview.SetContent(theme.Error.Render(msg.Err.Error()))
			return m, nil
		}
		m.list.Title = "My reports"
		items := make([]list.Item, len(msg.Items))
		for i, p := range msg.Items {
			items[i] = publicationItem{p: p}
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
			m.spinner.View()+" Loading reports…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Len is the number of loaded reports.
func (m Model) Len() int {
	return len(m.list.Items())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(publicationItem)
	if !ok {
		return theme.Muted.Render("No reports submitted yet")
	}
	p := item.p
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(p.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("code:     ") + p.Code + "\n")
	sb.WriteString(theme.Muted.Render("status:   ") + theme.Status(p.Status) + "\n")
	sb.WriteString(theme.Muted.Render("category: ") + p.Category + "\n")
	sb.WriteString(theme.Muted.Render("date:     ") + dateLabel(p.RawDate, p.PublishedAt.IsZero(), p.PublishedAt.Format("2006-01-02 15:04")) + "\n")
	if p.Location != "" {
		sb.WriteString(theme.Muted.Render("location: ") + p.Location + "\n")
	}
	if p.Description != "" {
		sb.WriteString("\n" + p.Description + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("r: reload  /: filter"))
	return sb.String()
}

func dateLabel(raw string, unparsed bool, formatted string) string {
	if unparsed {
		if raw == "" {
			return "no date"
		}
		return raw
	}
	return formatted
}
