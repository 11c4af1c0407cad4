package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Error = lipgloss.NewStyle().Foreground(Red).Bold(true)
)

// StatusColor maps a report or announcement status label to a colour.
// Labels are matched on their lowercased prefix.
func StatusColor(label string) lipgloss.Color {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "":
		return Subtext0
	case strings.HasPrefix(l, "resuel"), strings.HasPrefix(l, "finaliz"), strings.HasPrefix(l, "publicad"):
		return Green
	case strings.HasPrefix(l, "en curso"), strings.HasPrefix(l, "en proceso"), strings.HasPrefix(l, "asignad"):
		return Yellow
	case strings.HasPrefix(l, "rechaz"), strings.HasPrefix(l, "cancel"), strings.HasPrefix(l, "archivad"):
		return Red
	}
	return Sapphire
}

func Status(label string) string {
	if strings.TrimSpace(label) == "" {
		return Muted.Render("no status")
	}
	return lipgloss.NewStyle().Foreground(StatusColor(label)).Bold(true).Render(label)
}
