package posts

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	id       lipgloss.Style
	date     lipgloss.Style
	body     lipgloss.Style
	link     lipgloss.Style
	selected lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		id:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		date:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		body:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		link:     lipgloss.NewStyle().Faint(true).Underline(true),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
	}
}
