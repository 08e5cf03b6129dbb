package posts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tweetsweep/internal/application"
	"tweetsweep/internal/domain"
)

const maxBodyRunes = 200

type RenderOptions struct {
	Handle string

	// Selected reports whether a post is marked for the next deletion batch.
	// A nil func renders no selection markers.
	Selected func(domain.PostID) bool
}

func renderView(records []domain.Post, counts application.Counts, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(pageTitle(opts.Handle)),
		s.header.Render(fmt.Sprintf("found: %d  selected: %d  deleted: %d", counts.Found, counts.Selected, counts.Deleted)),
	}

	if len(records) == 0 {
		lines = append(lines, s.empty.Render("No posts loaded. Run `tws list` to fetch a page."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, record := range records {
		lines = append(lines, s.section.Render(renderPost(record, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func pageTitle(handle string) string {
	if handle == "" {
		return "Your Posts"
	}

	return "Posts by @" + handle
}

func renderPost(record domain.Post, opts RenderOptions, s styles) string {
	header := s.id.Render(string(record.ID))
	if date := formatDate(record); date != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", s.date.Render(date))
	}
	if opts.Selected != nil && opts.Selected(record.ID) {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", s.selected.Render("[selected]"))
	}

	parts := []string{
		header,
		s.body.Render(clampBody(record.BodyText)),
		s.link.Render(record.LiveURL()),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func formatDate(record domain.Post) string {
	if record.CreatedAtMillis == 0 {
		return record.CreatedAt
	}

	return time.UnixMilli(record.CreatedAtMillis).UTC().Format("2006-01-02 15:04")
}

func clampBody(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	runes := []rune(body)
	if len(runes) <= maxBodyRunes {
		return body
	}

	return string(runes[:maxBodyRunes]) + "…"
}
