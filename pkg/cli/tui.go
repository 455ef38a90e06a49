package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	User    lipgloss.Color // User transcript color
	Model   lipgloss.Color // Model transcript color
	Dim     lipgloss.Color // Dimmed/help text color
	Error   lipgloss.Color // Error banner color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	User:    lipgloss.Color("#7aa2f7"),
	Model:   lipgloss.Color("#9ece6a"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#f7768e"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	User   lipgloss.Style
	Model  lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		User:   lipgloss.NewStyle().Bold(true).Foreground(t.User),
		Model:  lipgloss.NewStyle().Bold(true).Foreground(t.Model),
		Status: lipgloss.NewStyle().Foreground(t.Dim),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Error).
			Padding(0, 1),
	}
}

// TranscriptLine renders one transcript utterance with a colored speaker tag.
func (s Styles) TranscriptLine(sender, text string) string {
	tag := s.Model.Render(sender + ":")
	if sender == "user" {
		tag = s.User.Render("you:")
	}
	return fmt.Sprintf("%s %s", tag, text)
}

// StatusLine renders a dimmed status line.
func (s Styles) StatusLine(format string, args ...any) string {
	return s.Status.Render(fmt.Sprintf(format, args...))
}

// ErrorBanner renders a bordered error banner.
func (s Styles) ErrorBanner(text string) string {
	return s.Error.Render(text)
}

// Rule renders a dimmed horizontal rule of the given width.
func (s Styles) Rule(width int) string {
	if width <= 0 {
		width = 60
	}
	return s.Status.Render(strings.Repeat("─", width))
}
