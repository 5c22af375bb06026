package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Vermilion = lipgloss.Color("#E4572E")
	InkDark   = lipgloss.Color("#1C1B22")
	InkLight  = lipgloss.Color("#34323D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#A8A5B3")
	Paper     = lipgloss.Color("#F5F1E8")
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Paper).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Vermilion)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(Paper).
			Background(Vermilion).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// Card styles
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	CardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Vermilion).
				Padding(0, 1)

	CompletedMarkStyle = lipgloss.NewStyle().
				Foreground(Green)
)

// Badge shows the unread chapter count on a card
var BadgeStyle = lipgloss.NewStyle().
	Foreground(Paper).
	Background(Vermilion).
	Padding(0, 1)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Vermilion).
			Padding(1, 2).
			Background(InkDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(Paper).
			Bold(true).
			MarginBottom(1)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(Vermilion)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Vermilion).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Vermilion).
				Bold(true)
)

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		if width > len(runes) {
			return s
		}
		return string(runes[:width])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// FillWidth pads parts to width with the gap placed between left and right
func FillWidth(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
