package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/teamboard/internal/models"
)

// Theme is a color scheme
type Theme struct {
	Name string

	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Night is the default theme
var Night = Theme{
	Name: "Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

var Current = Night

// MaxWidth caps list views; the task board uses the full terminal width
const MaxWidth = 80

// ContentWidth returns min(terminalWidth, MaxWidth)
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally on terminals wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles holds the pre-built styles for the current theme
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style
	Subtitle   lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnHeader  lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style

	Panel lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	ErrorText lipgloss.Style
	Author    lipgloss.Style
}

func NewStyles() *Styles {
	t := Current

	bordered := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		TitleMuted: lipgloss.NewStyle().Foreground(t.ForegroundDim),
		Subtitle:   lipgloss.NewStyle().Foreground(t.Secondary),

		ListItem: lipgloss.NewStyle().Foreground(t.Foreground).Padding(0, 2),
		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		Column:        bordered.Padding(0, 1),
		ColumnFocused: bordered.BorderForeground(t.BorderFocus).Padding(0, 1),
		ColumnHeader:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		Card:          lipgloss.NewStyle().Foreground(t.Foreground),
		CardSelected:  lipgloss.NewStyle().Foreground(t.Primary).Background(t.Selection).Bold(true),

		Panel: bordered.Padding(0, 1),

		Button: bordered.Foreground(t.Foreground).Padding(0, 2),
		ButtonFocused: bordered.
			Foreground(t.Primary).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),
		ButtonPrimary: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		Input:        bordered.Foreground(t.Foreground).Padding(0, 1),
		InputFocused: bordered.Foreground(t.Foreground).BorderForeground(t.BorderFocus).Padding(0, 1),

		Help:    lipgloss.NewStyle().Foreground(t.ForegroundDim).Padding(1, 2),
		HelpKey: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		ErrorText: lipgloss.NewStyle().Foreground(t.Error),
		Author:    lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
	}
}

// Priority returns the badge style for a task priority
func Priority(p models.TaskPriority) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch p {
	case models.PriorityHigh:
		return s.Foreground(Current.Error)
	case models.PriorityLow:
		return s.Foreground(Current.ForegroundDim)
	}
	return s.Foreground(Current.Warning)
}

// Status returns the accent style for a board column
func Status(st models.TaskStatus) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch st {
	case models.StatusDone:
		return s.Foreground(Current.Success)
	case models.StatusInProgress:
		return s.Foreground(Current.Warning)
	}
	return s.Foreground(Current.Accent)
}
