package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Styles groups the styles used by command output. The zero Style renders
// text unchanged, which is what New returns for every field when color is
// disabled.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Body      lipgloss.Style
	Hint      lipgloss.Style
	Front     lipgloss.Style
	Answer    lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Again     lipgloss.Style
	Good      lipgloss.Style
	Easy      lipgloss.Style
	Filled    lipgloss.Style
	Empty     lipgloss.Style
	Card      lipgloss.Style
}

// New returns the color styles, or plain ones when noColor is set.
func New(noColor bool) *Styles {
	if noColor {
		return &Styles{}
	}
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary),

		Subtitle: lipgloss.NewStyle().
			Foreground(TextDim),

		Body: lipgloss.NewStyle().
			Foreground(Text),

		Hint: lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true),

		Front: lipgloss.NewStyle().
			Bold(true).
			Foreground(Text),

		Answer: lipgloss.NewStyle().
			Foreground(Secondary),

		Correct: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Incorrect: lipgloss.NewStyle().
			Foreground(Error).
			Bold(true),

		Again: lipgloss.NewStyle().Foreground(Error),
		Good:  lipgloss.NewStyle().Foreground(Secondary),
		Easy:  lipgloss.NewStyle().Foreground(Success),

		Filled: lipgloss.NewStyle().
			Foreground(Secondary),

		Empty: lipgloss.NewStyle().
			Foreground(Border),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 2),
	}
}
