package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the terminal views.
type Styles struct {
	App          lipgloss.Style
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Section      lipgloss.Style // group headings: subnet, "Web Services", "Recently Added"
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	Name         lipgloss.Style
	Value        lipgloss.Style // IP address or URL
	Ports        lipgloss.Style
	BadgeIP      lipgloss.Style
	BadgeURL     lipgloss.Style
	Stat         lipgloss.Style
	StatValue    lipgloss.Style
	Countdown    lipgloss.Style
	Deleting     lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "r", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "restore", "move")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal
	warn := lipgloss.AdaptiveColor{Light: "#9A4A4A", Dark: "#AF5F5F"}    // trash countdown

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Subtitle: lipgloss.NewStyle().
			Foreground(subtle),

		Section: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			MarginTop(1),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		Name: lipgloss.NewStyle().
			Foreground(primary),

		Value: lipgloss.NewStyle().
			Foreground(accent),

		Ports: lipgloss.NewStyle().
			Foreground(subtle),

		BadgeIP: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),

		BadgeURL: lipgloss.NewStyle().
			Foreground(subtle).
			Bold(true),

		Stat: lipgloss.NewStyle().
			Foreground(subtle),

		StatValue: lipgloss.NewStyle().
			Bold(true).
			Foreground(primary),

		Countdown: lipgloss.NewStyle().
			Foreground(warn),

		Deleting: lipgloss.NewStyle().
			Foreground(warn).
			Italic(true),

		Empty: lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}

// PlainStyles returns styles that render text unchanged. Used for piped
// output and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		App: plain, Title: plain, Subtitle: plain, Section: plain,
		Item: plain, ItemSelected: plain, Name: plain, Value: plain,
		Ports: plain, BadgeIP: plain, BadgeURL: plain, Stat: plain,
		StatValue: plain, Countdown: plain, Deleting: plain, Empty: plain,
		HintKey: plain, HintDesc: plain,
	}
}

// orgColors maps organization color names to terminal colors.
var orgColors = map[string]lipgloss.Color{
	"blue":    lipgloss.Color("#5F87AF"),
	"red":     lipgloss.Color("#AF5F5F"),
	"green":   lipgloss.Color("#5F875F"),
	"emerald": lipgloss.Color("#5FAF87"),
	"purple":  lipgloss.Color("#875FAF"),
	"orange":  lipgloss.Color("#D7875F"),
	"yellow":  lipgloss.Color("#AFAF5F"),
}

// OrgStyle returns a style colored after an organization's color name.
// Unknown names fall back to the title style.
func (s Styles) OrgStyle(color string) lipgloss.Style {
	if c, ok := orgColors[color]; ok {
		return s.Title.Foreground(c)
	}
	return s.Title
}
