package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Config holds the column widths and limits used by list renderers.
type Config struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string

	// NameWidth and ValueWidth bound the first two columns of a bookmark row.
	NameWidth  int
	ValueWidth int

	// MaxVisible is the number of rows shown by scrollable lists.
	MaxVisible int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		Ellipsis:   "...",
		NameWidth:  28,
		ValueWidth: 32,
		MaxVisible: 12,
	}
}

// ForHeight shrinks MaxVisible to fit a terminal of the given height,
// keeping room for header and hint lines.
func (c Config) ForHeight(height, reserved int) Config {
	rows := height - reserved
	if rows < 1 {
		rows = 1
	}
	if rows < c.MaxVisible {
		c.MaxVisible = rows
	}
	return c
}

// Truncate shortens text to maxWidth runes, ending in the ellipsis.
// Returns "" when maxWidth is not positive.
func (c Config) Truncate(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return text
	}

	ellipsis := []rune(c.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth])
	}

	runes := []rune(text)
	return string(runes[:maxWidth-len(ellipsis)]) + c.Ellipsis
}

// Pad truncates text and pads it with spaces to exactly width cells.
func (c Config) Pad(text string, width int) string {
	text = c.Truncate(text, width)
	if gap := width - lipgloss.Width(text); gap > 0 {
		text += strings.Repeat(" ", gap)
	}
	return text
}

// Window computes the start and end indices for a scrollable list so the
// selected row stays visible. items[start:end] should be displayed.
func Window(maxVisible, selected, total int) (start, end int) {
	if total <= maxVisible {
		return 0, total
	}

	if selected >= maxVisible {
		start = selected - maxVisible + 1
	}

	end = start + maxVisible
	if end > total {
		end = total
	}

	return start, end
}
