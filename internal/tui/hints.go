package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "r")
	Desc string // Short description (e.g., "move", "restore")
}

// HintsFrom converts enabled key bindings into hints using their help text.
func HintsFrom(bindings []key.Binding) []Hint {
	hints := make([]Hint, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		hints = append(hints, Hint{Key: h.Key, Desc: h.Desc})
	}
	return hints
}

// RenderHints renders hints in horizontal format for the bottom bar: "k/up:move up r:restore"
func (s Styles) RenderHints(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = s.HintKey.Render(h.Key) + ":" + s.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, " ")
}
