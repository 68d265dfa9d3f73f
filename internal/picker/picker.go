package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/search"
	"github.com/nikbrunner/netmark/internal/tui"
	"github.com/nikbrunner/netmark/internal/tui/layout"
)

// Action is what the user asked for when leaving the picker.
type Action int

const (
	ActionNone   Action = iota // cancelled
	ActionSelect               // enter: print the bookmark
	ActionCopy                 // y: copy the value
)

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results []search.SearchResult
	query   string
	cursor  int
	action  Action
	keys    tui.KeyMap
	styles  tui.Styles
	layout  layout.Config
	width   int
	height  int
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string, styles tui.Styles) Picker {
	return Picker{
		results: results,
		query:   query,
		keys:    tui.DefaultKeyMap(),
		styles:  styles,
		layout:  layout.DefaultConfig(),
		width:   80,
		height:  24,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			p.action = ActionNone
			return p, tea.Quit

		case key.Matches(msg, p.keys.Select):
			if len(p.results) > 0 {
				p.action = ActionSelect
			}
			return p, tea.Quit

		case key.Matches(msg, p.keys.Copy):
			if len(p.results) > 0 {
				p.action = ActionCopy
				return p, tea.Quit
			}

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}

		case key.Matches(msg, p.keys.Top):
			p.cursor = 0

		case key.Matches(msg, p.keys.Bottom):
			p.cursor = max(len(p.results)-1, 0)
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder
	cfg := p.layout.ForHeight(p.height, 6)

	// Header
	b.WriteString(p.styles.Title.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	start, end := layout.Window(cfg.MaxVisible, p.cursor, len(p.results))
	for i := start; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		if i == p.cursor {
			cursor = "> "
		}

		line := cursor + p.highlight(result)
		if i == p.cursor {
			b.WriteString(p.styles.ItemSelected.Render(line))
		} else {
			b.WriteString(p.styles.Item.Render(line))
		}
		b.WriteString("\n")
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(p.styles.RenderHints(tui.HintsFrom(p.keys.PickerHints())))

	return b.String()
}

// highlight renders the matched text with matched characters emphasized.
func (p Picker) highlight(r search.SearchResult) string {
	text := r.Text
	if text == "" {
		text = search.Text(r.Bookmark)
	}
	text = p.layout.Truncate(text, p.width-4)

	matched := make(map[int]bool, len(r.MatchedIndexes))
	for _, i := range r.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, c := range text {
		if matched[i] {
			b.WriteString(p.styles.Value.Render(string(c)))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Action returns what the user chose.
func (p Picker) Action() Action {
	return p.action
}

// SelectedBookmark returns the selected bookmark, or false if cancelled.
func (p Picker) SelectedBookmark() (model.Bookmark, bool) {
	if p.action == ActionNone || p.cursor >= len(p.results) {
		return model.Bookmark{}, false
	}
	return p.results[p.cursor].Bookmark, true
}

// Cancelled returns true if the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.action == ActionNone
}
