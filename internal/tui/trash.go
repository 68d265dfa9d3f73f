package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/store"
	"github.com/nikbrunner/netmark/internal/tui/layout"
)

// RefreshInterval is how often the trash countdown is redrawn.
const RefreshInterval = time.Second

// TrashStore is the part of the data store the trash view needs.
type TrashStore interface {
	Snapshot() *model.AppState
	TrashItems() []store.TrashItem
	Now() time.Time
	Retention() time.Duration
	Restore(ctx context.Context, id string) error
	DeletePermanently(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	Subscribe(fn func()) (unsubscribe func())
}

type tickMsg time.Time

// changedMsg reports a committed store change, e.g. a sweep purging items.
type changedMsg struct{}

// TrashModel is a bubbletea model listing the trash with live countdowns.
// It ticks once per second while the trash is the active selection and
// stops ticking as soon as it is not.
type TrashModel struct {
	ctx      context.Context
	store    TrashStore
	keys     KeyMap
	renderer Renderer

	items   []store.TrashItem
	now     time.Time
	cursor  int
	ticking bool
	status  string
	err     error

	changes     chan struct{}
	unsubscribe func()

	width  int
	height int
}

// NewTrashModel creates a TrashModel over s. It redraws whenever the
// store commits a change; Close ends that subscription.
func NewTrashModel(ctx context.Context, s TrashStore, styles Styles) TrashModel {
	changes := make(chan struct{}, 1)
	m := TrashModel{
		ctx:      ctx,
		store:    s,
		keys:     DefaultKeyMap(),
		renderer: NewRenderer(styles, s.Retention()),
		width:    80,
		height:   24,
		changes:  changes,
	}
	m.unsubscribe = s.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	m.refresh()
	return m
}

// Close stops listening for store changes.
func (m TrashModel) Close() {
	m.unsubscribe()
}

func (m *TrashModel) refresh() {
	m.items = m.store.TrashItems()
	m.now = m.store.Now()
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

// active reports whether the trash is the selected view.
func (m TrashModel) active() bool {
	return m.store.Snapshot().ActiveFolder.Kind() == model.SelectTrash
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m TrashModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return changedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Init implements tea.Model.
func (m TrashModel) Init() tea.Cmd {
	if !m.active() {
		return nil
	}
	return tea.Batch(tick(), m.waitForChange())
}

// Ticking reports whether the countdown refresh is running.
func (m TrashModel) Ticking() bool {
	return m.ticking
}

// Items returns the listed trash entries.
func (m TrashModel) Items() []store.TrashItem {
	return m.items
}

// Cursor returns the selected row.
func (m TrashModel) Cursor() int {
	return m.cursor
}

// Err returns the last restore or purge error.
func (m TrashModel) Err() error {
	return m.err
}

// Update implements tea.Model.
func (m TrashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// Other processes may have trashed or restored items.
		if err := m.store.Refresh(m.ctx); err != nil {
			m.err = err
			m.status = err.Error()
		}
		if !m.active() {
			m.ticking = false
			return m, nil
		}
		m.ticking = true
		m.refresh()
		return m, tick()

	case changedMsg:
		if !m.active() {
			return m, nil
		}
		m.refresh()
		return m, m.waitForChange()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Top):
			m.cursor = 0

		case key.Matches(msg, m.keys.Bottom):
			m.cursor = max(len(m.items)-1, 0)

		case key.Matches(msg, m.keys.Restore):
			if b, ok := m.selected(); ok {
				m.apply("Restored", b, m.store.Restore(m.ctx, b.ID))
			}

		case key.Matches(msg, m.keys.Purge):
			if b, ok := m.selected(); ok {
				m.apply("Deleted", b, m.store.DeletePermanently(m.ctx, b.ID))
			}
		}
	}

	return m, nil
}

func (m TrashModel) selected() (model.Bookmark, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return model.Bookmark{}, false
	}
	return m.items[m.cursor].Bookmark, true
}

func (m *TrashModel) apply(verb string, b model.Bookmark, err error) {
	m.err = err
	if err != nil {
		m.status = err.Error()
	} else {
		m.status = fmt.Sprintf("%s %q", verb, b.Name)
	}
	m.refresh()
}

// View implements tea.Model.
func (m TrashModel) View() string {
	s := m.renderer.Styles
	cfg := m.renderer.Layout.ForHeight(m.height, 6)

	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Trash (Auto-delete in %s)", shortDuration(m.renderer.Retention))))
	b.WriteString(s.Subtitle.Render(fmt.Sprintf("  %d ITEMS", len(m.items))))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(s.Empty.Render("Trash is empty. Items moved here are deleted automatically."))
		b.WriteString("\n")
	}

	start, end := layout.Window(cfg.MaxVisible, m.cursor, len(m.items))
	for i := start; i < end; i++ {
		item := m.items[i]
		line := fmt.Sprintf("%s %s %s",
			cfg.Pad(item.Bookmark.Name, cfg.NameWidth),
			cfg.Pad(item.Bookmark.Value, cfg.ValueWidth),
			FormatCountdown(item.ExpiresAt.Sub(m.now)))
		if i == m.cursor {
			b.WriteString(s.ItemSelected.Render(line))
		} else {
			b.WriteString(s.Item.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(s.Subtitle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(s.RenderHints(HintsFrom(m.keys.TrashHints())))

	return s.App.Render(b.String())
}
