package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/netmark/internal/importer"
	"github.com/nikbrunner/netmark/internal/ipv4"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/tui/layout"
	"github.com/nikbrunner/netmark/internal/view"
)

// Renderer turns view results into terminal text.
type Renderer struct {
	Styles    Styles
	Layout    layout.Config
	Retention time.Duration // trash countdown window
}

// NewRenderer creates a Renderer with default layout.
func NewRenderer(styles Styles, retention time.Duration) Renderer {
	if retention <= 0 {
		retention = model.TrashRetention
	}
	return Renderer{Styles: styles, Layout: layout.DefaultConfig(), Retention: retention}
}

// FormatCountdown renders the time left before a trashed bookmark is purged.
func FormatCountdown(remaining time.Duration) string {
	if remaining <= 0 {
		return "Deleting..."
	}
	m := int(remaining / time.Minute)
	s := int((remaining % time.Minute) / time.Second)
	return fmt.Sprintf("Expires in %d:%02d", m, s)
}

// Title returns the heading for a result.
func Title(res view.Result, retention time.Duration) string {
	switch res.Selection.Kind() {
	case model.SelectDashboard:
		return "Dashboard"
	case model.SelectSearch:
		return fmt.Sprintf("Search: %q", res.Selection.Term())
	case model.SelectTrash:
		return fmt.Sprintf("Trash (Auto-delete in %s)", shortDuration(retention))
	case model.SelectFolder:
		if res.Folder != nil {
			return res.Folder.Name
		}
	}
	return "Root Directory"
}

// RenderResult renders a full screen for res. now drives trash countdowns.
func (r Renderer) RenderResult(state *model.AppState, res view.Result, now time.Time) string {
	org := state.GetOrganizationByID(res.OrgID)
	if org == nil {
		return r.Styles.Empty.Render("No organization selected.") + "\n"
	}

	var b strings.Builder
	b.WriteString(r.Styles.OrgStyle(org.Color).Render(org.Name))
	b.WriteString(r.Styles.Subtitle.Render(" / "))
	b.WriteString(r.Styles.Title.Render(Title(res, r.Retention)))
	if !res.Dashboard() {
		b.WriteString(r.Styles.Subtitle.Render(fmt.Sprintf("  %d ITEMS", res.Len())))
	}
	b.WriteString("\n")

	if res.Dashboard() {
		b.WriteString(r.renderDashboard(state, org, res.Stats))
		return b.String()
	}

	trash := res.Selection.Kind() == model.SelectTrash
	if res.Empty() {
		b.WriteString("\n")
		if trash {
			b.WriteString(r.Styles.Empty.Render("Trash is empty. Items moved here are deleted automatically."))
		} else {
			b.WriteString(r.Styles.Empty.Render("It's empty here. Add a bookmark to get started."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for _, group := range res.Subnets {
		b.WriteString(r.Styles.Section.Render(subnetHeading(group.Subnet)))
		b.WriteString("\n")
		for _, bm := range group.Bookmarks {
			b.WriteString(r.row(bm, trash, now))
			b.WriteString("\n")
		}
	}

	if len(res.URLs) > 0 {
		b.WriteString(r.Styles.Section.Render("Web Services"))
		b.WriteString("\n")
		for _, bm := range res.URLs {
			b.WriteString(r.row(bm, trash, now))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (r Renderer) renderDashboard(state *model.AppState, org *model.Organization, stats *view.Stats) string {
	if stats == nil {
		stats = &view.Stats{}
	}

	var b strings.Builder
	b.WriteString(r.Styles.Subtitle.Render(fmt.Sprintf("Welcome back to %s. Here's what's happening.", org.Name)))
	b.WriteString("\n\n")

	cards := []string{
		r.stat("Total Bookmarks", stats.Total),
		r.stat("IP Addresses", stats.IPs),
		r.stat("Web Services", stats.URLs),
		r.stat("Trash Items", stats.Trash),
	}
	b.WriteString(strings.Join(cards, "   "))
	b.WriteString("\n")

	b.WriteString(r.Styles.Section.Render("Quick Access"))
	b.WriteString("\n")
	b.WriteString(r.Styles.Item.Render(fmt.Sprintf("%s %s",
		r.Layout.Pad("Root Directory", r.Layout.NameWidth),
		r.Styles.Subtitle.Render(fmt.Sprintf("%d items", stats.Root)))))
	b.WriteString("\n")
	for _, f := range state.GetFoldersInOrg(org.ID) {
		b.WriteString(r.Styles.Item.Render(fmt.Sprintf("%s %s  %s",
			r.Layout.Pad(f.Name, r.Layout.NameWidth),
			r.Styles.Subtitle.Render(fmt.Sprintf("%d items", stats.FolderCounts[f.ID])),
			r.Styles.Subtitle.Render(f.ID))))
		b.WriteString("\n")
	}

	b.WriteString(r.Styles.Section.Render("Recently Added"))
	b.WriteString("\n")
	if len(stats.Recent) == 0 {
		b.WriteString(r.Styles.Empty.Render(" No recent activity"))
		b.WriteString("\n")
	}
	for _, bm := range stats.Recent {
		b.WriteString(r.row(bm, false, time.Time{}))
		b.WriteString("\n")
	}

	return b.String()
}

func (r Renderer) stat(label string, n int) string {
	return r.Styles.Stat.Render(label+": ") + r.Styles.StatValue.Render(fmt.Sprint(n))
}

// row renders one bookmark line: badge, name, value, ports, id and, in the
// trash, the countdown.
func (r Renderer) row(bm model.Bookmark, trash bool, now time.Time) string {
	badge := r.Styles.BadgeURL.Render("URL")
	if bm.Type == model.TypeIP {
		badge = r.Styles.BadgeIP.Render("IP ")
	}

	parts := []string{
		badge,
		r.Styles.Name.Render(r.Layout.Pad(bm.Name, r.Layout.NameWidth)),
		r.Styles.Value.Render(r.Layout.Pad(bm.Value, r.Layout.ValueWidth)),
	}
	if len(bm.Ports) > 0 {
		parts = append(parts, r.Styles.Ports.Render(importer.FormatPorts(bm.Ports)))
	}
	parts = append(parts, r.Styles.Subtitle.Render(bm.ID))
	if trash {
		parts = append(parts, r.countdown(model.Remaining(bm, now, r.Retention)))
	}

	return r.Styles.Item.Render(strings.Join(parts, " "))
}

func (r Renderer) countdown(remaining time.Duration) string {
	text := FormatCountdown(remaining)
	if remaining <= 0 {
		return r.Styles.Deleting.Render(text)
	}
	return r.Styles.Countdown.Render(text)
}

func subnetHeading(subnet string) string {
	if subnet == ipv4.NonStandardSubnet {
		return subnet
	}
	return "Subnet " + subnet
}

func shortDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return d.String()
}
