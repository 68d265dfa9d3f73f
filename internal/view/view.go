// Package view derives what the main screen shows from an AppState and a
// selection. Everything here is pure: no mutation, no I/O.
package view

import (
	"slices"
	"sort"
	"strings"

	"github.com/nikbrunner/netmark/internal/ipv4"
	"github.com/nikbrunner/netmark/internal/model"
)

// RecentLimit is how many bookmarks the dashboard lists as recent.
const RecentLimit = 5

// Options tune the derivation.
type Options struct {
	// IncludeTrashInSearch makes search results contain trashed bookmarks.
	IncludeTrashInSearch bool
}

// SubnetGroup is one /24 bucket of IP bookmarks, or the Non-Standard bucket.
type SubnetGroup struct {
	Subnet    string
	Bookmarks []model.Bookmark
}

// Stats is the dashboard summary of an organization.
type Stats struct {
	Total        int // non-trash bookmarks
	IPs          int
	URLs         int
	Trash        int
	Root         int
	FolderCounts map[string]int // folder id -> non-trash bookmarks
	Recent       []model.Bookmark
}

// Result is the presentation model for one selection.
type Result struct {
	Selection model.Selection
	OrgID     string

	// Folder is set when the selection is a real folder that exists.
	Folder *model.Folder

	// Bookmarks is the filtered set in insertion order.
	Bookmarks []model.Bookmark

	// URLs and Subnets are the grouped form of Bookmarks. They stay empty
	// on the dashboard.
	URLs    []model.Bookmark
	Subnets []SubnetGroup

	// Stats is only set on the dashboard.
	Stats *Stats
}

// Len returns the number of bookmarks in the result.
func (r Result) Len() int {
	return len(r.Bookmarks)
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return len(r.Bookmarks) == 0
}

// Dashboard reports whether the result is the statistics view.
func (r Result) Dashboard() bool {
	return r.Selection.Kind() == model.SelectDashboard
}

// ForState derives the view for the state's own selection, switching to a
// search when term is non-empty.
func ForState(state *model.AppState, term string, opts Options) Result {
	sel := state.ActiveFolder
	if term != "" {
		sel = model.Search(term)
	}
	return Select(state, sel, opts)
}

// Select derives the view of the active organization under sel.
func Select(state *model.AppState, sel model.Selection, opts Options) Result {
	res := Result{Selection: sel, OrgID: state.ActiveOrgID}
	if state.ActiveOrganization() == nil {
		return res
	}
	inOrg := state.GetBookmarksInOrg(state.ActiveOrgID)

	switch sel.Kind() {
	case model.SelectDashboard:
		res.Bookmarks = filter(inOrg, func(b model.Bookmark) bool { return !b.InTrash() })
		res.Stats = dashboardStats(state, inOrg, res.Bookmarks)
		return res
	case model.SelectSearch:
		res.Bookmarks = filter(inOrg, matcher(sel.Term(), opts))
	case model.SelectRoot:
		res.Bookmarks = filter(inOrg, inFolder(model.RootFolderID))
	case model.SelectTrash:
		res.Bookmarks = filter(inOrg, inFolder(model.TrashFolderID))
	case model.SelectFolder:
		res.Folder = state.GetFolderByID(sel.FolderID())
		res.Bookmarks = filter(inOrg, inFolder(sel.FolderID()))
	}

	res.URLs, res.Subnets = group(res.Bookmarks)
	return res
}

// Matches reports whether b matches a search term. The name comparison
// ignores case, the value comparison does not.
func Matches(b model.Bookmark, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(b.Name), strings.ToLower(term)) ||
		strings.Contains(b.Value, term)
}

func matcher(term string, opts Options) func(model.Bookmark) bool {
	return func(b model.Bookmark) bool {
		if b.InTrash() && !opts.IncludeTrashInSearch {
			return false
		}
		return Matches(b, term)
	}
}

func inFolder(id string) func(model.Bookmark) bool {
	return func(b model.Bookmark) bool { return b.FolderID == id }
}

func filter(bookmarks []model.Bookmark, keep func(model.Bookmark) bool) []model.Bookmark {
	result := []model.Bookmark{}
	for _, b := range bookmarks {
		if keep(b) {
			result = append(result, b)
		}
	}
	return result
}

// group splits bookmarks into a name-sorted URL list and subnet groups.
func group(bookmarks []model.Bookmark) ([]model.Bookmark, []SubnetGroup) {
	urls := []model.Bookmark{}
	bySubnet := map[string][]model.Bookmark{}

	for _, b := range bookmarks {
		if b.Type == model.TypeIP {
			key := ipv4.Subnet(b.Value)
			bySubnet[key] = append(bySubnet[key], b)
			continue
		}
		urls = append(urls, b)
	}

	sort.SliceStable(urls, func(i, j int) bool {
		return urls[i].Name < urls[j].Name
	})

	keys := make([]string, 0, len(bySubnet))
	for k := range bySubnet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	subnets := make([]SubnetGroup, 0, len(keys))
	for _, k := range keys {
		members := bySubnet[k]
		sort.SliceStable(members, func(i, j int) bool {
			return ipv4.Compare(members[i].Value, members[j].Value) < 0
		})
		subnets = append(subnets, SubnetGroup{Subnet: k, Bookmarks: members})
	}

	return urls, subnets
}

func dashboardStats(state *model.AppState, inOrg, live []model.Bookmark) *Stats {
	stats := &Stats{
		Total:        len(live),
		FolderCounts: map[string]int{},
	}
	for _, f := range state.GetFoldersInOrg(state.ActiveOrgID) {
		stats.FolderCounts[f.ID] = 0
	}

	for _, b := range inOrg {
		if b.InTrash() {
			stats.Trash++
			continue
		}
		switch b.Type {
		case model.TypeIP:
			stats.IPs++
		case model.TypeURL:
			stats.URLs++
		}
		if b.FolderID == model.RootFolderID {
			stats.Root++
		} else {
			stats.FolderCounts[b.FolderID]++
		}
	}

	// Last added first. Insertion order is the only recency signal.
	recent := slices.Clone(live)
	slices.Reverse(recent)
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	stats.Recent = recent
	return stats
}
