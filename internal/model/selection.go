package model

import (
	"encoding/json"
	"fmt"
)

// SelectionKind enumerates what the main view is showing.
type SelectionKind int

const (
	SelectDashboard SelectionKind = iota
	SelectRoot
	SelectTrash
	SelectSearch
	SelectFolder
)

func (k SelectionKind) String() string {
	switch k {
	case SelectDashboard:
		return "dashboard"
	case SelectRoot:
		return "root"
	case SelectTrash:
		return "trash"
	case SelectSearch:
		return "search"
	case SelectFolder:
		return "folder"
	default:
		return fmt.Sprintf("SelectionKind(%d)", int(k))
	}
}

// Selection is the active view: one of the pseudo views or a real folder.
// The zero value is the dashboard.
type Selection struct {
	kind  SelectionKind
	value string // folder id or search term
}

func Dashboard() Selection { return Selection{kind: SelectDashboard} }
func Root() Selection { return Selection{kind: SelectRoot} }
func Trash() Selection { return Selection{kind: SelectTrash} }
func Search(term string) Selection { return Selection{kind: SelectSearch, value: term} }
func InFolder(id string) Selection { return Selection{kind: SelectFolder, value: id} }

// Kind returns the selection variant.
func (s Selection) Kind() SelectionKind { return s.kind }

// FolderID returns the real folder id, or "" for pseudo views.
func (s Selection) FolderID() string {
	if s.kind != SelectFolder {
		return ""
	}
	return s.value
}

// Term returns the search term, or "" when not searching.
func (s Selection) Term() string {
	if s.kind != SelectSearch {
		return ""
	}
	return s.value
}

// Equal reports whether two selections are the same view.
func (s Selection) Equal(o Selection) bool { return s == o }

// String returns the persisted form: a sentinel name or the folder id.
func (s Selection) String() string {
	if s.kind == SelectFolder {
		return s.value
	}
	return s.kind.String()
}

// ParseSelection converts a persisted activeFolderId back into a Selection.
// Search terms are not persisted, so "search" comes back as the dashboard.
func ParseSelection(raw string) Selection {
	switch raw {
	case "", "dashboard", "search":
		return Dashboard()
	case RootFolderID:
		return Root()
	case TrashFolderID:
		return Trash()
	default:
		return InFolder(raw)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("activeFolderId: %w", err)
	}
	if raw == nil {
		*s = Dashboard()
		return nil
	}
	*s = ParseSelection(*raw)
	return nil
}
