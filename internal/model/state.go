package model

// AppState holds every organization, folder and bookmark plus the
// current selection.
type AppState struct {
	ActiveOrgID   string         `json:"activeOrgId"`
	ActiveFolder  Selection      `json:"activeFolderId"`
	Organizations []Organization `json:"organizations"`
	Folders       []Folder       `json:"folders"`
	Bookmarks     []Bookmark     `json:"bookmarks"`
}

// NewAppState creates an empty AppState with initialized slices.
func NewAppState() *AppState {
	return &AppState{
		Organizations: []Organization{},
		Folders:       []Folder{},
		Bookmarks:     []Bookmark{},
	}
}

// Clone returns a deep copy of the state.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		ActiveOrgID:   s.ActiveOrgID,
		ActiveFolder:  s.ActiveFolder,
		Organizations: make([]Organization, len(s.Organizations)),
		Folders:       make([]Folder, len(s.Folders)),
		Bookmarks:     make([]Bookmark, len(s.Bookmarks)),
	}
	copy(out.Organizations, s.Organizations)
	copy(out.Folders, s.Folders)
	for i, b := range s.Bookmarks {
		out.Bookmarks[i] = b.Clone()
	}
	return out
}

// GetOrganizationByID finds an organization by ID, returns nil if not found.
func (s *AppState) GetOrganizationByID(id string) *Organization {
	for i := range s.Organizations {
		if s.Organizations[i].ID == id {
			return &s.Organizations[i]
		}
	}
	return nil
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *AppState) GetFolderByID(id string) *Folder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetBookmarkByID finds a bookmark by ID, returns nil if not found.
func (s *AppState) GetBookmarkByID(id string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].ID == id {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// ActiveOrganization returns the active organization, or nil when none is
// set or the id is stale.
func (s *AppState) ActiveOrganization() *Organization {
	if s.ActiveOrgID == "" {
		return nil
	}
	return s.GetOrganizationByID(s.ActiveOrgID)
}

// GetFoldersInOrg returns the folders belonging to an organization.
func (s *AppState) GetFoldersInOrg(orgID string) []Folder {
	var result []Folder
	for _, f := range s.Folders {
		if f.OrgID == orgID {
			result = append(result, f)
		}
	}
	return result
}

// GetBookmarksInOrg returns every bookmark of an organization, trash included,
// in insertion order.
func (s *AppState) GetBookmarksInOrg(orgID string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.OrgID == orgID {
			result = append(result, b)
		}
	}
	return result
}

// GetBookmarksInFolder returns the bookmarks of an organization stored under
// folderID, which may be a real folder or one of the reserved ids.
func (s *AppState) GetBookmarksInFolder(orgID, folderID string) []Bookmark {
	var result []Bookmark
	for _, b := range s.Bookmarks {
		if b.OrgID == orgID && b.FolderID == folderID {
			result = append(result, b)
		}
	}
	return result
}

// HasBookmarkValue reports whether the organization already holds a
// bookmark with the given value.
func (s *AppState) HasBookmarkValue(orgID, value string) bool {
	for _, b := range s.Bookmarks {
		if b.OrgID == orgID && b.Value == value {
			return true
		}
	}
	return false
}
