package model

import "time"

// BookmarkType distinguishes IPv4 hosts from web URLs.
type BookmarkType string

const (
	TypeIP  BookmarkType = "ip"
	TypeURL BookmarkType = "url"
)

// Reserved folder ids. They are never backed by a Folder record.
const (
	RootFolderID  = "root"
	TrashFolderID = "trash"
)

// Port is an annotated port attached to a bookmark.
type Port struct {
	Proto string `json:"proto" yaml:"proto" validate:"required"`
	Port  string `json:"port" yaml:"port" validate:"required"`
}

// Bookmark represents a saved IP address or URL with metadata.
type Bookmark struct {
	ID        string       `json:"id" yaml:"id"`
	OrgID     string       `json:"orgId" yaml:"orgId"`
	FolderID  string       `json:"folderId" yaml:"folderId"` // real folder id, RootFolderID or TrashFolderID
	Type      BookmarkType `json:"type" yaml:"type"`
	Name      string       `json:"name" yaml:"name"`
	Value     string       `json:"value" yaml:"value"`
	Ports     []Port       `json:"ports" yaml:"ports"`
	CreatedAt time.Time    `json:"createdAt,omitzero" yaml:"-"`
	DeletedAt *time.Time   `json:"deletedAt,omitempty" yaml:"-"` // set iff FolderID == TrashFolderID
}

// InTrash reports whether the bookmark has been soft-deleted.
func (b Bookmark) InTrash() bool {
	return b.FolderID == TrashFolderID
}

// Clone returns a deep copy of the bookmark.
func (b Bookmark) Clone() Bookmark {
	out := b
	out.Ports = ClonePorts(b.Ports)
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		out.DeletedAt = &t
	}
	return out
}

// ClonePorts copies a port list. A nil list becomes an empty one.
func ClonePorts(ports []Port) []Port {
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Type     BookmarkType `json:"type" validate:"omitempty,oneof=ip url"`
	Name     string       `json:"name" validate:"notblank"`
	Value    string       `json:"value" validate:"notblank"`
	FolderID string       `json:"folderId"` // empty = active folder, or root
	Ports    []Port       `json:"ports" validate:"dive"`
}

// BookmarkUpdate replaces every editable field of a bookmark.
// The id, organization and creation time are never changed.
type BookmarkUpdate struct {
	Type     BookmarkType `json:"type" validate:"omitempty,oneof=ip url"`
	Name     string       `json:"name" validate:"notblank"`
	Value    string       `json:"value" validate:"notblank"`
	FolderID string       `json:"folderId"` // empty = keep current folder
	Ports    []Port       `json:"ports" validate:"dive"`
}

// NewBookmark creates a Bookmark with generated id and creation time.
func NewBookmark(orgID, folderID string, params NewBookmarkParams, now time.Time) Bookmark {
	typ := params.Type
	if typ == "" {
		typ = TypeURL
	}

	return Bookmark{
		ID:        GenerateID(),
		OrgID:     orgID,
		FolderID:  folderID,
		Type:      typ,
		Name:      params.Name,
		Value:     params.Value,
		Ports:     ClonePorts(params.Ports),
		CreatedAt: now,
	}
}

// ImportedBookmark is a bookmark parsed from an external file, not yet
// bound to an organization.
type ImportedBookmark struct {
	Folder    string // folder name, empty = root
	Type      BookmarkType
	Name      string
	Value     string
	Ports     []Port
	CreatedAt time.Time
}
