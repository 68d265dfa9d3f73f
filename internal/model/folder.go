package model

// Folder is a named grouping of bookmarks inside one organization.
type Folder struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	OrgID string `json:"orgId" yaml:"orgId"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name string `json:"name" validate:"notblank"`
}

// NewFolder creates a Folder with generated id.
func NewFolder(orgID string, params NewFolderParams) Folder {
	return Folder{
		ID:    GenerateID(),
		Name:  params.Name,
		OrgID: orgID,
	}
}
