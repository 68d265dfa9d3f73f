package store

import (
	"context"
	"slices"
	"strings"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/validate"
)

// AddFolder creates a folder in the active organization.
func (s *Store) AddFolder(ctx context.Context, params model.NewFolderParams) (model.Folder, error) {
	if err := validate.Struct(params); err != nil {
		return model.Folder{}, err
	}
	params.Name = strings.TrimSpace(params.Name)

	var folder model.Folder
	err := s.mutate(ctx, "add folder", func(st *model.AppState) error {
		orgID, err := requireActiveOrg(st)
		if err != nil {
			return err
		}
		folder = model.NewFolder(orgID, params)
		st.Folders = append(st.Folders, folder)
		return nil
	})
	if err != nil {
		return model.Folder{}, err
	}

	s.log.Debug("folder added", logger.String("id", folder.ID), logger.String("name", folder.Name))
	return folder, nil
}

// DeleteFolder removes a folder. Its bookmarks move to the root, and the
// view falls back to the dashboard if the folder was selected.
func (s *Store) DeleteFolder(ctx context.Context, folderID string) error {
	moved := 0
	err := s.mutate(ctx, "delete folder", func(st *model.AppState) error {
		if st.GetFolderByID(folderID) == nil {
			return &model.NotFoundError{Kind: "folder", ID: folderID}
		}

		for i := range st.Bookmarks {
			if st.Bookmarks[i].FolderID == folderID {
				st.Bookmarks[i].FolderID = model.RootFolderID
				moved++
			}
		}
		st.Folders = slices.DeleteFunc(st.Folders, func(f model.Folder) bool {
			return f.ID == folderID
		})

		if st.ActiveFolder.FolderID() == folderID {
			st.ActiveFolder = model.Dashboard()
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("folder deleted", logger.String("id", folderID), logger.Int("moved_to_root", moved))
	return nil
}

// SetActiveFolder changes the selection. Real folders must exist and
// belong to the active organization.
func (s *Store) SetActiveFolder(ctx context.Context, sel model.Selection) error {
	return s.mutate(ctx, "set active folder", func(st *model.AppState) error {
		if sel.Kind() == model.SelectFolder {
			f := st.GetFolderByID(sel.FolderID())
			if f == nil {
				return &model.NotFoundError{Kind: "folder", ID: sel.FolderID()}
			}
			if f.OrgID != st.ActiveOrgID {
				return &model.ValidationError{Field: "folderId", Reason: "folder belongs to another organization"}
			}
		}
		st.ActiveFolder = sel
		return nil
	})
}
