package store

import (
	"context"
	"strings"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/validate"
)

// AddBookmark creates a bookmark in the active organization.
//
// An empty FolderID places it in the active real folder, or the root
// when the active view is not a folder.
func (s *Store) AddBookmark(ctx context.Context, params model.NewBookmarkParams) (model.Bookmark, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Value = strings.TrimSpace(params.Value)
	if err := validate.Struct(params); err != nil {
		return model.Bookmark{}, err
	}

	var bookmark model.Bookmark
	err := s.mutate(ctx, "add bookmark", func(st *model.AppState) error {
		orgID, err := requireActiveOrg(st)
		if err != nil {
			return err
		}

		folderID := params.FolderID
		if folderID == "" {
			folderID = defaultFolder(st, orgID)
		} else if err := checkFolder(st, orgID, folderID); err != nil {
			return err
		}

		bookmark = model.NewBookmark(orgID, folderID, params, s.now())
		st.Bookmarks = append(st.Bookmarks, bookmark)
		return nil
	})
	if err != nil {
		return model.Bookmark{}, err
	}

	s.log.Debug("bookmark added",
		logger.String("id", bookmark.ID),
		logger.String("folder", bookmark.FolderID))
	return bookmark, nil
}

// UpdateBookmark replaces the editable fields of a live bookmark. The id,
// organization and creation time are kept. An empty FolderID keeps the
// current folder.
func (s *Store) UpdateBookmark(ctx context.Context, id string, update model.BookmarkUpdate) (model.Bookmark, error) {
	update.Name = strings.TrimSpace(update.Name)
	update.Value = strings.TrimSpace(update.Value)

	var updated model.Bookmark
	err := s.mutate(ctx, "update bookmark", func(st *model.AppState) error {
		b := st.GetBookmarkByID(id)
		if b == nil {
			return &model.NotFoundError{Kind: "bookmark", ID: id}
		}
		if b.InTrash() {
			return &model.ValidationError{Field: "folderId", Reason: "bookmark is in the trash, restore it first"}
		}

		// An IP value is only checked once the effective type is known.
		if update.Type == "" {
			update.Type = b.Type
		}
		if err := validate.Struct(update); err != nil {
			return err
		}

		folderID := update.FolderID
		if folderID == "" {
			folderID = b.FolderID
		} else if err := checkFolder(st, b.OrgID, folderID); err != nil {
			return err
		}

		b.FolderID = folderID
		b.Type = update.Type
		b.Name = update.Name
		b.Value = update.Value
		b.Ports = model.ClonePorts(update.Ports)
		updated = b.Clone()
		return nil
	})
	if err != nil {
		return model.Bookmark{}, err
	}
	return updated, nil
}

// DeletePermanently removes a bookmark without passing through the trash.
func (s *Store) DeletePermanently(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete bookmark", func(st *model.AppState) error {
		for i := range st.Bookmarks {
			if st.Bookmarks[i].ID == id {
				st.Bookmarks = append(st.Bookmarks[:i], st.Bookmarks[i+1:]...)
				return nil
			}
		}
		return &model.NotFoundError{Kind: "bookmark", ID: id}
	})
}

// defaultFolder picks where a bookmark without an explicit folder goes.
func defaultFolder(st *model.AppState, orgID string) string {
	if id := st.ActiveFolder.FolderID(); id != "" {
		if f := st.GetFolderByID(id); f != nil && f.OrgID == orgID {
			return id
		}
	}
	return model.RootFolderID
}

// checkFolder accepts the root or a real folder of orgID.
func checkFolder(st *model.AppState, orgID, folderID string) error {
	switch folderID {
	case model.RootFolderID:
		return nil
	case model.TrashFolderID:
		return &model.ValidationError{Field: "folderId", Reason: "use the trash operations to trash a bookmark"}
	}

	f := st.GetFolderByID(folderID)
	if f == nil {
		return &model.NotFoundError{Kind: "folder", ID: folderID}
	}
	if f.OrgID != orgID {
		return &model.ValidationError{Field: "folderId", Reason: "folder belongs to another organization"}
	}
	return nil
}
