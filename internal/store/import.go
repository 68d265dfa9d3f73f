package store

import (
	"context"
	"errors"
	"strings"

	"github.com/nikbrunner/netmark/internal/ipv4"
	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/validate"
)

// Import adds parsed bookmarks to the active organization in one write.
// Folders are matched by name and created when missing. Bookmarks whose
// value already exists in the organization, or that fail validation, are
// skipped.
func (s *Store) Import(ctx context.Context, items []model.ImportedBookmark) (added, skipped int, err error) {
	err = s.mutate(ctx, "import", func(st *model.AppState) error {
		added, skipped = 0, 0

		orgID, err := requireActiveOrg(st)
		if err != nil {
			return err
		}

		folders := map[string]string{}
		for _, f := range st.GetFoldersInOrg(orgID) {
			folders[f.Name] = f.ID
		}

		now := s.now()
		for _, item := range items {
			params := model.NewBookmarkParams{
				Type:  item.Type,
				Name:  strings.TrimSpace(item.Name),
				Value: strings.TrimSpace(item.Value),
				Ports: item.Ports,
			}
			if params.Type == "" {
				params.Type = model.TypeURL
				if ipv4.Valid(params.Value) {
					params.Type = model.TypeIP
				}
			}
			if err := validate.Struct(params); err != nil {
				s.log.Debug("skipping invalid import", logger.String("value", item.Value), logger.Error(err))
				skipped++
				continue
			}
			if st.HasBookmarkValue(orgID, params.Value) {
				skipped++
				continue
			}

			folderID := model.RootFolderID
			if name := strings.TrimSpace(item.Folder); name != "" {
				id, ok := folders[name]
				if !ok {
					f := model.NewFolder(orgID, model.NewFolderParams{Name: name})
					st.Folders = append(st.Folders, f)
					folders[name] = f.ID
					id = f.ID
				}
				folderID = id
			}

			created := now
			if !item.CreatedAt.IsZero() {
				created = item.CreatedAt
			}
			st.Bookmarks = append(st.Bookmarks, model.NewBookmark(orgID, folderID, params, created))
			added++
		}

		if added == 0 {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return 0, skipped, nil
	}
	if err != nil {
		return 0, 0, err
	}

	s.log.Info("import finished", logger.Int("added", added), logger.Int("skipped", skipped))
	return added, skipped, nil
}
