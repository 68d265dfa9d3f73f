package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/model"
)

// MoveToTrash soft-deletes a bookmark. It stays restorable for the
// retention window.
func (s *Store) MoveToTrash(ctx context.Context, id string) error {
	return s.mutate(ctx, "move to trash", func(st *model.AppState) error {
		b := st.GetBookmarkByID(id)
		if b == nil {
			return &model.NotFoundError{Kind: "bookmark", ID: id}
		}
		if b.InTrash() {
			return &model.ValidationError{Field: "folderId", Reason: "bookmark is already in the trash"}
		}
		now := s.now()
		b.FolderID = model.TrashFolderID
		b.DeletedAt = &now
		return nil
	})
}

// Restore takes a bookmark out of the trash into the root folder.
func (s *Store) Restore(ctx context.Context, id string) error {
	return s.mutate(ctx, "restore", func(st *model.AppState) error {
		b := st.GetBookmarkByID(id)
		if b == nil {
			return &model.NotFoundError{Kind: "bookmark", ID: id}
		}
		if !b.InTrash() {
			return &model.ValidationError{Field: "folderId", Reason: "bookmark is not in the trash"}
		}
		b.FolderID = model.RootFolderID
		b.DeletedAt = nil
		return nil
	})
}

// CleanupTrash permanently removes trashed bookmarks older than the
// retention window and returns how many were removed. Nothing is written
// when nothing expired.
func (s *Store) CleanupTrash(ctx context.Context) (int, error) {
	removed := 0
	err := s.mutate(ctx, "cleanup trash", func(st *model.AppState) error {
		now := s.now()
		kept := st.Bookmarks[:0]
		for _, b := range st.Bookmarks {
			if model.Expired(b, now, s.retention) {
				removed++
				continue
			}
			kept = append(kept, b)
		}
		if removed == 0 {
			return errUnchanged
		}
		st.Bookmarks = kept
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	s.log.Info("auto-deleted expired trash items", logger.Int("removed", removed))
	return removed, nil
}

// TrashItem is a trashed bookmark with its purge deadline.
type TrashItem struct {
	Bookmark  model.Bookmark
	ExpiresAt time.Time
	Remaining time.Duration
}

// TrashItems lists the active organization's trash, soonest to expire
// first.
func (s *Store) TrashItems() []TrashItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var items []TrashItem
	for _, b := range s.state.GetBookmarksInFolder(s.state.ActiveOrgID, model.TrashFolderID) {
		expires, ok := model.ExpiresAt(b, s.retention)
		if !ok {
			continue
		}
		items = append(items, TrashItem{
			Bookmark:  b.Clone(),
			ExpiresAt: expires,
			Remaining: model.Remaining(b, now, s.retention),
		})
	}
	slices.SortStableFunc(items, func(a, b TrashItem) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	return items
}
