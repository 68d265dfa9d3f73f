package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/storage"
	"github.com/nikbrunner/netmark/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyBackend fails every write while fail is set.
type flakyBackend struct {
	*storage.MemoryBackend

	mu   sync.Mutex
	fail bool
	sets int
}

func newFlaky() *flakyBackend {
	return &flakyBackend{MemoryBackend: storage.NewMemoryBackend()}
}

func (f *flakyBackend) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("quota exceeded")
	}
	f.sets++
	return f.MemoryBackend.Set(ctx, key, value)
}

func (f *flakyBackend) setFail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *flakyBackend) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

type fixture struct {
	store   *store.Store
	backend *flakyBackend
	clock   *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{backend: newFlaky(), clock: newClock()}
	s, err := store.Open(context.Background(), store.Params{
		Backend: f.backend,
		Clock:   f.clock.Now,
	})
	assert.NilError(t, err)
	f.store = s
	return f
}

// assertTrashInvariant checks deletedAt is set exactly for trashed bookmarks.
func assertTrashInvariant(t *testing.T, s *store.Store) {
	t.Helper()
	for _, b := range s.Snapshot().Bookmarks {
		assert.Equal(t, b.DeletedAt != nil, b.InTrash(), "bookmark %s", b.ID)
	}
}

// persisted decodes what the backend currently holds.
func persisted(t *testing.T, f *fixture) *model.AppState {
	t.Helper()
	data, err := f.backend.Get(context.Background(), storage.DefaultKey)
	assert.NilError(t, err)
	state, _, err := storage.DecodeState(data, f.clock.Now())
	assert.NilError(t, err)
	return state
}

func TestOpen_SeedsDefaults(t *testing.T) {
	f := newFixture(t)

	org, ok := f.store.ActiveOrganization()
	assert.Assert(t, ok)
	assert.Equal(t, org.ID, "org_1")

	snap := f.store.Snapshot()
	assert.Assert(t, is.Len(snap.Organizations, 2))
	assert.Assert(t, is.Len(snap.Folders, 3))
	assert.Assert(t, is.Len(snap.Bookmarks, 4))
	assert.Equal(t, snap.ActiveFolder, model.Dashboard())
	for _, b := range snap.Bookmarks {
		assert.Assert(t, b.CreatedAt.Equal(f.clock.Now()))
	}

	// normalized state is written immediately
	assert.Equal(t, persisted(t, f).ActiveOrgID, "org_1")
}

func TestOpen_ReloadsPersistedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddFolder(ctx, model.NewFolderParams{Name: "Printers"})
	assert.NilError(t, err)
	assert.NilError(t, f.store.SetActiveFolder(ctx, model.Trash()))

	reopened, err := store.Open(ctx, store.Params{Backend: f.backend, Clock: f.clock.Now})
	assert.NilError(t, err)

	snap := reopened.Snapshot()
	assert.Assert(t, is.Len(snap.Folders, 4))
	assert.Equal(t, snap.ActiveFolder, model.Trash())
}

func TestOpen_SearchSelectionReloadsAsDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.Search("web")))

	reopened, err := store.Open(ctx, store.Params{Backend: f.backend, Clock: f.clock.Now})
	assert.NilError(t, err)
	assert.Equal(t, reopened.Snapshot().ActiveFolder, model.Dashboard())
}

func TestOpen_MigratesLegacyState(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	assert.NilError(t, backend.Set(ctx, storage.DefaultKey, []byte(`{
		"activeOrgId": null,
		"activeFolderId": "dashboard",
		"organizations": [{"id": "o", "name": "Only", "color": "red"}]
	}`)))

	s, err := store.Open(ctx, store.Params{Backend: backend})
	assert.NilError(t, err)

	org, ok := s.ActiveOrganization()
	assert.Assert(t, ok)
	assert.Equal(t, org.ID, "o")
	assert.Assert(t, is.Len(s.Snapshot().Bookmarks, 0))

	data, err := backend.Get(ctx, storage.DefaultKey)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), `"version":1`))
}

func TestOpen_CorruptStateFails(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	assert.NilError(t, backend.Set(ctx, storage.DefaultKey, []byte(`{"version": 7}`)))

	_, err := store.Open(ctx, store.Params{Backend: backend})
	assert.Assert(t, errors.Is(err, model.ErrCorruptState), "got %v", err)
}

func TestOpen_PurgesExpiredTrash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	f.clock.Advance(3 * time.Minute)

	reopened, err := store.Open(ctx, store.Params{Backend: f.backend, Clock: f.clock.Now})
	assert.NilError(t, err)
	_, ok := reopened.Bookmark("b_1")
	assert.Assert(t, !ok)
}

func TestOpen_EmptySeedHasNoActiveOrg(t *testing.T) {
	s, err := store.Open(context.Background(), store.Params{
		Backend: storage.NewMemoryBackend(),
		Seed:    model.NewAppState,
	})
	assert.NilError(t, err)

	_, ok := s.ActiveOrganization()
	assert.Assert(t, !ok)

	_, err = s.AddFolder(context.Background(), model.NewFolderParams{Name: "x"})
	var ve *model.ValidationError
	assert.Assert(t, errors.As(err, &ve))
	assert.Equal(t, ve.Field, "orgId")

	res := s.VisibleBookmarks("")
	assert.Assert(t, res.Empty())
}

func TestOpen_RequiresBackend(t *testing.T) {
	_, err := store.Open(context.Background(), store.Params{})
	assert.ErrorContains(t, err, "backend is required")
}

func TestAddOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.store.AddOrganization(ctx, model.NewOrganizationParams{Name: "  Branch Office "})
	assert.NilError(t, err)
	assert.Equal(t, org.Name, "Branch Office")
	assert.Equal(t, org.Color, model.DefaultOrgColor)

	// does not steal the active organization
	active, _ := f.store.ActiveOrganization()
	assert.Equal(t, active.ID, "org_1")

	_, err = f.store.AddOrganization(ctx, model.NewOrganizationParams{Name: "   "})
	assert.Assert(t, errors.Is(err, model.ErrValidation))
	assert.Assert(t, is.Len(f.store.Snapshot().Organizations, 3))
}

func TestAddOrganization_ActivatesWhenNoneActive(t *testing.T) {
	s, err := store.Open(context.Background(), store.Params{
		Backend: storage.NewMemoryBackend(),
		Seed:    model.NewAppState,
	})
	assert.NilError(t, err)

	org, err := s.AddOrganization(context.Background(), model.NewOrganizationParams{Name: "First"})
	assert.NilError(t, err)

	active, ok := s.ActiveOrganization()
	assert.Assert(t, ok)
	assert.Equal(t, active.ID, org.ID)
}

func TestSetActiveOrg(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_1")))
	assert.NilError(t, f.store.SetActiveOrg(ctx, "org_2"))

	snap := f.store.Snapshot()
	assert.Equal(t, snap.ActiveOrgID, "org_2")
	assert.Equal(t, snap.ActiveFolder, model.Dashboard())

	err := f.store.SetActiveOrg(ctx, "org_404")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
	assert.Equal(t, f.store.Snapshot().ActiveOrgID, "org_2")
}

func TestSetActiveFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, sel := range []model.Selection{model.Root(), model.Trash(), model.Search("x"), model.InFolder("f_2"), model.Dashboard()} {
		assert.NilError(t, f.store.SetActiveFolder(ctx, sel))
		assert.Equal(t, f.store.Snapshot().ActiveFolder, sel)
	}

	err := f.store.SetActiveFolder(ctx, model.InFolder("f_404"))
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
	assert.Equal(t, f.store.Snapshot().ActiveFolder, model.Dashboard())
}

func TestSetActiveFolder_OtherOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// f_3 belongs to org_2
	err := f.store.SetActiveFolder(ctx, model.InFolder("f_3"))
	assert.Assert(t, errors.Is(err, model.ErrValidation), "got %v", err)
	assert.Equal(t, f.store.Snapshot().ActiveFolder, model.Dashboard())

	assert.NilError(t, f.store.SetActiveOrg(ctx, "org_2"))
	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_3")))
}

func TestAddFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folder, err := f.store.AddFolder(ctx, model.NewFolderParams{Name: "Switches"})
	assert.NilError(t, err)
	assert.Equal(t, folder.OrgID, "org_1")
	assert.Assert(t, folder.ID != "")

	_, err = f.store.AddFolder(ctx, model.NewFolderParams{Name: ""})
	var ve *model.ValidationError
	assert.Assert(t, errors.As(err, &ve))
	assert.Equal(t, ve.Field, "name")
}

func TestDeleteFolder_ReassignsToRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_1")))
	assert.NilError(t, f.store.DeleteFolder(ctx, "f_1"))

	snap := f.store.Snapshot()
	assert.Assert(t, snap.GetFolderByID("f_1") == nil)
	for _, b := range snap.Bookmarks {
		assert.Assert(t, b.FolderID != "f_1")
	}
	assert.Equal(t, snap.GetBookmarkByID("b_1").FolderID, model.RootFolderID)
	assert.Equal(t, snap.GetBookmarkByID("b_2").FolderID, model.RootFolderID)
	assert.Equal(t, snap.GetBookmarkByID("b_4").FolderID, "f_2")
	assert.Equal(t, snap.ActiveFolder, model.Dashboard())

	err := f.store.DeleteFolder(ctx, "f_1")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestDeleteFolder_KeepsOtherSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_2")))
	assert.NilError(t, f.store.DeleteFolder(ctx, "f_1"))
	assert.Equal(t, f.store.Snapshot().ActiveFolder, model.InFolder("f_2"))
}

func TestAddBookmark_FolderDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "Wiki", Value: "https://wiki"})
	assert.NilError(t, err)
	assert.Equal(t, b.FolderID, model.RootFolderID)
	assert.Equal(t, b.Type, model.TypeURL)
	assert.Equal(t, b.OrgID, "org_1")
	assert.Assert(t, b.CreatedAt.Equal(f.clock.Now()))
	assert.Assert(t, b.Ports != nil)

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_2")))
	b, err = f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "Replica", Value: "https://replica"})
	assert.NilError(t, err)
	assert.Equal(t, b.FolderID, "f_2")

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.Trash()))
	b, err = f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "Fresh", Value: "https://fresh"})
	assert.NilError(t, err)
	assert.Equal(t, b.FolderID, model.RootFolderID)
	assert.Assert(t, b.DeletedAt == nil)
}

func TestAddBookmark_ExplicitFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "x", Value: "https://x", FolderID: "f_1"})
	assert.NilError(t, err)
	assert.Equal(t, b.FolderID, "f_1")

	_, err = f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "x", Value: "https://x", FolderID: "f_3"})
	assert.Assert(t, errors.Is(err, model.ErrValidation), "folder of another organization")

	_, err = f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "x", Value: "https://x", FolderID: model.TrashFolderID})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	_, err = f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "x", Value: "https://x", FolderID: "f_404"})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestAddBookmark_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.store.BookmarkCount("org_1")

	tests := []struct {
		name   string
		params model.NewBookmarkParams
		field  string
	}{
		{"blank name", model.NewBookmarkParams{Name: " ", Value: "https://x"}, "name"},
		{"blank value", model.NewBookmarkParams{Name: "x", Value: ""}, "value"},
		{"bad ip", model.NewBookmarkParams{Type: model.TypeIP, Name: "x", Value: "999.1.1.1"}, "value"},
		{"not ip", model.NewBookmarkParams{Type: model.TypeIP, Name: "x", Value: "abc"}, "value"},
		{"bad type", model.NewBookmarkParams{Type: "ftp", Name: "x", Value: "ftp://x"}, "type"},
		{"bad port", model.NewBookmarkParams{Name: "x", Value: "https://x", Ports: []model.Port{{Proto: "TCP"}}}, "ports[0].port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.store.AddBookmark(ctx, tt.params)
			var ve *model.ValidationError
			assert.Assert(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, ve.Field, tt.field)
		})
	}
	assert.Equal(t, f.store.BookmarkCount("org_1"), before)
}

func TestAddBookmark_TrimsBeforeValidating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, err := f.store.AddBookmark(ctx, model.NewBookmarkParams{
		Type: model.TypeIP, Name: " Edge ", Value: " 10.0.0.1 ",
	})
	assert.NilError(t, err)
	assert.Equal(t, added.Name, "Edge")
	assert.Equal(t, added.Value, "10.0.0.1")

	updated, err := f.store.UpdateBookmark(ctx, added.ID, model.BookmarkUpdate{Name: " Edge ", Value: " 10.0.0.2 "})
	assert.NilError(t, err)
	assert.Equal(t, updated.Value, "10.0.0.2")
}

func TestUpdateBookmark(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orig, _ := f.store.Bookmark("b_1")

	f.clock.Advance(time.Hour)
	updated, err := f.store.UpdateBookmark(ctx, "b_1", model.BookmarkUpdate{
		Type:     model.TypeIP,
		Name:     "Primary Web (new)",
		Value:    "192.168.10.50",
		FolderID: "f_2",
		Ports:    []model.Port{{Proto: "TCP", Port: "8443"}},
	})
	assert.NilError(t, err)
	assert.Equal(t, updated.ID, "b_1")
	assert.Equal(t, updated.OrgID, orig.OrgID)
	assert.Assert(t, updated.CreatedAt.Equal(orig.CreatedAt))
	assert.Equal(t, updated.FolderID, "f_2")
	assert.DeepEqual(t, updated.Ports, []model.Port{{Proto: "TCP", Port: "8443"}})

	got, _ := f.store.Bookmark("b_1")
	assert.DeepEqual(t, got, updated)
}

func TestUpdateBookmark_KeepsFolderWhenEmpty(t *testing.T) {
	f := newFixture(t)
	updated, err := f.store.UpdateBookmark(context.Background(), "b_4", model.BookmarkUpdate{
		Name: "DB", Value: "10.0.50.101",
	})
	assert.NilError(t, err)
	assert.Equal(t, updated.FolderID, "f_2")
	assert.Equal(t, updated.Type, model.TypeIP)
	assert.Assert(t, is.Len(updated.Ports, 0))
}

func TestUpdateBookmark_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.UpdateBookmark(ctx, "b_404", model.BookmarkUpdate{Name: "x", Value: "https://x"})
	assert.Assert(t, errors.Is(err, model.ErrNotFound))

	_, err = f.store.UpdateBookmark(ctx, "b_1", model.BookmarkUpdate{Type: model.TypeIP, Name: "x", Value: "nope"})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	// type omitted: the stored ip type still demands a valid address
	_, err = f.store.UpdateBookmark(ctx, "b_1", model.BookmarkUpdate{Name: "x", Value: "nope"})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	_, err = f.store.UpdateBookmark(ctx, "b_1", model.BookmarkUpdate{Name: "x", Value: "10.0.0.1"})
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	_, err = f.store.UpdateBookmark(ctx, "b_2", model.BookmarkUpdate{Name: "x", Value: "10.0.0.1", FolderID: model.TrashFolderID})
	assert.Assert(t, errors.Is(err, model.ErrValidation))
	assertTrashInvariant(t, f.store)
}

func TestDeletePermanently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.DeletePermanently(ctx, "b_3"))
	_, ok := f.store.Bookmark("b_3")
	assert.Assert(t, !ok)

	err := f.store.DeletePermanently(ctx, "b_3")
	assert.Assert(t, errors.Is(err, model.ErrNotFound))
}

func TestMoveToTrashAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	b, _ := f.store.Bookmark("b_1")
	assert.Equal(t, b.FolderID, model.TrashFolderID)
	assert.Assert(t, b.DeletedAt != nil)
	assert.Assert(t, b.DeletedAt.Equal(f.clock.Now()))
	assertTrashInvariant(t, f.store)

	err := f.store.MoveToTrash(ctx, "b_1")
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	f.clock.Advance(119 * time.Second)
	assert.NilError(t, f.store.Restore(ctx, "b_1"))
	b, _ = f.store.Bookmark("b_1")
	// restore always lands in the root, not the original folder
	assert.Equal(t, b.FolderID, model.RootFolderID)
	assert.Assert(t, b.DeletedAt == nil)
	assertTrashInvariant(t, f.store)

	err = f.store.Restore(ctx, "b_1")
	assert.Assert(t, errors.Is(err, model.ErrValidation))

	assert.Assert(t, errors.Is(f.store.MoveToTrash(ctx, "nope"), model.ErrNotFound))
	assert.Assert(t, errors.Is(f.store.Restore(ctx, "nope"), model.ErrNotFound))
}

func TestCleanupTrash_Boundary(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		removed int
	}{
		{119_999 * time.Millisecond, 0},
		{120_000 * time.Millisecond, 0},
		{120_001 * time.Millisecond, 1},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			assert.NilError(t, f.store.MoveToTrash(ctx, "b_3"))
			f.clock.Advance(tt.elapsed)

			removed, err := f.store.CleanupTrash(ctx)
			assert.NilError(t, err)
			assert.Equal(t, removed, tt.removed)

			_, ok := f.store.Bookmark("b_3")
			assert.Equal(t, ok, tt.removed == 0)
		})
	}
}

func TestCleanupTrash_IdempotentAndQuiet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	assert.NilError(t, f.store.MoveToTrash(ctx, "b_2"))
	f.clock.Advance(5 * time.Minute)

	removed, err := f.store.CleanupTrash(ctx)
	assert.NilError(t, err)
	assert.Equal(t, removed, 2)

	writes := f.backend.writes()
	notified := 0
	unsubscribe := f.store.Subscribe(func() { notified++ })
	defer unsubscribe()

	removed, err = f.store.CleanupTrash(ctx)
	assert.NilError(t, err)
	assert.Equal(t, removed, 0)
	assert.Equal(t, f.backend.writes(), writes, "nothing expired, nothing written")
	assert.Equal(t, notified, 0)
}

func TestCleanupTrash_LeavesLiveBookmarks(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(24 * time.Hour)

	removed, err := f.store.CleanupTrash(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, removed, 0)
	assert.Equal(t, f.store.BookmarkCount("org_1"), 4)
}

func TestPersistenceFailure_RollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.store.Snapshot()

	notified := 0
	defer f.store.Subscribe(func() { notified++ })()

	f.backend.setFail(true)

	_, err := f.store.AddFolder(ctx, model.NewFolderParams{Name: "Lost"})
	assert.Assert(t, errors.Is(err, model.ErrPersistence), "got %v", err)
	var pe *model.PersistenceError
	assert.Assert(t, errors.As(err, &pe))
	assert.Equal(t, pe.Op, "add folder")

	assert.Assert(t, errors.Is(f.store.MoveToTrash(ctx, "b_1"), model.ErrPersistence))
	assert.Assert(t, errors.Is(f.store.DeleteFolder(ctx, "f_1"), model.ErrPersistence))
	assert.Assert(t, errors.Is(f.store.SetActiveOrg(ctx, "org_2"), model.ErrPersistence))

	assert.DeepEqual(t, f.store.Snapshot(), before)
	assert.Equal(t, notified, 0)

	f.backend.setFail(false)
	_, err = f.store.AddFolder(ctx, model.NewFolderParams{Name: "Kept"})
	assert.NilError(t, err)
	assert.Equal(t, notified, 1)
}

func TestPersistenceFailure_SweepKeepsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	f.clock.Advance(3 * time.Minute)
	f.backend.setFail(true)

	removed, err := f.store.CleanupTrash(ctx)
	assert.Assert(t, errors.Is(err, model.ErrPersistence))
	assert.Equal(t, removed, 0)
	_, ok := f.store.Bookmark("b_1")
	assert.Assert(t, ok)

	f.backend.setFail(false)
	removed, err = f.store.CleanupTrash(ctx)
	assert.NilError(t, err)
	assert.Equal(t, removed, 1)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	calls := 0
	unsubscribe := f.store.Subscribe(func() { calls++ })

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.Root()))
	_, err := f.store.AddFolder(ctx, model.NewFolderParams{Name: ""})
	assert.Assert(t, err != nil)
	assert.Equal(t, calls, 1, "failed mutations do not notify")

	unsubscribe()
	assert.NilError(t, f.store.SetActiveFolder(ctx, model.Trash()))
	assert.Equal(t, calls, 1)
}

func TestSubscribe_CanReadStore(t *testing.T) {
	f := newFixture(t)

	var seen int
	defer f.store.Subscribe(func() {
		// runs outside the lock
		seen = f.store.BookmarkCount("org_1")
	})()

	_, err := f.store.AddBookmark(context.Background(), model.NewBookmarkParams{Name: "x", Value: "https://x"})
	assert.NilError(t, err)
	assert.Equal(t, seen, 5)
}

func TestVisibleBookmarks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.SetActiveFolder(ctx, model.InFolder("f_1")))
	res := f.store.VisibleBookmarks("")
	assert.Equal(t, res.Len(), 2)

	res = f.store.VisibleBookmarks("jira")
	assert.Equal(t, res.Len(), 1)
	assert.Equal(t, res.Bookmarks[0].ID, "b_3")

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_3"))
	assert.Assert(t, f.store.VisibleBookmarks("jira").Empty())
}

func TestVisibleBookmarks_SearchIncludesTrash(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, store.Params{
		Backend:             storage.NewMemoryBackend(),
		SearchIncludesTrash: true,
	})
	assert.NilError(t, err)

	assert.NilError(t, s.MoveToTrash(ctx, "b_3"))
	assert.Equal(t, s.VisibleBookmarks("jira").Len(), 1)
}

func TestTrashItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NilError(t, f.store.MoveToTrash(ctx, "b_2"))
	f.clock.Advance(30 * time.Second)
	assert.NilError(t, f.store.MoveToTrash(ctx, "b_1"))
	f.clock.Advance(10 * time.Second)

	items := f.store.TrashItems()
	assert.Assert(t, is.Len(items, 2))
	assert.Equal(t, items[0].Bookmark.ID, "b_2")
	assert.Equal(t, items[0].Remaining, 80*time.Second)
	assert.Equal(t, items[1].Bookmark.ID, "b_1")
	assert.Equal(t, items[1].Remaining, 110*time.Second)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.AddOrganization(ctx, model.NewOrganizationParams{Name: "Extra"})
	assert.NilError(t, err)
	assert.NilError(t, f.store.SetActiveOrg(ctx, "org_2"))

	assert.NilError(t, f.store.Reset(ctx))

	snap := f.store.Snapshot()
	assert.Assert(t, is.Len(snap.Organizations, 2))
	assert.Equal(t, snap.ActiveOrgID, "org_1")
	assert.Equal(t, persisted(t, f).ActiveOrgID, "org_1")
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	added, skipped, err := f.store.Import(ctx, []model.ImportedBookmark{
		{Folder: "Web Servers", Name: "Tertiary", Value: "192.168.10.7"},
		{Folder: "Printers", Name: "HP", Value: "10.1.1.20", Ports: []model.Port{{Proto: "TCP", Port: "9100"}}},
		{Name: "Docs", Value: "https://docs.acme.com"},
		{Name: "Dup", Value: "https://jira.acme.com"},
		{Name: "", Value: "https://nameless"},
		{Type: model.TypeIP, Name: "Broken", Value: "300.1.1.1"},
		{Name: "Docs again", Value: "https://docs.acme.com"},
	})
	assert.NilError(t, err)
	assert.Equal(t, added, 3)
	assert.Equal(t, skipped, 4)

	snap := f.store.Snapshot()
	var printers *model.Folder
	for i := range snap.Folders {
		if snap.Folders[i].Name == "Printers" {
			printers = &snap.Folders[i]
		}
	}
	assert.Assert(t, printers != nil)
	assert.Equal(t, printers.OrgID, "org_1")
	assert.Assert(t, is.Len(snap.GetFoldersInOrg("org_1"), 3))

	res := f.store.VisibleBookmarks("Tertiary")
	assert.Equal(t, res.Len(), 1)
	assert.Equal(t, res.Bookmarks[0].FolderID, "f_1")
	assert.Equal(t, res.Bookmarks[0].Type, model.TypeIP)

	res = f.store.VisibleBookmarks("Docs")
	assert.Equal(t, res.Bookmarks[0].FolderID, model.RootFolderID)
	assert.Equal(t, res.Bookmarks[0].Type, model.TypeURL)
}

func TestImport_NothingNew(t *testing.T) {
	f := newFixture(t)
	writes := f.backend.writes()

	added, skipped, err := f.store.Import(context.Background(), []model.ImportedBookmark{
		{Name: "Dup", Value: "https://jira.acme.com"},
	})
	assert.NilError(t, err)
	assert.Equal(t, added, 0)
	assert.Equal(t, skipped, 1)
	assert.Equal(t, f.backend.writes(), writes)
}

func TestConcurrentSweepAndMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.store.AddBookmark(ctx, model.NewBookmarkParams{Name: "n", Value: "https://n"})
			assert.Check(t, err)
		}()
		go func() {
			defer wg.Done()
			f.clock.Advance(10 * time.Second)
			_, err := f.store.CleanupTrash(ctx)
			assert.Check(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, f.store.BookmarkCount("org_1"), 24)
	assert.Assert(t, is.Len(persisted(t, f).Bookmarks, 24))
}

func TestMutate_KeepsWritesFromOtherProcesses(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()
	clock := newClock()
	open := func() *store.Store {
		t.Helper()
		s, err := store.Open(ctx, store.Params{Backend: backend, Clock: clock.Now})
		assert.NilError(t, err)
		return s
	}

	// a long-running watcher and a later one-shot command share the key
	watcher := open()
	assert.NilError(t, watcher.MoveToTrash(ctx, "b_1"))

	cmd := open()
	kept, err := cmd.AddBookmark(ctx, model.NewBookmarkParams{Name: "keep", Value: "https://keep"})
	assert.NilError(t, err)
	assert.NilError(t, cmd.MoveToTrash(ctx, "b_2"))

	clock.Advance(3 * time.Minute)
	removed, err := watcher.CleanupTrash(ctx)
	assert.NilError(t, err)
	assert.Equal(t, removed, 2)

	reopened := open()
	_, ok := reopened.Bookmark(kept.ID)
	assert.Assert(t, ok, "bookmark added by another process was lost")
	_, ok = reopened.Bookmark("b_1")
	assert.Assert(t, !ok)
	_, ok = reopened.Bookmark("b_2")
	assert.Assert(t, !ok)
	assert.Equal(t, reopened.BookmarkCount("org_1"), 3)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemoryBackend()

	a, err := store.Open(ctx, store.Params{Backend: backend})
	assert.NilError(t, err)
	b, err := store.Open(ctx, store.Params{Backend: backend})
	assert.NilError(t, err)

	notified := 0
	defer a.Subscribe(func() { notified++ })()

	assert.NilError(t, a.Refresh(ctx))
	assert.Equal(t, notified, 0, "nothing changed")

	folder, err := b.AddFolder(ctx, model.NewFolderParams{Name: "Racks"})
	assert.NilError(t, err)

	assert.NilError(t, a.Refresh(ctx))
	assert.Equal(t, notified, 1)
	assert.Assert(t, a.Snapshot().GetFolderByID(folder.ID) != nil)
}

func TestRefresh_CorruptBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.NilError(t, f.backend.MemoryBackend.Set(ctx, storage.DefaultKey, []byte("garbage")))

	assert.Assert(t, errors.Is(f.store.Refresh(ctx), model.ErrCorruptState))
	_, err := f.store.AddFolder(ctx, model.NewFolderParams{Name: "Racks"})
	assert.Assert(t, errors.Is(err, model.ErrCorruptState), "corrupt data is never overwritten")

	data, err := f.backend.Get(ctx, storage.DefaultKey)
	assert.NilError(t, err)
	assert.Equal(t, string(data), "garbage")
}
