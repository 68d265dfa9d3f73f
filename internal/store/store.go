// Package store owns the application state and every mutation of it.
//
// Each mutation works on a copy of the state, persists the copy and only
// then makes it current. A failed write leaves the previous state in
// place and is reported as a *model.PersistenceError. Before applying a
// mutation the store re-reads the backend, so writes made by other
// processes sharing the same key are never overwritten with a stale copy.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nikbrunner/netmark/internal/logger"
	"github.com/nikbrunner/netmark/internal/metrics"
	"github.com/nikbrunner/netmark/internal/model"
	"github.com/nikbrunner/netmark/internal/storage"
	"github.com/nikbrunner/netmark/internal/view"
)

// errUnchanged aborts a mutation that turned out to be a no-op.
var errUnchanged = errors.New("unchanged")

// Params configures a Store.
type Params struct {
	Backend storage.Backend
	Key     string        // storage key, defaults to storage.DefaultKey
	Logger  logger.Logger // optional

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Retention is the trash window. Defaults to model.TrashRetention.
	Retention time.Duration

	// Seed builds the state used when nothing is persisted yet.
	// Defaults to model.DefaultState.
	Seed func() *model.AppState

	Metrics *metrics.Recorder // optional

	// SearchIncludesTrash makes VisibleBookmarks search the trash too.
	SearchIncludesTrash bool
}

// Store is the single owner of the AppState.
type Store struct {
	mu    sync.RWMutex
	state *model.AppState
	blob  []byte // backend content that state was read from or written as

	backend   storage.Backend
	key       string
	log       logger.Logger
	now       func() time.Time
	retention time.Duration
	seed      func() *model.AppState
	metrics   *metrics.Recorder
	viewOpts  view.Options

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Open loads the persisted state, or seeds the defaults when there is
// none, normalizes it, writes it back and runs one trash sweep.
func Open(ctx context.Context, p Params) (*Store, error) {
	if p.Backend == nil {
		return nil, errors.New("store: backend is required")
	}

	s := &Store{
		backend:   p.Backend,
		key:       p.Key,
		log:       p.Logger,
		now:       p.Clock,
		retention: p.Retention,
		seed:      p.Seed,
		metrics:   p.Metrics,
		viewOpts:  view.Options{IncludeTrashInSearch: p.SearchIncludesTrash},
		subs:      map[int]func(){},
	}
	if s.key == "" {
		s.key = storage.DefaultKey
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.retention <= 0 {
		s.retention = model.TrashRetention
	}
	if s.seed == nil {
		s.seed = model.DefaultState
	}

	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.normalize(state)

	if err := s.persist(ctx, "init", state); err != nil {
		return nil, err
	}
	s.state = state

	if _, err := s.CleanupTrash(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) (*model.AppState, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Info("no saved state, seeding defaults", logger.String("key", s.key))
		return s.seededState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}

	state, migrated, err := storage.DecodeState(data, s.now())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	if migrated {
		s.log.Info("migrated saved state",
			logger.String("key", s.key),
			logger.Int("version", storage.CurrentSchemaVersion))
	}
	return state, nil
}

func (s *Store) seededState() *model.AppState {
	state := s.seed()
	now := s.now()
	for i := range state.Bookmarks {
		if state.Bookmarks[i].CreatedAt.IsZero() {
			state.Bookmarks[i].CreatedAt = now
		}
	}
	return state
}

// normalize activates the first organization when none (or a stale one)
// is active.
func (s *Store) normalize(state *model.AppState) {
	if state.ActiveOrganization() != nil {
		return
	}
	state.ActiveOrgID = ""
	if len(state.Organizations) > 0 {
		state.ActiveOrgID = state.Organizations[0].ID
	}
}

// persist writes state to the backend.
func (s *Store) persist(ctx context.Context, op string, state *model.AppState) error {
	data, err := storage.EncodeState(state)
	if err == nil {
		err = s.backend.Set(ctx, s.key, data)
	}
	s.metrics.ObservePersist(err)
	if err != nil {
		s.log.Warn("failed to persist state",
			logger.String("op", op),
			logger.Error(err))
		return &model.PersistenceError{Op: op, Err: err}
	}
	s.blob = data

	if s.metrics != nil {
		trash := 0
		for _, b := range state.Bookmarks {
			if b.InTrash() {
				trash++
			}
		}
		s.metrics.SetBookmarks(len(state.Bookmarks)-trash, trash)
	}
	return nil
}

// reload replaces the state with the backend's when another writer has
// changed it since this store last read or wrote it. A missing key keeps
// the current state, which the next persist writes back. Callers hold mu.
func (s *Store) reload(ctx context.Context, op string) (changed bool, err error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &model.PersistenceError{Op: op, Err: err}
	}
	if bytes.Equal(data, s.blob) {
		return false, nil
	}

	state, _, err := storage.DecodeState(data, s.now())
	if err != nil {
		return false, fmt.Errorf("%s: reload %s: %w", op, s.key, err)
	}
	s.normalize(state)
	s.state = state
	s.blob = data

	s.log.Debug("reloaded state written by another process", logger.String("op", op))
	return true, nil
}

// Refresh picks up changes other processes wrote to the backend.
// Subscribers are notified when the state changed.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	changed, err := s.reload(ctx, "refresh")
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return err
}

// mutate applies fn to a copy of the latest state and commits the copy
// once it has been persisted. Subscribers are notified after the lock is
// released.
func (s *Store) mutate(ctx context.Context, op string, fn func(st *model.AppState) error) error {
	s.mu.Lock()
	reloaded, err := s.reload(ctx, op)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	next := s.state.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		if reloaded {
			s.notify()
		}
		return err
	}
	if err := s.persist(ctx, op, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers fn to run after every committed change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Retention returns the trash window in use.
func (s *Store) Retention() time.Duration {
	return s.retention
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// ActiveOrganization returns the active organization, if any.
func (s *Store) ActiveOrganization() (model.Organization, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org := s.state.ActiveOrganization()
	if org == nil {
		return model.Organization{}, false
	}
	return *org, true
}

// Bookmark returns a copy of the bookmark with the given id.
func (s *Store) Bookmark(id string) (model.Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.state.GetBookmarkByID(id)
	if b == nil {
		return model.Bookmark{}, false
	}
	return b.Clone(), true
}

// BookmarkCount returns how many bookmarks an organization holds, trash
// included.
func (s *Store) BookmarkCount(orgID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.GetBookmarksInOrg(orgID))
}

// VisibleBookmarks derives the current view. A non-empty term searches
// the active organization instead of showing the active folder.
func (s *Store) VisibleBookmarks(term string) view.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Committed states are never modified in place, so the result may
	// share port slices with it.
	return view.ForState(s.state, term, s.viewOpts)
}

// Reset removes the persisted state and starts over from the seed.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	if err := s.backend.Remove(ctx, s.key); err != nil {
		s.mu.Unlock()
		return &model.PersistenceError{Op: "reset", Err: err}
	}

	state := s.seededState()
	s.normalize(state)
	if err := s.persist(ctx, "reset", state); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = state
	s.mu.Unlock()

	s.log.Info("state reset to defaults")
	s.notify()
	return nil
}
