package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/repository"
)

// memStore is an in-memory repository.Store. Copies go in and out so callers
// cannot reach the stored records.
type memStore struct {
	mu         sync.Mutex
	activities map[int64]model.Activity
	categories map[int64]model.Category
	snips      map[int64]model.Snip
	nextID     int64

	// errCreateSnip, when set, is returned by CreateSnip.
	errCreateSnip error
}

var _ repository.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		activities: make(map[int64]model.Activity),
		categories: make(map[int64]model.Category),
		snips:      make(map[int64]model.Snip),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateActivity(_ context.Context, a *model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	m.activities[a.ID] = *a
	return nil
}

func (m *memStore) GetActivity(_ context.Context, id int64) (*model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[id]
	if !ok {
		return nil, apperror.NotFound("activity", id)
	}
	return &a, nil
}

func (m *memStore) DeleteActivity(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activities[id]; !ok {
		return apperror.NotFound("activity", id)
	}
	for sid, s := range m.snips {
		if s.ActivityID == id {
			delete(m.snips, sid)
		}
	}
	for cid, c := range m.categories {
		if c.ActivityID == id {
			delete(m.categories, cid)
		}
	}
	delete(m.activities, id)
	return nil
}

func (m *memStore) CreateCategory(_ context.Context, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) GetCategory(_ context.Context, id int64) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, apperror.NotFound("category", id)
	}
	return &c, nil
}

func (m *memStore) ListCategories(_ context.Context, f repository.CategoryFilter) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Category{}
	for _, c := range m.categories {
		if matchCategory(c, f) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b model.Category) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

func (m *memStore) CategoryExists(ctx context.Context, f repository.CategoryFilter) (bool, error) {
	list, err := m.ListCategories(ctx, f)
	return len(list) > 0, err
}

func (m *memStore) CreateSnip(_ context.Context, s *model.Snip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errCreateSnip != nil {
		return m.errCreateSnip
	}
	s.ID = m.id()
	m.snips[s.ID] = *s
	return nil
}

func (m *memStore) UpdateSnip(_ context.Context, s *model.Snip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.snips[s.ID]
	if !ok || old.UserID != s.UserID {
		return apperror.NotFound("snip", s.ID)
	}
	old.CategoryID = s.CategoryID
	old.Name = s.Name
	old.Description = s.Description
	old.Private = s.Private
	old.Language = s.Language
	old.Code = s.Code
	old.UpdatedAt = s.UpdatedAt
	m.snips[s.ID] = old
	return nil
}

func (m *memStore) GetSnip(_ context.Context, id int64) (*model.Snip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snips[id]
	if !ok {
		return nil, apperror.NotFound("snip", id)
	}
	return &s, nil
}

func (m *memStore) CountSnips(ctx context.Context, f repository.SnipFilter) (int, error) {
	list, err := m.ListSnips(ctx, f, repository.ListOptions{})
	return len(list), err
}

func (m *memStore) ListSnips(_ context.Context, f repository.SnipFilter, opts repository.ListOptions) ([]model.Snip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Snip{}
	for _, s := range m.snips {
		if matchSnip(s, f) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b model.Snip) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return int(b.ID - a.ID)
	})
	if opts.Limit > 0 {
		start := min(max(opts.Offset, 0), len(out))
		end := min(start+opts.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func matchCategory(c model.Category, f repository.CategoryFilter) bool {
	return (f.ActivityID == 0 || c.ActivityID == f.ActivityID) &&
		(f.UserID == 0 || c.UserID == f.UserID)
}

func matchSnip(s model.Snip, f repository.SnipFilter) bool {
	return (f.ActivityID == 0 || s.ActivityID == f.ActivityID) &&
		(f.UserID == 0 || s.UserID == f.UserID) &&
		(f.CategoryID == 0 || s.CategoryID == f.CategoryID)
}

// capSet is an Authorizer answering from a fixed set.
type capSet map[string]bool

func (c capSet) HasCapability(_ context.Context, capability string, _ int64) bool {
	return c[capability]
}

// tickingClock returns a time one second later on every call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

type testEnv struct {
	store      *memStore
	categories *CategoryService
	snips      *SnipService
	activities *ActivityService
	sess       model.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()

	activities := NewActivityService(store, logger)
	activity, err := activities.Create(context.Background(), "Algorithms 101")
	if err != nil {
		t.Fatalf("setup: creating activity: %v", err)
	}

	clock := tickingClock()
	categories := NewCategoryService(store, store, logger)
	categories.now = clock
	snips := NewSnipService(store, categories, "https://lms.example.org/mod/snippet/", logger)
	snips.now = clock

	return &testEnv{
		store:      store,
		categories: categories,
		snips:      snips,
		activities: activities,
		sess:       model.Session{UserID: 7, ActivityID: activity.ID},
	}
}

func (e *testEnv) category(t *testing.T, name string) int64 {
	t.Helper()
	id, err := e.categories.Create(context.Background(), e.sess, CreateCategoryInput{
		ActivityID: model.SomeID(e.sess.ActivityID),
		Name:       name,
	})
	if err != nil {
		t.Fatalf("setup: creating category %q: %v", name, err)
	}
	return id
}

func (e *testEnv) snip(t *testing.T, categoryID int64, name, lang string) int64 {
	t.Helper()
	id, err := e.snips.Create(context.Background(), e.sess, CreateSnipInput{
		Category: ExistingCategory{ID: categoryID},
		Name:     name,
		Language: lang,
		Code:     "code of " + name,
	})
	if err != nil {
		t.Fatalf("setup: creating snip %q: %v", name, err)
	}
	return id
}
