package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/errors"
	"github.com/shelfward/shelfward/internal/logger"
	"github.com/shelfward/shelfward/internal/store"
)

// LabelCache interns labels: one *domain.Label per (type, name) pair for
// the lifetime of the process. It sits in front of the store's labels
// table and leans on its unique constraint to resolve creation races.
type LabelCache struct {
	store store.LabelStore
	log   *logger.Logger

	mu    sync.Mutex
	byKey map[domain.LabelKey]*domain.Label
	byID  map[int64]*domain.Label
}

// NewLabelCache creates an empty cache over the given label store.
func NewLabelCache(s store.LabelStore, log *logger.Logger) *LabelCache {
	return &LabelCache{
		store: s,
		log:   log,
		byKey: make(map[domain.LabelKey]*domain.Label),
		byID:  make(map[int64]*domain.Label),
	}
}

// GetOrCreate returns the interned label for the given type and name,
// creating the row when it does not exist yet. Concurrent calls with the
// same pair all get the same pointer. The name is trimmed; an empty name
// is a validation error.
func (c *LabelCache) GetOrCreate(ctx context.Context, t domain.LabelType, name string) (*domain.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("label name cannot be empty")
	}
	key := domain.LabelKey{Type: t, Name: name}

	// The mutex spans the whole read-miss-insert path so racing callers
	// serialize here instead of both inserting.
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.byKey[key]; ok {
		return l, nil
	}

	l, err := c.store.FindLabel(ctx, t, name)
	if err == nil {
		return c.put(l), nil
	}
	if err != store.ErrNotFound {
		return nil, errors.Storef(err, "find label %q", name)
	}

	l = &domain.Label{Type: t, Name: name}
	id, err := c.store.InsertLabel(ctx, l)
	if err == nil {
		l.ID = id
		return c.put(l), nil
	}
	if err != store.ErrAlreadyExists {
		return nil, errors.Storef(err, "insert label %q", name)
	}

	// Another writer beat us past the unique constraint, outside this
	// process. The row must exist now; not finding it means the cache and
	// the store disagree about the world.
	l, err = c.store.FindLabel(ctx, t, name)
	if err == store.ErrNotFound {
		return nil, errors.CacheInconsistencyf("label %q exists per unique constraint but cannot be read back", name)
	}
	if err != nil {
		return nil, errors.Storef(err, "re-read label %q", name)
	}
	return c.put(l), nil
}

// ByID returns the interned label with the given id, reading through to
// the store on a miss. A missing id is fatal, ids come from join rows
// that should never dangle.
func (c *LabelCache) ByID(ctx context.Context, id int64) (*domain.Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.byID[id]; ok {
		return l, nil
	}

	l, err := c.store.GetLabel(ctx, id)
	if err == store.ErrNotFound {
		return nil, errors.NotFoundf("label %d not found", id)
	}
	if err != nil {
		return nil, errors.Storef(err, "get label %d", id)
	}
	return c.put(l), nil
}

// Rename updates the cached entry after the store row was renamed.
func (c *LabelCache) Rename(id int64, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byKey, l.Key())
	l.Name = name
	c.byKey[l.Key()] = l
}

// Remove evicts a label after its store row was deleted or merged away.
func (c *LabelCache) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.byID[id]
	if !ok {
		return
	}
	delete(c.byKey, l.Key())
	delete(c.byID, id)
}

// Clear drops every cached entry. Used after bulk label operations whose
// affected ids are not known one by one.
func (c *LabelCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKey = make(map[domain.LabelKey]*domain.Label)
	c.byID = make(map[int64]*domain.Label)
}

// put indexes a label under both maps. Callers hold c.mu.
func (c *LabelCache) put(l *domain.Label) *domain.Label {
	// Keep the first pointer if a concurrent path already indexed the id.
	if existing, ok := c.byID[l.ID]; ok {
		return existing
	}
	c.byKey[l.Key()] = l
	c.byID[l.ID] = l
	return l
}
