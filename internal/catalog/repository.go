// Package catalog orchestrates books, labels and queries on top of the
// store. It owns the label cache, book decoration and save sequencing.
package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/errors"
	"github.com/shelfward/shelfward/internal/images"
	"github.com/shelfward/shelfward/internal/logger"
	"github.com/shelfward/shelfward/internal/store"
)

// Repository is the single entry point for catalog reads and writes.
type Repository struct {
	store       store.Store
	images      images.Store
	cache       *LabelCache
	log         *logger.Logger
	defaultSort domain.SortOrder

	// now is swappable so tests control timestamps.
	now func() time.Time

	mu        sync.Mutex
	listeners []Listener
}

// New creates a Repository over the given store and image store.
func New(s store.Store, img images.Store, log *logger.Logger, defaultSort domain.SortOrder) *Repository {
	return &Repository{
		store:       s,
		images:      img,
		cache:       NewLabelCache(s, log),
		log:         log,
		defaultSort: defaultSort,
		now:         time.Now,
	}
}

// AddListener registers a lifecycle listener.
func (r *Repository) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// RemoveListener unregisters a previously added listener.
func (r *Repository) RemoveListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *Repository) eachListener(fn func(Listener)) {
	r.mu.Lock()
	snapshot := make([]Listener, len(r.listeners))
	copy(snapshot, r.listeners)
	r.mu.Unlock()

	for _, l := range snapshot {
		fn(l)
	}
}

// NewBook returns a fresh decorated book ready for editing. Listeners get
// a chance to prefill fields before it is handed out.
func (r *Repository) NewBook() *domain.Book {
	b := domain.NewBook()
	r.eachListener(func(l Listener) { l.BookCreated(b) })
	return b
}

// NewQuery returns a query preset to the configured default sort order.
func (r *Repository) NewQuery() domain.Query {
	return domain.NewQuery(r.defaultSort)
}

// Label returns the interned label for the given type and name, creating
// it when needed.
func (r *Repository) Label(ctx context.Context, t domain.LabelType, name string) (*domain.Label, error) {
	return r.cache.GetOrCreate(ctx, t, name)
}

// LabelByID returns the interned label with the given id.
func (r *Repository) LabelByID(ctx context.Context, id int64) (*domain.Label, error) {
	return r.cache.ByID(ctx, id)
}

// LabelIfExists returns the interned label for the pair, or nil when the
// catalog does not have it. Unlike Label it never creates a row, for flows
// restricted to existing values.
func (r *Repository) LabelIfExists(ctx context.Context, t domain.LabelType, name string) (*domain.Label, error) {
	existing, err := r.store.FindLabel(ctx, t, strings.TrimSpace(name))
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storef(err, "find label %q", name)
	}
	return r.cache.ByID(ctx, existing.ID)
}

// Labels returns all labels of a type sorted by name.
func (r *Repository) Labels(ctx context.Context, t domain.LabelType) ([]domain.Label, error) {
	labels, err := r.store.LabelsOfType(ctx, t)
	if err != nil {
		return nil, errors.Storef(err, "list labels of type %s", t)
	}
	return labels, nil
}

// SearchLabels returns labels of a type whose name starts with the prefix.
func (r *Repository) SearchLabels(ctx context.Context, t domain.LabelType, prefix string, limit int) ([]domain.Label, error) {
	labels, err := r.store.SearchLabels(ctx, t, prefix, limit)
	if err != nil {
		return nil, errors.Storef(err, "search labels of type %s", t)
	}
	return labels, nil
}

// GetBook loads a book by id, decorated with its labels.
func (r *Repository) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := r.store.GetBook(ctx, id)
	if err == store.ErrNotFound {
		return nil, errors.NotFoundf("book %d not found", id)
	}
	if err != nil {
		return nil, errors.Storef(err, "get book %d", id)
	}
	if err := r.decorate(ctx, b); err != nil {
		return nil, err
	}
	b.Status = domain.StatusLoaded
	return b, nil
}

// decorate loads a book's labels through the cache so every book holding
// a given label shares the same value.
func (r *Repository) decorate(ctx context.Context, b *domain.Book) error {
	raw, err := r.store.BookLabels(ctx, b.ID)
	if err != nil {
		return errors.Storef(err, "load labels of book %d", b.ID)
	}

	labels := make([]domain.Label, 0, len(raw))
	for _, l := range raw {
		interned, err := r.cache.ByID(ctx, l.ID)
		if err != nil {
			return err
		}
		labels = append(labels, *interned)
	}
	b.Decorate(labels)
	return nil
}

// Save persists a book, inserting or updating depending on whether it has
// an id yet. The book must be decorated and titled. With persistImage set,
// pending cover bytes are written to the image store before the row; an
// image failure is logged and the row is saved without a cover rather than
// losing the book.
func (r *Repository) Save(ctx context.Context, b *domain.Book, persistImage bool) error {
	if !b.Decorated() {
		return errors.NotDecorated("save requires a decorated book")
	}
	if b.Title == "" {
		return errors.Validation("book title is required")
	}
	return r.doSave(ctx, b, persistImage)
}

func (r *Repository) doSave(ctx context.Context, b *domain.Book, persistImage bool) error {
	now := r.now().Unix()

	if persistImage && len(b.CoverData) > 0 {
		filename, err := r.images.Save(ctx, b.CoverData)
		if err != nil {
			r.log.Warn("cover image not saved", "title", b.Title, "error", err)
		} else {
			b.ImageFilename = filename
			b.CoverData = nil
		}
	}

	insert := b.ID == 0

	if insert {
		if b.DateAdded == 0 {
			b.DateAdded = now
		}
		if b.UID == "" {
			authorText, err := b.AuthorText()
			if err != nil {
				return err
			}
			b.UID = NewUID(r.now(), b.Title, authorText)
		}
	} else {
		b.LastModified = now
	}

	if insert {
		r.eachListener(func(l Listener) { l.BookInserting(b) })

		id, err := r.store.InsertBook(ctx, b)
		if err != nil {
			return errors.Storef(err, "insert book %q", b.Title)
		}
		b.ID = id

		if err := r.saveLabels(ctx, b); err != nil {
			return err
		}
	} else {
		r.eachListener(func(l Listener) { l.BookUpdating(b) })

		if err := r.store.UpdateBook(ctx, b); err != nil {
			if err == store.ErrNotFound {
				return errors.NotFoundf("book %d not found", b.ID)
			}
			return errors.Storef(err, "update book %d", b.ID)
		}

		if b.LabelsChanged() {
			if err := r.saveLabels(ctx, b); err != nil {
				return err
			}
		}
	}

	b.ResetLabelsChanged()
	b.Status = domain.StatusSaved
	return nil
}

// saveLabels rewrites the book's label associations. Labels the book
// carries without an id are interned first, which assigns one.
func (r *Repository) saveLabels(ctx context.Context, b *domain.Book) error {
	labels, err := b.Labels()
	if err != nil {
		return err
	}

	resolved := make([]domain.Label, 0, len(labels))
	ids := make([]int64, 0, len(labels))
	for _, l := range labels {
		if l.ID == 0 {
			interned, err := r.cache.GetOrCreate(ctx, l.Type, l.Name)
			if err != nil {
				return err
			}
			l = *interned
		}
		resolved = append(resolved, l)
		ids = append(ids, l.ID)
	}

	if err := r.store.SetBookLabels(ctx, b.ID, ids); err != nil {
		return errors.Storef(err, "set labels of book %d", b.ID)
	}

	// Push the assigned ids back into the book so a later save does not
	// re-intern.
	return b.SetLabels(resolved)
}

// SaveIfAbsent saves the book unless one with the same uid is already in
// the catalog, so re-running an import does not duplicate rows. Books
// without a uid yet are always saved (doSave assigns one). Returns true
// when the book was saved.
func (r *Repository) SaveIfAbsent(ctx context.Context, b *domain.Book, persistImage bool) (bool, error) {
	if b.UID != "" {
		exists, err := r.store.UIDExists(ctx, b.UID)
		if err != nil {
			return false, errors.Storef(err, "check uid %s", b.UID)
		}
		if exists {
			r.log.Debug("skipping already imported book", "title", b.Title, "uid", b.UID)
			return false, nil
		}
	}
	if err := r.Save(ctx, b, persistImage); err != nil {
		return false, err
	}
	return true, nil
}

// GetDuplicates returns decorated books that look like duplicates of b:
// same title with the same leading author, or a matching non-empty ISBN.
// The book itself is excluded when it is already saved.
func (r *Repository) GetDuplicates(ctx context.Context, b *domain.Book) ([]*domain.Book, error) {
	if !b.Decorated() {
		return nil, errors.NotDecorated("duplicate check requires a decorated book")
	}

	first, err := b.FirstLabel(domain.TypeAuthors)
	if err != nil {
		return nil, err
	}

	// Zero means authorless and acts as a wildcard, any same-title book
	// matches. An author the store has never seen cannot match anything,
	// the negative id keeps the title leg inert while the ISBN leg still
	// applies.
	var firstAuthorID int64
	if first != nil {
		firstAuthorID = first.ID
		if firstAuthorID == 0 {
			existing, err := r.store.FindLabel(ctx, domain.TypeAuthors, first.Name)
			switch err {
			case nil:
				firstAuthorID = existing.ID
			case store.ErrNotFound:
				firstAuthorID = -1
			default:
				return nil, errors.Storef(err, "find author %q", first.Name)
			}
		}
	}

	ids, err := r.store.DuplicatesOf(ctx, b.Title, firstAuthorID, b.ISBN, b.ID)
	if err != nil {
		return nil, errors.Storef(err, "find duplicates of %q", b.Title)
	}

	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		dup, err := r.GetBook(ctx, id)
		if err != nil {
			return nil, err
		}
		books = append(books, dup)
	}
	return books, nil
}

// DeleteBook removes a book, its label associations and its cover image.
// Listeners are notified first, while the row still exists.
func (r *Repository) DeleteBook(ctx context.Context, b *domain.Book) error {
	r.eachListener(func(l Listener) { l.BookDeleted(b) })

	if err := r.store.DeleteBook(ctx, b.ID); err != nil {
		if err == store.ErrNotFound {
			return errors.NotFoundf("book %d not found", b.ID)
		}
		return errors.Storef(err, "delete book %d", b.ID)
	}

	if b.ImageFilename != "" {
		if err := r.images.Delete(ctx, b.ImageFilename); err != nil {
			r.log.Warn("cover image not deleted", "filename", b.ImageFilename, "error", err)
		}
	}

	b.Status = domain.StatusDeleted
	return nil
}

// RenameLabel renames a label everywhere it appears.
func (r *Repository) RenameLabel(ctx context.Context, id int64, name string) error {
	if name == "" {
		return errors.Validation("label name cannot be empty")
	}
	if err := r.store.UpdateLabelName(ctx, id, name); err != nil {
		switch err {
		case store.ErrNotFound:
			return errors.NotFoundf("label %d not found", id)
		case store.ErrAlreadyExists:
			return errors.Validationf("label name %q is already taken", name)
		default:
			return errors.Storef(err, "rename label %d", id)
		}
	}
	r.cache.Rename(id, name)
	return nil
}

// DeleteLabel removes a label and detaches it from every book.
func (r *Repository) DeleteLabel(ctx context.Context, id int64) error {
	if err := r.store.DeleteLabel(ctx, id); err != nil {
		if err == store.ErrNotFound {
			return errors.NotFoundf("label %d not found", id)
		}
		return errors.Storef(err, "delete label %d", id)
	}
	r.cache.Remove(id)
	return nil
}

// MergeLabels folds the label fromID into intoID: every book carrying the
// source ends up carrying the target, and the source is deleted.
func (r *Repository) MergeLabels(ctx context.Context, fromID, intoID int64) error {
	if fromID == intoID {
		return errors.Validation("cannot merge a label into itself")
	}
	if _, err := r.cache.ByID(ctx, intoID); err != nil {
		return err
	}
	if err := r.store.MergeLabels(ctx, fromID, intoID); err != nil {
		if err == store.ErrNotFound {
			return errors.NotFoundf("label %d not found", fromID)
		}
		return errors.Storef(err, "merge label %d into %d", fromID, intoID)
	}
	r.cache.Remove(fromID)
	return nil
}

// DeleteUnusedLabels sweeps labels no book references and returns how
// many were removed.
func (r *Repository) DeleteUnusedLabels(ctx context.Context) (int64, error) {
	removed, err := r.store.DeleteUnusedLabels(ctx)
	if err != nil {
		return 0, errors.Storef(err, "delete unused labels")
	}
	if removed > 0 {
		// The sweep does not report which ids went, start over.
		r.cache.Clear()
		r.log.Info("removed unused labels", "count", removed)
	}
	return removed, nil
}

// GetPagedList returns one page of decorated books matching the query.
func (r *Repository) GetPagedList(ctx context.Context, q domain.Query, limit, offset int) ([]*domain.Book, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	books, err := r.store.ListBooks(ctx, q, limit, offset)
	if err != nil {
		return nil, errors.Storef(err, "list books")
	}
	for _, b := range books {
		if err := r.decorate(ctx, b); err != nil {
			return nil, err
		}
		b.Status = domain.StatusLoaded
	}
	return books, nil
}

// GetCount returns the number of books matching the query.
func (r *Repository) GetCount(ctx context.Context, q domain.Query) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	count, err := r.store.CountBooks(ctx, q)
	if err != nil {
		return 0, errors.Storef(err, "count books")
	}
	return count, nil
}

// GetIDsList returns the ids of every book matching the query, sorted.
func (r *Repository) GetIDsList(ctx context.Context, q domain.Query) ([]int64, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	ids, err := r.store.ListBookIDs(ctx, q)
	if err != nil {
		return nil, errors.Storef(err, "list book ids")
	}
	return ids, nil
}

// GetHisto returns the label histogram of the given type over the books
// matching the query. labelQuery optionally narrows the buckets to a
// label-name prefix.
func (r *Repository) GetHisto(ctx context.Context, t domain.LabelType, q domain.Query, labelQuery string) ([]domain.Histo, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	histos, err := r.store.Histogram(ctx, t, q, labelQuery)
	if err != nil {
		return nil, errors.Storef(err, "histogram of %s", t)
	}
	return histos, nil
}

// CountBooks returns the total number of books in the catalog.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	count, err := r.store.CountAllBooks(ctx)
	if err != nil {
		return 0, errors.Storef(err, "count all books")
	}
	return count, nil
}

// CountLabels returns the total number of labels in the catalog.
func (r *Repository) CountLabels(ctx context.Context) (int64, error) {
	count, err := r.store.CountAllLabels(ctx)
	if err != nil {
		return 0, errors.Storef(err, "count all labels")
	}
	return count, nil
}

// LabelTypeCounts returns the number of labels per type, for cleanup views.
func (r *Repository) LabelTypeCounts(ctx context.Context) (map[domain.LabelType]int64, error) {
	counts, err := r.store.LabelTypeCounts(ctx)
	if err != nil {
		return nil, errors.Storef(err, "count labels by type")
	}
	return counts, nil
}
