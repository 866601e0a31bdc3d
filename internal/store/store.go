package store

import (
	"context"

	"github.com/shelfward/shelfward/internal/domain"
)

// BookStore provides row-level access to books.
type BookStore interface {
	// InsertBook inserts a book and returns its new id.
	// The book must be decorated so its author text can be denormalized.
	InsertBook(ctx context.Context, book *domain.Book) (int64, error)

	// UpdateBook performs a full row update of an existing book.
	// Returns ErrNotFound if the book does not exist.
	UpdateBook(ctx context.Context, book *domain.Book) error

	// GetBook returns the undecorated book with the given id, or ErrNotFound.
	GetBook(ctx context.Context, id int64) (*domain.Book, error)

	// DeleteBook removes a book row and its label associations.
	// Returns ErrNotFound if the book does not exist.
	DeleteBook(ctx context.Context, id int64) error

	// UIDExists reports whether any book carries the given uid.
	UIDExists(ctx context.Context, uid string) (bool, error)

	// DuplicatesOf returns the ids of books that look like duplicates of the
	// described book: same title with the same leading author, or a matching
	// non-empty ISBN. firstAuthorID zero means the book has no author, and an
	// empty isbn disables the ISBN leg. excludeID is left out of the result.
	DuplicatesOf(ctx context.Context, title string, firstAuthorID int64, isbn string, excludeID int64) ([]int64, error)

	// CountAllBooks returns the total number of books.
	CountAllBooks(ctx context.Context) (int64, error)
}

// LabelStore provides row-level access to labels and book/label associations.
type LabelStore interface {
	// GetLabel returns the label with the given id, or ErrNotFound.
	GetLabel(ctx context.Context, id int64) (*domain.Label, error)

	// FindLabel returns the label with the given type and name, or ErrNotFound.
	FindLabel(ctx context.Context, t domain.LabelType, name string) (*domain.Label, error)

	// InsertLabel inserts a label and returns its new id.
	// Returns ErrAlreadyExists when a label with the same type and name exists.
	InsertLabel(ctx context.Context, label *domain.Label) (int64, error)

	// UpdateLabelName renames a label. Returns ErrNotFound if it does not
	// exist and ErrAlreadyExists if the new name is already taken.
	UpdateLabelName(ctx context.Context, id int64, name string) error

	// DeleteLabel removes a label and its book associations.
	DeleteLabel(ctx context.Context, id int64) error

	// DeleteUnusedLabels removes labels referenced by no book and returns
	// how many were removed.
	DeleteUnusedLabels(ctx context.Context) (int64, error)

	// MergeLabels repoints every association of fromID to intoID and
	// removes the fromID label.
	MergeLabels(ctx context.Context, fromID, intoID int64) error

	// LabelsOfType returns all labels of the given type sorted by name.
	LabelsOfType(ctx context.Context, t domain.LabelType) ([]domain.Label, error)

	// SearchLabels returns labels of the given type whose name starts with
	// the given prefix, sorted by name. An empty prefix matches all.
	SearchLabels(ctx context.Context, t domain.LabelType, prefix string, limit int) ([]domain.Label, error)

	// BookLabels returns a book's labels in display order.
	BookLabels(ctx context.Context, bookID int64) ([]domain.Label, error)

	// SetBookLabels replaces a book's label associations with the given ids,
	// preserving their order, in a single transaction.
	SetBookLabels(ctx context.Context, bookID int64, labelIDs []int64) error

	// CountAllLabels returns the total number of labels.
	CountAllLabels(ctx context.Context) (int64, error)

	// LabelTypeCounts returns the number of labels per type. Types with no
	// labels are absent from the map.
	LabelTypeCounts(ctx context.Context) (map[domain.LabelType]int64, error)
}

// QueryStore answers catalog queries. Every method honors the query's mode,
// text, filters, exclusion and sort order.
type QueryStore interface {
	// ListBooks returns one page of undecorated books matching the query.
	ListBooks(ctx context.Context, q domain.Query, limit, offset int) ([]*domain.Book, error)

	// CountBooks returns the number of books matching the query.
	CountBooks(ctx context.Context, q domain.Query) (int64, error)

	// ListBookIDs returns the ids of all books matching the query, in the
	// query's sort order.
	ListBookIDs(ctx context.Context, q domain.Query) ([]int64, error)

	// Histogram returns, for each label of the given type attached to a book
	// matching the query, the number of such books. labelQuery optionally
	// narrows the result to labels whose name starts with that prefix.
	Histogram(ctx context.Context, t domain.LabelType, q domain.Query, labelQuery string) ([]domain.Histo, error)
}

// Store is the persistence boundary of the catalog.
type Store interface {
	BookStore
	LabelStore
	QueryStore

	Close() error
}
