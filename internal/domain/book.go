package domain

import (
	"strings"
	"sync"

	"github.com/shelfward/shelfward/internal/errors"
)

// BookStatus tracks where an in-memory book stands in its lifecycle.
type BookStatus int

// Book lifecycle states.
const (
	StatusCreated BookStatus = iota
	StatusLoaded
	StatusSaved
	StatusDeleted
)

// String returns the status name.
func (s BookStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusLoaded:
		return "loaded"
	case StatusSaved:
		return "saved"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Book is a catalog entry. Scalar fields are plain; the label collection is
// lazily decorated: a book loaded from the store carries no labels until the
// repository decorates it, and every label accessor requires decoration.
//
// A freshly constructed book (no id yet) starts decorated with an empty list.
type Book struct {
	ID            int64  `json:"id"`
	UID           string `json:"uid,omitempty"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	Summary       string `json:"summary,omitempty"`
	YearPublished string `json:"year_published,omitempty"`
	NumberOfPages string `json:"number_of_pages,omitempty"`
	ImgURL        string `json:"img_url,omitempty"`
	ImageFilename string `json:"image_filename,omitempty"`

	// DateAdded and LastModified are unix seconds; zero means unset.
	DateAdded    int64 `json:"date_added,omitempty"`
	LastModified int64 `json:"last_modified,omitempty"`

	Status BookStatus `json:"-"`

	// CoverData carries cover bytes to the image store on save.
	// Never persisted with the row.
	CoverData []byte `json:"-"`

	mu            sync.Mutex
	labels        []Label
	decorated     bool
	labelsChanged bool
}

// NewBook creates a fresh, unsaved book. It is already decorated with an
// empty label list so labels can be attached before the first save.
func NewBook() *Book {
	return &Book{
		Status:    StatusCreated,
		labels:    []Label{},
		decorated: true,
	}
}

// Decorate attaches the book's label collection, exactly once.
// Calling it on an already decorated book is a no-op that returns the
// existing list; the stored collection is never overwritten.
func (b *Book) Decorate(labels []Label) []Label {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.decorated {
		b.labels = make([]Label, len(labels))
		copy(b.labels, labels)
		b.decorated = true
	}
	return b.labels
}

// Decorated reports whether the label collection has been attached.
func (b *Book) Decorated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.decorated
}

// LabelsChanged reports whether the label collection was mutated since
// decoration (or since the last save reset it).
func (b *Book) LabelsChanged() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.labelsChanged
}

// ResetLabelsChanged clears the dirty flag after the associations were written.
func (b *Book) ResetLabelsChanged() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labelsChanged = false
}

func (b *Book) requireDecorated() error {
	if !b.decorated {
		return errors.ErrNotDecorated
	}
	return nil
}

// Labels returns the full ordered label collection.
func (b *Book) Labels() ([]Label, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return nil, err
	}
	out := make([]Label, len(b.labels))
	copy(out, b.labels)
	return out, nil
}

// GetLabels returns the labels of one type, preserving insertion order.
func (b *Book) GetLabels(t LabelType) ([]Label, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return nil, err
	}
	var out []Label
	for _, l := range b.labels {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out, nil
}

// FirstLabel returns the first label of the given type, or nil.
func (b *Book) FirstLabel(t LabelType) (*Label, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return nil, err
	}
	for _, l := range b.labels {
		if l.Type == t {
			label := l
			return &label, nil
		}
	}
	return nil, nil
}

// SetLabels replaces the whole label collection without marking the book
// dirty. For use after persisting, when the stored associations already
// match the new values.
func (b *Book) SetLabels(labels []Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return err
	}
	b.labels = make([]Label, len(labels))
	copy(b.labels, labels)
	return nil
}

// AddLabel appends a label to the collection and marks it dirty.
func (b *Book) AddLabel(label Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return err
	}
	b.labels = append(b.labels, label)
	b.labelsChanged = true
	return nil
}

// SetMultiLabels replaces every label of the given type with the new list,
// preserving the order of the new values.
func (b *Book) SetMultiLabels(t LabelType, labels []Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return err
	}
	kept := b.labels[:0:0]
	for _, l := range b.labels {
		if l.Type != t {
			kept = append(kept, l)
		} else {
			b.labelsChanged = true
		}
	}
	for _, l := range labels {
		kept = append(kept, l)
		b.labelsChanged = true
	}
	b.labels = kept
	return nil
}

// SetSingleLabel replaces the label of a single-valued type.
// A nil value clears it.
func (b *Book) SetSingleLabel(t LabelType, label *Label) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.requireDecorated(); err != nil {
		return err
	}
	for i, l := range b.labels {
		if l.Type == t {
			b.labels = append(b.labels[:i], b.labels[i+1:]...)
			b.labelsChanged = true
			break
		}
	}
	if label != nil {
		b.labels = append(b.labels, *label)
		b.labelsChanged = true
	}
	return nil
}

// Typed views over the label collection.

// Authors returns the ordered author labels.
func (b *Book) Authors() ([]Label, error) { return b.GetLabels(TypeAuthors) }

// SetAuthors replaces the author labels.
func (b *Book) SetAuthors(labels []Label) error { return b.SetMultiLabels(TypeAuthors, labels) }

// Genres returns the ordered genre labels.
func (b *Book) Genres() ([]Label, error) { return b.GetLabels(TypeGenres) }

// SetGenres replaces the genre labels.
func (b *Book) SetGenres(labels []Label) error { return b.SetMultiLabels(TypeGenres, labels) }

// Publisher returns the publisher label, or nil.
func (b *Book) Publisher() (*Label, error) { return b.FirstLabel(TypePublisher) }

// SetPublisher replaces or clears the publisher label.
func (b *Book) SetPublisher(label *Label) error { return b.SetSingleLabel(TypePublisher, label) }

// Location returns the physical location label, or nil.
func (b *Book) Location() (*Label, error) { return b.FirstLabel(TypeLocation) }

// SetLocation replaces or clears the location label.
func (b *Book) SetLocation(label *Label) error { return b.SetSingleLabel(TypeLocation, label) }

// Language returns the language label, or nil.
func (b *Book) Language() (*Label, error) { return b.FirstLabel(TypeLanguage) }

// SetLanguage replaces or clears the language label.
func (b *Book) SetLanguage(label *Label) error { return b.SetSingleLabel(TypeLanguage, label) }

// AuthorText returns the concatenated author names, the derived column the
// full-text index matches against.
func (b *Book) AuthorText() (string, error) {
	authors, err := b.Authors()
	if err != nil {
		return "", err
	}
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", "), nil
}

// HasCover reports whether a cover file has been stored for this book.
func (b *Book) HasCover() bool {
	return b.ImageFilename != ""
}
