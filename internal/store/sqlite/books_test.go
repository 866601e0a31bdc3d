package sqlite

import (
	"context"
	"testing"

	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/errors"
	"github.com/shelfward/shelfward/internal/store"
)

func TestInsertGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := domain.NewBook()
	b.UID = "ABC-DEF"
	b.Title = "Dune"
	b.Subtitle = "Book One"
	b.ISBN = "9780441172719"
	b.Summary = "A desert planet."
	b.YearPublished = "1965"
	b.NumberOfPages = "412"
	b.ImgURL = "https://example.com/dune.jpg"
	b.ImageFilename = "cov-dune.jpg"
	b.DateAdded = 1700000000
	b.LastModified = 1700000100

	id, err := s.InsertBook(ctx, b)
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := s.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.ID != id || got.UID != b.UID || got.Title != b.Title ||
		got.Subtitle != b.Subtitle || got.ISBN != b.ISBN ||
		got.Summary != b.Summary || got.YearPublished != b.YearPublished ||
		got.NumberOfPages != b.NumberOfPages || got.ImgURL != b.ImgURL ||
		got.ImageFilename != b.ImageFilename ||
		got.DateAdded != b.DateAdded || got.LastModified != b.LastModified {
		t.Errorf("round-trip mismatch: got %+v", got)
	}

	// Books come back undecorated.
	if got.Decorated() {
		t.Error("expected loaded book to be undecorated")
	}
}

func TestInsertBookRequiresDecoration(t *testing.T) {
	s := newTestStore(t)

	b := &domain.Book{Title: "Undecorated"}
	if _, err := s.InsertBook(context.Background(), b); !errors.Is(err, errors.ErrNotDecorated) {
		t.Fatalf("expected ErrNotDecorated, got %v", err)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetBook(context.Background(), 12345); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := insertTestBook(t, s, "Dune", "")
	b.Title = "Dune Messiah"
	b.LastModified = 1700000200

	if err := s.UpdateBook(ctx, b); err != nil {
		t.Fatalf("update book: %v", err)
	}

	got, err := s.GetBook(ctx, b.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Title != "Dune Messiah" || got.LastModified != 1700000200 {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestUpdateBookNotFound(t *testing.T) {
	s := newTestStore(t)

	b := domain.NewBook()
	b.ID = 999
	b.Title = "Ghost"
	if err := s.UpdateBook(context.Background(), b); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := insertTestBook(t, s, "Dune", "", author("Frank Herbert"))

	if err := s.DeleteBook(ctx, b.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, err := s.GetBook(ctx, b.ID); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Associations are gone, the label itself survives.
	labels, err := s.BookLabels(ctx, b.ID)
	if err != nil {
		t.Fatalf("book labels: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no associations, got %d", len(labels))
	}
	if _, err := s.FindLabel(ctx, domain.TypeAuthors, "Frank Herbert"); err != nil {
		t.Errorf("label should survive book deletion: %v", err)
	}

	if err := s.DeleteBook(ctx, b.ID); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDuplicatesOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	herbert := insertTestBook(t, s, "Dune", "", author("Frank Herbert"))
	copy2 := insertTestBook(t, s, "Dune", "", author("Frank Herbert"))
	otherAuthor := insertTestBook(t, s, "Dune", "", author("Someone Else"))
	isbnTwin := insertTestBook(t, s, "Completely Different", "9780441172719")
	insertTestBook(t, s, "Unrelated", "1111111111")

	authorID, err := s.FindLabel(ctx, domain.TypeAuthors, "Frank Herbert")
	if err != nil {
		t.Fatalf("find author: %v", err)
	}

	// Same title and same leading author, self excluded.
	ids, err := s.DuplicatesOf(ctx, "Dune", authorID.ID, "", herbert.ID)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if len(ids) != 1 || ids[0] != copy2.ID {
		t.Errorf("expected [%d], got %v", copy2.ID, ids)
	}

	// The other-author book is only reachable through its own author id.
	ids, err = s.DuplicatesOf(ctx, "Dune", authorID.ID, "", copy2.ID)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if len(ids) != 1 || ids[0] != herbert.ID {
		t.Errorf("expected [%d], got %v", herbert.ID, ids)
	}

	// ISBN leg matches regardless of title.
	ids, err = s.DuplicatesOf(ctx, "No Such Title", 0, "9780441172719", 0)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if len(ids) != 1 || ids[0] != isbnTwin.ID {
		t.Errorf("expected [%d], got %v", isbnTwin.ID, ids)
	}

	// Zero author id is a wildcard, the title alone matches.
	ids, err = s.DuplicatesOf(ctx, "Dune", 0, "", 0)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	want := map[int64]bool{herbert.ID: true, copy2.ID: true, otherAuthor.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("expected all Dune editions, got %v", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected duplicate id %d", id)
		}
	}

	// A negative author id keeps the title leg inert.
	ids, err = s.DuplicatesOf(ctx, "Dune", -1, "", 0)
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no matches, got %v", ids)
	}
}

func TestUIDExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := domain.NewBook()
	b.UID = "ABC-DEF"
	b.Title = "Dune"
	if _, err := s.InsertBook(ctx, b); err != nil {
		t.Fatalf("insert book: %v", err)
	}

	exists, err := s.UIDExists(ctx, "ABC-DEF")
	if err != nil {
		t.Fatalf("uid exists: %v", err)
	}
	if !exists {
		t.Error("expected uid to exist")
	}

	exists, err = s.UIDExists(ctx, "NO-SUCH")
	if err != nil {
		t.Fatalf("uid exists: %v", err)
	}
	if exists {
		t.Error("expected uid to be absent")
	}
}

func TestCountAllBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountAllBooks(ctx)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 books, got %d (%v)", count, err)
	}

	insertTestBook(t, s, "One", "")
	insertTestBook(t, s, "Two", "")

	count, err = s.CountAllBooks(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 books, got %d (%v)", count, err)
	}
}
