package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, uid, title, subtitle, isbn, summary, year_published,
	number_of_pages, img_url, image_filename, date_added, last_modified`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Book. The returned book is not decorated.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	err := scanner.Scan(
		&b.ID,
		&b.UID,
		&b.Title,
		&b.Subtitle,
		&b.ISBN,
		&b.Summary,
		&b.YearPublished,
		&b.NumberOfPages,
		&b.ImgURL,
		&b.ImageFilename,
		&b.DateAdded,
		&b.LastModified,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// InsertBook inserts a new book row and returns its id.
// The book must be decorated, its author text feeds the full-text index.
func (s *Store) InsertBook(ctx context.Context, b *domain.Book) (int64, error) {
	authorText, err := b.AuthorText()
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (
			uid, title, subtitle, isbn, summary, year_published,
			number_of_pages, img_url, image_filename, date_added,
			last_modified, author_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UID,
		b.Title,
		b.Subtitle,
		b.ISBN,
		b.Summary,
		b.YearPublished,
		b.NumberOfPages,
		b.ImgURL,
		b.ImageFilename,
		b.DateAdded,
		b.LastModified,
		authorText,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateBook performs a full row update on an existing book.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	authorText, err := b.AuthorText()
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			uid = ?,
			title = ?,
			subtitle = ?,
			isbn = ?,
			summary = ?,
			year_published = ?,
			number_of_pages = ?,
			img_url = ?,
			image_filename = ?,
			date_added = ?,
			last_modified = ?,
			author_text = ?
		WHERE id = ?`,
		b.UID,
		b.Title,
		b.Subtitle,
		b.ISBN,
		b.Summary,
		b.YearPublished,
		b.NumberOfPages,
		b.ImgURL,
		b.ImageFilename,
		b.DateAdded,
		b.LastModified,
		authorText,
		b.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetBook retrieves a book by id.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBook removes a book row. Label associations go with it via the
// ON DELETE CASCADE on book_labels.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UIDExists reports whether any book carries the given uid.
func (s *Store) UIDExists(ctx context.Context, uid string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM books WHERE uid = ? LIMIT 1`, uid).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DuplicatesOf returns the ids of likely duplicates of the described book:
// same title with the same leading author, or a matching non-empty ISBN.
// A zero firstAuthorID is a wildcard, any same-title book matches.
// excludeID is left out so a saved book does not report itself.
func (s *Store) DuplicatesOf(ctx context.Context, title string, firstAuthorID int64, isbn string, excludeID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id FROM books b
		WHERE b.id <> ?
		AND (
			(b.title = ? AND (? = 0 OR COALESCE((
				SELECT bl.label_id FROM book_labels bl
				JOIN labels l ON l.id = bl.label_id
				WHERE bl.book_id = b.id AND l.type = ?
				ORDER BY bl.sort_key LIMIT 1), 0) = ?))
			OR (? <> '' AND b.isbn = ?)
		)
		ORDER BY b.id`,
		excludeID,
		title,
		firstAuthorID,
		int(domain.TypeAuthors),
		firstAuthorID,
		isbn,
		isbn,
	)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// CountAllBooks returns the total number of books.
func (s *Store) CountAllBooks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

// scanIDs drains a single-column id result set.
func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
