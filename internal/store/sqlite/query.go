package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfward/shelfward/internal/domain"
)

// bookQuery accumulates the WHERE clause shared by every query operation.
// All conditions range over the books table aliased as b.
type bookQuery struct {
	conds []string
	args  []any
}

// buildBookQuery translates a catalog query into SQL conditions. The query
// must already be validated.
func buildBookQuery(q domain.Query) bookQuery {
	var bq bookQuery

	// Duplicates and NoCover are whole-catalog maintenance scans; text,
	// filters and exclusion do not apply to them.
	switch q.Mode {
	case domain.ModeDuplicates:
		bq.conds = append(bq.conds, `b.id IN (`+duplicateIDsSQL+`)`)
		bq.args = append(bq.args, int(domain.TypeAuthors))
		return bq
	case domain.ModeNoCover:
		bq.conds = append(bq.conds, `b.image_filename = ''`)
		return bq
	}

	if q.HasText() {
		bq.conds = append(bq.conds,
			`b.id IN (SELECT rowid FROM books_fts WHERE books_fts MATCH ?)`)
		bq.args = append(bq.args, q.MatchText())
	}

	if ids := q.FilterIDs(); len(ids) > 0 {
		// One INTERSECT leg per filter, books carrying every label.
		legs := make([]string, len(ids))
		for i, id := range ids {
			legs[i] = `SELECT book_id FROM book_labels WHERE label_id = ?`
			bq.args = append(bq.args, id)
		}
		bq.conds = append(bq.conds,
			`b.id IN (`+strings.Join(legs, ` INTERSECT `)+`)`)
	}

	if q.WithoutLabelOfType != domain.TypeNone {
		bq.conds = append(bq.conds, `b.id NOT IN (
			SELECT bl.book_id FROM book_labels bl
			JOIN labels l ON l.id = bl.label_id
			WHERE l.type = ?)`)
		bq.args = append(bq.args, int(q.WithoutLabelOfType))
	}

	return bq
}

// duplicateIDsSQL selects every book that has a look-alike: another book
// with the same title sharing at least one author, or another book with the
// same non-empty ISBN. Each member of a duplicate group matches, so groups
// are reported whole. Takes the author label type as its one parameter.
const duplicateIDsSQL = `
	SELECT d.id FROM books d
	JOIN book_labels dl ON dl.book_id = d.id
	JOIN labels al ON al.id = dl.label_id AND al.type = ?
	JOIN book_labels ol ON ol.label_id = dl.label_id AND ol.book_id <> d.id
	JOIN books o ON o.id = ol.book_id AND o.title = d.title
	UNION
	SELECT d.id FROM books d
	WHERE d.isbn <> ''
	AND EXISTS (SELECT 1 FROM books o WHERE o.id <> d.id AND o.isbn = d.isbn)`

// whereSQL renders the accumulated conditions, empty when unconstrained.
func (bq bookQuery) whereSQL() string {
	if len(bq.conds) == 0 {
		return ``
	}
	return ` WHERE ` + strings.Join(bq.conds, ` AND `)
}

// orderSQL maps the query's sort order onto the books table. Ties always
// break on id so pagination is stable.
func orderSQL(sort domain.SortOrder) string {
	switch sort {
	case domain.SortByDateAdded:
		return ` ORDER BY b.date_added DESC, b.id ASC`
	default:
		return ` ORDER BY b.title ASC, b.id ASC`
	}
}

// ListBooks returns one page of undecorated books matching the query.
func (s *Store) ListBooks(ctx context.Context, q domain.Query, limit, offset int) ([]*domain.Book, error) {
	bq := buildBookQuery(q)

	sqlText := `SELECT ` + aliasedBookColumns + ` FROM books b` +
		bq.whereSQL() + orderSQL(q.SortBy) + ` LIMIT ? OFFSET ?`
	args := append(bq.args, limit, offset)

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// aliasedBookColumns qualifies bookColumns with the b alias used by the
// query builder.
var aliasedBookColumns = "b." + strings.Join(
	strings.Fields(strings.ReplaceAll(bookColumns, ",", " ")), ", b.")

// CountBooks returns the number of books matching the query.
func (s *Store) CountBooks(ctx context.Context, q domain.Query) (int64, error) {
	bq := buildBookQuery(q)

	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM books b`+bq.whereSQL(), bq.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}

// ListBookIDs returns the ids of every book matching the query, in the
// query's sort order.
func (s *Store) ListBookIDs(ctx context.Context, q domain.Query) ([]int64, error) {
	bq := buildBookQuery(q)

	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id FROM books b`+bq.whereSQL()+orderSQL(q.SortBy), bq.args...)
	if err != nil {
		return nil, fmt.Errorf("query book ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// Histogram counts, per label of the given type, the books matching the
// query that carry the label. labelQuery optionally narrows the labels to a
// name prefix via the label full-text index. SortByCount puts the biggest
// buckets first, every other order lists buckets by name.
func (s *Store) Histogram(ctx context.Context, t domain.LabelType, q domain.Query, labelQuery string) ([]domain.Histo, error) {
	bq := buildBookQuery(q)

	var sb strings.Builder
	sb.WriteString(`
		SELECT l.id, COUNT(*), l.name
		FROM book_labels bl
		JOIN labels l ON l.id = bl.label_id
		WHERE l.type = ?
		AND bl.book_id IN (SELECT b.id FROM books b` + bq.whereSQL() + `)`)
	args := append([]any{int(t)}, bq.args...)

	if labelQuery != "" {
		sb.WriteString(`
		AND l.id IN (SELECT rowid FROM labels_fts WHERE labels_fts MATCH ?)`)
		args = append(args, matchPrefix(labelQuery))
	}

	sb.WriteString(`
		GROUP BY l.id`)
	if q.SortBy == domain.SortByCount {
		sb.WriteString(`
		ORDER BY COUNT(*) DESC, l.name ASC, l.id ASC`)
	} else {
		sb.WriteString(`
		ORDER BY l.name ASC, l.id ASC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query histogram: %w", err)
	}
	defer rows.Close()

	var histos []domain.Histo
	for rows.Next() {
		var h domain.Histo
		if err := rows.Scan(&h.LabelID, &h.Count, &h.Text); err != nil {
			return nil, err
		}
		histos = append(histos, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return histos, nil
}

// matchPrefix quotes arbitrary text into a prefix term the FTS MATCH
// grammar accepts.
func matchPrefix(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"*`
}
