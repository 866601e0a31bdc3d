package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/store"
)

// labelColumns is the ordered list of columns selected in label queries.
// Must match the scan order in scanLabel.
const labelColumns = `id, type, name`

func scanLabel(scanner interface{ Scan(dest ...any) error }) (*domain.Label, error) {
	var l domain.Label
	var labelType int

	if err := scanner.Scan(&l.ID, &labelType, &l.Name); err != nil {
		return nil, err
	}
	l.Type = domain.LabelType(labelType)

	return &l, nil
}

// GetLabel retrieves a label by id.
// Returns store.ErrNotFound if the label does not exist.
func (s *Store) GetLabel(ctx context.Context, id int64) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+labelColumns+` FROM labels WHERE id = ?`, id)

	l, err := scanLabel(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// FindLabel retrieves a label by type and name.
// Returns store.ErrNotFound if the label does not exist.
func (s *Store) FindLabel(ctx context.Context, t domain.LabelType, name string) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+labelColumns+` FROM labels WHERE type = ? AND name = ?`,
		int(t), name)

	l, err := scanLabel(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// InsertLabel inserts a new label and returns its id.
// Returns store.ErrAlreadyExists when the (type, name) pair is taken.
func (s *Store) InsertLabel(ctx context.Context, l *domain.Label) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO labels (type, name) VALUES (?, ?)`,
		int(l.Type), l.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrAlreadyExists
		}
		return 0, err
	}
	return result.LastInsertId()
}

// UpdateLabelName renames a label.
// Returns store.ErrNotFound if the label does not exist and
// store.ErrAlreadyExists if the new name is taken within the label's type.
func (s *Store) UpdateLabelName(ctx context.Context, id int64, name string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE labels SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
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

// DeleteLabel removes a label and its book associations in one transaction.
// Returns store.ErrNotFound if the label does not exist.
func (s *Store) DeleteLabel(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_labels WHERE label_id = ?`, id); err != nil {
		return fmt.Errorf("delete book_labels: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete label: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// DeleteUnusedLabels removes every label no book references and returns
// how many were removed.
func (s *Store) DeleteUnusedLabels(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM labels
		WHERE id NOT IN (SELECT DISTINCT label_id FROM book_labels)`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MergeLabels repoints every book association of fromID to intoID, drops
// associations that would duplicate an existing intoID association, and
// removes the fromID label. Runs in one transaction.
func (s *Store) MergeLabels(ctx context.Context, fromID, intoID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Books already carrying the target label just lose the source one.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM book_labels
		WHERE label_id = ?
		AND book_id IN (SELECT book_id FROM book_labels WHERE label_id = ?)`,
		fromID, intoID); err != nil {
		return fmt.Errorf("drop overlapping book_labels: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE book_labels SET label_id = ? WHERE label_id = ?`,
		intoID, fromID); err != nil {
		return fmt.Errorf("repoint book_labels: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, fromID)
	if err != nil {
		return fmt.Errorf("delete merged label: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// LabelsOfType returns all labels of the given type sorted by name.
func (s *Store) LabelsOfType(ctx context.Context, t domain.LabelType) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+labelColumns+` FROM labels WHERE type = ? ORDER BY name ASC, id ASC`,
		int(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLabels(rows)
}

// SearchLabels returns labels of the given type whose name matches the
// prefix, using the label full-text index. An empty prefix lists all.
func (s *Store) SearchLabels(ctx context.Context, t domain.LabelType, prefix string, limit int) ([]domain.Label, error) {
	if prefix == "" {
		labels, err := s.LabelsOfType(ctx, t)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(labels) > limit {
			labels = labels[:limit]
		}
		return labels, nil
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+labelColumns+` FROM labels
		WHERE type = ?
		AND id IN (SELECT rowid FROM labels_fts WHERE labels_fts MATCH ?)
		ORDER BY name ASC, id ASC
		LIMIT ?`,
		int(t), matchPrefix(prefix), limit)
	if err != nil {
		return nil, fmt.Errorf("search labels: %w", err)
	}
	defer rows.Close()

	return scanLabels(rows)
}

// BookLabels returns a book's labels ordered by their sort key.
func (s *Store) BookLabels(ctx context.Context, bookID int64) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.type, l.name
		FROM book_labels bl
		JOIN labels l ON l.id = bl.label_id
		WHERE bl.book_id = ?
		ORDER BY bl.sort_key ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLabels(rows)
}

// SetBookLabels replaces all label associations for a book in a single
// transaction. Existing rows are deleted and the new set inserted with
// contiguous sort keys, preserving the given order.
func (s *Store) SetBookLabels(ctx context.Context, bookID int64, labelIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_labels WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("delete book_labels: %w", err)
	}

	for i, labelID := range labelIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_labels (book_id, label_id, sort_key)
			VALUES (?, ?, ?)`,
			bookID, labelID, i)
		if err != nil {
			return fmt.Errorf("insert book_labels: %w", err)
		}
	}

	return tx.Commit()
}

// CountAllLabels returns the total number of labels.
func (s *Store) CountAllLabels(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labels`).Scan(&count)
	return count, err
}

// LabelTypeCounts returns how many labels exist per type.
func (s *Store) LabelTypeCounts(ctx context.Context) (map[domain.LabelType]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM labels GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.LabelType]int64)
	for rows.Next() {
		var t int
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		counts[domain.LabelType(t)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func scanLabels(rows *sql.Rows) ([]domain.Label, error) {
	var labels []domain.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}
