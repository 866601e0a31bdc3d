package domain

// Merging two books is table-driven: one explicit (get, set) pair per field,
// grouped by field kind. No reflection; adding a field means adding a row.

// stringField is a scalar string field of a book.
type stringField struct {
	get func(*Book) string
	set func(*Book, string)
}

// mergeStringFields lists the scalar fields merged first-empty-wins.
var mergeStringFields = []stringField{
	{func(b *Book) string { return b.Title }, func(b *Book, v string) { b.Title = v }},
	{func(b *Book) string { return b.Subtitle }, func(b *Book, v string) { b.Subtitle = v }},
	{func(b *Book) string { return b.ImgURL }, func(b *Book, v string) { b.ImgURL = v }},
	{func(b *Book) string { return b.ISBN }, func(b *Book, v string) { b.ISBN = v }},
	{func(b *Book) string { return b.Summary }, func(b *Book, v string) { b.Summary = v }},
	{func(b *Book) string { return b.YearPublished }, func(b *Book, v string) { b.YearPublished = v }},
	{func(b *Book) string { return b.NumberOfPages }, func(b *Book, v string) { b.NumberOfPages = v }},
	{func(b *Book) string { return b.ImageFilename }, func(b *Book, v string) { b.ImageFilename = v }},
}

// singleLabelTypes lists the single-valued label views, kept when set.
var singleLabelTypes = []LabelType{TypePublisher, TypeLocation, TypeLanguage}

// multiLabelTypes lists the multi-valued label views, merged as a union.
var multiLabelTypes = []LabelType{TypeGenres, TypeAuthors}

// Merge fills the empty fields of dst from src and returns dst.
// Scalar fields: first non-empty wins (dst's value is kept when present).
// Single label fields: dst's label is kept, src's used when dst has none.
// Multi label fields: union, dst's order first, duplicates dropped.
// Both books must be decorated.
func Merge(dst, src *Book) (*Book, error) {
	for _, f := range mergeStringFields {
		if f.get(dst) == "" {
			if v := f.get(src); v != "" {
				f.set(dst, v)
			}
		}
	}

	for _, t := range singleLabelTypes {
		existing, err := dst.FirstLabel(t)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		other, err := src.FirstLabel(t)
		if err != nil {
			return nil, err
		}
		if other != nil {
			if err := dst.SetSingleLabel(t, other); err != nil {
				return nil, err
			}
		}
	}

	for _, t := range multiLabelTypes {
		others, err := src.GetLabels(t)
		if err != nil {
			return nil, err
		}
		if len(others) == 0 {
			continue
		}
		existing, err := dst.GetLabels(t)
		if err != nil {
			return nil, err
		}
		merged := append([]Label{}, existing...)
		for _, label := range others {
			if !containsLabel(merged, label) {
				merged = append(merged, label)
			}
		}
		if len(merged) != len(existing) {
			if err := dst.SetMultiLabels(t, merged); err != nil {
				return nil, err
			}
		}
	}

	return dst, nil
}

func containsLabel(labels []Label, label Label) bool {
	for _, l := range labels {
		if l.Same(label) {
			return true
		}
	}
	return false
}
