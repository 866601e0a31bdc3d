// Package domain contains the core business entities for the Shelfward catalog.
package domain

import "strings"

// LabelType identifies the taxonomy a label belongs to.
// The numeric values are stored in the database; do not reorder.
type LabelType int

// Label taxonomies. TypeNone is the zero value and never stored.
const (
	TypeNone LabelType = iota
	TypeAuthors
	TypeGenres
	TypeLocation
	TypePublisher
	TypeLanguage
)

// LabelTypes lists every real taxonomy, in display order.
var LabelTypes = []LabelType{TypeAuthors, TypeGenres, TypeLocation, TypePublisher, TypeLanguage}

// String returns the taxonomy name.
func (t LabelType) String() string {
	switch t {
	case TypeAuthors:
		return "authors"
	case TypeGenres:
		return "genres"
	case TypeLocation:
		return "location"
	case TypePublisher:
		return "publisher"
	case TypeLanguage:
		return "language"
	default:
		return "none"
	}
}

// Multi reports whether books may carry several labels of this type.
// Location, publisher and language are single-valued views.
func (t LabelType) Multi() bool {
	return t == TypeAuthors || t == TypeGenres
}

// Label is an interned taxonomic value, unique per (type, name).
// Identity is assigned by the store; a zero ID marks an unsaved label.
type Label struct {
	ID   int64     `json:"id"`
	Type LabelType `json:"type"`
	Name string    `json:"name"`
}

// NewLabel creates an unsaved label with a trimmed name.
func NewLabel(t LabelType, name string) Label {
	return Label{Type: t, Name: strings.TrimSpace(name)}
}

// Same reports whether two labels denote the same logical value.
// Unsaved labels (id 0) compare by type and name.
func (l Label) Same(other Label) bool {
	if l.ID != 0 && other.ID != 0 {
		return l.ID == other.ID
	}
	return l.Type == other.Type && l.Name == other.Name
}

// LabelKey is the cache key of a label: its type and trimmed name.
type LabelKey struct {
	Type LabelType
	Name string
}

// Key returns the cache key for this label.
func (l Label) Key() LabelKey {
	return LabelKey{Type: l.Type, Name: l.Name}
}

// LabelTypeCount is the number of stored labels per taxonomy.
type LabelTypeCount struct {
	Type  LabelType `json:"type"`
	Count int       `json:"count"`
}
