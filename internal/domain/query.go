package domain

import "github.com/shelfward/shelfward/internal/errors"

// MaxFilters bounds the number of label filters a query may carry.
// The engine's set-intersection is evaluated over at most this many ids.
const MaxFilters = 5

// SortOrder selects the ordering of query results.
type SortOrder int

// Sort orders. SortByCount only applies to histograms.
const (
	SortByTitle     SortOrder = 1
	SortByDateAdded SortOrder = 2
	SortByCount     SortOrder = 3
)

// QueryMode selects the retrieval family.
type QueryMode int

// Query modes.
const (
	// ModeRegular uses all query fields: text, filters, exclusion, sort.
	ModeRegular QueryMode = iota
	// ModeDuplicates retrieves books sharing a title+author or an ISBN.
	ModeDuplicates
	// ModeNoCover retrieves books without a stored cover image.
	ModeNoCover
)

// Filter is a required (type, labelId) constraint; filters are AND-combined.
type Filter struct {
	Type    LabelType `json:"type"`
	LabelID int64     `json:"label_id"`
}

// FilterFor builds a filter matching the given label.
func FilterFor(label Label) Filter {
	return Filter{Type: label.Type, LabelID: label.ID}
}

// Query describes a catalog search: free text, label filters, an optional
// label-type exclusion and a sort order. The filter list keeps insertion
// order for UI stability; semantically it is an AND set.
type Query struct {
	Mode    QueryMode `json:"mode"`
	Text    string    `json:"text,omitempty"`
	Partial bool      `json:"partial,omitempty"` // prefix match when Text is set
	Filters []Filter  `json:"filters,omitempty"`
	// WithoutLabelOfType excludes books carrying any label of this type.
	// TypeNone disables the exclusion.
	WithoutLabelOfType LabelType `json:"without_label_of_type,omitempty"`
	SortBy             SortOrder `json:"sort_by,omitempty"`
}

// NewQuery returns an empty regular query with the given default sort.
func NewQuery(defaultSort SortOrder) Query {
	return Query{Mode: ModeRegular, SortBy: defaultSort}
}

// Validate rejects malformed queries before any I/O happens.
func (q Query) Validate() error {
	if len(q.Filters) > MaxFilters {
		return errors.ErrTooManyFilters
	}
	return nil
}

// HasText reports whether the query requests full-text matching.
func (q Query) HasText() bool {
	return q.Text != ""
}

// MatchText returns the full-text predicate: the raw text, with a trailing
// wildcard when a prefix match is requested.
func (q Query) MatchText() string {
	if q.Partial {
		return q.Text + "*"
	}
	return q.Text
}

// FilterIDs returns the label ids of the filters, in insertion order.
func (q Query) FilterIDs() []int64 {
	ids := make([]int64, len(q.Filters))
	for i, f := range q.Filters {
		ids[i] = f.LabelID
	}
	return ids
}

// FirstFilter returns the first filter of the given type, or nil.
func (q Query) FirstFilter(t LabelType) *Filter {
	for _, f := range q.Filters {
		if f.Type == t {
			filter := f
			return &filter
		}
	}
	return nil
}

// ClearFilter returns a copy of the query without any filter of the given type.
func (q Query) ClearFilter(t LabelType) Query {
	filters := make([]Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		if f.Type != t {
			filters = append(filters, f)
		}
	}
	q.Filters = filters
	return q
}

// SetOrReplaceFilter returns a copy of the query where the first filter of
// the same type is replaced, or the filter appended if none exists.
func (q Query) SetOrReplaceFilter(filter Filter) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	replaced := false
	for _, f := range q.Filters {
		if !replaced && f.Type == filter.Type {
			replaced = true
			continue
		}
		filters = append(filters, f)
	}
	filters = append(filters, filter)
	q.Filters = filters
	return q
}

// Histo is one facet bucket: how many matching books carry this label.
// Text is resolved lazily through the label cache.
type Histo struct {
	LabelID int64  `json:"label_id"`
	Count   int    `json:"count"`
	Text    string `json:"text,omitempty"`
}
