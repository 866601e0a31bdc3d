package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfward/shelfward/internal/errors"
)

func TestNewQueryDefaults(t *testing.T) {
	q := NewQuery(SortByDateAdded)

	assert.Equal(t, ModeRegular, q.Mode)
	assert.Equal(t, SortByDateAdded, q.SortBy)
	assert.Empty(t, q.Text)
	assert.Empty(t, q.Filters)
	assert.Equal(t, TypeNone, q.WithoutLabelOfType)
	require.NoError(t, q.Validate())
}

func TestQueryValidateFilterCount(t *testing.T) {
	q := NewQuery(SortByTitle)
	for i := 0; i < MaxFilters; i++ {
		q.Filters = append(q.Filters, Filter{Type: TypeGenres, LabelID: int64(i + 1)})
	}
	require.NoError(t, q.Validate())

	q.Filters = append(q.Filters, Filter{Type: TypeAuthors, LabelID: 99})
	assert.True(t, errors.Is(q.Validate(), errors.ErrTooManyFilters))
}

func TestMatchText(t *testing.T) {
	q := NewQuery(SortByTitle)
	q.Text = "dune"
	assert.Equal(t, "dune", q.MatchText())

	q.Partial = true
	assert.Equal(t, "dune*", q.MatchText())

	q.Text = ""
	assert.False(t, q.HasText())
	assert.Equal(t, "", q.MatchText())
}

func TestSetOrReplaceFilter(t *testing.T) {
	q := NewQuery(SortByTitle)
	q.Filters = []Filter{
		{Type: TypeAuthors, LabelID: 1},
		{Type: TypeGenres, LabelID: 2},
	}

	// Same type replaces in place, other filters keep their position.
	q2 := q.SetOrReplaceFilter(Filter{Type: TypeAuthors, LabelID: 7})
	assert.Equal(t, []Filter{
		{Type: TypeAuthors, LabelID: 7},
		{Type: TypeGenres, LabelID: 2},
	}, q2.Filters)

	// New type appends.
	q3 := q2.SetOrReplaceFilter(Filter{Type: TypeLocation, LabelID: 3})
	assert.Len(t, q3.Filters, 3)

	// The receiver is untouched.
	assert.Equal(t, int64(1), q.Filters[0].LabelID)
}

func TestClearFilter(t *testing.T) {
	q := NewQuery(SortByTitle)
	q.Filters = []Filter{
		{Type: TypeAuthors, LabelID: 1},
		{Type: TypeGenres, LabelID: 2},
	}

	q2 := q.ClearFilter(TypeAuthors)
	assert.Equal(t, []Filter{{Type: TypeGenres, LabelID: 2}}, q2.Filters)
	assert.Len(t, q.Filters, 2)
}

func TestFirstFilter(t *testing.T) {
	q := NewQuery(SortByTitle)
	assert.Nil(t, q.FirstFilter(TypeGenres))

	q.Filters = []Filter{{Type: TypeGenres, LabelID: 2}}
	f := q.FirstFilter(TypeGenres)
	require.NotNil(t, f)
	assert.Equal(t, int64(2), f.LabelID)
}

func TestFilterIDs(t *testing.T) {
	q := NewQuery(SortByTitle)
	q.Filters = []Filter{
		{Type: TypeAuthors, LabelID: 4},
		{Type: TypeGenres, LabelID: 9},
	}
	assert.Equal(t, []int64{4, 9}, q.FilterIDs())
}
