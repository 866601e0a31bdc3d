package paging

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfward/shelfward/internal/catalog"
	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/images"
	"github.com/shelfward/shelfward/internal/logger"
	"github.com/shelfward/shelfward/internal/store/sqlite"
)

// newTestPager seeds n books titled Book 01..n and returns a pager over
// the default query.
func newTestPager(t *testing.T, n, pageSize int) *Pager {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repo := catalog.New(s, images.Noop{}, logger.Discard(), domain.SortByTitle)
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		b := repo.NewBook()
		b.Title = fmt.Sprintf("Book %02d", i)
		require.NoError(t, repo.Save(ctx, b, false))
	}

	p, err := New(repo, repo.NewQuery(), pageSize)
	require.NoError(t, err)
	return p
}

func pageTitles(page *Page) []string {
	out := make([]string, len(page.Items))
	for i, b := range page.Items {
		out[i] = b.Title
	}
	return out
}

func TestLoadFirstPage(t *testing.T) {
	p := newTestPager(t, 5, 2)

	page, err := p.Load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Book 01", "Book 02"}, pageTitles(page))
	assert.Nil(t, page.PrevKey, "first page has no previous")
	require.NotNil(t, page.NextKey)
	assert.Equal(t, 1, *page.NextKey)
}

func TestWalkForward(t *testing.T) {
	p := newTestPager(t, 5, 2)
	ctx := context.Background()

	var titles []string
	key := (*int)(nil)
	for {
		page, err := p.Load(ctx, key)
		require.NoError(t, err)
		titles = append(titles, pageTitles(page)...)
		if len(page.Items) == 0 {
			assert.Nil(t, page.NextKey, "empty page ends the walk")
			break
		}
		key = page.NextKey
	}

	assert.Equal(t, []string{"Book 01", "Book 02", "Book 03", "Book 04", "Book 05"}, titles)
}

func TestWalkBackward(t *testing.T) {
	p := newTestPager(t, 5, 2)
	ctx := context.Background()

	two := 2
	page, err := p.Load(ctx, &two)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book 05"}, pageTitles(page))
	require.NotNil(t, page.PrevKey)

	page, err = p.Load(ctx, page.PrevKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"Book 03", "Book 04"}, pageTitles(page))
	require.NotNil(t, page.PrevKey)
	assert.Equal(t, 0, *page.PrevKey)
}

func TestLoadPastEnd(t *testing.T) {
	p := newTestPager(t, 3, 2)

	nine := 9
	page, err := p.Load(context.Background(), &nine)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextKey)
	require.NotNil(t, page.PrevKey)
	assert.Equal(t, 8, *page.PrevKey)
}

func TestRefreshKey(t *testing.T) {
	p := newTestPager(t, 0, 3)

	assert.Equal(t, 0, p.RefreshKey(0))
	assert.Equal(t, 0, p.RefreshKey(2))
	assert.Equal(t, 1, p.RefreshKey(3))
	assert.Equal(t, 3, p.RefreshKey(11))
	assert.Equal(t, 0, p.RefreshKey(-4))
}

func TestNewValidates(t *testing.T) {
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	repo := catalog.New(s, images.Noop{}, logger.Discard(), domain.SortByTitle)

	_, err = New(repo, repo.NewQuery(), 0)
	assert.Error(t, err)

	q := repo.NewQuery()
	for i := 0; i < domain.MaxFilters+1; i++ {
		q.Filters = append(q.Filters, domain.Filter{Type: domain.TypeGenres, LabelID: int64(i + 1)})
	}
	_, err = New(repo, q, 10)
	assert.Error(t, err)
}
