// Package paging adapts the catalog's offset queries to page-keyed loads.
package paging

import (
	"context"

	"github.com/shelfward/shelfward/internal/catalog"
	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/errors"
)

// Page is one load result. PrevKey is nil on the first page and NextKey is
// nil once a load comes back empty, so walking keys terminates both ways.
type Page struct {
	Items   []*domain.Book
	PrevKey *int
	NextKey *int
}

// Pager loads a query's results one fixed-size page at a time. Keys are
// page numbers starting at zero.
type Pager struct {
	repo     *catalog.Repository
	query    domain.Query
	pageSize int
}

// New creates a Pager over the given query.
func New(repo *catalog.Repository, query domain.Query, pageSize int) (*Pager, error) {
	if pageSize <= 0 {
		return nil, errors.Validation("page size must be positive")
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return &Pager{repo: repo, query: query, pageSize: pageSize}, nil
}

// Load fetches the page with the given key. A nil key loads page zero.
func (p *Pager) Load(ctx context.Context, key *int) (*Page, error) {
	page := 0
	if key != nil {
		page = *key
	}
	if page < 0 {
		return nil, errors.Validationf("negative page key %d", page)
	}

	items, err := p.repo.GetPagedList(ctx, p.query, p.pageSize, page*p.pageSize)
	if err != nil {
		return nil, err
	}

	result := &Page{Items: items}
	if page > 0 {
		prev := page - 1
		result.PrevKey = &prev
	}
	if len(items) > 0 {
		next := page + 1
		result.NextKey = &next
	}
	return result, nil
}

// RefreshKey maps an anchor position from a previous generation of the
// list onto the page that now contains it, so a reload lands the reader
// roughly where they were.
func (p *Pager) RefreshKey(anchor int) int {
	if anchor < 0 {
		return 0
	}
	return anchor / p.pageSize
}

// PageSize returns the fixed page size.
func (p *Pager) PageSize() int {
	return p.pageSize
}
