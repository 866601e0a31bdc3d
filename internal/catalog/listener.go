package catalog

import "github.com/shelfward/shelfward/internal/domain"

// Listener observes book lifecycle events. BookCreated fires when a blank
// book is handed out, so collaborators can prefill fields (remembering the
// last used location, say). BookInserting and BookUpdating fire before the
// row is written, so a listener may still adjust fields. BookDeleted fires
// after the row is gone.
type Listener interface {
	BookCreated(book *domain.Book)
	BookInserting(book *domain.Book)
	BookUpdating(book *domain.Book)
	BookDeleted(book *domain.Book)
}

// NoopListener implements Listener with empty methods, embed it to pick
// only the events you care about.
type NoopListener struct{}

func (NoopListener) BookCreated(*domain.Book)   {}
func (NoopListener) BookInserting(*domain.Book) {}
func (NoopListener) BookUpdating(*domain.Book)  {}
func (NoopListener) BookDeleted(*domain.Book)   {}
