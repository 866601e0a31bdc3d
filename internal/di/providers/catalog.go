package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfward/shelfward/internal/catalog"
	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/images"
	"github.com/shelfward/shelfward/internal/logger"
	"github.com/shelfward/shelfward/internal/store"
)

// ProvideRepository provides the catalog repository.
func ProvideRepository(i do.Injector) (*catalog.Repository, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	s := do.MustInvoke[store.Store](i)
	img := do.MustInvoke[images.Store](i)

	return catalog.New(s, img, log, cfg.Catalog.DefaultSort), nil
}
