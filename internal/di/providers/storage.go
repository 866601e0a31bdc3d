package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfward/shelfward/internal/config"
	"github.com/shelfward/shelfward/internal/images"
	"github.com/shelfward/shelfward/internal/logger"
	"github.com/shelfward/shelfward/internal/store"
	"github.com/shelfward/shelfward/internal/store/sqlite"
)

// ProvideStore provides the SQLite-backed catalog store.
func ProvideStore(i do.Injector) (store.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	s, err := sqlite.Open(cfg.DatabasePath(), log)
	if err != nil {
		return nil, err
	}

	log.Info("Opened catalog database", "path", cfg.DatabasePath())
	return s, nil
}

// ProvideImageStore provides the on-disk cover image store.
func ProvideImageStore(i do.Injector) (images.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return images.NewDisk(cfg.Images.CoversPath)
}
