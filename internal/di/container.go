// Package di provides dependency injection configuration for the catalog.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfward/shelfward/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStore)

	// Catalog
	do.Provide(injector, providers.ProvideRepository)

	return injector
}
