// Package main inspects a catalog database: counts, label histograms,
// duplicate groups and books missing a cover.
//
// Usage:
//
//	DATA_PATH=~/Shelfward go run ./cmd/dbinspect
//	go run ./cmd/dbinspect --data-path /tmp/shelfward --sweep
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/shelfward/shelfward/internal/catalog"
	"github.com/shelfward/shelfward/internal/di"
	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/logger"
)

// The config loader parses the shared flag set, this one rides along.
var sweep = flag.Bool("sweep", false, "Delete labels no book references")

func main() {
	injector := di.NewContainer()
	log := do.MustInvoke[*logger.Logger](injector)
	repo := do.MustInvoke[*catalog.Repository](injector)
	ctx := context.Background()

	fmt.Println("=== Catalog Inspection ===")
	fmt.Println()

	books, err := repo.CountBooks(ctx)
	if err != nil {
		log.Fatal("Failed to count books", "error", err)
	}
	labels, err := repo.CountLabels(ctx)
	if err != nil {
		log.Fatal("Failed to count labels", "error", err)
	}
	fmt.Printf("books:  %d\n", books)
	fmt.Printf("labels: %d\n", labels)
	fmt.Println()

	byCount := repo.NewQuery()
	byCount.SortBy = domain.SortByCount
	for _, t := range []domain.LabelType{domain.TypeAuthors, domain.TypeGenres, domain.TypeLanguage} {
		histos, err := repo.GetHisto(ctx, t, byCount, "")
		if err != nil {
			log.Fatal("Failed to build histogram", "type", t.String(), "error", err)
		}
		fmt.Printf("%s (%d):\n", t, len(histos))
		for i, h := range histos {
			if i == 10 {
				fmt.Printf("  ... %d more\n", len(histos)-i)
				break
			}
			fmt.Printf("  %4d  %s\n", h.Count, h.Text)
		}
		fmt.Println()
	}

	dupes := repo.NewQuery()
	dupes.Mode = domain.ModeDuplicates
	dupeIDs, err := repo.GetIDsList(ctx, dupes)
	if err != nil {
		log.Fatal("Failed to list duplicates", "error", err)
	}
	fmt.Printf("duplicate candidates: %d\n", len(dupeIDs))
	for _, id := range dupeIDs {
		b, err := repo.GetBook(ctx, id)
		if err != nil {
			log.Fatal("Failed to load book", "id", id, "error", err)
		}
		fmt.Printf("  %4d  %s (isbn %q)\n", b.ID, b.Title, b.ISBN)
	}
	fmt.Println()

	nocover := repo.NewQuery()
	nocover.Mode = domain.ModeNoCover
	nocoverCount, err := repo.GetCount(ctx, nocover)
	if err != nil {
		log.Fatal("Failed to count coverless books", "error", err)
	}
	fmt.Printf("books without cover: %d\n", nocoverCount)

	if *sweep {
		removed, err := repo.DeleteUnusedLabels(ctx)
		if err != nil {
			log.Fatal("Failed to sweep unused labels", "error", err)
		}
		fmt.Printf("swept %d unused labels\n", removed)
	}

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}
