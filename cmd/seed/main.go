// Package main provides a tool to seed the catalog with sample books.
//
// Useful for trying out queries, histograms and duplicate detection
// against a populated database.
//
// Usage:
//
//	DATA_PATH=~/Shelfward go run ./cmd/seed
//	go run ./cmd/seed --data-path /tmp/shelfward
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelfward/shelfward/internal/catalog"
	"github.com/shelfward/shelfward/internal/di"
	"github.com/shelfward/shelfward/internal/domain"
	"github.com/shelfward/shelfward/internal/logger"
)

type sample struct {
	title     string
	authors   []string
	genres    []string
	publisher string
	language  string
	isbn      string
	year      string
}

var samples = []sample{
	{"Dune", []string{"Frank Herbert"}, []string{"Science Fiction"}, "Chilton Books", "English", "9780441172719", "1965"},
	{"Dune Messiah", []string{"Frank Herbert"}, []string{"Science Fiction"}, "Putnam", "English", "9780441172696", "1969"},
	{"Foundation", []string{"Isaac Asimov"}, []string{"Science Fiction", "Classics"}, "Gnome Press", "English", "9780553293357", "1951"},
	{"Good Omens", []string{"Terry Pratchett", "Neil Gaiman"}, []string{"Fantasy", "Humor"}, "Gollancz", "English", "9780060853983", "1990"},
	{"The Left Hand of Darkness", []string{"Ursula K. Le Guin"}, []string{"Science Fiction"}, "Ace Books", "English", "9780441478125", "1969"},
	{"Le Petit Prince", []string{"Antoine de Saint-Exupéry"}, []string{"Classics"}, "Gallimard", "French", "9782070612758", "1943"},
}

func main() {
	injector := di.NewContainer()

	log := do.MustInvoke[*logger.Logger](injector)
	repo := do.MustInvoke[*catalog.Repository](injector)
	ctx := context.Background()

	seeded := 0
	for _, s := range samples {
		b := repo.NewBook()
		b.Title = s.title
		b.ISBN = s.isbn
		b.YearPublished = s.year
		// A fixed uid per sample keeps reruns idempotent.
		b.UID = catalog.NewUID(time.Unix(0, 0), s.title, strings.Join(s.authors, ", "))

		if err := fillLabels(ctx, repo, b, s); err != nil {
			log.Error("Failed to build sample book", "title", s.title, "error", err)
			os.Exit(1)
		}

		saved, err := repo.SaveIfAbsent(ctx, b, false)
		if err != nil {
			log.Error("Failed to save sample book", "title", s.title, "error", err)
			os.Exit(1)
		}
		if saved {
			seeded++
			fmt.Printf("seeded %q (id %d)\n", b.Title, b.ID)
		} else {
			fmt.Printf("skipped %q, already in the catalog\n", s.title)
		}
	}

	books, err := repo.CountBooks(ctx)
	if err != nil {
		log.Error("Failed to count books", "error", err)
		os.Exit(1)
	}
	labels, err := repo.CountLabels(ctx)
	if err != nil {
		log.Error("Failed to count labels", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nseeded %d books, catalog now holds %d books and %d labels\n", seeded, books, labels)

	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}

func fillLabels(ctx context.Context, repo *catalog.Repository, b *domain.Book, s sample) error {
	var authors []domain.Label
	for _, name := range s.authors {
		l, err := repo.Label(ctx, domain.TypeAuthors, name)
		if err != nil {
			return err
		}
		authors = append(authors, *l)
	}
	if err := b.SetAuthors(authors); err != nil {
		return err
	}

	var genres []domain.Label
	for _, name := range s.genres {
		l, err := repo.Label(ctx, domain.TypeGenres, name)
		if err != nil {
			return err
		}
		genres = append(genres, *l)
	}
	if err := b.SetGenres(genres); err != nil {
		return err
	}

	if s.publisher != "" {
		l, err := repo.Label(ctx, domain.TypePublisher, s.publisher)
		if err != nil {
			return err
		}
		if err := b.SetPublisher(l); err != nil {
			return err
		}
	}
	if s.language != "" {
		l, err := repo.Label(ctx, domain.TypeLanguage, s.language)
		if err != nil {
			return err
		}
		if err := b.SetLanguage(l); err != nil {
			return err
		}
	}
	return nil
}
