// Package images stores book cover images on disk.
package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Store persists cover image bytes and hands back the filename a book row
// should reference.
type Store interface {
	// Save writes the image data under a fresh filename and returns it.
	Save(ctx context.Context, data []byte) (string, error)

	// Delete removes a previously saved image. Deleting a filename that is
	// already gone is not an error.
	Delete(ctx context.Context, filename string) error

	// Path returns the absolute path of a stored image.
	Path(filename string) string
}

// Disk is the filesystem implementation of Store.
// Thread-safe for concurrent operations.
type Disk struct {
	basePath string
	mu       sync.RWMutex
}

// NewDisk creates a Disk store rooted at basePath, creating the directory
// if needed.
func NewDisk(basePath string) (*Disk, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create covers directory: %w", err)
	}
	return &Disk{basePath: basePath}, nil
}

// Save writes the image data and returns its generated filename.
func (d *Disk) Save(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image data cannot be empty")
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate image id: %w", err)
	}
	filename := "cov-" + id + ".jpg"

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.WriteFile(d.Path(filename), data, 0644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}
	return filename, nil
}

// Delete removes a stored image, ignoring files that are already gone.
func (d *Disk) Delete(_ context.Context, filename string) error {
	if filename == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.Path(filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

// Path returns the absolute path of a stored image.
func (d *Disk) Path(filename string) string {
	return filepath.Join(d.basePath, filename)
}

// Noop discards every image. Useful for tests and headless imports.
type Noop struct{}

func (Noop) Save(context.Context, []byte) (string, error) { return "", nil }
func (Noop) Delete(context.Context, string) error         { return nil }
func (Noop) Path(string) string                           { return "" }
