// Package files stores uploaded media under one directory per category.
package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"portfolio/pkg/clock"
	"portfolio/pkg/models"
)

// Store is binary storage for uploads. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put stores r under a generated name derived from originalName and
	// returns the stored file with its public path.
	Put(ctx context.Context, category models.Category, originalName string, r io.Reader) (models.StoredFile, error)

	// Open streams a stored file. The caller closes the reader.
	Open(ctx context.Context, category models.Category, name string) (io.ReadCloser, error)

	// Remove deletes a stored file and reports whether it existed.
	Remove(ctx context.Context, category models.Category, name string) (bool, error)

	// List returns the files of a category sorted by name.
	List(ctx context.Context, category models.Category) ([]models.StoredFile, error)
}

// Namer generates collision-resistant names for uploads:
// <unix-millis>-<random id><original extension, lower-cased>.
type Namer struct {
	Clock clock.Clock
	IDs   clock.IDGenerator
}

// NewNamer returns a Namer on the real clock and random ids.
func NewNamer() Namer {
	return Namer{Clock: clock.Real{}, IDs: clock.ShortIDGenerator{}}
}

// Name returns a fresh name for an upload called originalName.
func (n Namer) Name(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !validExt(ext) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", n.Clock.Now().UnixMilli(), n.IDs.New(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 16 {
		return false
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// ValidName reports whether name can address a stored file. Names with a
// path separator, and the dot entries, never match anything.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// dirFor maps a category to its directory, rejecting unknown categories.
func dirFor(category models.Category) (string, error) {
	dir := category.Dir()
	if dir == "" {
		return "", models.ErrInvalidCategory
	}
	return dir, nil
}

// readLimited buffers r, failing with ErrPayloadTooLarge past max bytes.
// A max of zero or less disables the ceiling.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if n > max {
		return nil, models.ErrPayloadTooLarge
	}
	return buf.Bytes(), nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func storedFile(category models.Category, name string, size int64) models.StoredFile {
	return models.StoredFile{
		Name:     name,
		Path:     models.PublicPath(category, name),
		Size:     size,
		Category: category,
	}
}

func sortFiles(list []models.StoredFile) {
	sort.Slice(list, func(i, j int) bool {
		return naturalLess(list[i].Name, list[j].Name)
	})
}
