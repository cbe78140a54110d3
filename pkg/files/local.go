package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"portfolio/pkg/models"
)

// LocalStore keeps uploads on disk under root/<category dir>/<name>.
type LocalStore struct {
	root     string
	maxBytes int64
	namer    Namer
}

// NewLocalStore creates a store rooted at root. Category directories are
// created on demand.
func NewLocalStore(root string, maxBytes int64, namer Namer) *LocalStore {
	return &LocalStore{root: root, maxBytes: maxBytes, namer: namer}
}

// Root returns the directory uploads are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(_ context.Context, category models.Category, originalName string, r io.Reader) (models.StoredFile, error) {
	dir, err := dirFor(category)
	if err != nil {
		return models.StoredFile{}, err
	}
	target := filepath.Join(s.root, dir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return models.StoredFile{}, fmt.Errorf("creating %s: %w", target, err)
	}

	name := s.namer.Name(originalName)
	path := filepath.Join(target, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("creating %s: %w", path, err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		os.Remove(path)
		return models.StoredFile{}, fmt.Errorf("writing %s: %w", path, copyErr)
	case s.maxBytes > 0 && n > s.maxBytes:
		os.Remove(path)
		return models.StoredFile{}, models.ErrPayloadTooLarge
	case closeErr != nil:
		os.Remove(path)
		return models.StoredFile{}, fmt.Errorf("closing %s: %w", path, closeErr)
	}

	return storedFile(category, name, n), nil
}

func (s *LocalStore) Open(_ context.Context, category models.Category, name string) (io.ReadCloser, error) {
	path, err := s.pathFor(category, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, models.ErrNotFound
	}
	return f, nil
}

func (s *LocalStore) Remove(_ context.Context, category models.Category, name string) (bool, error) {
	path, err := s.pathFor(category, name)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing %s: %w", path, err)
	}
	return true, nil
}

func (s *LocalStore) List(_ context.Context, category models.Category) ([]models.StoredFile, error) {
	dir, err := dirFor(category)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if errors.Is(err, fs.ErrNotExist) {
		return []models.StoredFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	list := make([]models.StoredFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		list = append(list, storedFile(category, e.Name(), info.Size()))
	}
	sortFiles(list)
	return list, nil
}

func (s *LocalStore) pathFor(category models.Category, name string) (string, error) {
	dir, err := dirFor(category)
	if err != nil {
		return "", err
	}
	if !ValidName(name) {
		return "", models.ErrNotFound
	}
	return filepath.Join(s.root, dir, name), nil
}
