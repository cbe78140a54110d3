package files

import (
	"bytes"
	"context"
	"io"
	"sync"

	"portfolio/pkg/models"
)

// MemoryStore keeps uploads in memory. Used by tests and demos.
type MemoryStore struct {
	mu       sync.RWMutex
	maxBytes int64
	namer    Namer
	files    map[models.Category]map[string][]byte
}

func NewMemoryStore(maxBytes int64, namer Namer) *MemoryStore {
	return &MemoryStore{
		maxBytes: maxBytes,
		namer:    namer,
		files:    make(map[models.Category]map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, category models.Category, originalName string, r io.Reader) (models.StoredFile, error) {
	if _, err := dirFor(category); err != nil {
		return models.StoredFile{}, err
	}
	data, err := readLimited(r, s.maxBytes)
	if err != nil {
		return models.StoredFile{}, err
	}

	name := s.namer.Name(originalName)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files[category] == nil {
		s.files[category] = make(map[string][]byte)
	}
	s.files[category][name] = bytes.Clone(data)
	return storedFile(category, name, int64(len(data))), nil
}

func (s *MemoryStore) Open(_ context.Context, category models.Category, name string) (io.ReadCloser, error) {
	if _, err := dirFor(category); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[category][name]
	if !ok {
		return nil, models.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Remove(_ context.Context, category models.Category, name string) (bool, error) {
	if _, err := dirFor(category); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[category][name]; !ok {
		return false, nil
	}
	delete(s.files[category], name)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, category models.Category) ([]models.StoredFile, error) {
	if _, err := dirFor(category); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.StoredFile, 0, len(s.files[category]))
	for name, data := range s.files[category] {
		list = append(list, storedFile(category, name, int64(len(data))))
	}
	sortFiles(list)
	return list, nil
}
